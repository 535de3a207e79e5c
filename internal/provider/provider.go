// Package provider adapts the provider-neutral conversation model to the
// OpenAI and Anthropic chat APIs.
package provider

import (
	"context"
	"fmt"

	"github.com/jqian-ml/agent-finie/internal/chat"
	"github.com/jqian-ml/agent-finie/internal/config"
	"github.com/jqian-ml/agent-finie/internal/metrics"
	"github.com/jqian-ml/agent-finie/tools"
)

// Request is one completion call: the prepared message window plus the
// sampling parameters and tool definitions for this session.
type Request struct {
	Model       string
	System      string
	Messages    []chat.Message
	Tools       []tools.ToolDefinition
	MaxTokens   int64
	Temperature float64
}

// Completer produces one assistant message for a request. Implementations
// record token usage on the shared accumulator.
type Completer interface {
	Complete(ctx context.Context, req Request) (chat.Message, error)
}

// New selects the configured provider. A missing API key is a startup error
// naming the environment variable, not a mid-conversation surprise.
func New(cfg *config.Config, usage *metrics.Usage) (Completer, error) {
	switch cfg.LLM.Provider {
	case "openai":
		if cfg.Keys.OpenAI == "" {
			return nil, fmt.Errorf("provider openai: OPENAI_API_KEY is not set")
		}
		return NewOpenAI(cfg.Keys.OpenAI, usage), nil
	case "anthropic":
		if cfg.Keys.Anthropic == "" {
			return nil, fmt.Errorf("provider anthropic: ANTHROPIC_API_KEY is not set")
		}
		return NewAnthropic(cfg.Keys.Anthropic, usage), nil
	default:
		return nil, fmt.Errorf("provider: unknown provider %q", cfg.LLM.Provider)
	}
}

// DefaultModel returns the provider's default model when the config leaves
// the model unset.
func DefaultModel(providerName string) string {
	if providerName == "anthropic" {
		return DefaultAnthropicModel
	}
	return DefaultOpenAIModel
}
