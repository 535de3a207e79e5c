// Package runner drives the reason-act loop: prepare a budgeted send window,
// call the model, execute any requested tools, and repeat until the model
// answers in plain text or the iteration cap is hit.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jqian-ml/agent-finie/internal/chat"
	"github.com/jqian-ml/agent-finie/internal/provider"
	"github.com/jqian-ml/agent-finie/internal/telemetry"
	"github.com/jqian-ml/agent-finie/internal/windowing"
	"github.com/jqian-ml/agent-finie/tools"
)

// ErrMaxIterations reports that a turn hit the iteration cap while the model
// was still requesting tools.
var ErrMaxIterations = errors.New("runner: max iterations reached without a final answer")

type Runner struct {
	Client        provider.Completer
	Tools         []tools.ToolDefinition
	Model         string
	MaxTokens     int64
	Temperature   float64
	Budget        int
	MaxIterations int
	Out           io.Writer
}

func New(client provider.Completer, toolDefs []tools.ToolDefinition, model string, maxTokens int64, temperature float64, budget, maxIterations int) *Runner {
	return &Runner{
		Client:        client,
		Tools:         toolDefs,
		Model:         model,
		MaxTokens:     maxTokens,
		Temperature:   temperature,
		Budget:        budget,
		MaxIterations: maxIterations,
		Out:           os.Stdout,
	}
}

// RunOneStep sends the conversation and either prints text or returns tool
// results to be appended.
func (r *Runner) RunOneStep(ctx context.Context, conv []chat.Message) (chat.Message, []chat.ToolResult, error) {
	// Prepare pair-safe, budgeted window
	counter := windowing.HeuristicCounter{}
	window, stats := windowing.PrepareSendWindow(conv, r.Budget, counter)

	// Get turnID from context if present, else generate once for this call.
	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = fmt.Sprintf("turn-%d", time.Now().UnixNano())
	}
	ctx = telemetry.WithTurnID(ctx, turnID)

	telemetry.Emit("window_prepared", map[string]any{
		"turn_id":            turnID,
		"model":              r.Model,
		"budget":             stats.Budget,
		"total_estimated":    stats.Total,
		"included_groups":    stats.IncludedGroups,
		"skipped_groups":     stats.SkippedGroups,
		"over_budget_newest": stats.OverBudgetNewest,
	})

	// With tool output caps the newest group should always fit within the
	// budget. If not, treat it as a misconfiguration and fail fast rather
	// than sending a request that cannot carry the newest exchange.
	if stats.OverBudgetNewest {
		return chat.Message{}, nil, fmt.Errorf("windowing: newest group exceeds the token budget; raise agent.token_budget or tighten tool output")
	}

	reply, err := r.Client.Complete(ctx, provider.Request{
		Model:       r.Model,
		System:      SystemPrompt,
		Messages:    window,
		Tools:       r.Tools,
		MaxTokens:   r.MaxTokens,
		Temperature: r.Temperature,
	})
	if err != nil {
		return chat.Message{}, nil, err
	}

	if reply.Text != "" {
		fmt.Fprintf(r.out(), "\u001b[93mFinie\u001b[0m: %s\n", reply.Text)
	}

	var results []chat.ToolResult
	for _, tc := range reply.ToolCalls {
		results = append(results, r.execTool(ctx, tc))
	}
	return reply, results, nil
}

// RunTurn appends the question and repeats one-step calls until the model
// stops requesting tools. Tool errors feed back into the conversation as
// error results; they never abort the turn.
func (r *Runner) RunTurn(ctx context.Context, conv []chat.Message, question string) ([]chat.Message, string, error) {
	conv = append(conv, chat.UserMessage(question))

	for i := 0; i < r.MaxIterations; i++ {
		reply, results, err := r.RunOneStep(ctx, conv)
		if err != nil {
			return conv, "", err
		}
		conv = append(conv, reply)
		if len(results) == 0 {
			return conv, reply.Text, nil
		}
		conv = append(conv, chat.ToolResultsMessage(results...))
	}
	return conv, "", ErrMaxIterations
}

func (r *Runner) execTool(ctx context.Context, tc chat.ToolCall) chat.ToolResult {
	var def *tools.ToolDefinition
	for i := range r.Tools {
		if r.Tools[i].Name == tc.Name {
			def = &r.Tools[i]
			break
		}
	}

	turnID, _ := telemetry.TurnIDFromContext(ctx)

	// Helper to emit a tool_exec event
	emit := func(durationMs int64, inputSize, outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   tc.Name,
			"duration_ms": durationMs,
			"input_size":  inputSize,
			"output_size": outputSize,
			"turn_id":     turnID,
		}
		if errStr != "" {
			fields["error"] = errStr
		} else {
			fields["error"] = nil
		}
		telemetry.Emit("tool_exec", fields)
	}

	start := time.Now()
	inSize := len(tc.Arguments)

	if def == nil {
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool not found")
		return chat.ToolResult{CallID: tc.ID, Content: "tool not found", IsError: true}
	}

	input := tc.Arguments
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	resp, err := def.Function(ctx, input)
	if err != nil {
		// Emit a generic error string to avoid leaking raw payloads in telemetry
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool error")
		// Preserve the detailed error message in the result returned to the model
		return chat.ToolResult{CallID: tc.ID, Content: err.Error(), IsError: true}
	}
	emit(time.Since(start).Milliseconds(), inSize, len(resp), "")
	return chat.ToolResult{CallID: tc.ID, Content: resp}
}

func (r *Runner) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}
