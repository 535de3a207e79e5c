package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/packages/param"
	"github.com/openai/openai-go/v2/shared/constant"

	"github.com/jqian-ml/agent-finie/internal/chat"
	"github.com/jqian-ml/agent-finie/internal/metrics"
	"github.com/jqian-ml/agent-finie/tools"
)

const DefaultOpenAIModel = "gpt-4o"

// OpenAI adapts the chat-completions API to the Completer contract.
type OpenAI struct {
	client openai.Client
	usage  *metrics.Usage
}

// NewOpenAI returns an adapter using the given API key. Extra request options
// let tests point the client at a local transport.
func NewOpenAI(apiKey string, usage *metrics.Usage, opts ...option.RequestOption) *OpenAI {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAI{client: openai.NewClient(opts...), usage: usage}
}

func (p *OpenAI) Complete(ctx context.Context, req Request) (chat.Message, error) {
	params := openai.ChatCompletionNewParams{
		Model:    req.Model,
		Messages: toOpenAIMessages(req.System, req.Messages),
		Tools:    toOpenAITools(req.Tools),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = param.NewOpt(req.MaxTokens)
	}
	if req.Temperature > 0 {
		params.Temperature = param.NewOpt(req.Temperature)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return chat.Message{}, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return chat.Message{}, fmt.Errorf("openai completion: response has no choices")
	}
	if p.usage != nil {
		p.usage.Add(metrics.TokenCount{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		})
	}

	out := chat.Message{Role: chat.RoleAssistant, Text: resp.Choices[0].Message.Content}
	for _, tc := range resp.Choices[0].Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, chat.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return out, nil
}

// toOpenAIMessages flattens the neutral transcript into chat-completions
// message unions. Tool results become one tool-role message per result.
func toOpenAIMessages(system string, msgs []chat.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: param.NewOpt(system),
				},
				Role: constant.ValueOf[constant.System](),
			},
		})
	}
	for _, m := range msgs {
		switch {
		case m.Role == chat.RoleAssistant:
			asst := &openai.ChatCompletionAssistantMessageParam{
				Role: constant.ValueOf[constant.Assistant](),
			}
			if m.Text != "" {
				asst.Content = openai.ChatCompletionAssistantMessageParamContentUnion{
					OfString: param.NewOpt(m.Text),
				}
			}
			for _, tc := range m.ToolCalls {
				arguments := string(tc.Arguments)
				if arguments == "" {
					arguments = "{}"
				}
				asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
					OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
						ID: tc.ID,
						Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
							Name:      tc.Name,
							Arguments: arguments,
						},
						Type: constant.ValueOf[constant.Function](),
					},
				})
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{OfAssistant: asst})
		case m.HasToolResults():
			for _, tr := range m.ToolResults {
				out = append(out, openai.ChatCompletionMessageParamUnion{
					OfTool: &openai.ChatCompletionToolMessageParam{
						Content: openai.ChatCompletionToolMessageParamContentUnion{
							OfString: param.NewOpt(tr.Content),
						},
						ToolCallID: tr.CallID,
						Role:       constant.ValueOf[constant.Tool](),
					},
				})
			}
			if m.Text != "" {
				out = append(out, openAIUserMessage(m.Text))
			}
		default:
			out = append(out, openAIUserMessage(m.Text))
		}
	}
	return out
}

func openAIUserMessage(text string) openai.ChatCompletionMessageParamUnion {
	return openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: param.NewOpt(text),
			},
			Role: constant.ValueOf[constant.User](),
		},
	}
}

func toOpenAITools(defs []tools.ToolDefinition) []openai.ChatCompletionToolUnionParam {
	out := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, d := range defs {
		out = append(out, openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        d.Name,
			Description: param.NewOpt(d.Description),
			Parameters:  schemaToFunctionParameters(d.InputSchema),
		}))
	}
	return out
}

// schemaToFunctionParameters converts a reflected JSON schema to the loose
// map shape the chat-completions API expects.
func schemaToFunctionParameters(s any) openai.FunctionParameters {
	b, err := json.Marshal(s)
	if err != nil {
		return openai.FunctionParameters{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return openai.FunctionParameters{"type": "object"}
	}
	return openai.FunctionParameters(m)
}
