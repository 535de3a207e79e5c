package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/jqian-ml/agent-finie/internal/chat"
	"github.com/jqian-ml/agent-finie/internal/metrics"
	"github.com/jqian-ml/agent-finie/internal/provider"
)

const anthropicToolUseBody = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-3-7-sonnet-latest",
	"content": [
		{"type": "text", "text": "Let me pull the news."},
		{"type": "tool_use", "id": "tu_1", "name": "get_company_news", "input": {"ticker": "TSLA"}}
	],
	"stop_reason": "tool_use",
	"usage": {"input_tokens": 33, "output_tokens": 11}
}`

func newAnthropic(fake *fakeTransport, usage *metrics.Usage) *provider.Anthropic {
	return provider.NewAnthropic("test-key", usage,
		option.WithHTTPClient(&http.Client{Transport: fake}))
}

func TestAnthropic_ParsesTextAndToolUse(t *testing.T) {
	usage := &metrics.Usage{}
	p := newAnthropic(&fakeTransport{respStatus: 200, respBody: []byte(anthropicToolUseBody)}, usage)

	msg, err := p.Complete(context.Background(), provider.Request{
		Model:    provider.DefaultAnthropicModel,
		Messages: []chat.Message{chat.UserMessage("any TSLA news?")},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if msg.Role != chat.RoleAssistant || msg.Text != "Let me pull the news." {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(msg.ToolCalls))
	}
	tc := msg.ToolCalls[0]
	if tc.ID != "tu_1" || tc.Name != "get_company_news" {
		t.Fatalf("unexpected tool call: %+v", tc)
	}
	var args map[string]any
	if err := json.Unmarshal(tc.Arguments, &args); err != nil || args["ticker"] != "TSLA" {
		t.Fatalf("unexpected arguments: %s (err=%v)", tc.Arguments, err)
	}

	requests, in, out := usage.Totals()
	if requests != 1 || in != 33 || out != 11 {
		t.Fatalf("unexpected usage: requests=%d in=%d out=%d", requests, in, out)
	}
}

func TestAnthropic_EncodesSystemToolsAndResults(t *testing.T) {
	capReq := &capture{}
	p := newAnthropic(&fakeTransport{respStatus: 200, respBody: []byte(anthropicToolUseBody), captured: capReq}, nil)

	transcript := []chat.Message{
		chat.UserMessage("any TSLA news?"),
		{
			Role: chat.RoleAssistant,
			ToolCalls: []chat.ToolCall{
				{ID: "tu_1", Name: "get_company_news", Arguments: json.RawMessage(`{"ticker":"TSLA"}`)},
			},
		},
		chat.ToolResultsMessage(chat.ToolResult{CallID: "tu_1", Content: "- headline", IsError: false}),
	}
	_, err := p.Complete(context.Background(), provider.Request{
		Model:     provider.DefaultAnthropicModel,
		System:    "You are a financial analyst.",
		Messages:  transcript,
		Tools:     testToolDefs(),
		MaxTokens: 512,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if capReq.body == nil {
		t.Fatal("no request captured")
	}

	type contentItem struct {
		Type      string          `json:"type"`
		Text      string          `json:"text,omitempty"`
		ID        string          `json:"id,omitempty"`
		Name      string          `json:"name,omitempty"`
		Input     json.RawMessage `json:"input,omitempty"`
		ToolUseID string          `json:"tool_use_id,omitempty"`
	}
	var rb struct {
		Model     string `json:"model"`
		MaxTokens int64  `json:"max_tokens"`
		System    []struct {
			Text string `json:"text"`
		} `json:"system"`
		Messages []struct {
			Role    string        `json:"role"`
			Content []contentItem `json:"content"`
		} `json:"messages"`
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Properties map[string]any `json:"properties"`
			} `json:"input_schema"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(capReq.body, &rb); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, string(capReq.body))
	}

	if rb.MaxTokens != 512 {
		t.Fatalf("unexpected max_tokens: %d", rb.MaxTokens)
	}
	if len(rb.System) != 1 || rb.System[0].Text != "You are a financial analyst." {
		t.Fatalf("unexpected system: %+v", rb.System)
	}
	if len(rb.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(rb.Messages))
	}
	asst := rb.Messages[1]
	if asst.Role != "assistant" || len(asst.Content) == 0 || asst.Content[0].Type != "tool_use" || asst.Content[0].ID != "tu_1" {
		t.Fatalf("unexpected assistant message: %+v", asst)
	}
	results := rb.Messages[2]
	if results.Role != "user" || len(results.Content) == 0 || results.Content[0].Type != "tool_result" || results.Content[0].ToolUseID != "tu_1" {
		t.Fatalf("unexpected results message: %+v", results)
	}
	if len(rb.Tools) != 1 || rb.Tools[0].Name != "get_stock_price" {
		t.Fatalf("unexpected tools: %+v", rb.Tools)
	}
	if _, ok := rb.Tools[0].InputSchema.Properties["ticker"]; !ok {
		t.Fatalf("tool schema missing ticker property: %+v", rb.Tools[0].InputSchema)
	}
}
