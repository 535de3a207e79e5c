package provider_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/openai/openai-go/v2/option"

	"github.com/jqian-ml/agent-finie/internal/chat"
	"github.com/jqian-ml/agent-finie/internal/metrics"
	"github.com/jqian-ml/agent-finie/internal/provider"
)

const openAIToolCallBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"choices": [{
		"index": 0,
		"finish_reason": "tool_calls",
		"message": {
			"role": "assistant",
			"content": "Checking the price.",
			"tool_calls": [{
				"id": "call_1",
				"type": "function",
				"function": {"name": "get_stock_price", "arguments": "{\"ticker\":\"AAPL\"}"}
			}]
		}
	}],
	"usage": {"prompt_tokens": 42, "completion_tokens": 9, "total_tokens": 51}
}`

func newOpenAI(fake *fakeTransport, usage *metrics.Usage) *provider.OpenAI {
	return provider.NewOpenAI("test-key", usage,
		option.WithHTTPClient(&http.Client{Transport: fake}))
}

func TestOpenAI_ParsesTextAndToolCalls(t *testing.T) {
	usage := &metrics.Usage{}
	p := newOpenAI(&fakeTransport{respStatus: 200, respBody: []byte(openAIToolCallBody)}, usage)

	msg, err := p.Complete(context.Background(), provider.Request{
		Model:    "gpt-4o",
		Messages: []chat.Message{chat.UserMessage("price of AAPL?")},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if msg.Role != chat.RoleAssistant || msg.Text != "Checking the price." {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(msg.ToolCalls))
	}
	tc := msg.ToolCalls[0]
	if tc.ID != "call_1" || tc.Name != "get_stock_price" || string(tc.Arguments) != `{"ticker":"AAPL"}` {
		t.Fatalf("unexpected tool call: %+v", tc)
	}

	requests, in, out := usage.Totals()
	if requests != 1 || in != 42 || out != 9 {
		t.Fatalf("unexpected usage: requests=%d in=%d out=%d", requests, in, out)
	}
}

func TestOpenAI_EncodesSystemToolsAndResults(t *testing.T) {
	capReq := &capture{}
	p := newOpenAI(&fakeTransport{respStatus: 200, respBody: []byte(openAIToolCallBody), captured: capReq}, nil)

	transcript := []chat.Message{
		chat.UserMessage("price of AAPL?"),
		{
			Role: chat.RoleAssistant,
			ToolCalls: []chat.ToolCall{
				{ID: "call_1", Name: "get_stock_price", Arguments: json.RawMessage(`{"ticker":"AAPL"}`)},
			},
		},
		chat.ToolResultsMessage(chat.ToolResult{CallID: "call_1", Content: "AAPL: 232.14"}),
	}
	_, err := p.Complete(context.Background(), provider.Request{
		Model:       "gpt-4o",
		System:      "You are a financial analyst.",
		Messages:    transcript,
		Tools:       testToolDefs(),
		MaxTokens:   512,
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if capReq.body == nil {
		t.Fatal("no request captured")
	}

	var rb struct {
		Model    string  `json:"model"`
		MaxTok   int64   `json:"max_tokens"`
		Temp     float64 `json:"temperature"`
		Messages []struct {
			Role       string `json:"role"`
			Content    any    `json:"content"`
			ToolCallID string `json:"tool_call_id,omitempty"`
			ToolCalls  []struct {
				ID       string `json:"id"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls,omitempty"`
		} `json:"messages"`
		Tools []struct {
			Type     string `json:"type"`
			Function struct {
				Name        string         `json:"name"`
				Description string         `json:"description"`
				Parameters  map[string]any `json:"parameters"`
			} `json:"function"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(capReq.body, &rb); err != nil {
		t.Fatalf("unmarshal body: %v\nbody=%s", err, string(capReq.body))
	}

	if rb.Model != "gpt-4o" || rb.MaxTok != 512 || rb.Temp != 0.2 {
		t.Fatalf("unexpected sampling params: %+v", rb)
	}
	roles := make([]string, len(rb.Messages))
	for i, m := range rb.Messages {
		roles[i] = m.Role
	}
	want := []string{"system", "user", "assistant", "tool"}
	if len(roles) != len(want) {
		t.Fatalf("unexpected roles: %v", roles)
	}
	for i := range want {
		if roles[i] != want[i] {
			t.Fatalf("role mismatch at %d: got %v want %v", i, roles, want)
		}
	}
	asst := rb.Messages[2]
	if len(asst.ToolCalls) != 1 || asst.ToolCalls[0].ID != "call_1" || asst.ToolCalls[0].Function.Name != "get_stock_price" {
		t.Fatalf("unexpected assistant tool calls: %+v", asst.ToolCalls)
	}
	toolMsg := rb.Messages[3]
	if toolMsg.ToolCallID != "call_1" || toolMsg.Content != "AAPL: 232.14" {
		t.Fatalf("unexpected tool message: %+v", toolMsg)
	}

	if len(rb.Tools) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(rb.Tools))
	}
	fn := rb.Tools[0].Function
	if rb.Tools[0].Type != "function" || fn.Name != "get_stock_price" || fn.Description == "" {
		t.Fatalf("unexpected tool encoding: %+v", rb.Tools[0])
	}
	props, ok := fn.Parameters["properties"].(map[string]any)
	if !ok {
		t.Fatalf("tool parameters missing properties: %+v", fn.Parameters)
	}
	if _, ok := props["ticker"]; !ok {
		t.Fatalf("tool parameters missing ticker property: %+v", props)
	}
}

func TestOpenAI_NoChoicesIsError(t *testing.T) {
	p := newOpenAI(&fakeTransport{respStatus: 200, respBody: []byte(`{"id":"chatcmpl-2","object":"chat.completion","choices":[]}`)}, nil)
	_, err := p.Complete(context.Background(), provider.Request{
		Model:    "gpt-4o",
		Messages: []chat.Message{chat.UserMessage("hi")},
	})
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
