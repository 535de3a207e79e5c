// Package chat defines the provider-neutral conversation model.
//
// Invariant:
//   - an assistant message carrying tool calls is answered by exactly one
//     user-role message whose tool results cover every call ID, and the two
//     stay adjacent within a turn.
package chat

import "encoding/json"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolResult is the outcome of one tool call, keyed by the call ID.
// IsError marks results that carry an error payload rather than data.
type ToolResult struct {
	CallID  string
	Content string
	IsError bool
}

// Message is a single conversation turn. Assistant messages may carry
// ToolCalls; the answering user message carries the matching ToolResults.
type Message struct {
	Role        Role
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// UserMessage returns a plain user text message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Text: text}
}

// AssistantMessage returns a plain assistant text message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Text: text}
}

// ToolResultsMessage wraps tool results in a user-role message, which is the
// wire-level convention both provider APIs reduce to.
func ToolResultsMessage(results ...ToolResult) Message {
	return Message{Role: RoleUser, ToolResults: results}
}

// HasToolCalls reports whether the message requests any tool invocations.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// HasToolResults reports whether the message carries any tool results.
func (m Message) HasToolResults() bool { return len(m.ToolResults) > 0 }
