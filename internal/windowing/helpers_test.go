package windowing_test

import (
	"encoding/json"

	"github.com/jqian-ml/agent-finie/internal/chat"
	"github.com/jqian-ml/agent-finie/internal/windowing"
)

// Assistant message carrying tool calls; empty args keep sizing deterministic.
func AsstCalls(ids ...string) chat.Message {
	m := chat.Message{Role: chat.RoleAssistant}
	for _, id := range ids {
		m.ToolCalls = append(m.ToolCalls, chat.ToolCall{ID: id, Name: "t", Arguments: json.RawMessage("")})
	}
	return m
}

// Tool-results message (no payload), with optional error flags ignored by grouping.
func Results(ids ...string) chat.Message {
	results := make([]chat.ToolResult, len(ids))
	for i, id := range ids {
		results[i] = chat.ToolResult{CallID: id}
	}
	return chat.ToolResultsMessage(results...)
}

// Tool-results message with a string payload - preferred in counter tests for
// deterministic sizing.
func ResultText(id, s string) chat.Message {
	return chat.ToolResultsMessage(chat.ToolResult{CallID: id, Content: s})
}

// groupsEqual is a small utility used by grouping tests.
func groupsEqual(got, want []windowing.Group) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i].Kind != want[i].Kind || got[i].Start != want[i].Start || got[i].End != want[i].End {
			return false
		}
	}
	return true
}
