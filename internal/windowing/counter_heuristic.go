package windowing

import (
	"unicode/utf8"

	"github.com/jqian-ml/agent-finie/internal/chat"
)

// TokenCounter estimates input-token cost for messages or groups.
type TokenCounter interface {
	CountMessage(m chat.Message) int
	CountGroup(g Group, all []chat.Message) int
}

// HeuristicCounter is the current default deterministic estimator.
// Rules:
//   - message text: rune count
//   - tool calls: rune count of the raw JSON arguments
//   - tool results: rune count of the result content
//
// Each counted part carries a small fixed overhead to account for minimal
// formatting.
type HeuristicCounter struct{}

// Fixed per-block overhead for deterministic counts; changing this requires updating the guard test.
const blockOverhead = 4

func (HeuristicCounter) CountMessage(m chat.Message) int {
	total := 0
	if m.Text != "" {
		total += utf8.RuneCountInString(m.Text) + blockOverhead
	}
	for _, tc := range m.ToolCalls {
		total += utf8.RuneCountInString(tc.Name) + utf8.RuneCountInString(string(tc.Arguments)) + blockOverhead
	}
	for _, tr := range m.ToolResults {
		total += utf8.RuneCountInString(tr.Content) + blockOverhead
	}
	return total
}

func (h HeuristicCounter) CountGroup(g Group, all []chat.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}
