package windowing

import (
	"fmt"
	"os"

	"github.com/jqian-ml/agent-finie/internal/chat"
)

// GroupKind denotes the atomic unit type when preparing a send window.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupPair
)

// Group describes a contiguous span of messages [Start, End) in the original slice.
// Kind indicates whether it is a singleton or a validated pair.
type Group struct {
	Kind  GroupKind
	Start int // inclusive index into msgs
	End   int // exclusive index into msgs
}

// GroupBlocks groups messages into atomic units that preserve tool-call pairs.
// Invariants:
//   - A pair is exactly two adjacent messages: assistant(tool calls) then
//     user(tool results).
//   - Parallel completeness: all call IDs in the assistant message must appear
//     as result IDs in the following user message.
//   - Results with IsError=true are treated the same for grouping.
func GroupBlocks(msgs []chat.Message) []Group {
	groups := make([]Group, 0, len(msgs))
	for i := 0; i < len(msgs); {
		m := msgs[i]
		if m.Role == chat.RoleAssistant && m.HasToolCalls() {
			callIDs := collectCallIDs(m)
			if i+1 < len(msgs) && msgs[i+1].Role == chat.RoleUser && msgs[i+1].HasToolResults() {
				resultIDs := collectResultIDs(msgs[i+1])
				if coversAll(resultIDs, callIDs) && noExtraResults(resultIDs, callIDs) {
					groups = append(groups, Group{Kind: GroupPair, Start: i, End: i + 2})
					i += 2
					continue
				}
				// Reason-coded verbose logs (behind FINIE_VERBOSE_WINDOW_LOGS)
				reason := "extra_results"
				if !coversAll(resultIDs, callIDs) {
					reason = "missing_results"
				}
				vlogf("exclude pair: reason=%s idx=%d", reason, i)
			} else {
				vlogf("exclude pair: reason=not_followed_by_results idx=%d", i)
			}
		}
		// Fallback: singleton
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}

// Helpers

func collectCallIDs(m chat.Message) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, tc := range m.ToolCalls {
		if tc.ID != "" {
			ids[tc.ID] = struct{}{}
		}
	}
	return ids
}

func collectResultIDs(m chat.Message) map[string]struct{} {
	ids := make(map[string]struct{})
	for _, tr := range m.ToolResults {
		if tr.CallID != "" {
			ids[tr.CallID] = struct{}{}
		}
	}
	return ids
}

// coversAll checks that every id in required is present in have.
func coversAll(have, required map[string]struct{}) bool {
	for id := range required {
		if _, ok := have[id]; !ok {
			return false
		}
	}
	return true
}

// noExtraResults enforces that the user didn't return results that do not
// correspond to any call in the assistant turn. Keeping this strict avoids
// mismatches and simplifies downstream logic.
func noExtraResults(have, allowed map[string]struct{}) bool {
	for id := range have {
		if _, ok := allowed[id]; !ok {
			return false
		}
	}
	return true
}

// minimal verbose logging when FINIE_VERBOSE_WINDOW_LOGS=1
var verbose = os.Getenv("FINIE_VERBOSE_WINDOW_LOGS") == "1"

func vlogf(format string, args ...any) {
	if verbose {
		fmt.Printf("[windowing] "+format+"\n", args...)
	}
}
