package metrics

import "sync"

// TokenCount is the input/output token cost of a single provider request.
type TokenCount struct {
	InputTokens  int64
	OutputTokens int64
}

// Usage accumulates token counts across a session. Safe for concurrent use.
type Usage struct {
	mu           sync.Mutex
	requests     int
	inputTokens  int64
	outputTokens int64
}

// Add records the cost of one completed provider request.
func (u *Usage) Add(tc TokenCount) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.requests++
	u.inputTokens += tc.InputTokens
	u.outputTokens += tc.OutputTokens
}

// Totals returns the request count and accumulated token totals.
func (u *Usage) Totals() (requests int, input, output int64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.requests, u.inputTokens, u.outputTokens
}
