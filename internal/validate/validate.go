// Package validate checks tool inputs before any network I/O happens.
package validate

import (
	"encoding/json"
	"regexp"
	"strings"
)

// ToolError is a machine-readable error body for surfacing back to the agent as JSON.
type ToolError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error returns a compact, single-line JSON string to keep tool_result payloads small.
func (e ToolError) Error() string {
	b, _ := json.Marshal(e)
	return string(b)
}

// Upstream symbols: letters and digits with optional class/share separators,
// e.g. AAPL, BRK.B, RDS-A. Max 10 runes after the leading letter.
var tickerPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

// validPeriods mirrors the range values the chart endpoint accepts.
var validPeriods = map[string]struct{}{
	"1d": {}, "5d": {}, "1mo": {}, "3mo": {}, "6mo": {},
	"1y": {}, "2y": {}, "5y": {}, "max": {},
}

// Ticker normalises a ticker symbol (trim, uppercase) and validates its shape.
// The shape check is deliberately loose; existence is decided upstream.
func Ticker(raw string) (string, error) {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return "", ToolError{Code: "ERR_INVALID_TICKER", Message: "ticker is required"}
	}
	if !tickerPattern.MatchString(t) {
		return "", ToolError{Code: "ERR_INVALID_TICKER", Message: "ticker must be 1-10 characters: letters, digits, '.' or '-'"}
	}
	return t, nil
}

// Period validates a price-history period, defaulting to "1mo" when empty.
func Period(raw string) (string, error) {
	p := strings.ToLower(strings.TrimSpace(raw))
	if p == "" {
		return "1mo", nil
	}
	if _, ok := validPeriods[p]; !ok {
		return "", ToolError{Code: "ERR_INVALID_PERIOD", Message: "period must be one of: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y, max"}
	}
	return p, nil
}

// DaysBack validates a news lookback window, defaulting to 7 and clamping to 90.
func DaysBack(n int) (int, error) {
	switch {
	case n == 0:
		return 7, nil
	case n < 0:
		return 0, ToolError{Code: "ERR_INVALID_RANGE", Message: "days_back must be positive"}
	case n > 90:
		return 90, nil
	}
	return n, nil
}

// Limit validates a result-count limit against a default and a hard cap.
func Limit(n, def, cap int) (int, error) {
	switch {
	case n == 0:
		return def, nil
	case n < 0:
		return 0, ToolError{Code: "ERR_INVALID_RANGE", Message: "limit must be positive"}
	case n > cap:
		return cap, nil
	}
	return n, nil
}

// validFocuses are the comparison aspects the side-by-side table can narrow to.
var validFocuses = map[string]struct{}{
	"valuation": {}, "growth": {}, "profitability": {}, "dividends": {},
}

// Focus validates a comparison focus. Empty means the full table.
func Focus(raw string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(raw))
	if f == "" {
		return "", nil
	}
	if _, ok := validFocuses[f]; !ok {
		return "", ToolError{Code: "ERR_INVALID_FOCUS", Message: "focus must be one of: valuation, growth, profitability, dividends"}
	}
	return f, nil
}

// formPattern accepts SEC form types such as 10-K, 10-Q, 8-K, S-1, 4, DEF 14A.
var formPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 /\-]{0,11}$`)

// FormType normalises an SEC form type. Empty means "any form".
func FormType(raw string) (string, error) {
	f := strings.ToUpper(strings.TrimSpace(raw))
	if f == "" {
		return "", nil
	}
	if !formPattern.MatchString(f) {
		return "", ToolError{Code: "ERR_INVALID_FORM", Message: "form_type does not look like an SEC form (e.g. 10-K, 10-Q, 8-K)"}
	}
	return f, nil
}
