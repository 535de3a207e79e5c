package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jqian-ml/agent-finie/internal/validate"
	"github.com/tidwall/gjson"
)

// alphaVantageOverview fetches the company overview used as a fundamentals
// fallback. Alpha Vantage returns 200 with an empty object for unknown
// tickers and a "Note" field when throttled.
func (c *Client) alphaVantageOverview(ctx context.Context, ticker string) (string, error) {
	u := fmt.Sprintf("%s/query?function=OVERVIEW&symbol=%s&apikey=%s",
		c.avBase, url.QueryEscape(ticker), url.QueryEscape(c.avKey))

	b, err := c.getJSON(ctx, u)
	if err != nil {
		return "", err
	}

	if note := gjson.GetBytes(b, "Note"); note.Exists() {
		return "", validate.ToolError{Code: "ERR_RATE_LIMITED", Message: "Alpha Vantage rate limit; try again in a moment"}
	}
	doc := gjson.ParseBytes(b)
	if !doc.Get("Symbol").Exists() {
		return "", validate.ToolError{Code: "ERR_NOT_FOUND", Message: "no Alpha Vantage overview for " + ticker}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Fundamental metrics for %s (%s) [source: Alpha Vantage]\n",
		ticker, orNA(doc.Get("Name")))
	// Market cap and revenue come back as raw integer strings; abbreviate them.
	lines := []struct {
		label, path string
		render      func(gjson.Result) string
	}{
		{"Sector", "Sector", nil},
		{"Market cap", "MarketCapitalization", orAbbrev},
		{"Trailing P/E", "PERatio", nil},
		{"Forward P/E", "ForwardPE", nil},
		{"PEG ratio", "PEGRatio", nil},
		{"EPS (TTM)", "EPS", nil},
		{"Profit margin", "ProfitMargin", nil},
		{"Return on equity (TTM)", "ReturnOnEquityTTM", nil},
		{"Revenue (TTM)", "RevenueTTM", orAbbrev},
		{"Revenue growth (YoY)", "QuarterlyRevenueGrowthYOY", nil},
		{"Dividend yield", "DividendYield", nil},
		{"Beta", "Beta", nil},
		{"52w high", "52WeekHigh", nil},
		{"52w low", "52WeekLow", nil},
	}
	for _, l := range lines {
		render := l.render
		if render == nil {
			render = orNA
		}
		fmt.Fprintf(&sb, "  %-24s %s\n", l.label+":", render(doc.Get(l.path)))
	}
	return sb.String(), nil
}
