package marketdata

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jqian-ml/agent-finie/internal/validate"
	"github.com/tidwall/gjson"
)

// periodIntervals maps a history period to a chart bar interval, roughly the
// granularity an analyst wants at that horizon.
var periodIntervals = map[string]string{
	"1d": "5m", "5d": "30m", "1mo": "1d", "3mo": "1d", "6mo": "1d",
	"1y": "1wk", "2y": "1wk", "5y": "1mo", "max": "1mo",
}

// maxHistoryRows caps the rows rendered for the model; older rows are
// summarised by the period change line instead.
const maxHistoryRows = 30

// PriceHistory fetches OHLCV bars for ticker over period and renders them
// with a period-change summary line.
func (c *Client) PriceHistory(ctx context.Context, ticker, period string) (string, error) {
	interval := periodIntervals[period]
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s&events=div%%2Csplit",
		c.yahooBase, url.PathEscape(ticker), period, interval)

	b, err := c.getJSON(ctx, u)
	if err != nil {
		return "", err
	}

	result := gjson.GetBytes(b, "chart.result.0")
	if !result.Exists() {
		return "", validate.ToolError{Code: "ERR_NOT_FOUND", Message: "no price data for " + ticker + "; the ticker may be invalid or delisted"}
	}

	timestamps := result.Get("timestamp").Array()
	quote := result.Get("indicators.quote.0")
	opens := quote.Get("open").Array()
	highs := quote.Get("high").Array()
	lows := quote.Get("low").Array()
	closes := quote.Get("close").Array()
	volumes := quote.Get("volume").Array()
	if len(timestamps) == 0 || len(closes) == 0 {
		return "", validate.ToolError{Code: "ERR_NOT_FOUND", Message: "empty price series for " + ticker}
	}

	type bar struct {
		ts                     time.Time
		open, high, low, close float64
		volume                 int64
	}
	bars := make([]bar, 0, len(timestamps))
	for i, ts := range timestamps {
		if i >= len(closes) || !closes[i].Exists() || closes[i].Type == gjson.Null {
			continue // market holidays produce null bars
		}
		row := bar{ts: time.Unix(ts.Int(), 0).UTC(), close: closes[i].Float()}
		if i < len(opens) {
			row.open = opens[i].Float()
		}
		if i < len(highs) {
			row.high = highs[i].Float()
		}
		if i < len(lows) {
			row.low = lows[i].Float()
		}
		if i < len(volumes) {
			row.volume = volumes[i].Int()
		}
		bars = append(bars, row)
	}
	if len(bars) == 0 {
		return "", validate.ToolError{Code: "ERR_NOT_FOUND", Message: "empty price series for " + ticker}
	}

	first, last := bars[0], bars[len(bars)-1]
	meta := result.Get("meta")

	var sb strings.Builder
	fmt.Fprintf(&sb, "Price history for %s (period %s, interval %s)\n", ticker, period, interval)
	fmt.Fprintf(&sb, "Last close %.2f on %s | change over period %s",
		last.close, last.ts.Format("2006-01-02"), changePct(first.close, last.close))
	if hi, lo := meta.Get("fiftyTwoWeekHigh"), meta.Get("fiftyTwoWeekLow"); hi.Exists() && lo.Exists() {
		fmt.Fprintf(&sb, " | 52w range %.2f-%.2f", lo.Float(), hi.Float())
	}
	sb.WriteString("\n\n")

	start := 0
	if len(bars) > maxHistoryRows {
		start = len(bars) - maxHistoryRows
		fmt.Fprintf(&sb, "(%d earlier rows omitted)\n", start)
	}
	dateFormat := "2006-01-02"
	if interval == "5m" || interval == "30m" {
		dateFormat = "2006-01-02 15:04"
	}
	fmt.Fprintf(&sb, "%-16s %10s %10s %10s %10s %12s\n", "Date", "Open", "High", "Low", "Close", "Volume")
	for _, row := range bars[start:] {
		fmt.Fprintf(&sb, "%-16s %10.2f %10.2f %10.2f %10.2f %12d\n",
			row.ts.Format(dateFormat), row.open, row.high, row.low, row.close, row.volume)
	}
	return sb.String(), nil
}

// fundamentalsModules are the quoteSummary modules carrying valuation and
// profitability metrics.
const fundamentalsModules = "summaryDetail,financialData,defaultKeyStatistics,price"

// Fundamentals fetches valuation, profitability, and growth metrics for a
// ticker. When the primary source returns nothing and an Alpha Vantage key is
// configured, it falls back to the Alpha Vantage company overview.
func (c *Client) Fundamentals(ctx context.Context, ticker string) (string, error) {
	res, err := c.quoteSummary(ctx, ticker, fundamentalsModules)
	if err != nil || !res.Exists() {
		if c.avKey != "" {
			if s, avErr := c.alphaVantageOverview(ctx, ticker); avErr == nil {
				return s, nil
			}
		}
		if err != nil {
			return "", err
		}
		return "", validate.ToolError{Code: "ERR_NOT_FOUND", Message: "no fundamentals for " + ticker}
	}

	detail := res.Get("summaryDetail")
	fin := res.Get("financialData")
	stats := res.Get("defaultKeyStatistics")
	price := res.Get("price")

	var sb strings.Builder
	name := orNA(price.Get("longName"))
	fmt.Fprintf(&sb, "Fundamental metrics for %s (%s)\n", ticker, name)
	lines := []struct{ label, value string }{
		{"Current price", orNA(fin.Get("currentPrice.fmt"))},
		{"Market cap", orNA(detail.Get("marketCap.fmt"))},
		{"Trailing P/E", orNA(detail.Get("trailingPE.fmt"))},
		{"Forward P/E", orNA(detail.Get("forwardPE.fmt"))},
		{"PEG ratio", orNA(stats.Get("pegRatio.fmt"))},
		{"Trailing EPS", orNA(stats.Get("trailingEps.fmt"))},
		{"Profit margin", orNA(fin.Get("profitMargins.fmt"))},
		{"Gross margin", orNA(fin.Get("grossMargins.fmt"))},
		{"Return on equity", orNA(fin.Get("returnOnEquity.fmt"))},
		{"Debt/equity", orNA(fin.Get("debtToEquity.fmt"))},
		{"Total revenue", orNA(fin.Get("totalRevenue.fmt"))},
		{"Revenue growth (YoY)", orNA(fin.Get("revenueGrowth.fmt"))},
		{"Earnings growth (YoY)", orNA(fin.Get("earningsGrowth.fmt"))},
		{"Dividend yield", orNA(detail.Get("dividendYield.fmt"))},
		{"Beta", orNA(stats.Get("beta.fmt"))},
		{"Analyst view", orNA(fin.Get("recommendationKey"))},
	}
	for _, l := range lines {
		fmt.Fprintf(&sb, "  %-22s %s\n", l.label+":", l.value)
	}
	return sb.String(), nil
}

// earningsModules are the quoteSummary modules carrying EPS history and
// upcoming report dates.
const earningsModules = "earnings,earningsHistory,calendarEvents"

// Earnings fetches recent EPS results versus estimates, quarterly earnings,
// and the next report date.
func (c *Client) Earnings(ctx context.Context, ticker string) (string, error) {
	res, err := c.quoteSummary(ctx, ticker, earningsModules)
	if err != nil {
		return "", err
	}
	if !res.Exists() {
		return "", validate.ToolError{Code: "ERR_NOT_FOUND", Message: "no earnings data for " + ticker}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Earnings data for %s\n", ticker)

	history := res.Get("earningsHistory.history")
	if history.Exists() && len(history.Array()) > 0 {
		sb.WriteString("\nEPS surprises (recent quarters):\n")
		for _, h := range history.Array() {
			actual := h.Get("epsActual")
			estimate := h.Get("epsEstimate")
			line := fmt.Sprintf("  %s: actual %s vs est %s",
				orNA(h.Get("quarter.fmt")), orNA(actual.Get("fmt")), orNA(estimate.Get("fmt")))
			if sp := h.Get("surprisePercent.raw"); sp.Exists() {
				line += fmt.Sprintf(" (surprise %s)", pct(sp.Float()))
			}
			sb.WriteString(line + "\n")
		}
	}

	quarterly := res.Get("earnings.financialsChart.quarterly")
	if quarterly.Exists() && len(quarterly.Array()) > 0 {
		sb.WriteString("\nQuarterly results:\n")
		for _, q := range quarterly.Array() {
			fmt.Fprintf(&sb, "  %s: revenue %s, earnings %s\n",
				orNA(q.Get("date")), orNA(q.Get("revenue.fmt")), orNA(q.Get("earnings.fmt")))
		}
	}

	if next := res.Get("calendarEvents.earnings.earningsDate.0.fmt"); next.Exists() {
		fmt.Fprintf(&sb, "\nNext earnings date: %s\n", next.String())
	}

	out := sb.String()
	if strings.Count(out, "\n") <= 1 {
		return "", validate.ToolError{Code: "ERR_NOT_FOUND", Message: "no earnings data for " + ticker}
	}
	return out, nil
}

// maxNewsItems caps rendered headlines per request.
const maxNewsItems = 12

// News fetches recent headlines for ticker, keeping only items published
// within the last daysBack days.
func (c *Client) News(ctx context.Context, ticker string, daysBack int) (string, error) {
	u := fmt.Sprintf("%s/v1/finance/search?q=%s&newsCount=%d&quotesCount=0",
		c.yahooBase, url.QueryEscape(ticker), maxNewsItems)

	b, err := c.getJSON(ctx, u)
	if err != nil {
		return "", err
	}

	cutoff := c.now().AddDate(0, 0, -daysBack)
	var sb strings.Builder
	fmt.Fprintf(&sb, "Recent news for %s (last %d days)\n\n", ticker, daysBack)

	count := 0
	for _, item := range gjson.GetBytes(b, "news").Array() {
		published := time.Unix(item.Get("providerPublishTime").Int(), 0).UTC()
		if published.Before(cutoff) {
			continue
		}
		count++
		fmt.Fprintf(&sb, "%d. %s\n", count, orNA(item.Get("title")))
		fmt.Fprintf(&sb, "   %s | %s\n", orNA(item.Get("publisher")), published.Format("2006-01-02"))
		if link := item.Get("link"); link.Exists() {
			fmt.Fprintf(&sb, "   %s\n", link.String())
		}
	}
	if count == 0 {
		return fmt.Sprintf("No news found for %s in the last %d days.", ticker, daysBack), nil
	}
	return sb.String(), nil
}

// Snapshot is the per-ticker row used by the comparison tool.
type Snapshot struct {
	Ticker        string
	Name          string
	Price         string
	ChangePct     string
	MarketCap     string
	TrailingPE    string
	ForwardPE     string
	ProfitMargin  string
	RevenueGrowth string
	DividendYield string
}

// Quote fetches the compact valuation snapshot for one ticker.
func (c *Client) Quote(ctx context.Context, ticker string) (Snapshot, error) {
	res, err := c.quoteSummary(ctx, ticker, "price,summaryDetail,financialData")
	if err != nil {
		return Snapshot{}, err
	}
	if !res.Exists() {
		return Snapshot{}, validate.ToolError{Code: "ERR_NOT_FOUND", Message: "no quote for " + ticker}
	}
	price := res.Get("price")
	detail := res.Get("summaryDetail")
	fin := res.Get("financialData")
	return Snapshot{
		Ticker:        ticker,
		Name:          orNA(price.Get("longName")),
		Price:         orNA(price.Get("regularMarketPrice.fmt")),
		ChangePct:     orNA(price.Get("regularMarketChangePercent.fmt")),
		MarketCap:     orNA(price.Get("marketCap.fmt")),
		TrailingPE:    orNA(detail.Get("trailingPE.fmt")),
		ForwardPE:     orNA(detail.Get("forwardPE.fmt")),
		ProfitMargin:  orNA(fin.Get("profitMargins.fmt")),
		RevenueGrowth: orNA(fin.Get("revenueGrowth.fmt")),
		DividendYield: orNA(detail.Get("dividendYield.fmt")),
	}, nil
}

// quoteSummary fetches the requested quoteSummary modules and returns the
// first result object.
func (c *Client) quoteSummary(ctx context.Context, ticker, modules string) (gjson.Result, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.yahooBase, url.PathEscape(ticker), url.QueryEscape(modules))
	b, err := c.getJSON(ctx, u)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.GetBytes(b, "quoteSummary.result.0"), nil
}
