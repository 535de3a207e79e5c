package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jqian-ml/agent-finie/internal/marketdata"
	"github.com/jqian-ml/agent-finie/internal/validate"
)

const (
	minCompareTickers = 2
	maxCompareTickers = 6
)

type CompareStocksInput struct {
	Tickers []string `json:"tickers" jsonschema_description:"Two to six ticker symbols to compare side by side."`
	Focus   string   `json:"focus,omitempty" jsonschema_description:"Optional aspect to narrow the table to: valuation, growth, profitability or dividends. Omit for the full comparison."`
}

var CompareStocksInputSchema = GenerateSchema[CompareStocksInput]()

// CompareStocksDefinition wires compare_stocks to the market-data client.
// Snapshots are fetched sequentially; one failing ticker fails the call so the
// model retries with a corrected list instead of reasoning over partial rows.
func CompareStocksDefinition(md *marketdata.Client) ToolDefinition {
	return ToolDefinition{
		Name:        "compare_stocks",
		Description: "Compare 2-6 stocks side by side on price, valuation, margins, growth and dividend yield. An optional focus narrows the table to one aspect.",
		InputSchema: CompareStocksInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in CompareStocksInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			focus, err := validate.Focus(in.Focus)
			if err != nil {
				return "", err
			}

			// Normalise and dedupe before the range check so AAPL/aapl
			// counts as one ticker.
			tickers := make([]string, 0, len(in.Tickers))
			seen := map[string]struct{}{}
			for _, raw := range in.Tickers {
				ticker, err := validate.Ticker(raw)
				if err != nil {
					return "", err
				}
				if _, dup := seen[ticker]; dup {
					continue
				}
				seen[ticker] = struct{}{}
				tickers = append(tickers, ticker)
			}
			if len(tickers) < minCompareTickers || len(tickers) > maxCompareTickers {
				return "", validate.ToolError{Code: "ERR_INVALID_RANGE", Message: "tickers must list between 2 and 6 distinct symbols"}
			}

			snaps := make([]marketdata.Snapshot, 0, len(tickers))
			for _, ticker := range tickers {
				snap, err := md.Quote(ctx, ticker)
				if err != nil {
					return "", err
				}
				snaps = append(snaps, snap)
			}
			return renderComparison(snaps, focus), nil
		},
	}
}

// comparisonRows is the full metric catalogue. Rows with an empty focus always
// render; the rest render only for the matching focus (or when no focus is set).
var comparisonRows = []struct {
	label string
	focus string
	value func(marketdata.Snapshot) string
}{
	{"Name", "", func(s marketdata.Snapshot) string { return s.Name }},
	{"Price", "", func(s marketdata.Snapshot) string { return s.Price }},
	{"Change", "", func(s marketdata.Snapshot) string { return s.ChangePct }},
	{"Market cap", "valuation", func(s marketdata.Snapshot) string { return s.MarketCap }},
	{"Trailing P/E", "valuation", func(s marketdata.Snapshot) string { return s.TrailingPE }},
	{"Forward P/E", "valuation", func(s marketdata.Snapshot) string { return s.ForwardPE }},
	{"Profit margin", "profitability", func(s marketdata.Snapshot) string { return s.ProfitMargin }},
	{"Revenue growth", "growth", func(s marketdata.Snapshot) string { return s.RevenueGrowth }},
	{"Dividend yield", "dividends", func(s marketdata.Snapshot) string { return s.DividendYield }},
}

// renderComparison lays the snapshots out as metric rows by ticker columns,
// which reads better in a chat transcript than one block per ticker.
func renderComparison(snaps []marketdata.Snapshot, focus string) string {
	rows := comparisonRows[:0:0]
	for _, r := range comparisonRows {
		if focus == "" || r.focus == "" || r.focus == focus {
			rows = append(rows, r)
		}
	}

	// Column width per ticker: widest value in that column, floor of the header.
	widths := make([]int, len(snaps))
	for i, s := range snaps {
		widths[i] = len(s.Ticker)
		for _, r := range rows {
			if n := len(r.value(s)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	labelWidth := 0
	for _, r := range rows {
		if len(r.label) > labelWidth {
			labelWidth = len(r.label)
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-*s", labelWidth, ""))
	for i, s := range snaps {
		sb.WriteString(fmt.Sprintf("  %*s", widths[i], s.Ticker))
	}
	sb.WriteString("\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("%-*s", labelWidth, r.label))
		for i, s := range snaps {
			sb.WriteString(fmt.Sprintf("  %*s", widths[i], r.value(s)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
