package tools

import (
	"context"
	"encoding/json"

	"github.com/jqian-ml/agent-finie/internal/marketdata"
	"github.com/jqian-ml/agent-finie/internal/validate"
)

type FundamentalsInput struct {
	Ticker string `json:"ticker" jsonschema_description:"Stock ticker symbol, e.g. MSFT."`
}

var FundamentalsInputSchema = GenerateSchema[FundamentalsInput]()

// FundamentalsDefinition wires get_fundamental_metrics to the market-data client.
func FundamentalsDefinition(md *marketdata.Client) ToolDefinition {
	return ToolDefinition{
		Name:        "get_fundamental_metrics",
		Description: "Get valuation and profitability fundamentals for a ticker: market cap, P/E ratios, margins, revenue growth, debt and dividend yield.",
		InputSchema: FundamentalsInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in FundamentalsInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			ticker, err := validate.Ticker(in.Ticker)
			if err != nil {
				return "", err
			}
			return md.Fundamentals(ctx, ticker)
		},
	}
}
