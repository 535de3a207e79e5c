package tools

import (
	"context"
	"encoding/json"

	"github.com/jqian-ml/agent-finie/internal/marketdata"
	"github.com/jqian-ml/agent-finie/internal/validate"
)

type EarningsInput struct {
	Ticker string `json:"ticker" jsonschema_description:"Stock ticker symbol, e.g. NVDA."`
}

var EarningsInputSchema = GenerateSchema[EarningsInput]()

// EarningsDefinition wires get_earnings_data to the market-data client.
func EarningsDefinition(md *marketdata.Client) ToolDefinition {
	return ToolDefinition{
		Name:        "get_earnings_data",
		Description: "Get recent quarterly earnings for a ticker: reported vs estimated EPS with surprise percentages, and the next scheduled earnings date.",
		InputSchema: EarningsInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in EarningsInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			ticker, err := validate.Ticker(in.Ticker)
			if err != nil {
				return "", err
			}
			return md.Earnings(ctx, ticker)
		},
	}
}
