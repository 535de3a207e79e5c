package tools

import (
	"context"
	"encoding/json"

	"github.com/jqian-ml/agent-finie/internal/marketdata"
	"github.com/jqian-ml/agent-finie/internal/validate"
)

type StockPriceInput struct {
	Ticker string `json:"ticker" jsonschema_description:"Stock ticker symbol, e.g. AAPL or BRK.B."`
	Period string `json:"period,omitempty" jsonschema_description:"History range: 1d, 5d, 1mo, 3mo, 6mo, 1y, 2y, 5y or max (default 1mo)."`
}

var StockPriceInputSchema = GenerateSchema[StockPriceInput]()

// StockPriceDefinition wires get_stock_price to the market-data client.
func StockPriceDefinition(md *marketdata.Client) ToolDefinition {
	return ToolDefinition{
		Name:        "get_stock_price",
		Description: "Get current price and recent price history for a stock ticker, including change over the period and the 52-week range.",
		InputSchema: StockPriceInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in StockPriceInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			ticker, err := validate.Ticker(in.Ticker)
			if err != nil {
				return "", err
			}
			period, err := validate.Period(in.Period)
			if err != nil {
				return "", err
			}
			return md.PriceHistory(ctx, ticker, period)
		},
	}
}
