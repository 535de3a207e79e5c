package tools

import (
	"context"
	"encoding/json"

	"github.com/jqian-ml/agent-finie/internal/marketdata"
	"github.com/jqian-ml/agent-finie/internal/validate"
)

type CompanyNewsInput struct {
	Ticker   string `json:"ticker" jsonschema_description:"Stock ticker symbol, e.g. TSLA."`
	DaysBack int    `json:"days_back,omitempty" jsonschema_description:"How many days of headlines to include, 1-90 (default 7)."`
}

var CompanyNewsInputSchema = GenerateSchema[CompanyNewsInput]()

// CompanyNewsDefinition wires get_company_news to the market-data client.
func CompanyNewsDefinition(md *marketdata.Client) ToolDefinition {
	return ToolDefinition{
		Name:        "get_company_news",
		Description: "Get recent news headlines for a ticker with publisher and date, filtered to a lookback window.",
		InputSchema: CompanyNewsInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in CompanyNewsInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			ticker, err := validate.Ticker(in.Ticker)
			if err != nil {
				return "", err
			}
			daysBack, err := validate.DaysBack(in.DaysBack)
			if err != nil {
				return "", err
			}
			return md.News(ctx, ticker, daysBack)
		},
	}
}
