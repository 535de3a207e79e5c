package tools

import (
	"context"
	"encoding/json"

	"github.com/jqian-ml/agent-finie/internal/marketdata"
	"github.com/jqian-ml/agent-finie/internal/validate"
)

const (
	defaultFilingsLimit = 8
	maxFilingsLimit     = 20
)

type SECFilingsInput struct {
	Ticker   string `json:"ticker" jsonschema_description:"Stock ticker symbol, e.g. AAPL."`
	FormType string `json:"form_type,omitempty" jsonschema_description:"Optional SEC form filter such as 10-K, 10-Q or 8-K. Empty means all forms."`
	Limit    int    `json:"limit,omitempty" jsonschema_description:"Maximum filings to return, 1-20 (default 8)."`
}

var SECFilingsInputSchema = GenerateSchema[SECFilingsInput]()

// SECFilingsDefinition wires get_sec_filings to the market-data client.
func SECFilingsDefinition(md *marketdata.Client) ToolDefinition {
	return ToolDefinition{
		Name:        "get_sec_filings",
		Description: "List recent SEC filings for a ticker from EDGAR, optionally filtered by form type, with filing dates and document links.",
		InputSchema: SECFilingsInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in SECFilingsInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", err
			}
			ticker, err := validate.Ticker(in.Ticker)
			if err != nil {
				return "", err
			}
			formType, err := validate.FormType(in.FormType)
			if err != nil {
				return "", err
			}
			limit, err := validate.Limit(in.Limit, defaultFilingsLimit, maxFilingsLimit)
			if err != nil {
				return "", err
			}
			return md.Filings(ctx, ticker, formType, limit)
		},
	}
}
