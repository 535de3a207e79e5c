package tools

import "github.com/jqian-ml/agent-finie/internal/marketdata"

// Registry returns all tool definitions wired for the agent
func Registry(md *marketdata.Client) []ToolDefinition {
	return []ToolDefinition{
		StockPriceDefinition(md),
		FundamentalsDefinition(md),
		EarningsDefinition(md),
		CompanyNewsDefinition(md),
		CompareStocksDefinition(md),
		SECFilingsDefinition(md),
	}
}
