// Package tools defines tool contracts and implementations.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Market tools: get_stock_price, get_fundamental_metrics,
//     get_earnings_data, get_company_news, compare_stocks, get_sec_filings.
//   - Handlers validate inputs before any network call and surface
//     bad inputs as JSON tool errors rather than aborting the turn.
package tools
