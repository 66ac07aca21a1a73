// Package domain holds the production tracking rules: month tokens, org
// visibility, rate math and the monthly and daily target aggregations.
// Nothing in here touches the database; callers feed it rows and a clock.
package domain

import "github.com/shopspring/decimal"

func init() {
	// Report figures are numbers on the wire, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}
