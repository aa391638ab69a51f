// internal/domain/asset.go
package domain

import "github.com/shopspring/decimal"

// AggregatedAsset sums a user's holdings of one (symbol, chain) pair across
// every wallet they track. Descriptive fields are seeded from the first
// holding seen for the pair; the totals accumulate over all of them.
type AggregatedAsset struct {
	Symbol                string              `json:"symbol"`
	Name                  string              `json:"name"`
	Chain                 string              `json:"chain"`
	Price                 decimal.NullDecimal `json:"price"`
	Price24hChangePercent decimal.NullDecimal `json:"price_24h_change_percent"`
	Price24hChangeUSD     decimal.NullDecimal `json:"price_24h_change_usd"`
	Logo                  *string             `json:"logo"`
	Thumbnail             *string             `json:"thumbnail"`
	TotalAmount           decimal.Decimal     `json:"total_amount"`
	TotalValue            decimal.Decimal     `json:"total_value"`
	TotalValue24hChange   decimal.Decimal     `json:"total_value_24h_change"`
}
