// internal/provider/provider.go
package provider

import (
	"context"

	"github.com/shopspring/decimal"
)

// OptionalDecimal decodes a JSON number or numeric string into a decimal.
// null, absent, or unparseable values all decode to the not-present state, so
// one bad value never fails an entire payload.
type OptionalDecimal struct {
	decimal.NullDecimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *OptionalDecimal) UnmarshalJSON(data []byte) error {
	if err := d.NullDecimal.UnmarshalJSON(data); err != nil {
		d.NullDecimal = decimal.NullDecimal{}
	}
	return nil
}

// TokenItem is one wallet holding as reported by the indexing API. Every
// field except the token address is optional in the payload; absent numeric
// fields decode to a not-present OptionalDecimal, absent URLs to nil.
type TokenItem struct {
	TokenAddress             string          `json:"token_address"`
	Symbol                   string          `json:"symbol"`
	Name                     string          `json:"name"`
	Logo                     *string         `json:"logo"`
	Thumbnail                *string         `json:"thumbnail"`
	USDPrice                 OptionalDecimal `json:"usd_price"`
	USDPrice24hPercentChange OptionalDecimal `json:"usd_price_24hr_percent_change"`
	USDPrice24hUSDChange     OptionalDecimal `json:"usd_price_24hr_usd_change"`
	BalanceFormatted         OptionalDecimal `json:"balance_formatted"`
	USDValue                 OptionalDecimal `json:"usd_value"`
	USDValue24hUSDChange     OptionalDecimal `json:"usd_value_24hr_usd_change"`
}

// FetchOptions control server-side filtering of the token list.
type FetchOptions struct {
	ExcludeSpam       bool
	ExcludeUnverified bool
}

// DefaultFetchOptions excludes spam tokens and unverified contracts.
func DefaultFetchOptions() FetchOptions {
	return FetchOptions{ExcludeSpam: true, ExcludeUnverified: true}
}

// TokenProvider defines the interface for fetching a wallet's token holdings
// from the external indexing API.
type TokenProvider interface {
	FetchTokens(ctx context.Context, address, chain string, opts FetchOptions) ([]TokenItem, error)
}
