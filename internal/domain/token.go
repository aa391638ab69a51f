// internal/domain/token.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Token holds canonical, chain-scoped token metadata, unique per
// (address, chain). Price fields are last-write-wins from the most recent
// sync of any wallet holding the token.
type Token struct {
	ID                       int64               `db:"id" json:"id"`
	Address                  string              `db:"address" json:"address"`
	Chain                    string              `db:"chain" json:"chain"`
	Symbol                   string              `db:"symbol" json:"symbol"`
	Name                     string              `db:"name" json:"name"`
	Logo                     *string             `db:"logo" json:"logo"`
	Thumbnail                *string             `db:"thumbnail" json:"thumbnail"`
	USDPrice                 decimal.NullDecimal `db:"usd_price" json:"usd_price"`
	USDPrice24hPercentChange decimal.NullDecimal `db:"usd_price_24h_percent_change" json:"usd_price_24h_percent_change"`
	USDPrice24hUSDChange     decimal.NullDecimal `db:"usd_price_24h_usd_change" json:"usd_price_24h_usd_change"`
	UpdatedAt                time.Time           `db:"updated_at" json:"-"`
}

// WalletToken is the per-wallet holding record, unique per
// (wallet, token, chain). The set for a (wallet, chain) pair is always a
// complete snapshot from the most recent successful sync, replaced wholesale
// on every sync.
type WalletToken struct {
	ID                    int64               `db:"id" json:"id"`
	WalletID              int64               `db:"wallet_id" json:"wallet_id"`
	TokenID               int64               `db:"token_id" json:"token_id"`
	Chain                 string              `db:"chain" json:"chain"`
	TokenBalanceFormatted decimal.NullDecimal `db:"token_balance_formatted" json:"token_balance_formatted"`
	USDValue              decimal.NullDecimal `db:"usd_value" json:"usd_value"`
	USDValue24hUSDChange  decimal.NullDecimal `db:"usd_value_24h_usd_change" json:"usd_value_24h_usd_change"`
}

// TokenDetail is the token metadata embedded in holding listings.
type TokenDetail struct {
	Address                  string              `db:"address" json:"address"`
	Chain                    string              `db:"chain" json:"chain"`
	Symbol                   string              `db:"symbol" json:"symbol"`
	Name                     string              `db:"name" json:"name"`
	Logo                     *string             `db:"logo" json:"logo"`
	Thumbnail                *string             `db:"thumbnail" json:"thumbnail"`
	USDPrice                 decimal.NullDecimal `db:"usd_price" json:"usd_price"`
	USDPrice24hPercentChange decimal.NullDecimal `db:"usd_price_24h_percent_change" json:"usd_price_24h_percent_change"`
	USDPrice24hUSDChange     decimal.NullDecimal `db:"usd_price_24h_usd_change" json:"usd_price_24h_usd_change"`
}

// WalletTokenDetail is a WalletToken row joined with its token metadata,
// returned by holding listings.
type WalletTokenDetail struct {
	ID                    int64               `db:"id" json:"id"`
	WalletID              int64               `db:"wallet_id" json:"wallet_id"`
	Chain                 string              `db:"chain" json:"chain"`
	TokenBalanceFormatted decimal.NullDecimal `db:"token_balance_formatted" json:"token_balance_formatted"`
	USDValue              decimal.NullDecimal `db:"usd_value" json:"usd_value"`
	USDValue24hUSDChange  decimal.NullDecimal `db:"usd_value_24h_usd_change" json:"usd_value_24h_usd_change"`
	Token                 TokenDetail         `db:"token" json:"token_details"`
}
