// internal/domain/wallet.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Wallet represents an on-chain address tracked for holdings, scoped to one
// chain. A wallet is unique per (address, chain) and may be shared by several
// users through WalletUser links.
type Wallet struct {
	ID         int64           `db:"id" json:"id"`                   // Primary key, BIGSERIAL in DB
	Address    string          `db:"address" json:"address"`         // On-chain address
	Chain      string          `db:"chain" json:"chain"`             // e.g. "eth", "bsc"
	BalanceUSD decimal.Decimal `db:"balance_usd" json:"balance_usd"` // Cached sum of token USD values, NUMERIC(30, 18) in DB
	SyncedAt   *time.Time      `db:"synced_at" json:"synced_at"`     // Time of last successful sync (nil before first sync)
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// NewWallet creates a new Wallet instance with a zero balance.
func NewWallet(address, chain string) *Wallet {
	now := time.Now().UTC()
	return &Wallet{
		Address:    address,
		Chain:      chain,
		BalanceUSD: decimal.Zero,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// WalletUser links a user to a wallet they track. Deleting the link detaches
// the wallet from the user's portfolio without deleting the wallet itself.
type WalletUser struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	WalletID  int64     `db:"wallet_id" json:"wallet_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
