// internal/repository/wallet_repo.go
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"chainfolio/internal/domain"
)

// WalletRepository defines the interface for wallet data operations.
type WalletRepository interface {
	// UpsertWallet creates the wallet identified by (address, chain) or, if it
	// already exists, refreshes its balance and sync time. The wallet's ID is
	// populated either way.
	UpsertWallet(ctx context.Context, q DBExecutor, wallet *domain.Wallet) error
	// GetWalletByAddressAndChain retrieves a wallet by its unique (address, chain) pair.
	GetWalletByAddressAndChain(ctx context.Context, q DBExecutor, address, chain string) (*domain.Wallet, error)
	// GetWalletsByUserID retrieves the wallets a user tracks. Empty filter
	// strings match everything.
	GetWalletsByUserID(ctx context.Context, q DBExecutor, userID int64, addressFilter, chainFilter string) ([]domain.Wallet, error)
	// UpdateWalletSync records the result of a successful sync.
	UpdateWalletSync(ctx context.Context, q DBExecutor, walletID int64, balanceUSD decimal.Decimal, syncedAt time.Time) error
}

// WalletUserRepository defines the interface for user-wallet link operations.
type WalletUserRepository interface {
	// LinkWalletToUser creates the user-wallet link if it does not already exist.
	LinkWalletToUser(ctx context.Context, q DBExecutor, userID, walletID int64) error
	// LinkExists reports whether the user tracks the given (address, chain) pair.
	LinkExists(ctx context.Context, q DBExecutor, userID int64, address, chain string) (bool, error)
	// UnlinkWallet removes the user-wallet link and returns the number of rows
	// deleted. The wallet itself is never deleted.
	UnlinkWallet(ctx context.Context, q DBExecutor, userID int64, address, chain string) (int64, error)
}
