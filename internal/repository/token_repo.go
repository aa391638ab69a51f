// internal/repository/token_repo.go
package repository

import (
	"context"

	"chainfolio/internal/domain"
)

// TokenRepository defines the interface for canonical token metadata.
type TokenRepository interface {
	// UpsertToken creates the token identified by (address, chain) or
	// overwrites its metadata and price fields with the latest values
	// (last-write-wins). The token's ID is populated either way.
	UpsertToken(ctx context.Context, q DBExecutor, token *domain.Token) error
}

// WalletTokenRepository defines the interface for per-wallet holding snapshots.
type WalletTokenRepository interface {
	// DeleteByWalletAndChain clears the holding snapshot for (wallet, chain).
	DeleteByWalletAndChain(ctx context.Context, q DBExecutor, walletID int64, chain string) error
	// CreateWalletToken inserts one holding row.
	CreateWalletToken(ctx context.Context, q DBExecutor, wt *domain.WalletToken) error
	// ListByUserID returns holding rows joined with token metadata for every
	// wallet the user tracks. Empty filter strings match everything.
	ListByUserID(ctx context.Context, q DBExecutor, userID int64, addressFilter, chainFilter string) ([]domain.WalletTokenDetail, error)
}
