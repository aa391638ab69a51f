// internal/repository/postgres/wallet_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"chainfolio/internal/domain"
	"chainfolio/internal/repository"
	"chainfolio/internal/util"
)

// WalletRepository implements repository.WalletRepository for PostgreSQL.
type WalletRepository struct{}

// NewWalletRepository creates a new WalletRepository.
func NewWalletRepository(db *sqlx.DB) repository.WalletRepository {
	return &WalletRepository{}
}

// UpsertWallet creates or refreshes the wallet keyed by (address, chain).
func (r *WalletRepository) UpsertWallet(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet) error {
	query := `INSERT INTO wallets (address, chain, balance_usd, synced_at, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6)
              ON CONFLICT (address, chain)
              DO UPDATE SET balance_usd = EXCLUDED.balance_usd,
                            synced_at = EXCLUDED.synced_at,
                            updated_at = EXCLUDED.updated_at
              RETURNING id`
	err := q.QueryRowContext(ctx, query,
		wallet.Address,
		wallet.Chain,
		wallet.BalanceUSD,
		wallet.SyncedAt,
		wallet.CreatedAt,
		wallet.UpdatedAt,
	).Scan(&wallet.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert wallet %s on chain %s: %w", wallet.Address, wallet.Chain, err)
	}
	return nil
}

// GetWalletByAddressAndChain retrieves a wallet by its unique (address, chain) pair.
func (r *WalletRepository) GetWalletByAddressAndChain(ctx context.Context, q repository.DBExecutor, address, chain string) (*domain.Wallet, error) {
	var wallet domain.Wallet
	query := `SELECT id, address, chain, balance_usd, synced_at, created_at, updated_at
              FROM wallets WHERE address = $1 AND chain = $2`
	err := q.GetContext(ctx, &wallet, query, address, chain)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet %s on chain %s: %w", address, chain, err)
	}
	return &wallet, nil
}

// GetWalletsByUserID retrieves the wallets a user tracks, optionally filtered
// by address and chain.
func (r *WalletRepository) GetWalletsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, addressFilter, chainFilter string) ([]domain.Wallet, error) {
	wallets := []domain.Wallet{}
	query := `SELECT w.id, w.address, w.chain, w.balance_usd, w.synced_at, w.created_at, w.updated_at
              FROM wallets w
              JOIN wallet_users wu ON wu.wallet_id = w.id
              WHERE wu.user_id = $1
                AND ($2 = '' OR w.address = $2)
                AND ($3 = '' OR w.chain = $3)
              ORDER BY w.id`
	err := q.SelectContext(ctx, &wallets, query, userID, addressFilter, chainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wallets for user %d: %w", userID, err)
	}
	return wallets, nil
}

// UpdateWalletSync records a successful sync on an existing wallet.
func (r *WalletRepository) UpdateWalletSync(ctx context.Context, q repository.DBExecutor, walletID int64, balanceUSD decimal.Decimal, syncedAt time.Time) error {
	query := `UPDATE wallets SET balance_usd = $1, synced_at = $2, updated_at = $3 WHERE id = $4`
	result, err := q.ExecContext(ctx, query, balanceUSD, syncedAt, time.Now().UTC(), walletID)
	if err != nil {
		return fmt.Errorf("failed to update sync state for wallet %d: %w", walletID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating wallet %d: %w", walletID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when updating wallet %d, wallet might not exist", walletID)
	}
	return nil
}
