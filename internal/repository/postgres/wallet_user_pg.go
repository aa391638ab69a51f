// internal/repository/postgres/wallet_user_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"chainfolio/internal/repository"
)

// WalletUserRepository implements repository.WalletUserRepository for PostgreSQL.
type WalletUserRepository struct{}

// NewWalletUserRepository creates a new WalletUserRepository.
func NewWalletUserRepository(db *sqlx.DB) repository.WalletUserRepository {
	return &WalletUserRepository{}
}

// LinkWalletToUser creates the user-wallet link if it does not already exist.
func (r *WalletUserRepository) LinkWalletToUser(ctx context.Context, q repository.DBExecutor, userID, walletID int64) error {
	query := `INSERT INTO wallet_users (user_id, wallet_id, created_at)
              VALUES ($1, $2, $3)
              ON CONFLICT (user_id, wallet_id) DO NOTHING`
	if _, err := q.ExecContext(ctx, query, userID, walletID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to link wallet %d to user %d: %w", walletID, userID, err)
	}
	return nil
}

// LinkExists reports whether the user tracks the given (address, chain) pair.
func (r *WalletUserRepository) LinkExists(ctx context.Context, q repository.DBExecutor, userID int64, address, chain string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (
                SELECT 1 FROM wallet_users wu
                JOIN wallets w ON w.id = wu.wallet_id
                WHERE wu.user_id = $1 AND w.address = $2 AND w.chain = $3
              )`
	if err := q.GetContext(ctx, &exists, query, userID, address, chain); err != nil {
		return false, fmt.Errorf("failed to check wallet link for user %d: %w", userID, err)
	}
	return exists, nil
}

// UnlinkWallet removes the user-wallet link and returns the number of rows
// deleted. Wallet and token rows are left untouched.
func (r *WalletUserRepository) UnlinkWallet(ctx context.Context, q repository.DBExecutor, userID int64, address, chain string) (int64, error) {
	query := `DELETE FROM wallet_users wu
              USING wallets w
              WHERE wu.wallet_id = w.id AND wu.user_id = $1 AND w.address = $2 AND w.chain = $3`
	result, err := q.ExecContext(ctx, query, userID, address, chain)
	if err != nil {
		return 0, fmt.Errorf("failed to unlink wallet %s on chain %s from user %d: %w", address, chain, userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected after unlinking wallet: %w", err)
	}
	return rowsAffected, nil
}
