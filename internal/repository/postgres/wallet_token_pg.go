// internal/repository/postgres/wallet_token_pg.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"chainfolio/internal/domain"
	"chainfolio/internal/repository"
)

// WalletTokenRepository implements repository.WalletTokenRepository for PostgreSQL.
type WalletTokenRepository struct{}

// NewWalletTokenRepository creates a new WalletTokenRepository.
func NewWalletTokenRepository(db *sqlx.DB) repository.WalletTokenRepository {
	return &WalletTokenRepository{}
}

// DeleteByWalletAndChain clears the holding snapshot for (wallet, chain).
func (r *WalletTokenRepository) DeleteByWalletAndChain(ctx context.Context, q repository.DBExecutor, walletID int64, chain string) error {
	query := `DELETE FROM wallet_tokens WHERE wallet_id = $1 AND chain = $2`
	if _, err := q.ExecContext(ctx, query, walletID, chain); err != nil {
		return fmt.Errorf("failed to clear holdings for wallet %d on chain %s: %w", walletID, chain, err)
	}
	return nil
}

// CreateWalletToken inserts one holding row.
func (r *WalletTokenRepository) CreateWalletToken(ctx context.Context, q repository.DBExecutor, wt *domain.WalletToken) error {
	query := `INSERT INTO wallet_tokens
                (wallet_id, token_id, chain, token_balance_formatted, usd_value, usd_value_24h_usd_change)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		wt.WalletID,
		wt.TokenID,
		wt.Chain,
		wt.TokenBalanceFormatted,
		wt.USDValue,
		wt.USDValue24hUSDChange,
	).Scan(&wt.ID)
	if err != nil {
		return fmt.Errorf("failed to create holding for wallet %d: %w", wt.WalletID, err)
	}
	return nil
}

// ListByUserID returns holding rows joined with token metadata for every
// wallet the user tracks, optionally filtered by wallet address and chain.
func (r *WalletTokenRepository) ListByUserID(ctx context.Context, q repository.DBExecutor, userID int64, addressFilter, chainFilter string) ([]domain.WalletTokenDetail, error) {
	holdings := []domain.WalletTokenDetail{}
	query := `SELECT wt.id, wt.wallet_id, wt.chain,
                     wt.token_balance_formatted, wt.usd_value, wt.usd_value_24h_usd_change,
                     t.address AS "token.address",
                     t.chain AS "token.chain",
                     t.symbol AS "token.symbol",
                     t.name AS "token.name",
                     t.logo AS "token.logo",
                     t.thumbnail AS "token.thumbnail",
                     t.usd_price AS "token.usd_price",
                     t.usd_price_24h_percent_change AS "token.usd_price_24h_percent_change",
                     t.usd_price_24h_usd_change AS "token.usd_price_24h_usd_change"
              FROM wallet_tokens wt
              JOIN tokens t ON t.id = wt.token_id
              JOIN wallets w ON w.id = wt.wallet_id
              JOIN wallet_users wu ON wu.wallet_id = wt.wallet_id
              WHERE wu.user_id = $1
                AND ($2 = '' OR w.address = $2)
                AND ($3 = '' OR w.chain = $3)
              ORDER BY wt.id`
	err := q.SelectContext(ctx, &holdings, query, userID, addressFilter, chainFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holdings for user %d: %w", userID, err)
	}
	return holdings, nil
}
