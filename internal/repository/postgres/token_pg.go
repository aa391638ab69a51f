// internal/repository/postgres/token_pg.go
package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"chainfolio/internal/domain"
	"chainfolio/internal/repository"
)

// TokenRepository implements repository.TokenRepository for PostgreSQL.
type TokenRepository struct{}

// NewTokenRepository creates a new TokenRepository.
func NewTokenRepository(db *sqlx.DB) repository.TokenRepository {
	return &TokenRepository{}
}

// UpsertToken creates the token keyed by (address, chain) or overwrites its
// metadata and price fields with the latest values.
func (r *TokenRepository) UpsertToken(ctx context.Context, q repository.DBExecutor, token *domain.Token) error {
	query := `INSERT INTO tokens
                (address, chain, symbol, name, logo, thumbnail,
                 usd_price, usd_price_24h_percent_change, usd_price_24h_usd_change, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
              ON CONFLICT (address, chain)
              DO UPDATE SET symbol = EXCLUDED.symbol,
                            name = EXCLUDED.name,
                            logo = EXCLUDED.logo,
                            thumbnail = EXCLUDED.thumbnail,
                            usd_price = EXCLUDED.usd_price,
                            usd_price_24h_percent_change = EXCLUDED.usd_price_24h_percent_change,
                            usd_price_24h_usd_change = EXCLUDED.usd_price_24h_usd_change,
                            updated_at = EXCLUDED.updated_at
              RETURNING id`
	err := q.QueryRowContext(ctx, query,
		token.Address,
		token.Chain,
		token.Symbol,
		token.Name,
		token.Logo,
		token.Thumbnail,
		token.USDPrice,
		token.USDPrice24hPercentChange,
		token.USDPrice24hUSDChange,
		token.UpdatedAt,
	).Scan(&token.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert token %s on chain %s: %w", token.Address, token.Chain, err)
	}
	return nil
}
