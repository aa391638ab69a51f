// internal/service/token_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"chainfolio/internal/domain"
	"chainfolio/internal/provider"
	"chainfolio/internal/repository"
)

// SkippedToken records one raw token item the reconciler could not process.
type SkippedToken struct {
	TokenAddress string `json:"token_address,omitempty"`
	Reason       string `json:"reason"`
}

// ReconcileReport summarizes one reconciliation batch. Skipped items never
// abort the batch; the reconciler always attempts every item.
type ReconcileReport struct {
	Processed int
	Skipped   []SkippedToken
}

// TokenService defines token reconciliation, listing and aggregation logic.
type TokenService interface {
	// Reconcile replaces the holding snapshot for (wallet, chain) with the raw
	// token items, upserting canonical token rows along the way. It runs on
	// the caller's executor so the caller controls transaction boundaries.
	Reconcile(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, items []provider.TokenItem, chain string) (ReconcileReport, error)
	// ListUserTokens returns the user's holdings with token details, optionally
	// filtered by wallet address and chain.
	ListUserTokens(ctx context.Context, userID int64, addressFilter, chainFilter string) ([]domain.WalletTokenDetail, error)
	// AggregateAssets merges the user's holdings by (symbol, chain) and sums
	// amounts and values, sorted by total value descending.
	AggregateAssets(ctx context.Context, userID int64) ([]domain.AggregatedAsset, error)
}

type tokenService struct {
	dbExecutor      repository.DBExecutor
	tokenRepo       repository.TokenRepository
	walletTokenRepo repository.WalletTokenRepository
	logger          *slog.Logger
}

// NewTokenService creates a new instance of TokenService.
func NewTokenService(
	dbExecutor repository.DBExecutor,
	tokenRepo repository.TokenRepository,
	walletTokenRepo repository.WalletTokenRepository,
	logger *slog.Logger,
) TokenService {
	return &tokenService{
		dbExecutor:      dbExecutor,
		tokenRepo:       tokenRepo,
		walletTokenRepo: walletTokenRepo,
		logger:          logger,
	}
}

// Reconcile deletes the existing snapshot for (wallet, chain) and rebuilds it
// from the raw items. Items without a token address are skipped and recorded;
// reconciling twice with identical input yields identical rows.
func (s *tokenService) Reconcile(ctx context.Context, q repository.DBExecutor, wallet *domain.Wallet, items []provider.TokenItem, chain string) (ReconcileReport, error) {
	report := ReconcileReport{}

	if err := s.walletTokenRepo.DeleteByWalletAndChain(ctx, q, wallet.ID, chain); err != nil {
		return report, fmt.Errorf("reconcile: failed to clear holdings for wallet %s on chain %s: %w", wallet.Address, chain, err)
	}

	s.logger.Info("reconciling wallet holdings",
		"address", wallet.Address, "chain", chain, "tokens", len(items))

	for _, item := range items {
		if item.TokenAddress == "" {
			s.logger.Warn("skipping token item without address",
				"wallet", wallet.Address, "chain", chain, "symbol", item.Symbol)
			report.Skipped = append(report.Skipped, SkippedToken{Reason: "missing token address"})
			continue
		}

		token := &domain.Token{
			Address:                  item.TokenAddress,
			Chain:                    chain,
			Symbol:                   item.Symbol,
			Name:                     item.Name,
			Logo:                     item.Logo,
			Thumbnail:                item.Thumbnail,
			USDPrice:                 item.USDPrice.NullDecimal,
			USDPrice24hPercentChange: item.USDPrice24hPercentChange.NullDecimal,
			USDPrice24hUSDChange:     item.USDPrice24hUSDChange.NullDecimal,
			UpdatedAt:                time.Now().UTC(),
		}
		if err := s.tokenRepo.UpsertToken(ctx, q, token); err != nil {
			s.logger.Error("failed to upsert token",
				"token_address", item.TokenAddress, "chain", chain, "error", err)
			report.Skipped = append(report.Skipped, SkippedToken{TokenAddress: item.TokenAddress, Reason: err.Error()})
			continue
		}

		wt := &domain.WalletToken{
			WalletID:              wallet.ID,
			TokenID:               token.ID,
			Chain:                 chain,
			TokenBalanceFormatted: item.BalanceFormatted.NullDecimal,
			USDValue:              item.USDValue.NullDecimal,
			USDValue24hUSDChange:  item.USDValue24hUSDChange.NullDecimal,
		}
		if err := s.walletTokenRepo.CreateWalletToken(ctx, q, wt); err != nil {
			s.logger.Error("failed to create holding",
				"token_address", item.TokenAddress, "chain", chain, "error", err)
			report.Skipped = append(report.Skipped, SkippedToken{TokenAddress: item.TokenAddress, Reason: err.Error()})
			continue
		}

		report.Processed++
	}

	return report, nil
}

// ListUserTokens returns the user's holdings with nested token details.
func (s *tokenService) ListUserTokens(ctx context.Context, userID int64, addressFilter, chainFilter string) ([]domain.WalletTokenDetail, error) {
	holdings, err := s.walletTokenRepo.ListByUserID(ctx, s.dbExecutor, userID, addressFilter, chainFilter)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	return holdings, nil
}

// AggregateAssets groups the user's holdings by (symbol, chain). The grouping
// key is the symbol, not the token address, so two contracts sharing a ticker
// on one chain merge into a single summary. The first holding seen for a pair
// seeds the descriptive fields; null per-row values contribute zero to the
// sums. A user with no wallets gets an empty list.
func (s *tokenService) AggregateAssets(ctx context.Context, userID int64) ([]domain.AggregatedAsset, error) {
	holdings, err := s.walletTokenRepo.ListByUserID(ctx, s.dbExecutor, userID, "", "")
	if err != nil {
		return nil, fmt.Errorf("aggregate assets: %w", err)
	}

	type groupKey struct {
		symbol string
		chain  string
	}
	aggregated := make(map[groupKey]*domain.AggregatedAsset)
	order := make([]groupKey, 0, len(holdings))

	for _, h := range holdings {
		key := groupKey{symbol: h.Token.Symbol, chain: h.Chain}
		asset, ok := aggregated[key]
		if !ok {
			asset = &domain.AggregatedAsset{
				Symbol:                h.Token.Symbol,
				Name:                  h.Token.Name,
				Chain:                 h.Chain,
				Price:                 h.Token.USDPrice,
				Price24hChangePercent: h.Token.USDPrice24hPercentChange,
				Price24hChangeUSD:     h.Token.USDPrice24hUSDChange,
				Logo:                  h.Token.Logo,
				Thumbnail:             h.Token.Thumbnail,
				TotalAmount:           decimal.Zero,
				TotalValue:            decimal.Zero,
				TotalValue24hChange:   decimal.Zero,
			}
			aggregated[key] = asset
			order = append(order, key)
		}

		if h.TokenBalanceFormatted.Valid {
			asset.TotalAmount = asset.TotalAmount.Add(h.TokenBalanceFormatted.Decimal)
		}
		if h.USDValue.Valid {
			asset.TotalValue = asset.TotalValue.Add(h.USDValue.Decimal)
		}
		if h.USDValue24hUSDChange.Valid {
			asset.TotalValue24hChange = asset.TotalValue24hChange.Add(h.USDValue24hUSDChange.Decimal)
		}
	}

	assets := make([]domain.AggregatedAsset, 0, len(order))
	for _, key := range order {
		assets = append(assets, *aggregated[key])
	}

	sort.SliceStable(assets, func(i, j int) bool {
		return assets[i].TotalValue.GreaterThan(assets[j].TotalValue)
	})

	return assets, nil
}
