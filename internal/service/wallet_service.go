// internal/service/wallet_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"chainfolio/internal/domain"
	"chainfolio/internal/provider"
	"chainfolio/internal/repository"
	"chainfolio/internal/util"
	"chainfolio/pkg/db"
)

// ChainInfo is one supported chain entry for the public API.
type ChainInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WalletService defines the wallet registry: the set of wallets a user tracks
// and the sync operations that keep their holdings fresh.
type WalletService interface {
	ListWallets(ctx context.Context, userID int64, addressFilter, chainFilter string) ([]domain.Wallet, error)
	// AddWallet registers a wallet for the user, fetches its holdings and
	// reconciles them. Adding a pair the user already tracks fails with
	// util.ErrDuplicateWallet.
	AddWallet(ctx context.Context, userID int64, address, chain string) (*domain.Wallet, error)
	// SyncWallet refreshes holdings and valuation for one tracked wallet.
	// Syncing a pair the user never added fails with util.ErrWalletNotInPortfolio.
	SyncWallet(ctx context.Context, userID int64, address, chain string) (*domain.Wallet, int, error)
	// SyncAllWallets sequentially syncs every wallet the user tracks and
	// reports per-wallet outcomes; a failing wallet never aborts the fleet.
	SyncAllWallets(ctx context.Context, userID int64) (string, []domain.SyncResult, error)
	// RemoveWallet detaches a wallet from the user's portfolio. The wallet and
	// its token rows are left untouched.
	RemoveWallet(ctx context.Context, userID int64, address, chain string) (string, error)
	SupportedChains() []ChainInfo
}

type walletService struct {
	dbBeginner     db.DBTxBeginner
	dbExecutor     repository.DBExecutor
	walletRepo     repository.WalletRepository
	walletUserRepo repository.WalletUserRepository
	tokenService   TokenService
	tokenProvider  provider.TokenProvider
	chainMap       map[string]string
	logger         *slog.Logger
	beginTx        db.BeginTxFunc
	commitTx       db.CommitTxFunc
	rollbackTx     db.RollbackTxFunc
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	walletRepo repository.WalletRepository,
	walletUserRepo repository.WalletUserRepository,
	tokenService TokenService,
	tokenProvider provider.TokenProvider,
	chainMap map[string]string,
	logger *slog.Logger,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) WalletService {
	return &walletService{
		dbBeginner:     dbBeginner,
		dbExecutor:     dbExecutor,
		walletRepo:     walletRepo,
		walletUserRepo: walletUserRepo,
		tokenService:   tokenService,
		tokenProvider:  tokenProvider,
		chainMap:       chainMap,
		logger:         logger,
		beginTx:        beginTx,
		commitTx:       commitTx,
		rollbackTx:     rollbackTx,
	}
}

// ListWallets returns the wallets the user tracks.
func (s *walletService) ListWallets(ctx context.Context, userID int64, addressFilter, chainFilter string) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.GetWalletsByUserID(ctx, s.dbExecutor, userID, addressFilter, chainFilter)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return wallets, nil
}

// AddWallet registers (address, chain) for the user. The wallet row is shared
// across users; only the link is per-user.
func (s *walletService) AddWallet(ctx context.Context, userID int64, address, chain string) (*domain.Wallet, error) {
	exists, err := s.walletUserRepo.LinkExists(ctx, s.dbExecutor, userID, address, chain)
	if err != nil {
		return nil, fmt.Errorf("add wallet: failed to check existing link: %w", err)
	}
	if exists {
		return nil, util.ErrDuplicateWallet
	}

	items, err := s.tokenProvider.FetchTokens(ctx, address, chain, provider.DefaultFetchOptions())
	if err != nil {
		return nil, err
	}

	balanceUSD := sumUSDValues(items)

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("add wallet: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("add wallet: transaction controller does not implement DBExecutor")
	}

	now := time.Now().UTC()
	wallet := domain.NewWallet(address, chain)
	wallet.BalanceUSD = balanceUSD
	wallet.SyncedAt = &now

	if err := s.walletRepo.UpsertWallet(ctx, txExecutor, wallet); err != nil {
		return nil, fmt.Errorf("add wallet: %w", err)
	}
	if err := s.walletUserRepo.LinkWalletToUser(ctx, txExecutor, userID, wallet.ID); err != nil {
		return nil, fmt.Errorf("add wallet: %w", err)
	}

	if len(items) > 0 {
		report, err := s.tokenService.Reconcile(ctx, txExecutor, wallet, items, chain)
		if err != nil {
			return nil, fmt.Errorf("add wallet: %w", err)
		}
		s.logger.Info("initial reconciliation complete",
			"address", address, "chain", chain,
			"processed", report.Processed, "skipped", len(report.Skipped))
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("add wallet: failed to commit transaction: %w", err)
	}

	return wallet, nil
}

// SyncWallet re-fetches and re-reconciles one tracked wallet, then refreshes
// its cached valuation and sync time.
func (s *walletService) SyncWallet(ctx context.Context, userID int64, address, chain string) (*domain.Wallet, int, error) {
	exists, err := s.walletUserRepo.LinkExists(ctx, s.dbExecutor, userID, address, chain)
	if err != nil {
		return nil, 0, fmt.Errorf("sync wallet: failed to check existing link: %w", err)
	}
	if !exists {
		return nil, 0, fmt.Errorf("wallet %s on chain %s: %w", address, chain, util.ErrWalletNotInPortfolio)
	}

	wallet, err := s.walletRepo.GetWalletByAddressAndChain(ctx, s.dbExecutor, address, chain)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, 0, fmt.Errorf("wallet %s on chain %s: %w", address, chain, util.ErrWalletNotInPortfolio)
		}
		return nil, 0, fmt.Errorf("sync wallet: %w", err)
	}

	items, err := s.tokenProvider.FetchTokens(ctx, address, chain, provider.DefaultFetchOptions())
	if err != nil {
		return nil, 0, err
	}

	balanceUSD := sumUSDValues(items)

	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, 0, fmt.Errorf("sync wallet: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, 0, fmt.Errorf("sync wallet: transaction controller does not implement DBExecutor")
	}

	now := time.Now().UTC()
	if err := s.walletRepo.UpdateWalletSync(ctx, txExecutor, wallet.ID, balanceUSD, now); err != nil {
		return nil, 0, fmt.Errorf("sync wallet: %w", err)
	}

	// Reconcile even when the provider returned nothing: an empty result
	// must clear the stale snapshot.
	report, err := s.tokenService.Reconcile(ctx, txExecutor, wallet, items, chain)
	if err != nil {
		return nil, 0, fmt.Errorf("sync wallet: %w", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, 0, fmt.Errorf("sync wallet: failed to commit transaction: %w", err)
	}

	wallet.BalanceUSD = balanceUSD
	wallet.SyncedAt = &now
	return wallet, report.Processed, nil
}

// SyncAllWallets syncs every tracked wallet sequentially, collecting a
// per-wallet result rather than aborting on the first failure. The returned
// string is a unique id for this sync run.
func (s *walletService) SyncAllWallets(ctx context.Context, userID int64) (string, []domain.SyncResult, error) {
	wallets, err := s.walletRepo.GetWalletsByUserID(ctx, s.dbExecutor, userID, "", "")
	if err != nil {
		return "", nil, fmt.Errorf("sync all wallets: %w", err)
	}
	if len(wallets) == 0 {
		return "", nil, util.ErrNoWallets
	}

	syncID := uuid.NewString()
	s.logger.Info("starting fleet sync", "sync_id", syncID, "user_id", userID, "wallets", len(wallets))

	results := make([]domain.SyncResult, 0, len(wallets))
	for _, wallet := range wallets {
		_, tokenCount, err := s.SyncWallet(ctx, userID, wallet.Address, wallet.Chain)
		if err != nil {
			s.logger.Error("fleet sync: wallet failed",
				"sync_id", syncID, "address", wallet.Address, "chain", wallet.Chain, "error", err)
			results = append(results, domain.SyncResult{
				WalletAddress: wallet.Address,
				Chain:         wallet.Chain,
				Status:        domain.SyncStatusFailed,
				Error:         err.Error(),
			})
			continue
		}
		results = append(results, domain.SyncResult{
			WalletAddress: wallet.Address,
			Chain:         wallet.Chain,
			TokenCount:    tokenCount,
			Status:        domain.SyncStatusSuccess,
		})
	}

	return syncID, results, nil
}

// RemoveWallet deletes only the user-wallet link.
func (s *walletService) RemoveWallet(ctx context.Context, userID int64, address, chain string) (string, error) {
	rowsDeleted, err := s.walletUserRepo.UnlinkWallet(ctx, s.dbExecutor, userID, address, chain)
	if err != nil {
		return "", fmt.Errorf("remove wallet: %w", err)
	}
	if rowsDeleted == 0 {
		return "", fmt.Errorf("wallet %s on chain %s: %w", address, chain, util.ErrWalletNotInPortfolio)
	}
	return fmt.Sprintf("Wallet %s (%s) has been removed from your portfolio", address, chain), nil
}

// SupportedChains lists the chains the provider mapping knows about.
func (s *walletService) SupportedChains() []ChainInfo {
	chains := make([]ChainInfo, 0, len(s.chainMap))
	for name, id := range s.chainMap {
		chains = append(chains, ChainInfo{ID: id, Name: name})
	}
	sort.Slice(chains, func(i, j int) bool { return chains[i].Name < chains[j].Name })
	return chains
}

// sumUSDValues totals the usd_value of each item; items whose value is absent
// or failed decimal conversion contribute nothing.
func sumUSDValues(items []provider.TokenItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.USDValue.Valid {
			total = total.Add(item.USDValue.Decimal)
		}
	}
	return total
}
