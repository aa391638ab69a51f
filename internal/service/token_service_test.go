// internal/service/token_service_test.go
package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"chainfolio/internal/domain"
	"chainfolio/internal/provider"
	"chainfolio/internal/repository"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	argsCalled := m.Called(ctx, dest, query, args)
	return argsCalled.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	argsCalled := m.Called(ctx, query, args)
	return argsCalled.Get(0).(sql.Result), argsCalled.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// MockTokenRepository is a mock implementation of repository.TokenRepository.
type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) UpsertToken(ctx context.Context, q repository.DBExecutor, token *domain.Token) error {
	args := m.Called(ctx, q, token)
	return args.Error(0)
}

// MockWalletTokenRepository is a mock implementation of repository.WalletTokenRepository.
type MockWalletTokenRepository struct {
	mock.Mock
}

func (m *MockWalletTokenRepository) DeleteByWalletAndChain(ctx context.Context, q repository.DBExecutor, walletID int64, chain string) error {
	args := m.Called(ctx, q, walletID, chain)
	return args.Error(0)
}

func (m *MockWalletTokenRepository) CreateWalletToken(ctx context.Context, q repository.DBExecutor, wt *domain.WalletToken) error {
	args := m.Called(ctx, q, wt)
	return args.Error(0)
}

func (m *MockWalletTokenRepository) ListByUserID(ctx context.Context, q repository.DBExecutor, userID int64, addressFilter, chainFilter string) ([]domain.WalletTokenDetail, error) {
	args := m.Called(ctx, q, userID, addressFilter, chainFilter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WalletTokenDetail), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func optDecimal(value string) provider.OptionalDecimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return provider.OptionalDecimal{NullDecimal: decimal.NewNullDecimal(d)}
}

func nullDecimal(value string) decimal.NullDecimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return decimal.NewNullDecimal(d)
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	wallet := &domain.Wallet{ID: 1, Address: "0x1111111111111111111111111111", Chain: "eth"}

	t.Run("SkipsItemsWithoutAddress", func(t *testing.T) {
		mockExecutor := new(MockDBExecutor)
		mockTokenRepo := new(MockTokenRepository)
		mockWalletTokenRepo := new(MockWalletTokenRepository)
		svc := NewTokenService(mockExecutor, mockTokenRepo, mockWalletTokenRepo, testLogger())

		items := []provider.TokenItem{
			{TokenAddress: "0xaaa", Symbol: "USDT", Name: "Tether USD", USDValue: optDecimal("100")},
			{Symbol: "GHOST"}, // no address
			{TokenAddress: "0xbbb", Symbol: "WETH", Name: "Wrapped Ether", USDValue: optDecimal("50")},
		}

		mockWalletTokenRepo.On("DeleteByWalletAndChain", ctx, mockExecutor, wallet.ID, "eth").Return(nil).Once()
		mockTokenRepo.On("UpsertToken", ctx, mockExecutor, mock.AnythingOfType("*domain.Token")).
			Run(func(args mock.Arguments) {
				token := args.Get(2).(*domain.Token)
				token.ID = 7 // simulate RETURNING id
			}).Return(nil).Twice()
		mockWalletTokenRepo.On("CreateWalletToken", ctx, mockExecutor, mock.AnythingOfType("*domain.WalletToken")).Return(nil).Twice()

		report, err := svc.Reconcile(ctx, mockExecutor, wallet, items, "eth")

		assert.NoError(t, err)
		assert.Equal(t, 2, report.Processed)
		assert.Len(t, report.Skipped, 1)
		assert.Equal(t, "missing token address", report.Skipped[0].Reason)

		mock.AssertExpectationsForObjects(t, mockTokenRepo, mockWalletTokenRepo)
	})

	t.Run("EmptyInputStillClearsSnapshot", func(t *testing.T) {
		mockExecutor := new(MockDBExecutor)
		mockTokenRepo := new(MockTokenRepository)
		mockWalletTokenRepo := new(MockWalletTokenRepository)
		svc := NewTokenService(mockExecutor, mockTokenRepo, mockWalletTokenRepo, testLogger())

		mockWalletTokenRepo.On("DeleteByWalletAndChain", ctx, mockExecutor, wallet.ID, "eth").Return(nil).Once()

		report, err := svc.Reconcile(ctx, mockExecutor, wallet, nil, "eth")

		assert.NoError(t, err)
		assert.Equal(t, 0, report.Processed)
		assert.Empty(t, report.Skipped)

		mockTokenRepo.AssertNotCalled(t, "UpsertToken", mock.Anything, mock.Anything, mock.Anything)
		mock.AssertExpectationsForObjects(t, mockTokenRepo, mockWalletTokenRepo)
	})

	t.Run("PerItemFailureDoesNotAbortBatch", func(t *testing.T) {
		mockExecutor := new(MockDBExecutor)
		mockTokenRepo := new(MockTokenRepository)
		mockWalletTokenRepo := new(MockWalletTokenRepository)
		svc := NewTokenService(mockExecutor, mockTokenRepo, mockWalletTokenRepo, testLogger())

		items := []provider.TokenItem{
			{TokenAddress: "0xbad", Symbol: "BAD"},
			{TokenAddress: "0xgood", Symbol: "GOOD"},
		}

		mockWalletTokenRepo.On("DeleteByWalletAndChain", ctx, mockExecutor, wallet.ID, "eth").Return(nil).Once()
		mockTokenRepo.On("UpsertToken", ctx, mockExecutor, mock.MatchedBy(func(token *domain.Token) bool {
			return token.Address == "0xbad"
		})).Return(errors.New("db error")).Once()
		mockTokenRepo.On("UpsertToken", ctx, mockExecutor, mock.MatchedBy(func(token *domain.Token) bool {
			return token.Address == "0xgood"
		})).Return(nil).Once()
		mockWalletTokenRepo.On("CreateWalletToken", ctx, mockExecutor, mock.AnythingOfType("*domain.WalletToken")).Return(nil).Once()

		report, err := svc.Reconcile(ctx, mockExecutor, wallet, items, "eth")

		assert.NoError(t, err)
		assert.Equal(t, 1, report.Processed)
		assert.Len(t, report.Skipped, 1)
		assert.Equal(t, "0xbad", report.Skipped[0].TokenAddress)

		mock.AssertExpectationsForObjects(t, mockTokenRepo, mockWalletTokenRepo)
	})

	t.Run("SnapshotClearFailureAbortsBatch", func(t *testing.T) {
		mockExecutor := new(MockDBExecutor)
		mockTokenRepo := new(MockTokenRepository)
		mockWalletTokenRepo := new(MockWalletTokenRepository)
		svc := NewTokenService(mockExecutor, mockTokenRepo, mockWalletTokenRepo, testLogger())

		mockWalletTokenRepo.On("DeleteByWalletAndChain", ctx, mockExecutor, wallet.ID, "eth").
			Return(errors.New("deadlock")).Once()

		report, err := svc.Reconcile(ctx, mockExecutor, wallet, []provider.TokenItem{{TokenAddress: "0xaaa"}}, "eth")

		assert.Error(t, err)
		assert.Equal(t, 0, report.Processed)
		mockTokenRepo.AssertNotCalled(t, "UpsertToken", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAggregateAssets(t *testing.T) {
	ctx := context.Background()
	userID := int64(1)

	newService := func(holdings []domain.WalletTokenDetail) TokenService {
		mockExecutor := new(MockDBExecutor)
		mockTokenRepo := new(MockTokenRepository)
		mockWalletTokenRepo := new(MockWalletTokenRepository)
		mockWalletTokenRepo.On("ListByUserID", ctx, mockExecutor, userID, "", "").Return(holdings, nil).Once()
		return NewTokenService(mockExecutor, mockTokenRepo, mockWalletTokenRepo, testLogger())
	}

	t.Run("NoWalletsYieldsEmptyList", func(t *testing.T) {
		svc := newService([]domain.WalletTokenDetail{})

		assets, err := svc.AggregateAssets(ctx, userID)

		assert.NoError(t, err)
		assert.Empty(t, assets)
	})

	t.Run("SingleHoldingTotalsMatchExactly", func(t *testing.T) {
		svc := newService([]domain.WalletTokenDetail{
			{
				WalletID:              1,
				Chain:                 "eth",
				TokenBalanceFormatted: nullDecimal("12.5"),
				USDValue:              nullDecimal("100.25"),
				USDValue24hUSDChange:  nullDecimal("-1.5"),
				Token: domain.TokenDetail{
					Symbol:   "USDT",
					Name:     "Tether USD",
					Chain:    "eth",
					USDPrice: nullDecimal("1.002"),
				},
			},
		})

		assets, err := svc.AggregateAssets(ctx, userID)

		assert.NoError(t, err)
		assert.Len(t, assets, 1)
		assert.Equal(t, "USDT", assets[0].Symbol)
		assert.Equal(t, "Tether USD", assets[0].Name)
		assert.True(t, decimal.RequireFromString("12.5").Equal(assets[0].TotalAmount))
		assert.True(t, decimal.RequireFromString("100.25").Equal(assets[0].TotalValue))
		assert.True(t, decimal.RequireFromString("-1.5").Equal(assets[0].TotalValue24hChange))
	})

	t.Run("SameSymbolAcrossWalletsMerges", func(t *testing.T) {
		svc := newService([]domain.WalletTokenDetail{
			{
				WalletID: 1, Chain: "eth",
				TokenBalanceFormatted: nullDecimal("100"),
				USDValue:              nullDecimal("100"),
				Token:                 domain.TokenDetail{Symbol: "USDT", Name: "Tether USD", Chain: "eth"},
			},
			{
				WalletID: 2, Chain: "eth",
				TokenBalanceFormatted: nullDecimal("50"),
				USDValue:              nullDecimal("50"),
				Token:                 domain.TokenDetail{Symbol: "USDT", Name: "Tether USD", Chain: "eth"},
			},
		})

		assets, err := svc.AggregateAssets(ctx, userID)

		assert.NoError(t, err)
		assert.Len(t, assets, 1)
		assert.True(t, decimal.NewFromInt(150).Equal(assets[0].TotalValue))
		assert.True(t, decimal.NewFromInt(150).Equal(assets[0].TotalAmount))
	})

	t.Run("SameSymbolDifferentChainStaysSeparate", func(t *testing.T) {
		svc := newService([]domain.WalletTokenDetail{
			{
				WalletID: 1, Chain: "eth",
				USDValue: nullDecimal("100"),
				Token:    domain.TokenDetail{Symbol: "USDT", Chain: "eth"},
			},
			{
				WalletID: 1, Chain: "bsc",
				USDValue: nullDecimal("50"),
				Token:    domain.TokenDetail{Symbol: "USDT", Chain: "bsc"},
			},
		})

		assets, err := svc.AggregateAssets(ctx, userID)

		assert.NoError(t, err)
		assert.Len(t, assets, 2)
	})

	t.Run("NullValuesContributeZero", func(t *testing.T) {
		svc := newService([]domain.WalletTokenDetail{
			{
				WalletID: 1, Chain: "eth",
				USDValue: nullDecimal("100"),
				Token:    domain.TokenDetail{Symbol: "MYST", Chain: "eth"},
			},
			{
				WalletID: 2, Chain: "eth",
				// all value fields null
				Token: domain.TokenDetail{Symbol: "MYST", Chain: "eth"},
			},
		})

		assets, err := svc.AggregateAssets(ctx, userID)

		assert.NoError(t, err)
		assert.Len(t, assets, 1)
		assert.True(t, decimal.NewFromInt(100).Equal(assets[0].TotalValue))
		assert.True(t, decimal.Zero.Equal(assets[0].TotalAmount))
	})

	t.Run("FirstHoldingSeedsDescriptiveFields", func(t *testing.T) {
		logoA := "https://img.example/a.png"
		logoB := "https://img.example/b.png"
		svc := newService([]domain.WalletTokenDetail{
			{
				WalletID: 1, Chain: "eth",
				USDValue: nullDecimal("10"),
				Token: domain.TokenDetail{
					Symbol: "USDT", Name: "Tether USD", Chain: "eth",
					Logo: &logoA, USDPrice: nullDecimal("1.00"),
				},
			},
			{
				WalletID: 2, Chain: "eth",
				USDValue: nullDecimal("20"),
				Token: domain.TokenDetail{
					Symbol: "USDT", Name: "Tether Clone", Chain: "eth",
					Logo: &logoB, USDPrice: nullDecimal("0.99"),
				},
			},
		})

		assets, err := svc.AggregateAssets(ctx, userID)

		assert.NoError(t, err)
		assert.Len(t, assets, 1)
		assert.Equal(t, "Tether USD", assets[0].Name)
		assert.Equal(t, &logoA, assets[0].Logo)
		assert.True(t, decimal.RequireFromString("1.00").Equal(assets[0].Price.Decimal))
	})

	t.Run("SortedByTotalValueDescending", func(t *testing.T) {
		svc := newService([]domain.WalletTokenDetail{
			{
				WalletID: 1, Chain: "eth",
				USDValue: nullDecimal("10"),
				Token:    domain.TokenDetail{Symbol: "SMALL", Chain: "eth"},
			},
			{
				WalletID: 1, Chain: "eth",
				// null value sorts as zero
				Token: domain.TokenDetail{Symbol: "EMPTY", Chain: "eth"},
			},
			{
				WalletID: 1, Chain: "eth",
				USDValue: nullDecimal("1000"),
				Token:    domain.TokenDetail{Symbol: "BIG", Chain: "eth"},
			},
		})

		assets, err := svc.AggregateAssets(ctx, userID)

		assert.NoError(t, err)
		assert.Len(t, assets, 3)
		assert.Equal(t, "BIG", assets[0].Symbol)
		assert.Equal(t, "SMALL", assets[1].Symbol)
		assert.Equal(t, "EMPTY", assets[2].Symbol)
	})
}
