// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "chainfolio/internal/api"
	"chainfolio/internal/api/handler"
	"chainfolio/internal/config"
	"chainfolio/internal/provider"
	"chainfolio/internal/repository"
	"chainfolio/internal/repository/postgres"
	"chainfolio/internal/service"
	"chainfolio/internal/util"
	"chainfolio/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository        repository.UserRepository
	WalletRepository      repository.WalletRepository
	WalletUserRepository  repository.WalletUserRepository
	TokenRepository       repository.TokenRepository
	WalletTokenRepository repository.WalletTokenRepository

	// External provider
	TokenProvider provider.TokenProvider

	// Services
	TokenService  service.TokenService
	WalletService service.WalletService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Initialize Repositories
	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.WalletRepository = postgres.NewWalletRepository(app.DB)
	app.WalletUserRepository = postgres.NewWalletUserRepository(app.DB)
	app.TokenRepository = postgres.NewTokenRepository(app.DB)
	app.WalletTokenRepository = postgres.NewWalletTokenRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 5. Initialize the token provider client
	app.TokenProvider = provider.NewClient(
		app.Config.Provider.BaseURL,
		app.Config.Provider.APIKey,
		app.Config.Provider.Timeout,
		app.Config.Provider.ChainMap,
		app.Logger,
	)

	// 6. Initialize Services
	app.TokenService = service.NewTokenService(
		app.DB,
		app.TokenRepository,
		app.WalletTokenRepository,
		app.Logger,
	)
	app.WalletService = service.NewWalletService(
		app.DB, // DBTxBeginner
		app.DB, // DBExecutor
		app.WalletRepository,
		app.WalletUserRepository,
		app.TokenService,
		app.TokenProvider,
		app.Config.Provider.ChainMap,
		app.Logger,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	walletHandler := handler.NewWalletHandler(app.WalletService, app.Logger)
	tokenHandler := handler.NewTokenHandler(app.TokenService, app.Logger)
	userMiddleware := handler.UserContext(app.UserRepository, app.DB, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, tokenHandler, userMiddleware, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
