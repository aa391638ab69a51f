// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"chainfolio/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router. userMiddleware resolves
// the requesting user; every portfolio route sits behind it.
func NewRouter(
	walletHandler *handler.WalletHandler,
	tokenHandler *handler.TokenHandler,
	userMiddleware func(http.Handler) http.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(userMiddleware)

		r.Route("/wallets", func(r chi.Router) {
			r.Get("/", walletHandler.List)
			r.Post("/add/", walletHandler.Add)
			r.Post("/sync/", walletHandler.Sync)
			r.Get("/sync/", walletHandler.SyncAll)
			r.Post("/remove/", walletHandler.Remove)
			r.Get("/supported-chains/", walletHandler.SupportedChains)
		})

		r.Get("/tokens/", tokenHandler.List)
		r.Get("/assets/", tokenHandler.Assets)
	})

	return r
}
