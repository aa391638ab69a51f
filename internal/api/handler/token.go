// internal/api/handler/token.go
package handler

import (
	"log/slog"
	"net/http"

	"chainfolio/internal/service"
)

// TokenHandler handles HTTP requests for holdings and aggregated assets.
type TokenHandler struct {
	service service.TokenService
	logger  *slog.Logger
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(svc service.TokenService, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{
		service: svc,
		logger:  logger,
	}
}

// List handles GET /tokens/ with optional address and chain query filters.
func (h *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	addressFilter := r.URL.Query().Get("address")
	chainFilter := r.URL.Query().Get("chain")

	holdings, err := h.service.ListUserTokens(r.Context(), user.ID, addressFilter, chainFilter)
	if err != nil {
		h.logger.Error("failed to list tokens", "user_id", user.ID, "error", err)
		respondWithErrorMessage(w, h.logger, http.StatusInternalServerError, "Failed to retrieve tokens")
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, holdings)
}

// Assets handles GET /assets/: the aggregated cross-wallet view, sorted by
// total value descending.
func (h *TokenHandler) Assets(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	assets, err := h.service.AggregateAssets(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to aggregate assets", "user_id", user.ID, "error", err)
		respondWithErrorMessage(w, h.logger, http.StatusInternalServerError, "Failed to retrieve aggregated assets")
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, assets)
}
