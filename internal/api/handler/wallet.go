// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"chainfolio/internal/service"
	"chainfolio/internal/util"
)

// minAddressLength is a basic sanity bound on wallet addresses.
const minAddressLength = 26

// WalletHandler handles HTTP requests for the wallet registry.
type WalletHandler struct {
	service service.WalletService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service: svc,
		logger:  logger,
	}
}

// WalletRequest is the request body shared by add, sync and remove.
type WalletRequest struct {
	Address string `json:"address"`
	Chain   string `json:"chain"`
}

func decodeWalletRequest(r *http.Request) (WalletRequest, error) {
	var req WalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, util.ErrInvalidInput
	}
	if req.Address == "" || req.Chain == "" {
		return req, fmt.Errorf("both wallet address and chain are required: %w", util.ErrInvalidInput)
	}
	return req, nil
}

// List handles GET /wallets/.
func (h *WalletHandler) List(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	wallets, err := h.service.ListWallets(r.Context(), user.ID, "", "")
	if err != nil {
		h.logger.Error("failed to list wallets", "user_id", user.ID, "error", err)
		respondWithErrorMessage(w, h.logger, http.StatusInternalServerError, "Failed to retrieve wallets")
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, wallets)
}

// Add handles POST /wallets/add/: register a wallet and run the initial sync.
func (h *WalletHandler) Add(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	req, err := decodeWalletRequest(r)
	if err != nil {
		respondWithErrorMessage(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Address) < minAddressLength {
		respondWithErrorMessage(w, h.logger, http.StatusBadRequest, "wallet address is too short")
		return
	}

	wallet, err := h.service.AddWallet(r.Context(), user.ID, req.Address, req.Chain)
	if err != nil {
		switch {
		case util.IsError(err, util.ErrDuplicateWallet),
			util.IsError(err, util.ErrProvider),
			util.IsError(err, util.ErrInvalidInput):
			respondWithErrorMessage(w, h.logger, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to add wallet", "user_id", user.ID, "address", req.Address, "error", err)
			respondWithErrorMessage(w, h.logger, http.StatusInternalServerError, "Failed to add wallet")
		}
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, wallet)
}

// Sync handles POST /wallets/sync/: sync one tracked wallet.
func (h *WalletHandler) Sync(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	req, err := decodeWalletRequest(r)
	if err != nil {
		respondWithErrorMessage(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	wallet, tokenCount, err := h.service.SyncWallet(r.Context(), user.ID, req.Address, req.Chain)
	if err != nil {
		switch {
		case util.IsError(err, util.ErrWalletNotInPortfolio),
			util.IsError(err, util.ErrProvider):
			respondWithErrorMessage(w, h.logger, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to sync wallet", "user_id", user.ID, "address", req.Address, "error", err)
			respondWithErrorMessage(w, h.logger, http.StatusInternalServerError, "Failed to sync wallet")
		}
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"wallet":      wallet,
		"token_count": tokenCount,
	})
}

// SyncAll handles GET /wallets/sync/: sync every wallet the user tracks.
func (h *WalletHandler) SyncAll(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	syncID, results, err := h.service.SyncAllWallets(r.Context(), user.ID)
	if err != nil {
		if util.IsError(err, util.ErrNoWallets) {
			respondWithErrorMessage(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to sync all wallets", "user_id", user.ID, "error", err)
		respondWithErrorMessage(w, h.logger, http.StatusInternalServerError, "Failed to sync wallets")
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Successfully synced %d wallets", len(results)),
		"sync_id": syncID,
		"results": results,
	})
}

// Remove handles POST /wallets/remove/: detach a wallet from the portfolio.
func (h *WalletHandler) Remove(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)

	req, err := decodeWalletRequest(r)
	if err != nil {
		respondWithErrorMessage(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	message, err := h.service.RemoveWallet(r.Context(), user.ID, req.Address, req.Chain)
	if err != nil {
		if util.IsError(err, util.ErrWalletNotInPortfolio) {
			respondWithErrorMessage(w, h.logger, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("failed to remove wallet", "user_id", user.ID, "address", req.Address, "error", err)
		respondWithErrorMessage(w, h.logger, http.StatusInternalServerError, "Failed to remove wallet")
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]string{"message": message})
}

// SupportedChains handles GET /wallets/supported-chains/.
func (h *WalletHandler) SupportedChains(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"supported_chains": h.service.SupportedChains(),
	})
}
