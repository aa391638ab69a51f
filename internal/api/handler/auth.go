// internal/api/handler/auth.go
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"chainfolio/internal/domain"
	"chainfolio/internal/repository"
)

type contextKey string

const userContextKey contextKey = "user"

// UserContext resolves the X-User-ID header to a stored user and places it on
// the request context. Requests without a resolvable user are rejected with
// 401. Session management itself lives outside this service; the header is
// the trusted identity boundary.
func UserContext(userRepo repository.UserRepository, dbExecutor repository.DBExecutor, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userIDStr := r.Header.Get("X-User-ID")
			userID, err := strconv.ParseInt(userIDStr, 10, 64)
			if err != nil || userID <= 0 {
				respondWithErrorMessage(w, logger, http.StatusUnauthorized, "Authentication required")
				return
			}

			user, err := userRepo.GetUserByID(r.Context(), dbExecutor, userID)
			if err != nil {
				respondWithErrorMessage(w, logger, http.StatusUnauthorized, "Authentication required")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// userFrom returns the authenticated user placed on the context by UserContext.
func userFrom(r *http.Request) *domain.User {
	user, _ := r.Context().Value(userContextKey).(*domain.User)
	return user
}
