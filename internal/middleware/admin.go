package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/commonsroom/commonsroom/internal/identity"
	"github.com/commonsroom/commonsroom/internal/model"
	"github.com/commonsroom/commonsroom/internal/repository"
)

// ProfileStore resolves the stored profile carrying a principal's role.
type ProfileStore interface {
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
}

// AdminConfig holds configuration for the admin guard.
type AdminConfig struct {
	Logger   *slog.Logger
	Profiles ProfileStore
}

// RequireAdmin returns a middleware that enforces the admin role.
// Must be applied after RequireAuth: role resolution is never attempted
// without a previously verified identity. Any failure short-circuits before
// the handler, so a privileged operation never partially executes.
func RequireAdmin(cfg AdminConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := identity.FromContext(r.Context())
			if id == nil {
				writeAuthError(w)
				return
			}

			profile, err := cfg.Profiles.GetProfile(r.Context(), id.ID)
			if err != nil {
				handleRoleError(cfg.Logger, w, r, id.ID, err)
				return
			}

			if !profile.IsAdmin() {
				cfg.Logger.Warn("admin access denied",
					slog.String("user_id", id.ID),
					slog.String("role", profile.Role),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeJSONError(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// handleRoleError maps profile lookup failures. A missing or unreadable
// profile is a per-request 403, never a crash; storage outages are 503.
func handleRoleError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, userID string, err error) {
	if errors.Is(err, repository.ErrProfileNotFound) {
		logger.Warn("role lookup failed",
			slog.String("reason", "profile_missing"),
			slog.String("user_id", userID),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusForbidden, "ROLE_LOOKUP_FAILED", "Could not resolve user role")
		return
	}

	if errors.Is(err, context.DeadlineExceeded) {
		logger.Error("profile store unavailable",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
			"Profile store unavailable, try again later")
		return
	}

	logger.Error("role lookup error",
		slog.String("error", err.Error()),
		slog.String("user_id", userID),
		slog.String("request_id", GetRequestID(r.Context())),
	)
	writeJSONError(w, http.StatusForbidden, "ROLE_LOOKUP_FAILED", "Could not resolve user role")
}

// writeJSONError writes a structured error response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, `{"error":{"code":%q,"message":%q}}`, code, message)
}
