package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/commonsroom/commonsroom/internal/identity"
	"github.com/commonsroom/commonsroom/internal/metrics"
	"github.com/commonsroom/commonsroom/internal/model"
)

// IdentityCache caches verified identities keyed by token digest.
// *cache.Cache satisfies it; tests substitute a fake.
type IdentityCache interface {
	GetIdentity(ctx context.Context, tokenDigest string) (*model.Identity, error)
	SetIdentity(ctx context.Context, tokenDigest string, id *model.Identity) error
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger   *slog.Logger
	Verifier identity.Verifier
	Cache    IdentityCache
	Metrics  metrics.Recorder
}

// RequireAuth returns a middleware that authenticates requests.
// It extracts the bearer token from the Authorization header, verifies it
// against the identity provider, and injects the resulting Identity into the
// request context. No handler logic runs for unauthenticated requests.
func RequireAuth(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			// Check cache first; cache keys carry a digest, never the token
			digest := identity.TokenDigest(token)
			id, _ := cfg.Cache.GetIdentity(r.Context(), digest)
			cacheHit := id != nil

			if cacheHit {
				cfg.Metrics.IncIdentityCacheHit()
			} else {
				cfg.Metrics.IncIdentityCacheMiss()
			}

			if id == nil {
				var err error
				id, err = cfg.Verifier.Verify(r.Context(), token)
				if err != nil {
					handleVerifyError(cfg.Logger, w, r, err)
					return
				}
				_ = cfg.Cache.SetIdentity(r.Context(), digest, id)
			}

			cfg.Logger.Info("authentication successful",
				slog.String("user_id", id.ID),
				slog.String("ip", r.RemoteAddr),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.Bool("cache_hit", cacheHit),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := identity.ContextWithIdentity(r.Context(), id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// handleVerifyError maps verifier failures to responses. Provider outages are
// surfaced as 503 so callers know a retry may succeed; everything else is a
// uniform 401.
func handleVerifyError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, identity.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
		logger.Error("identity provider unavailable",
			slog.String("error", err.Error()),
			slog.String("request_id", GetRequestID(r.Context())),
		)
		writeJSONError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE",
			"Identity provider unavailable, try again later")
		return
	}

	logger.Warn("authentication failed",
		slog.String("reason", "invalid_token"),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
	writeAuthError(w)
}

// extractBearerToken extracts the bearer token from the Authorization header.
// Returns empty string if the header is absent or malformed.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Invalid or missing credentials")
}
