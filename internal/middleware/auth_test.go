package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/commonsroom/commonsroom/internal/identity"
	"github.com/commonsroom/commonsroom/internal/metrics"
	"github.com/commonsroom/commonsroom/internal/model"
)

type fakeVerifier struct {
	identity *model.Identity
	err      error
	calls    int
}

func (v *fakeVerifier) Verify(_ context.Context, _ string) (*model.Identity, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

type fakeIdentityCache struct {
	entries map[string]*model.Identity
}

func newFakeIdentityCache() *fakeIdentityCache {
	return &fakeIdentityCache{entries: make(map[string]*model.Identity)}
}

func (c *fakeIdentityCache) GetIdentity(_ context.Context, digest string) (*model.Identity, error) {
	return c.entries[digest], nil
}

func (c *fakeIdentityCache) SetIdentity(_ context.Context, digest string, id *model.Identity) error {
	c.entries[digest] = id
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// okHandler records whether the inner handler ran and with which identity.
type okHandler struct {
	called   bool
	identity *model.Identity
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.identity = identity.FromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

func TestRequireAuthMissingHeader(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "no header", header: ""},
		{name: "not bearer", header: "Basic dXNlcjpwYXNz"},
		{name: "bare scheme", header: "Bearer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{}
			inner := &okHandler{}
			mw := RequireAuth(AuthConfig{
				Logger:   testLogger(),
				Verifier: verifier,
				Cache:    newFakeIdentityCache(),
			})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/feedback/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			mw(inner).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if inner.called {
				t.Error("handler ran without credentials")
			}
			if verifier.calls != 0 {
				t.Errorf("verifier called %d times, want 0", verifier.calls)
			}
		})
	}
}

func TestRequireAuthValidToken(t *testing.T) {
	verifier := &fakeVerifier{identity: &model.Identity{ID: "user-1", Email: "user-1@example.com"}}
	cache := newFakeIdentityCache()
	inner := &okHandler{}
	mw := RequireAuth(AuthConfig{
		Logger:   testLogger(),
		Verifier: verifier,
		Cache:    cache,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feedback/me", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	rec := httptest.NewRecorder()

	mw(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !inner.called {
		t.Fatal("handler did not run")
	}
	if inner.identity == nil || inner.identity.ID != "user-1" {
		t.Errorf("identity in context = %+v, want user-1", inner.identity)
	}

	// Verified identity lands in the cache under the token digest.
	digest := identity.TokenDigest("good-token")
	if cache.entries[digest] == nil {
		t.Error("identity not cached after verification")
	}
}

func TestRequireAuthCacheHitSkipsVerifier(t *testing.T) {
	verifier := &fakeVerifier{err: errors.New("verifier should not be called")}
	cache := newFakeIdentityCache()
	cache.entries[identity.TokenDigest("cached-token")] = &model.Identity{ID: "user-1"}

	recorder := metrics.NewInMemory()
	inner := &okHandler{}
	mw := RequireAuth(AuthConfig{
		Logger:   testLogger(),
		Verifier: verifier,
		Cache:    cache,
		Metrics:  recorder,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feedback/me", nil)
	req.Header.Set("Authorization", "Bearer cached-token")
	rec := httptest.NewRecorder()

	mw(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if verifier.calls != 0 {
		t.Errorf("verifier called %d times, want 0", verifier.calls)
	}

	snap := recorder.Snapshot()
	if snap.IdentityCacheHits != 1 || snap.IdentityCacheMisses != 0 {
		t.Errorf("cache hits/misses = %d/%d, want 1/0", snap.IdentityCacheHits, snap.IdentityCacheMisses)
	}
}

func TestRequireAuthInvalidToken(t *testing.T) {
	verifier := &fakeVerifier{err: identity.ErrUnauthenticated}
	inner := &okHandler{}
	mw := RequireAuth(AuthConfig{
		Logger:   testLogger(),
		Verifier: verifier,
		Cache:    newFakeIdentityCache(),
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feedback/me", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	rec := httptest.NewRecorder()

	mw(inner).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if inner.called {
		t.Error("handler ran with rejected token")
	}
}

func TestRequireAuthProviderUnavailable(t *testing.T) {
	for _, err := range []error{identity.ErrUnavailable, context.DeadlineExceeded} {
		verifier := &fakeVerifier{err: err}
		inner := &okHandler{}
		mw := RequireAuth(AuthConfig{
			Logger:   testLogger(),
			Verifier: verifier,
			Cache:    newFakeIdentityCache(),
		})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/feedback/me", nil)
		req.Header.Set("Authorization", "Bearer token")
		rec := httptest.NewRecorder()

		mw(inner).ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("status for %v = %d, want 503", err, rec.Code)
		}
		if inner.called {
			t.Errorf("handler ran during provider outage (%v)", err)
		}
	}
}
