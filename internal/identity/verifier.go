// Package identity verifies bearer credentials against the external identity
// provider and carries the resulting principal through request contexts.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/commonsroom/commonsroom/internal/model"
)

var (
	// ErrUnauthenticated indicates the credential is missing, malformed,
	// expired, or rejected by the identity provider.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnavailable indicates the identity provider could not be reached
	// before the deadline. Distinct from rejection; safe for callers to retry.
	ErrUnavailable = errors.New("identity provider unavailable")
)

// Verifier validates an opaque bearer token and resolves the principal behind
// it. Implementations must return ErrUnauthenticated for rejected tokens and
// ErrUnavailable for transport failures.
type Verifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}

// Client verifies tokens against a hosted identity service over HTTP.
type Client struct {
	baseURL    string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a Client for the identity provider at baseURL.
// Every verification call is bounded by timeout.
func NewClient(baseURL, serviceKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// userResponse is the subset of the provider's user payload we consume.
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Verify resolves the identity behind a bearer token.
func (c *Client) Verify(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.serviceKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, sanitizeTransportError(err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decode below.
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthenticated
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: provider returned %d", ErrUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: unexpected provider status %d", ErrUnauthenticated, resp.StatusCode)
	}

	var user userResponse
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: decode provider response: %s", ErrUnavailable, err)
	}
	if user.ID == "" {
		return nil, ErrUnauthenticated
	}

	return &model.Identity{ID: user.ID, Email: user.Email}, nil
}

// sanitizeTransportError strips URL detail from transport errors so tokens
// never leak into logs.
func sanitizeTransportError(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return uerr.Err.Error()
	}
	return err.Error()
}
