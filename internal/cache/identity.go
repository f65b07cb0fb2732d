package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/commonsroom/commonsroom/internal/model"
)

const (
	// identityCachePrefix is the Redis key prefix for verified identities.
	identityCachePrefix = "identity:token:"
	// identityCacheTTL bounds how long a verified token skips the provider.
	// Must stay well below the provider's access-token lifetime.
	identityCacheTTL = 5 * time.Minute
)

// cachedIdentity represents a verified identity stored in Redis.
type cachedIdentity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// GetIdentity retrieves a cached identity by token digest.
// Returns nil on cache miss; a miss is not an error.
func (c *Cache) GetIdentity(ctx context.Context, tokenDigest string) (*model.Identity, error) {
	key := identityCachePrefix + tokenDigest

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil //nolint:nilerr
	}

	var cached cachedIdentity
	if err := json.Unmarshal(data, &cached); err != nil {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.Identity{ID: cached.ID, Email: cached.Email}, nil
}

// SetIdentity caches a verified identity under its token digest.
func (c *Cache) SetIdentity(ctx context.Context, tokenDigest string, id *model.Identity) error {
	key := identityCachePrefix + tokenDigest

	data, err := json.Marshal(cachedIdentity{ID: id.ID, Email: id.Email})
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}

	return c.client.Set(ctx, key, data, identityCacheTTL).Err()
}

// DeleteIdentity removes a cached identity. Used when the provider reports a
// previously cached token as revoked.
func (c *Cache) DeleteIdentity(ctx context.Context, tokenDigest string) error {
	key := identityCachePrefix + tokenDigest
	return c.client.Del(ctx, key).Err()
}
