package identity

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// TokenDigest returns a hex digest of a bearer token for use as a cache key.
// Raw credentials must never appear in Redis keys or logs.
func TokenDigest(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
