// Package cache provides a layered (memory + disk) response cache for
// collaborator calls: satellite analyses and fact-check verdicts are
// expensive and stable over short horizons.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented TTL cache.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a stable cache key from an arbitrary identifier, e.g.
// "satellite:ndvi:14.4000:100.1500" or a claim description.
func Key(id string) string {
	sum := sha256.Sum256([]byte(id))
	return "greenaudit:v1:" + hex.EncodeToString(sum[:])
}
