// Package cache stores computed schedules keyed by the inputs that produced
// them.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value stored under key. ok is false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set stores value under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

const keyPrefix = "fredmortgage:schedule:"

// Key derives a content address from parts. Equal parts always produce the
// same key, so a schedule is shared by every mortgage with the same inputs.
// Changed inputs produce a new key, so entries are never invalidated; they
// only expire.
func Key(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return keyPrefix + hex.EncodeToString(h[:])
}
