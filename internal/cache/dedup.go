// Package cache provides the duplicate-delivery guard for inbound webhooks.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// keyPrefix versions the fingerprint format so a future change to the
// canonical form cannot collide with stale entries.
const keyPrefix = "lead:v1:"

// Guard remembers fingerprints of recently relayed webhook documents so a
// repeat delivery can be rejected instead of creating a duplicate CRM
// lead. Entries live in process memory only and expire after the TTL.
type Guard struct {
	store *gocache.Cache
	ttl   time.Duration
}

// NewGuard creates a guard whose entries expire after ttl.
func NewGuard(ttl time.Duration, cleanupInterval time.Duration) *Guard {
	return &Guard{
		store: gocache.New(ttl, cleanupInterval),
		ttl:   ttl,
	}
}

// Fingerprint returns the stable dedup key for a validated document.
// encoding/json marshals map keys in sorted order, so semantically
// identical documents always produce identical fingerprints.
func Fingerprint(doc map[string]interface{}) string {
	raw, err := json.Marshal(doc)
	if err != nil {
		return ""
	}

	sum := sha256.Sum256(raw)
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Seen records the fingerprint and reports whether it was already present.
// Add fails on an existing key, which makes the check-and-set atomic.
func (g *Guard) Seen(fingerprint string) bool {
	if fingerprint == "" {
		return false
	}
	return g.store.Add(fingerprint, struct{}{}, g.ttl) != nil
}
