package security

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hasher produces deterministic salted hashes of sensitive identifiers
// (government id numbers). The raw value is never persisted; the hash is
// stable for a fixed salt so exact-match lookups remain possible.
type Hasher struct {
	salt string
}

func NewHasher(salt string) *Hasher {
	return &Hasher{salt: salt}
}

// HashSensitive returns the hex sha256 of salt+value, or nil when the
// input is nil or empty.
func (h *Hasher) HashSensitive(value *string) *string {
	if value == nil || *value == "" {
		return nil
	}
	sum := sha256.Sum256([]byte(h.salt + *value))
	out := hex.EncodeToString(sum[:])
	return &out
}
