// Package password turns plaintext passwords into the salted digests
// persisted alongside user records.
package password

import (
	"crypto/sha1"
	"encoding/hex"
)

// Hasher produces verifiable password digests. The digest format is
// SHA1(salt + password) rendered as lowercase hex, which is what the
// existing user records contain; changing it would lock every account out.
type Hasher struct {
	salt string
}

// NewHasher constructs a Hasher with the given process-wide salt.
func NewHasher(salt string) *Hasher {
	return &Hasher{salt: salt}
}

// Hash returns the digest for the given password. Deterministic: the same
// password always yields the same digest under the same salt.
func (h *Hasher) Hash(password string) string {
	sum := sha1.Sum([]byte(h.salt + password))
	return hex.EncodeToString(sum[:])
}
