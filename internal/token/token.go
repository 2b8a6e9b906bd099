// Package token generates opaque session tokens.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Size is the token entropy in bytes (160 bits).
const Size = 20

// Generate returns an unguessable 160-bit token as a 40-character lowercase
// hexadecimal string. Entropy comes from the OS cryptographic random source;
// if that source fails, an error is returned and no token is produced.
func Generate() (string, error) {
	buf := make([]byte, Size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random source: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
