package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// ParseFieldKey normalizes the configured field key to 32 bytes.
//
// A 64-character hex string is decoded directly. Any other non-empty string is treated
// as a passphrase and stretched with PBKDF2-SHA256 (10,000 iterations, fixed salt).
// The caller owns the returned slice and should Zero it once a cipher is built.
func ParseFieldKey(raw string) ([]byte, error) {
	if raw == "" {
		return nil, ErrFieldKeyNotSet
	}

	var key []byte
	if len(raw) == 2*KeySize {
		if decoded, err := hex.DecodeString(raw); err == nil {
			key = decoded
		}
	}
	if key == nil {
		key = pbkdf2.Key([]byte(raw), []byte(keyDerivationSalt), keyDerivationIterations, KeySize, sha256.New)
	}

	if len(key) != KeySize {
		Zero(key)
		return nil, fmt.Errorf("%w: field key must be %d bytes, got %d", ErrInvalidKeySize, KeySize, len(key))
	}
	return key, nil
}
