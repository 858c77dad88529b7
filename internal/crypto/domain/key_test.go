package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/pbkdf2"
)

func TestParseFieldKey(t *testing.T) {
	t.Run("hex key is decoded directly", func(t *testing.T) {
		raw := "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
		key, err := ParseFieldKey(raw)
		require.NoError(t, err)

		expected, _ := hex.DecodeString(raw)
		assert.Equal(t, expected, key)
	})

	t.Run("uppercase hex key is decoded directly", func(t *testing.T) {
		raw := "000102030405060708090A0B0C0D0E0F101112131415161718191A1B1C1D1E1F"
		key, err := ParseFieldKey(raw)
		require.NoError(t, err)
		assert.Equal(t, byte(0x1f), key[31])
	})

	t.Run("passphrase is derived", func(t *testing.T) {
		key, err := ParseFieldKey("correct horse battery staple")
		require.NoError(t, err)
		assert.Len(t, key, KeySize)
	})

	t.Run("derivation is deterministic", func(t *testing.T) {
		k1, err := ParseFieldKey("correct horse battery staple")
		require.NoError(t, err)
		k2, err := ParseFieldKey("correct horse battery staple")
		require.NoError(t, err)
		assert.Equal(t, k1, k2)
	})

	t.Run("different passphrases derive different keys", func(t *testing.T) {
		k1, err := ParseFieldKey("passphrase-one")
		require.NoError(t, err)
		k2, err := ParseFieldKey("passphrase-two")
		require.NoError(t, err)
		assert.False(t, bytes.Equal(k1, k2))
	})

	t.Run("64 characters that are not hex are derived", func(t *testing.T) {
		raw := "zz0102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
		key, err := ParseFieldKey(raw)
		require.NoError(t, err)
		expected := pbkdf2.Key([]byte(raw), []byte(keyDerivationSalt), keyDerivationIterations, KeySize, sha256.New)
		assert.Equal(t, expected, key)
	})

	t.Run("short hex string is derived, not decoded", func(t *testing.T) {
		key, err := ParseFieldKey("deadbeef")
		require.NoError(t, err)
		assert.Len(t, key, KeySize)
	})

	t.Run("empty key", func(t *testing.T) {
		key, err := ParseFieldKey("")
		assert.ErrorIs(t, err, ErrFieldKeyNotSet)
		assert.Nil(t, key)
	})
}
