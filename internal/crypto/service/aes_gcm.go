package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/clio-platform/clio/internal/crypto/domain"
)

// AESGCMCipher implements the AEAD interface using AES-256-GCM with a 16-byte nonce.
//
// Field envelopes carry a 16-byte IV rather than the 12-byte GCM default, so the
// cipher is built with cipher.NewGCMWithNonceSize. The 16-byte authentication tag is
// appended to the ciphertext by Encrypt and expected there by Decrypt.
//
// The cipher is stateless after construction and safe for concurrent use. Each call
// to Encrypt draws a fresh nonce from crypto/rand.
type AESGCMCipher struct {
	aead cipher.AEAD
}

// NewAESGCM creates a new AES-256-GCM cipher instance.
// The key must be exactly 32 bytes; it is copied into the AES key schedule, so the
// caller may zero its slice afterwards.
func NewAESGCM(key []byte) (*AESGCMCipher, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	aead, err := cipher.NewGCMWithNonceSize(block, cryptoDomain.IVSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &AESGCMCipher{aead: aead}, nil
}

// Encrypt encrypts plaintext using AES-256-GCM with optional additional authenticated data.
// Returns the ciphertext with the authentication tag appended and the random nonce used.
func (a *AESGCMCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, a.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext = a.aead.Seal(nil, nonce, plaintext, aad)
	return ciphertext, nonce, nil
}

// Decrypt verifies the authentication tag and decrypts ciphertext.
// A nonce of the wrong size is rejected here because GCM panics on it.
func (a *AESGCMCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != a.aead.NonceSize() {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", cryptoDomain.ErrMalformedEnvelope, a.aead.NonceSize())
	}
	if len(ciphertext) < a.aead.Overhead() {
		return nil, fmt.Errorf("%w: ciphertext shorter than tag", cryptoDomain.ErrMalformedEnvelope)
	}

	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}
