package domain

import (
	"github.com/clio-platform/clio/internal/errors"
)

// Field encryption error definitions.
//
// Configuration errors are fatal at construction time. ErrEncryptionFailed is
// returned to callers, who must not persist anything. Decryption problems are never
// returned from the encryptor; they are recorded in a failed DecryptResult and use
// the reasons below only for logging.
var (
	// ErrFieldKeyNotSet indicates FIELD_ENCRYPTION_KEY is empty.
	ErrFieldKeyNotSet = errors.Wrap(errors.ErrInvalidInput, "field encryption key is not set")

	// ErrInvalidKeySize indicates the normalized field key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrEncryptionFailed indicates the cipher, IV generation or serialization failed.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrUnsupportedAlgorithm indicates an envelope names an algorithm other than the configured one.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrMalformedEnvelope indicates an envelope has the right shape but undecodable fields.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed envelope")

	// ErrDecryptionFailed indicates authentication failed (wrong key, tampered data).
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
