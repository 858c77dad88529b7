package domain

// Algorithm identifies the cipher and mode an envelope was sealed with.
//
// Only one algorithm is produced today. It is still stored in every envelope so a
// future algorithm change is detectable instead of silently misdecrypting.
type Algorithm string

const (
	// AES256GCM is AES with a 256-bit key in Galois/Counter Mode, using a 16-byte IV
	// and a 16-byte authentication tag.
	AES256GCM Algorithm = "aes-256-gcm"
)

// ValueType records how the plaintext was serialized before encryption.
type ValueType string

const (
	// ValueTypeString marks a plaintext that was a string and is encrypted as-is.
	ValueTypeString ValueType = "string"
	// ValueTypeJSON marks a structured plaintext that was JSON-serialized before encryption.
	ValueTypeJSON ValueType = "json"
)

const (
	// KeySize is the field key size in bytes (256 bits).
	KeySize = 32
	// IVSize is the per-envelope random IV size in bytes.
	IVSize = 16
	// AuthTagSize is the GCM authentication tag size in bytes.
	AuthTagSize = 16

	// DecryptionFailedPlaceholder is rendered in place of a field that could not be decrypted.
	DecryptionFailedPlaceholder = "[DECRYPTION FAILED]"

	// keyDerivationIterations and keyDerivationSalt are fixed: changing either one makes
	// every envelope sealed with a passphrase-derived key unreadable.
	keyDerivationIterations = 10000
	keyDerivationSalt       = "clio-field-encryption-salt"
)
