package service

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"

	cryptoDomain "github.com/clio-platform/clio/internal/crypto/domain"
)

// FieldEncryptor seals and opens individual sensitive field values as envelopes.
//
// It holds only the AEAD built from the field key, so a single instance is shared by
// every request. Decrypt never returns an error: undecryptable envelopes come back as a
// failed DecryptResult and are logged with the reason and algorithm only.
type FieldEncryptor struct {
	aead      AEAD
	algorithm cryptoDomain.Algorithm
	logger    *slog.Logger
}

// NewFieldEncryptor builds an encryptor from a normalized 32-byte key.
func NewFieldEncryptor(key []byte, logger *slog.Logger) (*FieldEncryptor, error) {
	aead, err := NewAESGCM(key)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldEncryptor{
		aead:      aead,
		algorithm: cryptoDomain.AES256GCM,
		logger:    logger,
	}, nil
}

// Encrypt seals value into a new envelope. A nil value, including a typed nil pointer,
// map or slice, returns a nil envelope. Strings are encrypted as-is; anything else is
// JSON-encoded first.
func (f *FieldEncryptor) Encrypt(value any) (*cryptoDomain.Envelope, error) {
	if isNil(value) {
		return nil, nil
	}

	plaintext, valueType, err := encodePlaintext(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}
	defer cryptoDomain.Zero(plaintext)

	sealed, iv, err := f.aead.Encrypt(plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", cryptoDomain.ErrEncryptionFailed, err)
	}

	tagStart := len(sealed) - cryptoDomain.AuthTagSize
	return &cryptoDomain.Envelope{
		Ciphertext: hex.EncodeToString(sealed[:tagStart]),
		IV:         hex.EncodeToString(iv),
		AuthTag:    hex.EncodeToString(sealed[tagStart:]),
		ValueType:  valueType,
		Algorithm:  f.algorithm,
	}, nil
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Decrypt opens an envelope. Input that is not envelope-shaped is legacy plaintext
// and is passed through unchanged.
func (f *FieldEncryptor) Decrypt(value any) cryptoDomain.DecryptResult {
	env, ok := cryptoDomain.EnvelopeFromValue(value)
	if !ok {
		return cryptoDomain.Passthrough(value)
	}

	result, err := f.open(env)
	if err != nil {
		f.logger.Warn("field decryption failed",
			slog.String("reason", err.Error()),
			slog.String("algorithm", string(env.Algorithm)),
		)
		return cryptoDomain.Failure(err)
	}
	return cryptoDomain.Decrypted(result)
}

// IsEncrypted reports whether value has the envelope shape. It does not verify
// that the envelope decrypts.
func (f *FieldEncryptor) IsEncrypted(value any) bool {
	_, ok := cryptoDomain.EnvelopeFromValue(value)
	return ok
}

func (f *FieldEncryptor) open(env *cryptoDomain.Envelope) (any, error) {
	if env.Algorithm != f.algorithm {
		return nil, fmt.Errorf("%w: %q", cryptoDomain.ErrUnsupportedAlgorithm, env.Algorithm)
	}

	ciphertext, err := hex.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext is not hex", cryptoDomain.ErrMalformedEnvelope)
	}
	iv, err := hex.DecodeString(env.IV)
	if err != nil || len(iv) != cryptoDomain.IVSize {
		return nil, fmt.Errorf("%w: iv must be %d hex-encoded bytes", cryptoDomain.ErrMalformedEnvelope, cryptoDomain.IVSize)
	}
	tag, err := hex.DecodeString(env.AuthTag)
	if err != nil || len(tag) != cryptoDomain.AuthTagSize {
		return nil, fmt.Errorf(
			"%w: authTag must be %d hex-encoded bytes",
			cryptoDomain.ErrMalformedEnvelope,
			cryptoDomain.AuthTagSize,
		)
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := f.aead.Decrypt(sealed, iv, nil)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(plaintext)

	switch env.ValueType {
	case cryptoDomain.ValueTypeString:
		return string(plaintext), nil
	case cryptoDomain.ValueTypeJSON:
		var decoded any
		if err := json.Unmarshal(plaintext, &decoded); err != nil {
			return nil, fmt.Errorf("%w: json payload: %v", cryptoDomain.ErrMalformedEnvelope, err)
		}
		return decoded, nil
	default:
		return nil, fmt.Errorf("%w: unknown valueType %q", cryptoDomain.ErrMalformedEnvelope, env.ValueType)
	}
}

// encodePlaintext returns the bytes to encrypt. json.Marshal sorts map keys, which
// keeps the serialized form canonical.
func encodePlaintext(value any) ([]byte, cryptoDomain.ValueType, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), cryptoDomain.ValueTypeString, nil
	case json.RawMessage:
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), cryptoDomain.ValueTypeJSON, nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return b, cryptoDomain.ValueTypeJSON, nil
	}
}
