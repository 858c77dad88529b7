package service

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/clio-platform/clio/internal/crypto/domain"
)

func newTestEncryptor(t *testing.T) (*FieldEncryptor, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, nil))

	enc, err := NewFieldEncryptor(newTestKey(t), logger)
	require.NoError(t, err)
	return enc, buf
}

// flipHex flips the lowest bit of the first byte of a hex string.
func flipHex(t *testing.T, s string) string {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	b[0] ^= 0x01
	return hex.EncodeToString(b)
}

func TestNewFieldEncryptor(t *testing.T) {
	t.Run("Error_InvalidKeySize", func(t *testing.T) {
		enc, err := NewFieldEncryptor(make([]byte, 16), nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize)
		assert.Nil(t, enc)
	})

	t.Run("NilLoggerFallsBackToDefault", func(t *testing.T) {
		enc, err := NewFieldEncryptor(newTestKey(t), nil)
		require.NoError(t, err)
		assert.NotNil(t, enc.logger)
	})
}

func TestFieldEncryptor_Encrypt(t *testing.T) {
	enc, _ := newTestEncryptor(t)

	t.Run("NilReturnsNil", func(t *testing.T) {
		env, err := enc.Encrypt(nil)
		require.NoError(t, err)
		assert.Nil(t, env)
	})

	t.Run("TypedNilReturnsNil", func(t *testing.T) {
		type payload struct{ Token string }
		for _, value := range []any{
			map[string]any(nil),
			[]string(nil),
			(*payload)(nil),
			json.RawMessage(nil),
		} {
			env, err := enc.Encrypt(value)
			require.NoError(t, err)
			assert.Nil(t, env, "%T", value)
		}
	})

	t.Run("EmptyValuesAreSealed", func(t *testing.T) {
		for _, value := range []any{"", map[string]any{}, []string{}, 0} {
			env, err := enc.Encrypt(value)
			require.NoError(t, err)
			assert.NotNil(t, env, "%T", value)
		}
	})

	t.Run("StringEnvelope", func(t *testing.T) {
		env, err := enc.Encrypt("hunter2")
		require.NoError(t, err)
		require.NotNil(t, env)

		assert.Equal(t, cryptoDomain.ValueTypeString, env.ValueType)
		assert.Equal(t, cryptoDomain.AES256GCM, env.Algorithm)
		assert.Len(t, env.IV, cryptoDomain.IVSize*2)
		assert.Len(t, env.AuthTag, cryptoDomain.AuthTagSize*2)
		assert.Len(t, env.Ciphertext, len("hunter2")*2)
		assert.NotContains(t, env.Ciphertext, hex.EncodeToString([]byte("hunter2")))
	})

	t.Run("StructuredValueIsJSON", func(t *testing.T) {
		env, err := enc.Encrypt(map[string]any{"user": "svc_backup", "hash": "aad3b435"})
		require.NoError(t, err)
		assert.Equal(t, cryptoDomain.ValueTypeJSON, env.ValueType)
	})

	t.Run("Error_Unserializable", func(t *testing.T) {
		env, err := enc.Encrypt(make(chan int))
		assert.ErrorIs(t, err, cryptoDomain.ErrEncryptionFailed)
		assert.Nil(t, env)
	})

	t.Run("Error_InvalidRawJSON", func(t *testing.T) {
		env, err := enc.Encrypt(json.RawMessage(`{"broken"`))
		assert.ErrorIs(t, err, cryptoDomain.ErrEncryptionFailed)
		assert.Nil(t, env)
	})

	t.Run("FreshIVPerCall", func(t *testing.T) {
		seen := make(map[string]struct{})
		for i := 0; i < 200; i++ {
			env, err := enc.Encrypt("same value")
			require.NoError(t, err)
			_, dup := seen[env.IV]
			require.False(t, dup, "iv reused")
			seen[env.IV] = struct{}{}
		}
	})
}

func TestFieldEncryptor_RoundTrip(t *testing.T) {
	enc, _ := newTestEncryptor(t)

	testCases := []struct {
		name  string
		value any
	}{
		{name: "String", value: "P@ssw0rd!"},
		{name: "EmptyString", value: ""},
		{name: "Unicode", value: "пароль 密码"},
		{name: "Number", value: float64(42)},
		{name: "Bool", value: true},
		{name: "Array", value: []any{"a", float64(1), nil}},
		{name: "Object", value: map[string]any{
			"user":  "DOMAIN\\svc_sql",
			"ntlm":  "8846f7eaee8fb117ad06bdd830b7586c",
			"ports": []any{float64(1433), float64(445)},
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env, err := enc.Encrypt(tc.value)
			require.NoError(t, err)

			result := enc.Decrypt(env)
			require.Equal(t, cryptoDomain.StatusDecrypted, result.Status)
			assert.Equal(t, tc.value, result.Value)
		})
	}

	t.Run("RawJSONDecodesToValue", func(t *testing.T) {
		env, err := enc.Encrypt(json.RawMessage(`{ "b": 2, "a": 1 }`))
		require.NoError(t, err)

		result := enc.Decrypt(env)
		assert.Equal(t, map[string]any{"a": float64(1), "b": float64(2)}, result.Value)
	})

	t.Run("AcceptsEveryEnvelopeForm", func(t *testing.T) {
		env, err := enc.Encrypt("value")
		require.NoError(t, err)
		text, err := env.MarshalText()
		require.NoError(t, err)

		var asMap map[string]any
		require.NoError(t, json.Unmarshal([]byte(text), &asMap))

		for name, input := range map[string]any{
			"pointer": env,
			"value":   *env,
			"map":     asMap,
			"text":    text,
			"bytes":   []byte(text),
			"raw":     json.RawMessage(text),
		} {
			result := enc.Decrypt(input)
			assert.Equal(t, cryptoDomain.StatusDecrypted, result.Status, name)
			assert.Equal(t, "value", result.Value, name)
		}
	})
}

func TestFieldEncryptor_Decrypt(t *testing.T) {
	enc, logs := newTestEncryptor(t)

	t.Run("PassthroughLegacyPlaintext", func(t *testing.T) {
		for _, input := range []any{
			nil,
			"legacy plaintext password",
			"",
			float64(7),
			map[string]any{"user": "root"},
			`{"ciphertext":"abcd"}`,
			"{not json",
		} {
			result := enc.Decrypt(input)
			assert.Equal(t, cryptoDomain.StatusPassthrough, result.Status)
			assert.Equal(t, input, result.Value)
		}
	})

	t.Run("TamperDetection", func(t *testing.T) {
		tamper := map[string]func(e *cryptoDomain.Envelope){
			"ciphertext": func(e *cryptoDomain.Envelope) { e.Ciphertext = flipHex(t, e.Ciphertext) },
			"authTag":    func(e *cryptoDomain.Envelope) { e.AuthTag = flipHex(t, e.AuthTag) },
			"iv":         func(e *cryptoDomain.Envelope) { e.IV = flipHex(t, e.IV) },
		}

		for name, mutate := range tamper {
			env, err := enc.Encrypt("top secret")
			require.NoError(t, err)
			mutate(env)

			var result cryptoDomain.DecryptResult
			require.NotPanics(t, func() { result = enc.Decrypt(env) }, name)
			assert.True(t, result.Failed(), name)
			assert.Nil(t, result.Value, name)
			assert.Equal(t, cryptoDomain.DecryptionFailedPlaceholder, result.Display(), name)
			assert.ErrorIs(t, result.Reason, cryptoDomain.ErrDecryptionFailed, name)
		}
	})

	t.Run("MalformedEnvelopes", func(t *testing.T) {
		valid, err := enc.Encrypt("value")
		require.NoError(t, err)

		testCases := []struct {
			name   string
			mutate func(e *cryptoDomain.Envelope)
			reason error
		}{
			{
				name:   "AlgorithmMismatch",
				mutate: func(e *cryptoDomain.Envelope) { e.Algorithm = "chacha20-poly1305" },
				reason: cryptoDomain.ErrUnsupportedAlgorithm,
			},
			{
				name:   "CiphertextNotHex",
				mutate: func(e *cryptoDomain.Envelope) { e.Ciphertext = "zz" },
				reason: cryptoDomain.ErrMalformedEnvelope,
			},
			{
				name:   "ShortIV",
				mutate: func(e *cryptoDomain.Envelope) { e.IV = e.IV[:24] },
				reason: cryptoDomain.ErrMalformedEnvelope,
			},
			{
				name:   "LongAuthTag",
				mutate: func(e *cryptoDomain.Envelope) { e.AuthTag += "00" },
				reason: cryptoDomain.ErrMalformedEnvelope,
			},
			{
				name:   "UnknownValueType",
				mutate: func(e *cryptoDomain.Envelope) { e.ValueType = "binary" },
				reason: cryptoDomain.ErrMalformedEnvelope,
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				env := *valid
				tc.mutate(&env)

				result := enc.Decrypt(&env)
				assert.True(t, result.Failed())
				assert.ErrorIs(t, result.Reason, tc.reason)
			})
		}
	})

	t.Run("JSONPayloadParseFailure", func(t *testing.T) {
		env, err := enc.Encrypt("not json at all")
		require.NoError(t, err)
		env.ValueType = cryptoDomain.ValueTypeJSON

		result := enc.Decrypt(env)
		assert.True(t, result.Failed())
		assert.ErrorIs(t, result.Reason, cryptoDomain.ErrMalformedEnvelope)
	})

	t.Run("WrongKeyFails", func(t *testing.T) {
		other, _ := newTestEncryptor(t)
		env, err := other.Encrypt("value")
		require.NoError(t, err)

		assert.True(t, enc.Decrypt(env).Failed())
	})

	t.Run("FailureLogNeverContainsPlaintextOrKey", func(t *testing.T) {
		logs.Reset()
		env, err := enc.Encrypt("SuperSecretPlaintext")
		require.NoError(t, err)
		env.AuthTag = flipHex(t, env.AuthTag)

		require.True(t, enc.Decrypt(env).Failed())

		out := logs.String()
		assert.Contains(t, out, "field decryption failed")
		assert.Contains(t, out, string(cryptoDomain.AES256GCM))
		assert.NotContains(t, out, "SuperSecretPlaintext")
		assert.NotContains(t, out, env.Ciphertext)
	})
}

func TestFieldEncryptor_IsEncrypted(t *testing.T) {
	enc, _ := newTestEncryptor(t)

	env, err := enc.Encrypt("value")
	require.NoError(t, err)
	text, err := env.MarshalText()
	require.NoError(t, err)

	assert.True(t, enc.IsEncrypted(env))
	assert.True(t, enc.IsEncrypted(*env))
	assert.True(t, enc.IsEncrypted(text))

	assert.False(t, enc.IsEncrypted(nil))
	assert.False(t, enc.IsEncrypted("plaintext"))
	assert.False(t, enc.IsEncrypted(map[string]any{"iv": "00", "authTag": "00"}))
	assert.False(t, enc.IsEncrypted(&cryptoDomain.Envelope{}))

	// Shape only: a tampered envelope is still "encrypted".
	env.AuthTag = strings.Repeat("0", 32)
	assert.True(t, enc.IsEncrypted(env))
}

func TestFieldEncryptor_Concurrent(t *testing.T) {
	enc, _ := newTestEncryptor(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				env, err := enc.Encrypt("concurrent")
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, "concurrent", enc.Decrypt(env).Value)
			}
		}()
	}
	wg.Wait()
}
