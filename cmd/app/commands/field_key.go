package commands

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/clio-platform/clio/internal/crypto/domain"
)

// FieldCipher is the part of the field encryptor the operator commands use.
type FieldCipher interface {
	Encrypt(value any) (*cryptoDomain.Envelope, error)
	Decrypt(value any) cryptoDomain.DecryptResult
}

// RunGenerateFieldKey prints a fresh random 32-byte field key as 64 hex characters,
// ready to be set as FIELD_ENCRYPTION_KEY. Key material is zeroed after encoding.
func RunGenerateFieldKey(out io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	key := make([]byte, cryptoDomain.KeySize)
	defer cryptoDomain.Zero(key)

	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate field key: %w", err)
	}
	encoded := hex.EncodeToString(key)

	if format == "json" {
		return writeJSON(out, map[string]string{"field_encryption_key": encoded})
	}

	_, _ = fmt.Fprintln(out, "# Field Encryption Key")
	_, _ = fmt.Fprintln(out, "# Store this in your secrets manager. Losing it makes every encrypted field unreadable.")
	_, _ = fmt.Fprintln(out)
	_, err := fmt.Fprintf(out, "FIELD_ENCRYPTION_KEY=\"%s\"\n", encoded)
	return err
}

// RunEncryptField seals value with the configured key and prints the envelope JSON.
// With asJSON the value is parsed as a JSON document and stored with valueType json.
func RunEncryptField(cipher FieldCipher, logger *slog.Logger, out io.Writer, value string, asJSON bool) error {
	var plaintext any = value
	if asJSON {
		if !json.Valid([]byte(value)) {
			return errors.New("value is not valid JSON")
		}
		plaintext = json.RawMessage(value)
	}

	env, err := cipher.Encrypt(plaintext)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}

	text, err := env.MarshalText()
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	logger.Info("field encrypted", slog.String("value_type", string(env.ValueType)))

	_, err = fmt.Fprintln(out, text)
	return err
}

// RunDecryptField opens an envelope given as JSON text and prints the plaintext.
// Input that is not an envelope is printed unchanged as legacy plaintext. A failed
// decryption prints the placeholder and returns an error with the internal reason.
func RunDecryptField(cipher FieldCipher, logger *slog.Logger, out io.Writer, envelope, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	result := cipher.Decrypt(envelope)
	logger.Info("field decrypt attempted", slog.String("status", result.Status.String()))

	if format == "json" {
		if err := writeJSON(out, map[string]any{
			"status": result.Status.String(),
			"value":  result.Display(),
		}); err != nil {
			return err
		}
	} else {
		if err := writeDecryptedText(out, result.Display()); err != nil {
			return err
		}
	}

	if result.Failed() {
		return fmt.Errorf("%w: %v", cryptoDomain.ErrDecryptionFailed, result.Reason)
	}
	return nil
}

func writeDecryptedText(out io.Writer, value any) error {
	if s, ok := value.(string); ok {
		_, err := fmt.Fprintln(out, s)
		return err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
