package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/clio-platform/clio/internal/config"
	cryptoDomain "github.com/clio-platform/clio/internal/crypto/domain"
)

// LoadFieldKey resolves the configured field key into 32 key bytes.
//
// Without a KMS provider the configured value is parsed directly. With one, the value
// is base64 KMS ciphertext which is unwrapped through the keeper at cfg.KMSKeyURI
// before parsing. The caller owns the returned slice and should Zero it after use.
func LoadFieldKey(ctx context.Context, cfg *config.Config, kms KMSService, logger *slog.Logger) ([]byte, error) {
	if cfg.FieldEncryptionKey == "" {
		return nil, cryptoDomain.ErrFieldKeyNotSet
	}

	if cfg.KMSProvider == "" {
		logger.Info("field encryption key loaded", slog.String("source", "env"))
		return cryptoDomain.ParseFieldKey(cfg.FieldEncryptionKey)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(cfg.FieldEncryptionKey)
	if err != nil {
		ciphertext, err = base64.RawStdEncoding.DecodeString(cfg.FieldEncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode KMS-wrapped field key: %w", err)
		}
	}

	keeper, err := kms.OpenKeeper(ctx, cfg.KMSKeyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap field key with KMS: %w", err)
	}
	defer cryptoDomain.Zero(plaintext)

	key, err := cryptoDomain.ParseFieldKey(string(plaintext))
	if err != nil {
		return nil, err
	}

	logger.Info("field encryption key loaded",
		slog.String("source", "kms"),
		slog.String("kms_provider", cfg.KMSProvider),
	)
	return key, nil
}

// NewFieldEncryptorFromConfig loads the field key and builds the encryptor, zeroing
// the key bytes once the cipher holds its own copy.
func NewFieldEncryptorFromConfig(
	ctx context.Context,
	cfg *config.Config,
	kms KMSService,
	logger *slog.Logger,
) (*FieldEncryptor, error) {
	key, err := LoadFieldKey(ctx, cfg, kms, logger)
	if err != nil {
		return nil, err
	}
	defer cryptoDomain.Zero(key)

	return NewFieldEncryptor(key, logger)
}
