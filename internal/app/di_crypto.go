package app

import (
	"context"
	"fmt"

	cryptoService "github.com/clio-platform/clio/internal/crypto/service"
)

// KMSService returns the KMS service used to unwrap a KMS-wrapped field key.
func (c *Container) KMSService() cryptoService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = cryptoService.NewKMSService()
	})
	return c.kmsService
}

// FieldEncryptor returns the field encryptor. The key is loaded once; a missing or
// malformed key is a fatal configuration error.
func (c *Container) FieldEncryptor() (*cryptoService.FieldEncryptor, error) {
	c.fieldEncryptorInit.Do(func() {
		encryptor, err := cryptoService.NewFieldEncryptorFromConfig(
			context.Background(),
			c.config,
			c.KMSService(),
			c.Logger(),
		)
		if err != nil {
			c.setInitError("fieldEncryptor", fmt.Errorf("failed to initialize field encryptor: %w", err))
			return
		}
		c.fieldEncryptor = encryptor
	})
	if err := c.initError("fieldEncryptor"); err != nil {
		return nil, err
	}
	return c.fieldEncryptor, nil
}
