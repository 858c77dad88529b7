package app

import (
	"fmt"

	logSecretsHTTP "github.com/clio-platform/clio/internal/logsecrets/http"
	logSecretsRepository "github.com/clio-platform/clio/internal/logsecrets/repository"
	logSecretsUseCase "github.com/clio-platform/clio/internal/logsecrets/usecase"
)

// LogSecretsRepository returns the secrets column repository for the configured driver.
func (c *Container) LogSecretsRepository() (logSecretsUseCase.LogSecretsRepository, error) {
	c.logSecretsRepoInit.Do(func() {
		repo, err := c.initLogSecretsRepository()
		if err != nil {
			c.setInitError("logSecretsRepository", err)
			return
		}
		c.logSecretsRepo = repo
	})
	if err := c.initError("logSecretsRepository"); err != nil {
		return nil, err
	}
	return c.logSecretsRepo, nil
}

// LogSecretsUseCase returns the log secrets use case wrapped with metrics.
func (c *Container) LogSecretsUseCase() (logSecretsUseCase.LogSecretsUseCase, error) {
	c.logSecretsUseCaseInit.Do(func() {
		useCase, err := c.initLogSecretsUseCase()
		if err != nil {
			c.setInitError("logSecretsUseCase", err)
			return
		}
		c.logSecretsUseCase = useCase
	})
	if err := c.initError("logSecretsUseCase"); err != nil {
		return nil, err
	}
	return c.logSecretsUseCase, nil
}

// LogSecretsHandler returns the log secrets endpoints handler.
func (c *Container) LogSecretsHandler() (*logSecretsHTTP.LogSecretsHandler, error) {
	useCase, err := c.LogSecretsUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get log secrets use case for handler: %w", err)
	}
	return logSecretsHTTP.NewLogSecretsHandler(useCase, c.Logger()), nil
}

func (c *Container) initLogSecretsRepository() (logSecretsUseCase.LogSecretsRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for log secrets repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return logSecretsRepository.NewMySQLLogSecretsRepository(db), nil
	case "postgres":
		return logSecretsRepository.NewPostgreSQLLogSecretsRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initLogSecretsUseCase() (logSecretsUseCase.LogSecretsUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for log secrets use case: %w", err)
	}

	repo, err := c.LogSecretsRepository()
	if err != nil {
		return nil, err
	}

	encryptor, err := c.FieldEncryptor()
	if err != nil {
		return nil, err
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for log secrets use case: %w", err)
	}

	useCase := logSecretsUseCase.NewLogSecretsUseCase(txManager, repo, encryptor, c.Logger())
	return logSecretsUseCase.NewLogSecretsUseCaseWithMetrics(useCase, businessMetrics), nil
}
