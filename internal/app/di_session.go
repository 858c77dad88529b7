package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	sessionHTTP "github.com/clio-platform/clio/internal/session/http"
	sessionStore "github.com/clio-platform/clio/internal/session/store"
	sessionUseCase "github.com/clio-platform/clio/internal/session/usecase"
)

// SessionStore returns the Redis-backed session store.
func (c *Container) SessionStore() (sessionStore.KVStore, error) {
	c.kvStoreInit.Do(func() {
		client, err := sessionStore.NewRedisClient(context.Background(), c.config)
		if err != nil {
			c.setInitError("kvStore", fmt.Errorf("failed to connect to session store: %w", err))
			return
		}
		c.redisClient = client
		c.kvStore = sessionStore.NewRedisStore(client, c.config.RedisOperationTimeout)
	})
	if err := c.initError("kvStore"); err != nil {
		return nil, err
	}
	return c.kvStore, nil
}

// SessionRetrier returns the retry policy wrapping every session store unit of work.
func (c *Container) SessionRetrier() (sessionStore.Retrier, error) {
	storeMetrics, err := c.StoreMetrics()
	if err != nil {
		return nil, err
	}

	return sessionStore.NewBackoffRetrier(sessionStore.RetryConfig{
		MaxRetries:      c.config.SessionStoreMaxRetries,
		InitialInterval: c.config.SessionStoreRetryInitialInterval,
		MaxInterval:     c.config.SessionStoreRetryMaxInterval,
	}, c.Logger(), sessionStore.WithStoreMetrics(storeMetrics)), nil
}

// SessionUseCase returns the session use case wrapped with metrics.
func (c *Container) SessionUseCase() (sessionUseCase.SessionUseCase, error) {
	c.sessionUseCaseInit.Do(func() {
		useCase, err := c.initSessionUseCase()
		if err != nil {
			c.setInitError("sessionUseCase", err)
			return
		}
		c.sessionUseCase = useCase
	})
	if err := c.initError("sessionUseCase"); err != nil {
		return nil, err
	}
	return c.sessionUseCase, nil
}

// SessionCookies returns the cookie settings shared by the middleware and handlers.
func (c *Container) SessionCookies() sessionHTTP.CookieConfig {
	return sessionHTTP.CookieConfig{
		Name:   c.config.SessionCookieName,
		Secure: c.config.SessionCookieSecure,
		MaxAge: c.config.SessionDuration,
	}
}

// SessionMiddleware returns the middleware guarding every /api route.
func (c *Container) SessionMiddleware() (gin.HandlerFunc, error) {
	useCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for middleware: %w", err)
	}
	return sessionHTTP.SessionMiddleware(useCase, c.SessionCookies(), c.Logger()), nil
}

// SessionHandler returns the session endpoints handler.
func (c *Container) SessionHandler() (*sessionHTTP.SessionHandler, error) {
	useCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for handler: %w", err)
	}
	return sessionHTTP.NewSessionHandler(useCase, c.SessionCookies(), c.Logger()), nil
}

func (c *Container) initSessionUseCase() (sessionUseCase.SessionUseCase, error) {
	kv, err := c.SessionStore()
	if err != nil {
		return nil, err
	}

	retrier, err := c.SessionRetrier()
	if err != nil {
		return nil, fmt.Errorf("failed to create session retrier: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for session use case: %w", err)
	}

	useCase := sessionUseCase.NewSessionUseCase(kv, retrier, sessionUseCase.Config{
		Duration:     c.config.SessionDuration,
		TombstoneTTL: c.config.SessionRegenerationTombstoneTTL,
		InstanceID:   c.InstanceID(),
	}, c.Logger())

	return sessionUseCase.NewSessionUseCaseWithMetrics(useCase, businessMetrics), nil
}
