// Package app provides the dependency injection container that assembles the
// application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/clio-platform/clio/internal/config"
	cryptoService "github.com/clio-platform/clio/internal/crypto/service"
	"github.com/clio-platform/clio/internal/database"
	"github.com/clio-platform/clio/internal/http"
	logSecretsUseCase "github.com/clio-platform/clio/internal/logsecrets/usecase"
	"github.com/clio-platform/clio/internal/metrics"
	sessionStore "github.com/clio-platform/clio/internal/session/store"
	sessionUseCase "github.com/clio-platform/clio/internal/session/usecase"
)

// Container holds all application dependencies. Components are created on first
// access and reused afterwards.
type Container struct {
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	txManager       database.TxManager
	redisClient     *redis.Client
	kvStore         sessionStore.KVStore
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	storeMetrics    metrics.StoreMetrics
	instanceID      string

	// Crypto
	kmsService     cryptoService.KMSService
	fieldEncryptor *cryptoService.FieldEncryptor

	// Use Cases
	sessionUseCase    sessionUseCase.SessionUseCase
	logSecretsRepo    logSecretsUseCase.LogSecretsRepository
	logSecretsUseCase logSecretsUseCase.LogSecretsUseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	mu                    sync.Mutex
	loggerInit            sync.Once
	dbInit                sync.Once
	txManagerInit         sync.Once
	redisClientInit       sync.Once
	kvStoreInit           sync.Once
	metricsProviderInit   sync.Once
	businessMetricsInit   sync.Once
	storeMetricsInit      sync.Once
	instanceIDInit        sync.Once
	kmsServiceInit        sync.Once
	fieldEncryptorInit    sync.Once
	sessionUseCaseInit    sync.Once
	logSecretsRepoInit    sync.Once
	logSecretsUseCaseInit sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
	initErrors            map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the JSON logger configured with the configured level.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// setInitError records the failure of a component so later calls return it.
func (c *Container) setInitError(name string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.initErrors[name] = err
}

// initError returns the recorded failure of a component, if any.
func (c *Container) initError(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[name]
}

// DB returns the database connection.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.setInitError("db", err)
			return
		}
		c.db = db
	})
	if err := c.initError("db"); err != nil {
		return nil, err
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.setInitError("txManager", fmt.Errorf("failed to get database for tx manager: %w", err))
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if err := c.initError("txManager"); err != nil {
		return nil, err
	}
	return c.txManager, nil
}

// MetricsProvider returns the metrics provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.setInitError("metricsProvider", fmt.Errorf("failed to create metrics provider: %w", err))
			return
		}
		c.metricsProvider = provider
	})
	if err := c.initError("metricsProvider"); err != nil {
		return nil, err
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the use case metrics recorder. It is a no-op when metrics
// are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.setInitError("businessMetrics", err)
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.setInitError("businessMetrics", fmt.Errorf("failed to create business metrics: %w", err))
			return
		}
		c.businessMetrics = bm
	})
	if err := c.initError("businessMetrics"); err != nil {
		return nil, err
	}
	return c.businessMetrics, nil
}

// StoreMetrics returns the session store metrics recorder. It is a no-op when metrics
// are disabled.
func (c *Container) StoreMetrics() (metrics.StoreMetrics, error) {
	c.storeMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.setInitError("storeMetrics", err)
			return
		}
		if provider == nil {
			c.storeMetrics = metrics.NewNoOpStoreMetrics()
			return
		}
		sm, err := metrics.NewStoreMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.setInitError("storeMetrics", fmt.Errorf("failed to create store metrics: %w", err))
			return
		}
		c.storeMetrics = sm
	})
	if err := c.initError("storeMetrics"); err != nil {
		return nil, err
	}
	return c.storeMetrics, nil
}

// InstanceID returns the id sessions are bound to. Without SERVER_INSTANCE_ID a
// random id is generated, so sessions do not survive a restart.
func (c *Container) InstanceID() string {
	c.instanceIDInit.Do(func() {
		c.instanceID = c.config.ServerInstanceID
		if c.instanceID == "" {
			c.instanceID = uuid.NewString()
			c.Logger().Warn("SERVER_INSTANCE_ID not set, sessions are bound to this process only",
				slog.String("instance_id", c.instanceID))
		}
	})
	return c.instanceID
}

// HTTPServer returns the API server with its router configured.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.setInitError("httpServer", err)
			return
		}
		c.httpServer = server
	})
	if err := c.initError("httpServer"); err != nil {
		return nil, err
	}
	return c.httpServer, nil
}

// MetricsServer returns the Prometheus metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.setInitError("metricsServer", err)
			return
		}
		if provider == nil {
			return
		}
		c.metricsServer = http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
	})
	if err := c.initError("metricsServer"); err != nil {
		return nil, err
	}
	return c.metricsServer, nil
}

// Shutdown releases every initialized resource. Servers are stopped before the
// stores they depend on.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.kvStore != nil {
		if err := c.kvStore.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("session store close: %w", err))
		}
	} else if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(shutdownErrors...))
	}
	return nil
}

func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler).With(slog.String("service", "clio"))
}

func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(context.Background(), database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	kv, err := c.SessionStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get session store for http server: %w", err)
	}

	sessionMiddleware, err := c.SessionMiddleware()
	if err != nil {
		return nil, err
	}

	sessionHandler, err := c.SessionHandler()
	if err != nil {
		return nil, err
	}

	logSecretsHandler, err := c.LogSecretsHandler()
	if err != nil {
		return nil, err
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(c.config.ServerHost, c.config.ServerPort, logger, map[string]http.Pinger{
		"database":      http.PingerFunc(db.PingContext),
		"session_store": kv,
	})
	server.SetupRouter(c.config, sessionMiddleware, sessionHandler, logSecretsHandler, provider)

	return server, nil
}
