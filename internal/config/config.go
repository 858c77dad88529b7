// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	customValidation "github.com/clio-platform/clio/internal/validation"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the API server will bind to.
	ServerHost string
	// ServerPort is the port number the API server will listen on.
	ServerPort int

	// DBDriver is the database driver to use ("postgres" or "mysql").
	DBDriver string
	// DBConnectionString is the connection string for the database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// FieldEncryptionKey is the raw field encryption key: a 64-character hex string,
	// a passphrase, or base64 KMS ciphertext when KMSProvider is set.
	FieldEncryptionKey string

	// KMSProvider is the KMS provider wrapping the field key (e.g., "google", "aws", "azure").
	KMSProvider string
	// KMSKeyURI is the URI of the KMS key used to unwrap the field key.
	KMSKeyURI string

	// RedisHost is the host of the Redis session store.
	RedisHost string
	// RedisPort is the port of the Redis session store.
	RedisPort int
	// RedisPassword is the Redis AUTH password.
	RedisPassword string
	// RedisDB is the logical Redis database index.
	RedisDB int
	// RedisSSL enables TLS for the Redis connection.
	RedisSSL bool
	// RedisOperationTimeout bounds every single store call.
	RedisOperationTimeout time.Duration

	// SessionStoreMaxRetries is the retry ceiling for one session store unit of work.
	SessionStoreMaxRetries int
	// SessionStoreRetryInitialInterval is the first backoff delay between retries.
	SessionStoreRetryInitialInterval time.Duration
	// SessionStoreRetryMaxInterval caps the backoff delay between retries.
	SessionStoreRetryMaxInterval time.Duration

	// SessionDuration is the sliding session lifetime.
	SessionDuration time.Duration
	// SessionRegenerationTombstoneTTL is how long a regenerated session stays marked as superseded.
	SessionRegenerationTombstoneTTL time.Duration
	// SessionCookieName is the name of the cookie carrying the session token.
	SessionCookieName string
	// SessionCookieSecure sets the Secure flag on the session cookie.
	SessionCookieSecure bool
	// ServerInstanceID binds sessions to the instance (or instance group) that created them.
	ServerInstanceID string

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 3001),

		// Database configuration
		DBDriver: env.GetString("DB_DRIVER", "postgres"),
		DBConnectionString: env.GetString(
			"DB_CONNECTION_STRING",
			"postgres://postgres:postgres@db:5432/redteamlogger?sslmode=disable",
		),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Field encryption
		FieldEncryptionKey: env.GetString("FIELD_ENCRYPTION_KEY", ""),
		KMSProvider:        env.GetString("KMS_PROVIDER", ""),
		KMSKeyURI:          env.GetString("KMS_KEY_URI", ""),

		// Redis session store
		RedisHost:             env.GetString("REDIS_HOST", "localhost"),
		RedisPort:             env.GetInt("REDIS_PORT", 6379),
		RedisPassword:         env.GetString("REDIS_PASSWORD", ""),
		RedisDB:               env.GetInt("REDIS_DB", 0),
		RedisSSL:              env.GetBool("REDIS_SSL", false),
		RedisOperationTimeout: env.GetDuration("REDIS_OPERATION_TIMEOUT_MS", 2000, time.Millisecond),

		// Session store retry policy
		SessionStoreMaxRetries: env.GetInt("SESSION_STORE_MAX_RETRIES", 3),
		SessionStoreRetryInitialInterval: env.GetDuration(
			"SESSION_STORE_RETRY_INITIAL_INTERVAL_MS",
			100,
			time.Millisecond,
		),
		SessionStoreRetryMaxInterval: env.GetDuration(
			"SESSION_STORE_RETRY_MAX_INTERVAL_MS",
			2000,
			time.Millisecond,
		),

		// Sessions
		SessionDuration: env.GetDuration("SESSION_DURATION_SECONDS", 28800, time.Second),
		SessionRegenerationTombstoneTTL: env.GetDuration(
			"SESSION_REGENERATION_TOMBSTONE_SECONDS",
			60,
			time.Second,
		),
		SessionCookieName:   env.GetString("SESSION_COOKIE_NAME", "sessionToken"),
		SessionCookieSecure: env.GetBool("SESSION_COOKIE_SECURE", true),
		ServerInstanceID:    env.GetString("SERVER_INSTANCE_ID", ""),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", true),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", "https://localhost:3000"),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "clio"),
		MetricsPort:      env.GetInt("METRICS_PORT", 9090),
	}
}

// Validate checks the configuration for values that must prevent the process from
// serving traffic. A missing field encryption key is always fatal.
func (c *Config) Validate() error {
	return customValidation.WrapValidationError(validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.DBDriver, validation.Required, validation.In("postgres", "mysql")),
		validation.Field(&c.FieldEncryptionKey,
			validation.Required.Error("FIELD_ENCRYPTION_KEY is required"),
			validation.When(c.KMSProvider != "", customValidation.Base64),
		),
		validation.Field(&c.KMSKeyURI, validation.When(c.KMSProvider != "", validation.Required)),
		validation.Field(&c.RedisHost, validation.Required),
		validation.Field(&c.RedisPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.RedisOperationTimeout, validation.Required),
		validation.Field(&c.SessionStoreMaxRetries, validation.Min(0)),
		validation.Field(&c.SessionDuration, validation.Required),
		validation.Field(&c.SessionRegenerationTombstoneTTL, validation.Required),
		validation.Field(&c.SessionCookieName, validation.Required),
	))
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
