// Package config declares the process-wide configuration surface, loaded
// once at boot via ectoenv.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds every environment-sourced setting for the gateway.
type Config struct {
	AppName     string `env:"APP_NAME" env-default:"reso-odata"`
	Port        int    `env:"PORT" env-default:"8080"`
	LogLevel    string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs  bool   `env:"PRETTY_LOGS" env-default:"false"`
	BaseURL     string `env:"BASE_URL" env-default:"http://localhost:8080"`
	StartupMaxAttempts int `env:"STARTUP_MAX_ATTEMPTS" env-default:"5"`

	HTTPServerWriteTimeoutSeconds int `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"30"`
	HTTPServerReadTimeoutSeconds  int `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HTTPServerIdleTimeoutSeconds  int `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"60"`

	// MLS backend (SQL Server, reached through an SSH tunnel).
	MLSDriver               string        `env:"MLS_DB_DRIVER" env-default:"sqlserver"`
	MLSHost                 string        `env:"MLS_DB_HOST" env-default:"" validate:"required"`
	MLSPort                 int           `env:"MLS_DB_PORT" env-default:"1433"`
	MLSUser                 string        `env:"MLS_DB_USER" env-default:"" validate:"required"`
	MLSPassword             string        `env:"MLS_DB_PASSWORD" env-default:"" validate:"required"`
	MLSDatabase             string        `env:"MLS_DB_NAME" env-default:"mls"`
	MLSMaxOpenConns         int           `env:"MLS_DB_MAX_OPEN_CONNS" env-default:"10"`
	MLSMaxIdleConns         int           `env:"MLS_DB_MAX_IDLE_CONNS" env-default:"5"`
	MLSQueryTimeoutSeconds  int           `env:"MLS_DB_QUERY_TIMEOUT_SECONDS" env-default:"30"`
	MLSReconnectWaitSeconds int           `env:"MLS_DB_RECONNECT_WAIT_SECONDS" env-default:"30"`

	// SSH tunnel to the MLS backend.
	SSHTunnelEnabled    bool   `env:"SSH_TUNNEL_ENABLED" env-default:"false"`
	SSHTunnelHost       string `env:"SSH_TUNNEL_HOST" env-default:""`
	SSHTunnelPort       int    `env:"SSH_TUNNEL_PORT" env-default:"22"`
	SSHTunnelUser       string `env:"SSH_TUNNEL_USER" env-default:""`
	SSHTunnelPrivateKey string `env:"SSH_TUNNEL_PRIVATE_KEY_PATH" env-default:""`

	// Token store (PostgreSQL).
	PGConnectionString  string        `env:"PG_CONNECTION_STRING" env-default:"" validate:"required"`
	PGMaxOpenConns      int           `env:"PG_MAX_OPEN_CONNS" env-default:"10"`
	PGMaxIdleConns      int           `env:"PG_MAX_IDLE_CONNS" env-default:"5"`
	PGConnectTimeout    time.Duration `env:"PG_CONNECT_TIMEOUT" env-default:"5s"`
	PGMigrationFolder   string        `env:"PG_MIGRATION_FOLDER_PATH" env-default:"db/migrations"`

	// OAuth2 token issuance.
	OAuthClientID         string        `env:"OAUTH_CLIENT_ID" env-default:"" validate:"required"`
	OAuthClientSecret     string        `env:"OAUTH_CLIENT_SECRET" env-default:"" validate:"required"`
	OAuthAccessTokenTTL   time.Duration `env:"OAUTH_ACCESS_TOKEN_TTL" env-default:"3600s"`
	OAuthRefreshTokenTTL  time.Duration `env:"OAUTH_REFRESH_TOKEN_TTL" env-default:"720h"`
	TokenCleanupInterval  time.Duration `env:"TOKEN_CLEANUP_INTERVAL" env-default:"5m"`

	// Optional next-link total-count memoization cache.
	CacheEnabled bool          `env:"CACHE_ENABLED" env-default:"false"`
	RedisHost    string        `env:"REDIS_HOST" env-default:"localhost"`
	RedisPort    int           `env:"REDIS_PORT" env-default:"6379"`
	RedisPassword string       `env:"REDIS_PASSWORD" env-default:""`
	RedisDB      int           `env:"REDIS_DB" env-default:"0"`
	CacheTTL     time.Duration `env:"CACHE_TTL" env-default:"10s"`

	// Tracing.
	OTELExporterOTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" env-default:""`
}

// Validate checks that every required setting was actually supplied, since
// env-default only covers optional fields. Call this once after
// ectoenv.BindEnv.
func (c Config) Validate() error {
	return validate.Struct(c)
}
