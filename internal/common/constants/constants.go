package constants

import "time"

const (
	EmailMaxLength       = 254
	DisplayNameMaxLength = 128
	PasswordMinLength    = 6
	PasswordMaxLength    = 72
	JWTSecretMinLength   = 32

	DefaultBcryptCost = 12

	DefaultMaxRequestSize = 1 << 20

	RecordAuthenticationTimeout = 3 * time.Second

	DBPoolMaxConns          = 25
	DBPoolMinConns          = 5
	DBPoolConnMaxLifetime   = time.Hour
	DBPoolConnMaxIdleTime   = 30 * time.Minute
	DBPoolHealthCheck       = 1 * time.Minute
	DBPoolConnectTimeout    = 5 * time.Second
	DBPoolMaxAttempts       = 10
	DBPoolRetryDelay        = 1 * time.Second
	DBPoolMetricsInterval   = 30 * time.Second
	DBMigrationTimeout      = 1 * time.Minute
	SQLiteBusyTimeoutMillis = 5000

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second
	ServerMaxHeaderBytes    = 1 << 16

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	DefaultAuthHTTPPort = "8081"

	DefaultCircuitBreakerThreshold = 500
	DefaultCircuitBreakerTimeout   = 15 * time.Second
	DefaultCircuitBreakerReset     = 10 * time.Second

	DefaultAuthRequestTimeout = 5 * time.Second
	DefaultAccessTokenTTL     = 7 * 24 * time.Hour

	RateLimitCleanupInterval           = 5 * time.Minute
	RateLimitLoginRequestsPerSecond    = 1.0
	RateLimitLoginBurst                = 5
	RateLimitRegisterRequestsPerSecond = 0.2
	RateLimitRegisterBurst             = 3
	RateLimitGeneralRequestsPerSecond  = 20.0
	RateLimitGeneralBurst              = 40

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
