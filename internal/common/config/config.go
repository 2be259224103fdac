package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/AlibekovAA/inference-auth/internal/common/constants"
	commonerrors "github.com/AlibekovAA/inference-auth/internal/common/errors"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

type AuthConfig struct {
	HTTPPort          string        `env:"AUTH_HTTP_PORT" envDefault:"8081"`
	StoreDriver       string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL       string        `env:"DATABASE_URL"`
	SQLitePath        string        `env:"SQLITE_PATH" envDefault:"data/accounts.db"`
	JWTSecret         string        `env:"JWT_SECRET,required,notEmpty"`
	JWTPreviousSecret string        `env:"JWT_PREVIOUS_SECRET"`
	AccessTokenTTL    time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"168h"`
	BcryptCost        int           `env:"BCRYPT_COST" envDefault:"12"`
	RequestTimeout    time.Duration `env:"AUTH_REQUEST_TIMEOUT" envDefault:"5s"`

	CircuitBreakerThreshold int32         `env:"DB_CIRCUIT_BREAKER_THRESHOLD" envDefault:"500"`
	CircuitBreakerTimeout   time.Duration `env:"DB_CIRCUIT_BREAKER_TIMEOUT" envDefault:"15s"`
	CircuitBreakerReset     time.Duration `env:"DB_CIRCUIT_BREAKER_RESET" envDefault:"10s"`

	LogDir   string `env:"LOG_DIR"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

func LoadAuthConfig() (AuthConfig, error) {
	var cfg AuthConfig
	if err := env.Parse(&cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) {
			for _, e := range aggErr.Errors {
				var missing env.EnvVarIsNotSetError
				var empty env.EmptyVarError
				if errors.As(e, &missing) || errors.As(e, &empty) {
					return AuthConfig{}, commonerrors.ErrMissingRequiredEnv.WithCause(err)
				}
			}
		}
		return AuthConfig{}, fmt.Errorf("failed to parse auth config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return AuthConfig{}, err
	}

	return cfg, nil
}

func (c *AuthConfig) validate() error {
	if err := validateJWTSecret(c.JWTSecret); err != nil {
		return err
	}
	if c.JWTPreviousSecret != "" {
		if err := validateJWTSecret(c.JWTPreviousSecret); err != nil {
			return err
		}
	}

	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return commonerrors.ErrMissingRequiredEnv.WithCause(errors.New("DATABASE_URL"))
		}
	case StoreDriverSQLite:
		if c.SQLitePath == "" {
			return commonerrors.ErrMissingRequiredEnv.WithCause(errors.New("SQLITE_PATH"))
		}
	default:
		return commonerrors.ErrUnsupportedStoreDriver.WithCause(fmt.Errorf("got %q", c.StoreDriver))
	}

	if c.AccessTokenTTL <= 0 {
		c.AccessTokenTTL = constants.DefaultAccessTokenTTL
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = constants.DefaultAuthRequestTimeout
	}

	return nil
}

func validateJWTSecret(secret string) error {
	if len(secret) < constants.JWTSecretMinLength {
		return commonerrors.ErrInvalidJWTSecret.WithCause(fmt.Errorf("got %d bytes", len(secret)))
	}
	return nil
}
