package bootstrap

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/AlibekovAA/inference-auth/internal/account/migrations"
	accountrepo "github.com/AlibekovAA/inference-auth/internal/account/repository"
	"github.com/AlibekovAA/inference-auth/internal/common/clock"
	"github.com/AlibekovAA/inference-auth/internal/common/config"
	"github.com/AlibekovAA/inference-auth/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/inference-auth/internal/common/crypto"
	"github.com/AlibekovAA/inference-auth/internal/common/db"
	commonerrors "github.com/AlibekovAA/inference-auth/internal/common/errors"
	commonhttp "github.com/AlibekovAA/inference-auth/internal/common/http"
	"github.com/AlibekovAA/inference-auth/internal/common/logger"
	srv "github.com/AlibekovAA/inference-auth/internal/common/server"
)

type App struct {
	Log   *logger.Logger
	Clock clock.Clock
	Repo  accountrepo.Repository
	Store commonhttp.Pinger
	hooks []srv.ShutdownHook
}

type AuthApp struct {
	App
	Config config.AuthConfig
}

func NewAuthApp(ctx context.Context) (*AuthApp, error) {
	cfg, err := config.LoadAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := initializeLogger("auth", cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewAuthAppWithConfig(ctx, log, cfg)
}

// NewAuthAppWithConfig opens the configured account store and brings its
// schema up to date.
func NewAuthAppWithConfig(ctx context.Context, log *logger.Logger, cfg config.AuthConfig) (*AuthApp, error) {
	app, err := initializeApp(ctx, log, cfg)
	if err != nil {
		return nil, err
	}

	return &AuthApp{
		App:    *app,
		Config: cfg,
	}, nil
}

// ShutdownHooks releases the store. The returned hooks run in order.
func (a *App) ShutdownHooks() []srv.ShutdownHook {
	return a.hooks
}

func (a *App) AddShutdownHook(hook srv.ShutdownHook) {
	a.hooks = append(a.hooks, hook)
}

func initializeApp(ctx context.Context, log *logger.Logger, cfg config.AuthConfig) (*App, error) {
	clk := clock.NewRealClock()
	idGenerator := commoncrypto.NewUUIDGenerator()

	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		pool, err := db.NewPool(ctx, log, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}

		if err := migratePostgres(ctx, log, pool); err != nil {
			pool.Close()
			return nil, err
		}

		metricsCtx, stopMetrics := context.WithCancel(context.Background())
		db.StartPoolMetrics(metricsCtx, pool, constants.DBPoolMetricsInterval)

		return &App{
			Log:   log,
			Clock: clk,
			Repo:  accountrepo.NewPgRepository(pool, idGenerator, clk, log),
			Store: commonhttp.PingerFunc(pool.Ping),
			hooks: []srv.ShutdownHook{
				func(context.Context) error {
					stopMetrics()
					pool.Close()
					log.Info("database pool closed")
					return nil
				},
			},
		}, nil

	case config.StoreDriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}

		if err := runMigrations(ctx, log, sqlDB, goose.DialectSQLite3); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}

		log.Infof("sqlite account store opened at %s", cfg.SQLitePath)

		return &App{
			Log:   log,
			Clock: clk,
			Repo:  accountrepo.NewSQLiteRepository(sqlDB, idGenerator, clk),
			Store: commonhttp.PingerFunc(sqlDB.PingContext),
			hooks: []srv.ShutdownHook{
				func(context.Context) error {
					return sqlDB.Close()
				},
			},
		}, nil

	default:
		return nil, commonerrors.ErrUnsupportedStoreDriver.WithCause(fmt.Errorf("got %q", cfg.StoreDriver))
	}
}

// migratePostgres runs goose through a database/sql handle that shares the
// pool's connection settings.
func migratePostgres(ctx context.Context, log *logger.Logger, pool *pgxpool.Pool) error {
	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	return runMigrations(ctx, log, sqlDB, goose.DialectPostgres)
}

func runMigrations(ctx context.Context, log *logger.Logger, sqlDB *sql.DB, dialect goose.Dialect) error {
	ctx, cancel := context.WithTimeout(ctx, constants.DBMigrationTimeout)
	defer cancel()

	if err := migrations.Up(ctx, log, sqlDB, dialect); err != nil {
		return fmt.Errorf("failed to migrate account store: %w", err)
	}
	return nil
}

func initializeLogger(serviceName string, cfg config.AuthConfig) (*logger.Logger, error) {
	return logger.New(cfg.LogDir, serviceName, cfg.LogLevel)
}
