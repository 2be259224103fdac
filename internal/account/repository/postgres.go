package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/inference-auth/internal/account/domain"
	"github.com/AlibekovAA/inference-auth/internal/common/clock"
	"github.com/AlibekovAA/inference-auth/internal/common/crypto"
	"github.com/AlibekovAA/inference-auth/internal/common/db"
	"github.com/AlibekovAA/inference-auth/internal/common/logger"
)

const pgSelectAccount = `SELECT id::text, email, password_hash, display_name, created_at, last_authenticated_at FROM accounts`

type PgRepository struct {
	pool        *pgxpool.Pool
	idGenerator crypto.IDGenerator
	clock       clock.Clock
	log         *logger.Logger
	retry       db.RetryConfig
}

func NewPgRepository(pool *pgxpool.Pool, idGenerator crypto.IDGenerator, clk clock.Clock, log *logger.Logger) *PgRepository {
	return &PgRepository{
		pool:        pool,
		idGenerator: idGenerator,
		clock:       clk,
		log:         log,
		retry:       db.DefaultRetryConfig,
	}
}

func (r *PgRepository) Create(ctx context.Context, account NewAccount) (domain.Account, error) {
	id, err := r.idGenerator.NewID()
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to generate account id: %w", err)
	}
	createdAt := r.clock.Now().UTC().Truncate(time.Microsecond)

	start := time.Now()
	_, err = r.pool.Exec(
		ctx,
		`INSERT INTO accounts (id, email, password_hash, display_name, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id,
		account.Email,
		account.PasswordHash,
		account.DisplayName,
		createdAt,
	)
	if err != nil && db.IsUniqueViolation(err) {
		db.MeasureQueryDuration(db.DriverPostgres, "create account", start)
		return domain.Account{}, ErrEmailAlreadyExists
	}
	if err := db.HandleExecError(err, db.DriverPostgres, "create account", start); err != nil {
		return domain.Account{}, err
	}

	return domain.Account{
		ID:           domain.ID(id),
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		DisplayName:  account.DisplayName,
		CreatedAt:    createdAt,
	}, nil
}

func (r *PgRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.findOne(ctx, "find account by email", pgSelectAccount+` WHERE email = $1`, email)
}

func (r *PgRepository) FindByID(ctx context.Context, id domain.ID) (domain.Account, error) {
	return r.findOne(ctx, "find account by id", pgSelectAccount+` WHERE id::text = $1`, string(id))
}

func (r *PgRepository) findOne(ctx context.Context, operation, query string, arg string) (domain.Account, error) {
	var account domain.Account
	err := db.RetryWithBackoff(ctx, r.log, r.retry, func() error {
		start := time.Now()
		var id string
		err := r.pool.QueryRow(ctx, query, arg).Scan(
			&id,
			&account.Email,
			&account.PasswordHash,
			&account.DisplayName,
			&account.CreatedAt,
			&account.LastAuthenticatedAt,
		)
		account.ID = domain.ID(id)
		return db.HandleQueryError(err, ErrAccountNotFound, db.DriverPostgres, operation, start)
	})
	if err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (r *PgRepository) RecordAuthentication(ctx context.Context, id domain.ID, at time.Time) error {
	return db.RetryWithBackoff(ctx, r.log, r.retry, func() error {
		start := time.Now()
		tag, err := r.pool.Exec(
			ctx,
			`UPDATE accounts SET last_authenticated_at = $1 WHERE id::text = $2`,
			at.UTC(),
			string(id),
		)
		if err := db.HandleExecError(err, db.DriverPostgres, "record authentication", start); err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrAccountNotFound
		}
		return nil
	})
}
