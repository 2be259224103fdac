package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AlibekovAA/inference-auth/internal/account/domain"
	"github.com/AlibekovAA/inference-auth/internal/common/clock"
	"github.com/AlibekovAA/inference-auth/internal/common/crypto"
	"github.com/AlibekovAA/inference-auth/internal/common/db"
)

const sqliteSelectAccount = `SELECT id, email, password_hash, display_name, created_at, last_authenticated_at FROM accounts`

// SQLiteRepository stores timestamps as RFC 3339 text with nanoseconds in UTC.
type SQLiteRepository struct {
	db          *sql.DB
	idGenerator crypto.IDGenerator
	clock       clock.Clock
	retry       db.RetryConfig
}

func NewSQLiteRepository(sqlDB *sql.DB, idGenerator crypto.IDGenerator, clk clock.Clock) *SQLiteRepository {
	return &SQLiteRepository{
		db:          sqlDB,
		idGenerator: idGenerator,
		clock:       clk,
		retry:       db.DefaultRetryConfig,
	}
}

func (r *SQLiteRepository) Create(ctx context.Context, account NewAccount) (domain.Account, error) {
	id, err := r.idGenerator.NewID()
	if err != nil {
		return domain.Account{}, fmt.Errorf("failed to generate account id: %w", err)
	}
	createdAt := r.clock.Now().UTC()

	start := time.Now()
	_, err = r.db.ExecContext(
		ctx,
		`INSERT INTO accounts (id, email, password_hash, display_name, created_at) VALUES (?, ?, ?, ?, ?)`,
		id,
		account.Email,
		account.PasswordHash,
		account.DisplayName,
		formatTime(createdAt),
	)
	if err != nil && db.IsSQLiteUniqueViolation(err) {
		db.MeasureQueryDuration(db.DriverSQLite, "create account", start)
		return domain.Account{}, ErrEmailAlreadyExists
	}
	if err := db.HandleExecError(err, db.DriverSQLite, "create account", start); err != nil {
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

func (r *SQLiteRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.findOne(ctx, "find account by email", sqliteSelectAccount+` WHERE email = ?`, email)
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id domain.ID) (domain.Account, error) {
	return r.findOne(ctx, "find account by id", sqliteSelectAccount+` WHERE id = ?`, string(id))
}

func (r *SQLiteRepository) findOne(ctx context.Context, operation, query string, arg string) (domain.Account, error) {
	var (
		id        string
		account   domain.Account
		createdAt string
		lastAuth  sql.NullString
	)
	err := db.RetryWithBackoff(ctx, nil, r.retry, func() error {
		start := time.Now()
		err := r.db.QueryRowContext(ctx, query, arg).Scan(
			&id,
			&account.Email,
			&account.PasswordHash,
			&account.DisplayName,
			&createdAt,
			&lastAuth,
		)
		return db.HandleQueryError(err, ErrAccountNotFound, db.DriverSQLite, operation, start)
	})
	if err != nil {
		return domain.Account{}, err
	}

	account.ID = domain.ID(id)
	if account.CreatedAt, err = parseTime(createdAt); err != nil {
		return domain.Account{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if lastAuth.Valid {
		at, err := parseTime(lastAuth.String)
		if err != nil {
			return domain.Account{}, fmt.Errorf("failed to parse last_authenticated_at: %w", err)
		}
		account.LastAuthenticatedAt = &at
	}

	return account, nil
}

func (r *SQLiteRepository) RecordAuthentication(ctx context.Context, id domain.ID, at time.Time) error {
	return db.RetryWithBackoff(ctx, nil, r.retry, func() error {
		start := time.Now()
		res, err := r.db.ExecContext(
			ctx,
			`UPDATE accounts SET last_authenticated_at = ? WHERE id = ?`,
			formatTime(at),
			string(id),
		)
		if err := db.HandleExecError(err, db.DriverSQLite, "record authentication", start); err != nil {
			return err
		}

		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read affected rows: %w", err)
		}
		if affected == 0 {
			return ErrAccountNotFound
		}
		return nil
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
