package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"

	"github.com/AlibekovAA/inference-auth/internal/observability/metrics"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// HandleQueryError records the query duration and maps a missing row, from
// either pgx or database/sql, to notFoundErr.
func HandleQueryError(err error, notFoundErr error, driver, operation string, startTime time.Time) error {
	MeasureQueryDuration(driver, operation, startTime)

	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}
	metrics.DBQueryErrors.WithLabelValues(operation, driver, fmt.Sprintf("%T", err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func HandleExecError(err error, driver, operation string, startTime time.Time) error {
	MeasureQueryDuration(driver, operation, startTime)

	if err == nil {
		return nil
	}
	metrics.DBQueryErrors.WithLabelValues(operation, driver, fmt.Sprintf("%T", err)).Inc()
	return fmt.Errorf("failed to %s: %w", operation, err)
}

func MeasureQueryDuration(driver, operation string, startTime time.Time) {
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, driver).Observe(time.Since(startTime).Seconds())
}
