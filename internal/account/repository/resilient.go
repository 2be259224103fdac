package repository

import (
	"context"
	"time"

	"github.com/AlibekovAA/inference-auth/internal/account/domain"
	"github.com/AlibekovAA/inference-auth/internal/common/resilience"
)

// ResilientRepository routes every call through a circuit breaker so a
// failing database is shed quickly instead of piling up requests.
type ResilientRepository struct {
	inner Repository
	cb    resilience.CircuitBreakerInterface
}

func NewResilientRepository(inner Repository, cb resilience.CircuitBreakerInterface) *ResilientRepository {
	return &ResilientRepository{inner: inner, cb: cb}
}

func (r *ResilientRepository) Create(ctx context.Context, account NewAccount) (domain.Account, error) {
	var created domain.Account
	err := r.cb.Call(ctx, func(ctx context.Context) error {
		var err error
		created, err = r.inner.Create(ctx, account)
		return err
	})
	return created, err
}

func (r *ResilientRepository) FindByEmail(ctx context.Context, email string) (domain.Account, error) {
	var account domain.Account
	err := r.cb.Call(ctx, func(ctx context.Context) error {
		var err error
		account, err = r.inner.FindByEmail(ctx, email)
		return err
	})
	return account, err
}

func (r *ResilientRepository) FindByID(ctx context.Context, id domain.ID) (domain.Account, error) {
	var account domain.Account
	err := r.cb.Call(ctx, func(ctx context.Context) error {
		var err error
		account, err = r.inner.FindByID(ctx, id)
		return err
	})
	return account, err
}

func (r *ResilientRepository) RecordAuthentication(ctx context.Context, id domain.ID, at time.Time) error {
	return r.cb.Call(ctx, func(ctx context.Context) error {
		return r.inner.RecordAuthentication(ctx, id, at)
	})
}
