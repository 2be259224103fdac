package repository

import (
	"context"
	"time"

	"github.com/AlibekovAA/inference-auth/internal/account/domain"
	commonerrors "github.com/AlibekovAA/inference-auth/internal/common/errors"
)

// Repository persists accounts. Email uniqueness is enforced by the backing
// store's unique index, so concurrent Create calls for one email yield
// exactly one success.
type Repository interface {
	Create(ctx context.Context, account NewAccount) (domain.Account, error)
	FindByEmail(ctx context.Context, email string) (domain.Account, error)
	FindByID(ctx context.Context, id domain.ID) (domain.Account, error)
	RecordAuthentication(ctx context.Context, id domain.ID, at time.Time) error
}

type NewAccount struct {
	Email        string
	PasswordHash string
	DisplayName  string
}

var (
	ErrAccountNotFound    = commonerrors.ErrAccountNotFound
	ErrEmailAlreadyExists = commonerrors.ErrEmailAlreadyExists
)
