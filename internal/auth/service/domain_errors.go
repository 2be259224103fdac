package service

import (
	"net/http"

	commonerrors "github.com/AlibekovAA/inference-auth/internal/common/errors"
)

var (
	ErrInvalidCredentials = commonerrors.NewDomainError(
		"INVALID_CREDENTIALS",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"incorrect email or password",
	)

	ErrUnauthenticated = commonerrors.NewDomainError(
		"UNAUTHENTICATED",
		commonerrors.CategoryUnauthorized,
		http.StatusUnauthorized,
		"could not validate credentials",
	)

	ErrEmailTaken = commonerrors.NewDomainError(
		"EMAIL_TAKEN",
		commonerrors.CategoryConflict,
		http.StatusConflict,
		"email already registered",
	)

	ErrWeakSecret = commonerrors.NewDomainError(
		"WEAK_SECRET",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"password must be at least 6 characters",
	)

	ErrSecretTooLong = commonerrors.NewDomainError(
		"SECRET_TOO_LONG",
		commonerrors.CategoryValidation,
		http.StatusBadRequest,
		"password must be at most 72 bytes",
	)

	ErrValidation = commonerrors.ErrValidationFailed

	ErrServiceUnavailable = commonerrors.NewDomainError(
		"SERVICE_UNAVAILABLE",
		commonerrors.CategoryExternal,
		http.StatusServiceUnavailable,
		"service temporarily unavailable",
	)
)
