package service

import (
	"errors"
	"net/http"

	commonerrors "github.com/AlibekovAA/inference-auth/internal/common/errors"
)

// storeError converts a store failure that is not an expected outcome into
// an internal error, or a 503 when the circuit is open.
func storeError(code, message string, err error) error {
	if errors.Is(err, commonerrors.ErrCircuitOpen) {
		return ErrServiceUnavailable.WithCause(err)
	}
	return newInternalError(code, message, err)
}

func newInternalError(code, message string, cause error) commonerrors.DomainError {
	err := commonerrors.NewDomainError(
		code,
		commonerrors.CategoryInternal,
		http.StatusInternalServerError,
		message,
	)
	if cause != nil {
		err = err.WithCause(cause)
	}
	return err
}
