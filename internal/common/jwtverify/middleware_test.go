package jwtverify

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	commonerrors "github.com/AlibekovAA/inference-auth/internal/common/errors"
	"github.com/AlibekovAA/inference-auth/internal/common/logger"
)

type identifierFunc func(ctx context.Context, token string) (Claims, error)

func (f identifierFunc) Identify(ctx context.Context, token string) (Claims, error) {
	return f(ctx, token)
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"":                   "",
		"Bearer abc":         "abc",
		"bearer abc":         "abc",
		"Basic dXNlcjpwdw==": "",
		"Bearer":             "",
		"Bearer   abc  ":     "abc",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		assert.Equal(t, want, BearerToken(req), "header %q", header)
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test", "error")

	identifier := identifierFunc(func(_ context.Context, token string) (Claims, error) {
		if token != "good" {
			return Claims{}, commonerrors.ErrInvalidToken.WithCause(errors.New("bad"))
		}
		return Claims{Email: "a@x.com", AccountID: "acc-1"}, nil
	})

	var seen Claims
	handler := Middleware(identifier, log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "acc-1", seen.AccountID)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
