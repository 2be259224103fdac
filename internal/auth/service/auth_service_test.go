package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	accountdomain "github.com/AlibekovAA/inference-auth/internal/account/domain"
	accountrepo "github.com/AlibekovAA/inference-auth/internal/account/repository"
	"github.com/AlibekovAA/inference-auth/internal/auth/service"
	"github.com/AlibekovAA/inference-auth/internal/common/clock"
	commonerrors "github.com/AlibekovAA/inference-auth/internal/common/errors"
	"github.com/AlibekovAA/inference-auth/internal/common/logger"
)

const (
	testJWTSecret      = "test-secret-key-must-be-at-least-32-bytes-long"
	testAccessTokenTTL = 7 * 24 * time.Hour
)

var testNow = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func setupAuthService(t *testing.T) (*service.AuthService, *mockAccountRepo, *mockHasher, *clock.MockClock) {
	_ = t
	repo := &mockAccountRepo{}
	hasher := &mockHasher{}
	mockClock := clock.NewMockClock(testNow)

	log, _ := logger.New("", "test", "error")

	svc := service.NewAuthService(
		service.AuthServiceDeps{
			Repo:   repo,
			Hasher: hasher,
			Clock:  mockClock,
			Log:    log,
		},
		service.AuthServiceConfig{
			JWTSecret:      testJWTSecret,
			AccessTokenTTL: testAccessTokenTTL,
		},
	)

	return svc, repo, hasher, mockClock
}

func TestAuthService_Register_Success(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)

	var stored accountrepo.NewAccount
	repo.createFunc = func(ctx context.Context, account accountrepo.NewAccount) (accountdomain.Account, error) {
		stored = account
		return accountdomain.Account{
			ID:           "account-1",
			Email:        account.Email,
			PasswordHash: account.PasswordHash,
			DisplayName:  account.DisplayName,
			CreatedAt:    testNow,
		}, nil
	}

	result, err := svc.Register(context.Background(), service.RegisterInput{
		Email:       "  A@X.com ",
		Password:    "secret1",
		DisplayName: " A ",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if stored.Email != "a@x.com" {
		t.Errorf("expected normalized email a@x.com, got %q", stored.Email)
	}
	if stored.PasswordHash != "hashed:secret1" {
		t.Errorf("expected digest from hasher, got %q", stored.PasswordHash)
	}
	if stored.DisplayName != "A" {
		t.Errorf("expected trimmed display name, got %q", stored.DisplayName)
	}

	if result.AccessToken == "" {
		t.Error("expected access token to be set")
	}
	if result.TokenType != "bearer" {
		t.Errorf("expected bearer token type, got %q", result.TokenType)
	}
	if !result.ExpiresAt.Equal(testNow.Add(testAccessTokenTTL)) {
		t.Errorf("expected expiry %v, got %v", testNow.Add(testAccessTokenTTL), result.ExpiresAt)
	}
	if result.Account.ID != "account-1" || result.Account.Email != "a@x.com" || result.Account.DisplayName != "A" {
		t.Errorf("unexpected public view %+v", result.Account)
	}

	claims, err := svc.Identify(context.Background(), result.AccessToken)
	if err != nil {
		t.Fatalf("expected issued token to identify, got %v", err)
	}
	if claims.Email != "a@x.com" || claims.AccountID != "account-1" || claims.DisplayName != "A" {
		t.Errorf("unexpected claims %+v", claims)
	}
}

func TestAuthService_Register_WeakSecretBeforeStore(t *testing.T) {
	svc, repo, hasher, _ := setupAuthService(t)

	hashed := false
	hasher.hashFunc = func(password string) (string, error) {
		hashed = true
		return "", nil
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:       "a@x.com",
		Password:    "12345",
		DisplayName: "A",
	})

	if !errors.Is(err, service.ErrWeakSecret) {
		t.Fatalf("expected ErrWeakSecret, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Errorf("expected no store access, got %d create calls", repo.createCalls)
	}
	if hashed {
		t.Error("expected secret not to be hashed")
	}
}

func TestAuthService_Register_SecretLengthBoundaries(t *testing.T) {
	testCases := []struct {
		name     string
		password string
		wantErr  error
	}{
		{"five characters", "abcde", service.ErrWeakSecret},
		{"six characters", "abcdef", nil},
		{"six multibyte characters", "пароль", nil},
		{"seventy two bytes", strings.Repeat("a", 72), nil},
		{"seventy three bytes", strings.Repeat("a", 73), service.ErrSecretTooLong},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _, _ := setupAuthService(t)

			_, err := svc.Register(context.Background(), service.RegisterInput{
				Email:    "a@x.com",
				Password: tc.password,
			})

			if tc.wantErr == nil && err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestAuthService_Register_InvalidEmail(t *testing.T) {
	for _, email := range []string{"", "   ", "not-an-email", strings.Repeat("a", 250) + "@x.com"} {
		svc, repo, _, _ := setupAuthService(t)

		_, err := svc.Register(context.Background(), service.RegisterInput{
			Email:    email,
			Password: "secret1",
		})

		if domainErr, ok := commonerrors.AsDomainError(err); !ok || domainErr.Code() != "VALIDATION_FAILED" {
			t.Errorf("email %q: expected VALIDATION_FAILED, got %v", email, err)
		}
		if repo.createCalls != 0 {
			t.Errorf("email %q: expected no store access", email)
		}
	}
}

func TestAuthService_Register_DisplayNameTooLong(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:       "a@x.com",
		Password:    "secret1",
		DisplayName: strings.Repeat("n", 129),
	})

	if !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)

	repo.createFunc = func(ctx context.Context, account accountrepo.NewAccount) (accountdomain.Account, error) {
		return accountdomain.Account{}, accountrepo.ErrEmailAlreadyExists
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:    "a@x.com",
		Password: "secret1",
	})

	if !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Register_StoreFailureIsInternal(t *testing.T) {
	svc, repo, _, _ := setupAuthService(t)

	repo.createFunc = func(ctx context.Context, account accountrepo.NewAccount) (accountdomain.Account, error) {
		return accountdomain.Account{}, errors.New("connection refused")
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:    "a@x.com",
		Password: "secret1",
	})

	domainErr, ok := commonerrors.AsDomainError(err)
	if !ok {
		t.Fatalf("expected domain error, got %v", err)
	}
	if domainErr.Code() != "DB_ERROR" || domainErr.HTTPStatus() != 500 {
		t.Errorf("expected DB_ERROR/500, got %s/%d", domainErr.Code(), domainErr.HTTPStatus())
	}
	if errors.Is(err, service.ErrEmailTaken) {
		t.Error("store failure must not look like a duplicate email")
	}
}

func TestAuthService_Register_HashFailure(t *testing.T) {
	svc, repo, hasher, _ := setupAuthService(t)

	hasher.hashFunc = func(password string) (string, error) {
		return "", errors.New("hash failed")
	}

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Email:    "a@x.com",
		Password: "secret1",
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if repo.createCalls != 0 {
		t.Error("expected no store access after hash failure")
	}
}
