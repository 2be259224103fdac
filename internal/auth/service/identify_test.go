package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AlibekovAA/inference-auth/internal/auth/service"
	"github.com/AlibekovAA/inference-auth/internal/common/jwtverify"
)

func TestAuthService_Identify_RejectsUniformly(t *testing.T) {
	svc, _, _, mockClock := setupAuthService(t)

	result, err := svc.Register(context.Background(), service.RegisterInput{Email: "a@x.com", Password: "secret1", DisplayName: "A"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	tampered := []byte(result.AccessToken)
	tampered[len(tampered)-2] ^= 0x01

	testCases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"tampered signature", string(tampered)},
		{"truncated", result.AccessToken[:len(result.AccessToken)/2]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Identify(context.Background(), tc.token)
			if err != service.ErrUnauthenticated {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}

	t.Run("expired", func(t *testing.T) {
		mockClock.Advance(testAccessTokenTTL)
		defer mockClock.SetTime(testNow)

		_, err := svc.Identify(context.Background(), result.AccessToken)
		if err != service.ErrUnauthenticated {
			t.Fatalf("expected ErrUnauthenticated, got %v", err)
		}
	})
}

func TestAuthService_Identify_ValidUntilExpiry(t *testing.T) {
	svc, _, _, mockClock := setupAuthService(t)

	result, err := svc.Register(context.Background(), service.RegisterInput{Email: "a@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	mockClock.Advance(testAccessTokenTTL - time.Second)

	if _, err := svc.Identify(context.Background(), result.AccessToken); err != nil {
		t.Fatalf("expected token to be valid one second before expiry, got %v", err)
	}
}

func TestAuthService_Logout_IsStateless(t *testing.T) {
	svc, _, _, _ := setupAuthService(t)

	result, err := svc.Register(context.Background(), service.RegisterInput{Email: "a@x.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	claims, err := svc.Identify(context.Background(), result.AccessToken)
	if err != nil {
		t.Fatalf("identify failed: %v", err)
	}

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("expected logout to succeed, got %v", err)
	}
	if err := svc.Logout(context.Background(), jwtverify.Claims{}); err != nil {
		t.Fatalf("expected logout to always succeed, got %v", err)
	}

	if _, err := svc.Identify(context.Background(), result.AccessToken); err != nil {
		if errors.Is(err, service.ErrUnauthenticated) {
			t.Fatal("token must remain valid after logout")
		}
		t.Fatalf("unexpected error: %v", err)
	}
}
