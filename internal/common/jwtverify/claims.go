package jwtverify

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	commonerrors "github.com/AlibekovAA/inference-auth/internal/common/errors"
)

// Claims is the identity carried by a verified access token.
type Claims struct {
	Email       string
	AccountID   string
	DisplayName string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// AccessTokenClaims is the wire form: sub holds the email, user_id the account id.
type AccessTokenClaims struct {
	AccountID   string `json:"user_id"`
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// ParseToken verifies an HS256 token against each key in turn. The first key
// is the active secret and any further keys are accepted during rotation.
// Returned errors describe the cause and must not be shown to clients.
func ParseToken(tokenString string, keys [][]byte, now func() time.Time) (Claims, error) {
	if tokenString == "" {
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(errors.New("empty token"))
	}
	if len(keys) == 0 {
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(errors.New("no verification keys"))
	}

	keySet := jwt.VerificationKeySet{Keys: make([]jwt.VerificationKey, 0, len(keys))}
	for _, k := range keys {
		keySet.Keys = append(keySet.Keys, k)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}

	var wire AccessTokenClaims
	parsed, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, &wire, func(token *jwt.Token) (any, error) {
		return keySet, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrTokenUnverifiable) {
			return Claims{}, commonerrors.ErrInvalidTokenSigningMethod.WithCause(err)
		}
		return Claims{}, commonerrors.ErrInvalidToken.WithCause(err)
	}
	if !parsed.Valid {
		return Claims{}, commonerrors.ErrInvalidToken
	}

	if wire.Subject == "" || wire.AccountID == "" || wire.ExpiresAt == nil {
		return Claims{}, commonerrors.ErrMissingTokenClaims
	}

	claims := Claims{
		Email:       wire.Subject,
		AccountID:   wire.AccountID,
		DisplayName: wire.DisplayName,
		ExpiresAt:   wire.ExpiresAt.Time,
	}
	if wire.IssuedAt != nil {
		claims.IssuedAt = wire.IssuedAt.Time
	}
	return claims, nil
}
