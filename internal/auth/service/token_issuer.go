package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/AlibekovAA/inference-auth/internal/common/clock"
	"github.com/AlibekovAA/inference-auth/internal/common/jwtverify"
	"github.com/AlibekovAA/inference-auth/internal/common/logger"
)

type TokenClaims struct {
	Email       string
	AccountID   string
	DisplayName string
}

type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies HS256 access tokens. Tokens are stateless:
// nothing is stored, so a token stays valid until its exp passes.
type TokenIssuer struct {
	signingKey       []byte
	verificationKeys [][]byte
	clock            clock.Clock
	accessTokenTTL   time.Duration
	log              *logger.Logger
}

// NewTokenIssuer signs with secret. A non-empty previousSecret is accepted
// for verification only, so tokens signed before a rotation keep working.
func NewTokenIssuer(
	secret string,
	previousSecret string,
	accessTokenTTL time.Duration,
	clock clock.Clock,
	log *logger.Logger,
) *TokenIssuer {
	keys := [][]byte{[]byte(secret)}
	if previousSecret != "" {
		keys = append(keys, []byte(previousSecret))
	}
	return &TokenIssuer{
		signingKey:       []byte(secret),
		verificationKeys: keys,
		clock:            clock,
		accessTokenTTL:   accessTokenTTL,
		log:              log,
	}
}

func (ti *TokenIssuer) IssueAccessToken(claims TokenClaims) (IssuedToken, error) {
	return ti.Issue(claims, ti.accessTokenTTL)
}

// Issue signs claims with an expiry of now+ttl, truncated to whole seconds.
// A token issued with ttl <= 0 is already expired.
func (ti *TokenIssuer) Issue(claims TokenClaims, ttl time.Duration) (IssuedToken, error) {
	now := ti.clock.Now()
	expiresAt := jwt.NewNumericDate(now.Add(ttl))

	wire := jwtverify.AccessTokenClaims{
		AccountID:   claims.AccountID,
		DisplayName: claims.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: expiresAt,
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, wire).SignedString(ti.signingKey)
	if err != nil {
		return IssuedToken{}, newInternalError("TOKEN_ISSUE_FAILED", "failed to issue token", err)
	}

	incrementAccessTokensIssued()
	return IssuedToken{Token: tokenString, ExpiresAt: expiresAt.Time}, nil
}

// Verify returns the token's claims or ErrUnauthenticated. The reason a token
// was rejected is logged at debug level and never returned.
func (ti *TokenIssuer) Verify(ctx context.Context, tokenString string) (jwtverify.Claims, error) {
	claims, err := jwtverify.ParseToken(tokenString, ti.verificationKeys, ti.clock.Now)
	if err != nil {
		recordTokenValidation(false)
		if ti.log != nil && ti.log.ShouldLog(logger.DEBUG) {
			ti.log.WithFields(ctx, logger.Fields{
				"action": "token_rejected",
			}).Debugf("token rejected: %v", err)
		}
		return jwtverify.Claims{}, ErrUnauthenticated
	}

	recordTokenValidation(true)
	return claims, nil
}
