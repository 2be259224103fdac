package service

import (
	"context"
	"errors"
	"sync"
	"time"

	accountdomain "github.com/AlibekovAA/inference-auth/internal/account/domain"
	accountrepo "github.com/AlibekovAA/inference-auth/internal/account/repository"
	authdto "github.com/AlibekovAA/inference-auth/internal/auth/service/dto"
	"github.com/AlibekovAA/inference-auth/internal/auth/service/mapper"
	"github.com/AlibekovAA/inference-auth/internal/common/clock"
	"github.com/AlibekovAA/inference-auth/internal/common/constants"
	commoncrypto "github.com/AlibekovAA/inference-auth/internal/common/crypto"
	"github.com/AlibekovAA/inference-auth/internal/common/jwtverify"
	"github.com/AlibekovAA/inference-auth/internal/common/logger"
	"github.com/AlibekovAA/inference-auth/internal/common/resilience"
)

const TokenTypeBearer = "bearer"

// dummyPassword is hashed once and verified against when a login names an
// unknown email, so both failure paths cost one bcrypt comparison.
const dummyPassword = "inference-auth-timing-equalizer"

type AuthService struct {
	repo          accountrepo.Repository
	hasher        commoncrypto.PasswordHasher
	tokens        *TokenIssuer
	clock         clock.Clock
	log           *logger.Logger
	recordTimeout time.Duration
	dummyHashOnce sync.Once
	dummyHash     string
}

type AuthServiceDeps struct {
	Repo   accountrepo.Repository
	Hasher commoncrypto.PasswordHasher
	Clock  clock.Clock
	Log    *logger.Logger
}

type AuthServiceConfig struct {
	JWTSecret               string
	JWTPreviousSecret       string
	AccessTokenTTL          time.Duration
	RecordTimeout           time.Duration
	CircuitBreakerThreshold int32
	CircuitBreakerTimeout   time.Duration
	CircuitBreakerReset     time.Duration
}

func NewAuthService(deps AuthServiceDeps, config AuthServiceConfig) *AuthService {
	if config.AccessTokenTTL <= 0 {
		config.AccessTokenTTL = constants.DefaultAccessTokenTTL
	}
	if config.RecordTimeout <= 0 {
		config.RecordTimeout = constants.RecordAuthenticationTimeout
	}

	repo := deps.Repo
	if config.CircuitBreakerThreshold > 0 {
		cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Threshold:  config.CircuitBreakerThreshold,
			Timeout:    config.CircuitBreakerTimeout,
			ResetAfter: config.CircuitBreakerReset,
			Name:       "account_store",
			Logger:     deps.Log,
		})
		repo = accountrepo.NewResilientRepository(repo, cb)
	}

	return &AuthService{
		repo:          repo,
		hasher:        deps.Hasher,
		tokens:        NewTokenIssuer(config.JWTSecret, config.JWTPreviousSecret, config.AccessTokenTTL, deps.Clock, deps.Log),
		clock:         deps.Clock,
		log:           deps.Log,
		recordTimeout: config.RecordTimeout,
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
	Account     authdto.Account
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	email := NormalizeEmail(input.Email)

	s.log.WithFields(ctx, logger.Fields{
		"email":  email,
		"action": "register_attempt",
	}).Info("register attempt")

	if err := validateEmail(email); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return AuthResult{}, err
	}
	if err := validateSecret(input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_weak_secret",
		}).Warnf("register validation failed: %v", err)
		return AuthResult{}, err
	}
	displayName, err := normalizeDisplayName(input.DisplayName)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		return AuthResult{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return AuthResult{}, newInternalError("HASH_ERROR", "failed to hash password", err)
	}

	account, err := s.repo.Create(ctx, accountrepo.NewAccount{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
	})
	if err != nil {
		if errors.Is(err, accountrepo.ErrEmailAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "register_email_taken",
			}).Warn("register failed: email already registered")
			return AuthResult{}, ErrEmailTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_create_failed",
		}).Errorf("register failed: %v", err)
		return AuthResult{}, storeError("DB_ERROR", "failed to create account", err)
	}

	incrementAccountsRegistered()

	result, err := s.issue(ctx, account)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"email":      email,
		"account_id": string(account.ID),
		"action":     "register_success",
	}).Info("register success")

	return result, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := NormalizeEmail(input.Email)

	s.log.WithFields(ctx, logger.Fields{
		"email":  email,
		"action": "login_attempt",
	}).Info("login attempt")

	account, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, accountrepo.ErrAccountNotFound) {
			s.hasher.Verify(s.dummyDigest(), input.Password)
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "login_account_not_found",
			}).Warn("login failed: invalid credentials")
			incrementLogins(loginResultInvalidCredentials)
			return AuthResult{}, ErrInvalidCredentials
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "login_fetch_failed",
		}).Errorf("login failed: %v", err)
		incrementLogins(loginResultError)
		return AuthResult{}, storeError("DB_ERROR", "failed to fetch account", err)
	}

	if !s.hasher.Verify(account.PasswordHash, input.Password) {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "login_invalid_password",
		}).Warn("login failed: invalid credentials")
		incrementLogins(loginResultInvalidCredentials)
		return AuthResult{}, ErrInvalidCredentials
	}

	s.recordAuthentication(ctx, account.ID)

	result, err := s.issue(ctx, account)
	if err != nil {
		incrementLogins(loginResultError)
		return AuthResult{}, err
	}

	incrementLogins(loginResultSuccess)
	s.log.WithFields(ctx, logger.Fields{
		"email":      email,
		"account_id": string(account.ID),
		"action":     "login_success",
	}).Info("login success")

	return result, nil
}

// Identify resolves a presented credential to its claims. Missing, malformed,
// tampered and expired tokens all yield ErrUnauthenticated.
func (s *AuthService) Identify(ctx context.Context, token string) (jwtverify.Claims, error) {
	return s.tokens.Verify(ctx, token)
}

// Logout acknowledges the request. Tokens are stateless and stay valid until
// they expire; the client is expected to discard its copy.
func (s *AuthService) Logout(ctx context.Context, claims jwtverify.Claims) error {
	s.log.WithFields(ctx, logger.Fields{
		"account_id": claims.AccountID,
		"action":     "logout",
	}).Info("logout acknowledged")
	return nil
}

func (s *AuthService) issue(ctx context.Context, account accountdomain.Account) (AuthResult, error) {
	issued, err := s.tokens.IssueAccessToken(TokenClaims{
		Email:       account.Email,
		AccountID:   string(account.ID),
		DisplayName: account.DisplayName,
	})
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"account_id": string(account.ID),
			"action":     "token_issue_failed",
		}).Errorf("token issue failed: %v", err)
		return AuthResult{}, err
	}

	return AuthResult{
		AccessToken: issued.Token,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   issued.ExpiresAt,
		Account:     mapper.AccountToDTO(account),
	}, nil
}

// recordAuthentication stamps the login time. Failures are logged and
// counted but never fail the login.
func (s *AuthService) recordAuthentication(ctx context.Context, id accountdomain.ID) {
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.recordTimeout)
	defer cancel()

	if err := s.repo.RecordAuthentication(recordCtx, id, s.clock.Now()); err != nil {
		incrementAuthenticationRecordFailures()
		s.log.WithFields(ctx, logger.Fields{
			"account_id": string(id),
			"action":     "record_authentication_failed",
		}).Warnf("failed to record authentication: %v", err)
	}
}

func (s *AuthService) dummyDigest() string {
	s.dummyHashOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.log.Warnf("failed to prepare dummy digest: %v", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
