package service_test

import (
	"context"
	"strings"
	"sync"
	"time"

	accountdomain "github.com/AlibekovAA/inference-auth/internal/account/domain"
	accountrepo "github.com/AlibekovAA/inference-auth/internal/account/repository"
)

type mockAccountRepo struct {
	createFunc               func(ctx context.Context, account accountrepo.NewAccount) (accountdomain.Account, error)
	findByEmailFunc          func(ctx context.Context, email string) (accountdomain.Account, error)
	findByIDFunc             func(ctx context.Context, id accountdomain.ID) (accountdomain.Account, error)
	recordAuthenticationFunc func(ctx context.Context, id accountdomain.ID, at time.Time) error

	mu               sync.Mutex
	createCalls      int
	findByEmailCalls int
	recordAuthCalls  int
}

func (m *mockAccountRepo) Create(ctx context.Context, account accountrepo.NewAccount) (accountdomain.Account, error) {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.createFunc != nil {
		return m.createFunc(ctx, account)
	}
	return accountdomain.Account{
		ID:           "account-123",
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		DisplayName:  account.DisplayName,
	}, nil
}

func (m *mockAccountRepo) FindByEmail(ctx context.Context, email string) (accountdomain.Account, error) {
	m.mu.Lock()
	m.findByEmailCalls++
	m.mu.Unlock()
	if m.findByEmailFunc != nil {
		return m.findByEmailFunc(ctx, email)
	}
	return accountdomain.Account{}, accountrepo.ErrAccountNotFound
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id accountdomain.ID) (accountdomain.Account, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return accountdomain.Account{}, accountrepo.ErrAccountNotFound
}

func (m *mockAccountRepo) RecordAuthentication(ctx context.Context, id accountdomain.ID, at time.Time) error {
	m.mu.Lock()
	m.recordAuthCalls++
	m.mu.Unlock()
	if m.recordAuthenticationFunc != nil {
		return m.recordAuthenticationFunc(ctx, id, at)
	}
	return nil
}

// mockHasher produces readable digests of the form "hashed:<password>".
type mockHasher struct {
	hashFunc    func(password string) (string, error)
	verifyFunc  func(hash, password string) bool
	mu          sync.Mutex
	verifyCalls int
}

func (m *mockHasher) Hash(password string) (string, error) {
	if m.hashFunc != nil {
		return m.hashFunc(password)
	}
	return "hashed:" + password, nil
}

func (m *mockHasher) Verify(hash, password string) bool {
	m.mu.Lock()
	m.verifyCalls++
	m.mu.Unlock()
	if m.verifyFunc != nil {
		return m.verifyFunc(hash, password)
	}
	return strings.TrimPrefix(hash, "hashed:") == password && strings.HasPrefix(hash, "hashed:")
}
