package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/inference-auth/internal/account/domain"
	"github.com/AlibekovAA/inference-auth/internal/common/clock"
	"github.com/AlibekovAA/inference-auth/internal/common/crypto"
)

type failingIDGenerator struct{}

func (failingIDGenerator) NewID() (string, error) {
	return "", errors.New("entropy exhausted")
}

var _ crypto.IDGenerator = failingIDGenerator{}

type repoFactory func(t *testing.T, clk clock.Clock) Repository

// runRepositoryContract checks behaviour every backend has to share.
func runRepositoryContract(t *testing.T, newRepo repoFactory) {
	baseTime := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("create then find by email and id", func(t *testing.T) {
		clk := clock.NewMockClock(baseTime)
		repo := newRepo(t, clk)
		ctx := context.Background()

		created, err := repo.Create(ctx, NewAccount{
			Email:        "a@x.com",
			PasswordHash: "$2a$04$digest",
			DisplayName:  "A",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.True(t, created.CreatedAt.Equal(baseTime))
		assert.Nil(t, created.LastAuthenticatedAt)

		byEmail, err := repo.FindByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, created.ID, byEmail.ID)
		assert.Equal(t, "$2a$04$digest", byEmail.PasswordHash)
		assert.Equal(t, "A", byEmail.DisplayName)
		assert.True(t, byEmail.CreatedAt.Equal(baseTime))

		byID, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", byID.Email)
	})

	t.Run("duplicate email is rejected without mutation", func(t *testing.T) {
		repo := newRepo(t, clock.NewMockClock(baseTime))
		ctx := context.Background()

		first, err := repo.Create(ctx, NewAccount{Email: "dup@x.com", PasswordHash: "h1", DisplayName: "First"})
		require.NoError(t, err)

		_, err = repo.Create(ctx, NewAccount{Email: "dup@x.com", PasswordHash: "h2", DisplayName: "Second"})
		assert.ErrorIs(t, err, ErrEmailAlreadyExists)

		stored, err := repo.FindByEmail(ctx, "dup@x.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, stored.ID)
		assert.Equal(t, "h1", stored.PasswordHash)
		assert.Equal(t, "First", stored.DisplayName)
	})

	t.Run("unknown account is not found", func(t *testing.T) {
		repo := newRepo(t, clock.NewMockClock(baseTime))
		ctx := context.Background()

		_, err := repo.FindByEmail(ctx, "missing@x.com")
		assert.ErrorIs(t, err, ErrAccountNotFound)

		_, err = repo.FindByID(ctx, domain.ID("00000000-0000-4000-8000-000000000000"))
		assert.ErrorIs(t, err, ErrAccountNotFound)

		err = repo.RecordAuthentication(ctx, domain.ID("00000000-0000-4000-8000-000000000000"), baseTime)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("record authentication is last write wins", func(t *testing.T) {
		repo := newRepo(t, clock.NewMockClock(baseTime))
		ctx := context.Background()

		created, err := repo.Create(ctx, NewAccount{Email: "seen@x.com", PasswordHash: "h", DisplayName: "S"})
		require.NoError(t, err)

		first := baseTime.Add(time.Hour)
		second := baseTime.Add(2 * time.Hour)
		require.NoError(t, repo.RecordAuthentication(ctx, created.ID, first))
		require.NoError(t, repo.RecordAuthentication(ctx, created.ID, second))
		require.NoError(t, repo.RecordAuthentication(ctx, created.ID, second))

		stored, err := repo.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.LastAuthenticatedAt)
		assert.True(t, stored.LastAuthenticatedAt.Equal(second))
	})

	t.Run("concurrent creates for one email yield exactly one success", func(t *testing.T) {
		repo := newRepo(t, clock.NewMockClock(baseTime))
		ctx := context.Background()

		const workers = 16
		var (
			wg        sync.WaitGroup
			successes atomic.Int32
			conflicts atomic.Int32
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := repo.Create(ctx, NewAccount{
					Email:        "race@x.com",
					PasswordHash: fmt.Sprintf("h%d", i),
					DisplayName:  "R",
				})
				switch {
				case err == nil:
					successes.Add(1)
				case errors.Is(err, ErrEmailAlreadyExists):
					conflicts.Add(1)
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		assert.Equal(t, int32(1), successes.Load())
		assert.Equal(t, int32(workers-1), conflicts.Load())
	})
}
