package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, hasher.Verify(hash, "secret1"))
	assert.False(t, hasher.Verify(hash, "secret2"))
	assert.False(t, hasher.Verify(hash, ""))
}

func TestBcryptHasher_SaltDiffersPerCall(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	first, err := hasher.Hash("same-secret")
	require.NoError(t, err)
	second, err := hasher.Hash("same-secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify(first, "same-secret"))
	assert.True(t, hasher.Verify(second, "same-secret"))
}

func TestBcryptHasher_MalformedDigest(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)

	for _, digest := range []string{"", "invalid_hash", "$2a$04$short", strings.Repeat("x", 60)} {
		assert.False(t, hasher.Verify(digest, "secret1"), "digest %q", digest)
	}
}

func TestBcryptHasher_CostEmbeddedInDigest(t *testing.T) {
	oldHasher := NewBcryptHasher(bcrypt.MinCost)
	hash, err := oldHasher.Hash("secret1")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	newHasher := NewBcryptHasher(bcrypt.MinCost + 1)
	assert.True(t, newHasher.Verify(hash, "secret1"))
}

func TestNewBcryptHasher_OutOfRangeCostFallsBack(t *testing.T) {
	assert.Equal(t, 12, NewBcryptHasher(0).Cost())
	assert.Equal(t, 12, NewBcryptHasher(bcrypt.MaxCost+1).Cost())
	assert.Equal(t, 5, NewBcryptHasher(5).Cost())
}

func TestUUIDGenerator_Unique(t *testing.T) {
	gen := NewUUIDGenerator()
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id, err := gen.NewID()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestBcryptHasher_VerifyRejectsSecretSharingFirst72Bytes(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	secret := strings.Repeat("a", 72)

	hash, err := hasher.Hash(secret)
	require.NoError(t, err)

	assert.True(t, hasher.Verify(hash, secret))
	assert.False(t, hasher.Verify(hash, secret+"z"))
	assert.False(t, hasher.Verify(hash, secret+"zzz"))
}
