package crypto

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/AlibekovAA/inference-auth/internal/common/constants"
	"github.com/AlibekovAA/inference-auth/internal/observability/metrics"
)

// PasswordHasher turns a secret into a salted, self-describing digest and
// checks secrets against such digests.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

// BcryptHasher embeds a fresh salt and its cost factor in every digest, so
// digests produced under an older cost keep verifying after Cost changes.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = constants.DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Cost() int {
	return h.cost
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	metrics.PasswordHashDurationSeconds.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password produced hash. bcrypt ignores everything
// past the first 72 bytes, so longer passwords never match.
func (h *BcryptHasher) Verify(hash string, password string) bool {
	if len(password) > constants.PasswordMaxLength {
		return false
	}

	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	metrics.PasswordHashDurationSeconds.WithLabelValues("verify").Observe(time.Since(start).Seconds())
	return err == nil
}
