// Package secrets handles credential hashing for user accounts.
package secrets

import (
	"golang.org/x/crypto/bcrypt"

	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// BcryptHasher hashes passwords with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher constructs a hasher. A cost of 0 uses the bcrypt default.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return string(out), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	return nil
}
