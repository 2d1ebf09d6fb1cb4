// Package models defines the person records of the system: user accounts
// and enrolled children.
package models

import (
	"strings"
	"time"

	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// User is an account holder. Center-bound roles always carry a CenterID.
// Focal and msw accounts carry zero or one center (a home CDC, never an
// access scope); focal accounts carry their free-text home address.
type User struct {
	ID           domain.UserID   `json:"id"`
	Username     string          `json:"username"`
	Role         domain.Role     `json:"role"`
	CenterID     *domain.CenterID `json:"center_id,omitempty"`
	Address      string          `json:"address,omitempty"`
	PasswordHash string          `json:"-"`
	CreatedAt    time.Time       `json:"created_at"`
}

// HomeCenter resolves the user's center. The second return is false for
// roles with no center binding.
func (u *User) HomeCenter() (domain.CenterID, bool) {
	if u.CenterID == nil {
		return domain.CenterID{}, false
	}
	return *u.CenterID, true
}

// NewUser constructs a user, validating role and center consistency.
func NewUser(id domain.UserID, username string, role domain.Role, centerID *domain.CenterID, address string, now time.Time) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "username is required")
	}
	if len(username) > 64 {
		return nil, dErrors.New(dErrors.CodeValidation, "username must be 64 characters or less")
	}
	if !role.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown role %q", role)
	}
	if role.RequiresCenter() && centerID == nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "role %s requires a center", role)
	}
	if !role.RequiresCenter() && !role.CenterOptional() && centerID != nil {
		return nil, dErrors.Newf(dErrors.CodeValidation, "role %s is not center-bound", role)
	}
	if role.GeographyScoped() && strings.TrimSpace(address) == "" {
		return nil, dErrors.Newf(dErrors.CodeValidation, "role %s requires a home address", role)
	}

	return &User{
		ID:        id,
		Username:  username,
		Role:      role,
		CenterID:  centerID,
		Address:   strings.TrimSpace(address),
		CreatedAt: now,
	}, nil
}
