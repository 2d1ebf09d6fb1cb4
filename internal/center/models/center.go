package models

import (
	"time"

	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// Center is the aggregate root for a Child Development Center, the unit of
// multi-tenant data isolation.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Status is either active or deactivated
//   - A center always has a location row; a center without one is a
//     data-integrity fault surfaced as CodeOrphanCenter, never tolerated
//   - Location is immutable once children are enrolled under the center
//
// Deactivation is an immediate visibility boundary: a deactivated center is
// excluded from every listing and scoped operation the moment its status row
// changes, even for sessions opened while it was active. Enforcement is
// per-operation in the access layer (status is re-read, never cached), which
// keeps reactivation a one-row change and leaves the status row as the single
// source of truth.
type Center struct {
	ID        domain.CenterID `json:"id"`
	Name      string          `json:"name"`
	Status    Status          `json:"status"`
	Location  Location        `json:"location"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Location is a center's place in the Philippine geographic hierarchy.
type Location struct {
	Region       string `json:"region"`
	Province     string `json:"province"`
	Municipality string `json:"municipality"`
	Barangay     string `json:"barangay"`
}

func (c *Center) IsActive() bool {
	return c.Status == StatusActive
}

// CanDeactivate checks if the center can transition to deactivated status.
func (c *Center) CanDeactivate() error {
	if !c.Status.CanTransitionTo(StatusDeactivated) {
		return dErrors.New(dErrors.CodeInvariantViolation, "center is already deactivated")
	}
	return nil
}

// Deactivate validates and applies the transition. Records stay behind it;
// centers are never hard-deleted.
func (c *Center) Deactivate(now time.Time) error {
	if err := c.CanDeactivate(); err != nil {
		return err
	}
	c.Status = StatusDeactivated
	c.UpdatedAt = now
	return nil
}

// Reactivate validates and applies the transition back to active.
func (c *Center) Reactivate(now time.Time) error {
	if !c.Status.CanTransitionTo(StatusActive) {
		return dErrors.New(dErrors.CodeInvariantViolation, "center is already active")
	}
	c.Status = StatusActive
	c.UpdatedAt = now
	return nil
}

// NewCenter constructs an active center, validating invariants.
func NewCenter(centerID domain.CenterID, name string, loc Location, now time.Time) (*Center, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "center name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "center name must be 128 characters or less")
	}
	if loc.Municipality == "" || loc.Province == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "center location requires municipality and province")
	}
	return &Center{
		ID:        centerID,
		Name:      name,
		Status:    StatusActive,
		Location:  loc,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
