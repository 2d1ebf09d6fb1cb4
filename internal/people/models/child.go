package models

import (
	"strings"
	"time"

	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// Child is an enrolled student. Every child belongs to exactly one center.
type Child struct {
	ID         domain.ChildID  `json:"id"`
	Name       string          `json:"name"`
	Birthdate  time.Time       `json:"birthdate"`
	CenterID   domain.CenterID `json:"center_id"`
	EnrolledAt time.Time       `json:"enrolled_at"`
}

// HomeCenter resolves the child's center. Always present for children.
func (c *Child) HomeCenter() (domain.CenterID, bool) {
	return c.CenterID, true
}

// ProfileKind names one of the per-child profile rows created at enrollment.
type ProfileKind string

const (
	ProfileMedical     ProfileKind = "medical"
	ProfileNutrition   ProfileKind = "nutrition"
	ProfileEmergency   ProfileKind = "emergency"
	ProfileDevelopment ProfileKind = "development"
)

// ProfileKinds is every profile row an enrollment creates, in insert order.
var ProfileKinds = []ProfileKind{ProfileMedical, ProfileNutrition, ProfileEmergency, ProfileDevelopment}

// Profile is one per-child record sheet. Rows are created empty at
// enrollment and filled in by workers afterwards.
type Profile struct {
	ChildID   domain.ChildID `json:"child_id"`
	Kind      ProfileKind    `json:"kind"`
	Notes     string         `json:"notes,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewChild constructs a child record, validating invariants. The birthdate
// must not be in the future relative to the enrollment instant.
func NewChild(id domain.ChildID, name string, birthdate time.Time, centerID domain.CenterID, now time.Time) (*Child, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "child name is required")
	}
	if centerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "child requires a center")
	}
	if birthdate.After(now) {
		return nil, dErrors.New(dErrors.CodeInvalidAge, "birthdate is in the future")
	}
	return &Child{
		ID:         id,
		Name:       name,
		Birthdate:  birthdate,
		CenterID:   centerID,
		EnrolledAt: now,
	}, nil
}
