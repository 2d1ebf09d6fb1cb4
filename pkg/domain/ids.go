package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// Typed IDs keep user, child, center and content identifiers from being
// swapped for one another. Every scoped lookup in the system carries one of
// these, so a cross-type assignment is a compile error rather than a
// cross-tenant data leak.
type (
	// UserID identifies a user account (any role).
	UserID uuid.UUID

	// ChildID identifies an enrolled child.
	ChildID uuid.UUID

	// CenterID identifies a Child Development Center, the unit of
	// multi-tenant isolation.
	CenterID uuid.UUID

	// ContentID identifies an announcement, classwork or take-home activity.
	ContentID uuid.UUID
)

// ParseUserID constructs a UserID from external input.
// Errors: CodeInvalidInput when the value is empty, malformed, or the nil UUID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user id")
	return UserID(u), err
}

// ParseChildID constructs a ChildID from external input.
func ParseChildID(s string) (ChildID, error) {
	u, err := parseUUID(s, "child id")
	return ChildID(u), err
}

// ParseCenterID constructs a CenterID from external input.
func ParseCenterID(s string) (CenterID, error) {
	u, err := parseUUID(s, "center id")
	return CenterID(u), err
}

// ParseContentID constructs a ContentID from external input.
func ParseContentID(s string) (ContentID, error) {
	u, err := parseUUID(s, "content id")
	return ContentID(u), err
}

// parseUUID enforces the shared invariant: IDs must be valid, non-nil UUIDs.
// Construct via the Parse helpers at trust boundaries; direct casting bypasses
// validation.
func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" cannot be nil")
	}
	return u, nil
}

func (id UserID) String() string    { return uuid.UUID(id).String() }
func (id ChildID) String() string   { return uuid.UUID(id).String() }
func (id CenterID) String() string  { return uuid.UUID(id).String() }
func (id ContentID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ChildID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id CenterID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id ContentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
