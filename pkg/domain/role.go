package domain

import dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"

// Role is a domain value identifying what a user account is allowed to do.
// Invariant: the value must be one of the supported roles.
//
// Usage: construct via ParseRole at trust boundaries to enforce the allowlist;
// direct casting bypasses validation.
type Role string

// Supported roles.
//
// president, admin and worker are bound to exactly one center. parent is bound
// to a single linked child. focal is scoped by municipality rather than by a
// center row, and msw gets read-only aggregate access across centers.
const (
	RolePresident  Role = "president"
	RoleAdmin      Role = "admin"
	RoleWorker     Role = "worker"
	RoleParent     Role = "parent"
	RoleFocal      Role = "focal"
	RoleMSW        Role = "msw"
	RoleUnassigned Role = "unassigned"
)

// validRoles is the single source of truth for supported roles.
var validRoles = map[Role]bool{
	RolePresident:  true,
	RoleAdmin:      true,
	RoleWorker:     true,
	RoleParent:     true,
	RoleFocal:      true,
	RoleMSW:        true,
	RoleUnassigned: true,
}

// ParseRole constructs a Role from external input.
// Errors: CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// RequiresCenter reports whether accounts with this role must be bound to
// exactly one center. focal and msw accounts may exist without one.
func (r Role) RequiresCenter() bool {
	switch r {
	case RolePresident, RoleAdmin, RoleWorker:
		return true
	}
	return false
}

// CenterOptional reports whether accounts with this role may record a home
// center without being bound to one. focal and msw accounts carry zero or
// one center; their access is never scoped by it.
func (r Role) CenterOptional() bool {
	switch r {
	case RoleFocal, RoleMSW:
		return true
	}
	return false
}

// GeographyScoped reports whether the role is scoped by municipality rather
// than by a center row.
func (r Role) GeographyScoped() bool {
	return r == RoleFocal
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
