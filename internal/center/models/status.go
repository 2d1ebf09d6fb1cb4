package models

// Status is a center's lifecycle state. Centers are soft-deactivated, never
// hard-deleted; enrollment history stays attached either way.
type Status string

const (
	StatusActive      Status = "active"
	StatusDeactivated Status = "deactivated"
)

// IsValid checks the status is one of the supported values.
func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusDeactivated
}

// CanTransitionTo permits active ↔ deactivated only; no other states exist.
func (s Status) CanTransitionTo(target Status) bool {
	if !s.IsValid() || !target.IsValid() {
		return false
	}
	return s != target
}
