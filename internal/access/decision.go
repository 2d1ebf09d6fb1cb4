// Package access computes per-request authorization scopes from a verified
// caller identity and freshly fetched record facts.
//
// The decision itself is a pure function over already-fetched data. The
// Authorizer in this package does the fetching; Decide does the deciding.
package access

import (
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
)

// Operation names an action subject to authorization.
type Operation string

const (
	OpManageCenters   Operation = "manage_centers"
	OpManageUsers     Operation = "manage_users"
	OpCreatePresident Operation = "create_president"
	OpEnrollChild     Operation = "enroll_child"
	OpViewChild       Operation = "view_child"
	OpMarkAttendance  Operation = "mark_attendance"
	OpViewAttendance  Operation = "view_attendance"
	OpPostContent     Operation = "post_content"
	OpDeleteContent   Operation = "delete_content"
	OpViewContent     Operation = "view_content"
	OpViewAggregates  Operation = "view_aggregates"
)

// Scope describes what an allowed operation is restricted to.
type Scope string

const (
	// ScopeCenter restricts reads and writes to the actor's own center.
	ScopeCenter Scope = "center"
	// ScopeOwnChild restricts a parent to their single linked child.
	ScopeOwnChild Scope = "own_child"
	// ScopeGeography restricts a municipality-bound viewer to centers in
	// their own municipality and province.
	ScopeGeography Scope = "geography"
	// ScopeUnrestricted is granted only to read-only aggregate views.
	ScopeUnrestricted Scope = "unrestricted"
)

// DenyReason states which rule refused the operation.
type DenyReason string

const (
	ReasonCrossTenant         DenyReason = "cross-tenant"
	ReasonNoLinkedStudent     DenyReason = "no-linked-student"
	ReasonDeactivatedTenant   DenyReason = "deactivated-tenant"
	ReasonUnauthenticatedRole DenyReason = "unauthenticated-role"
	ReasonRoleNotPermitted    DenyReason = "role-not-permitted"
)

// Actor is the set of per-request facts about the caller. CenterActive and
// LinkedChild are fetched fresh for every decision, never carried over from
// a previous request.
type Actor struct {
	UserID       domain.UserID
	Role         domain.Role
	CenterID     *domain.CenterID
	CenterActive bool
	LinkedChild  *domain.ChildID
}

// Target identifies the record an operation acts on. CenterID is always
// re-derived from the record itself, never taken from client input. A nil
// CenterID means the operation is a listing scoped by the decision, not a
// single-record access. TargetCenterActive reflects the target center's
// current status when a target center is set.
type Target struct {
	CenterID     *domain.CenterID
	CenterActive bool
	ChildID      *domain.ChildID
}

// Decision is the outcome of one authorization check.
type Decision struct {
	Allowed  bool
	Scope    Scope
	CenterID *domain.CenterID
	ChildID  *domain.ChildID
	Reason   DenyReason
}

func allow(scope Scope) Decision {
	return Decision{Allowed: true, Scope: scope}
}

func deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// roleGrants is the role by operation table. Absence means denied.
var roleGrants = map[domain.Role]map[Operation]Scope{
	domain.RolePresident: {
		OpManageUsers:   ScopeCenter,
		OpPostContent:   ScopeCenter,
		OpDeleteContent: ScopeCenter,
		OpViewContent:   ScopeCenter,
		OpViewChild:     ScopeCenter,
	},
	domain.RoleAdmin: {
		OpManageCenters:   ScopeUnrestricted,
		OpManageUsers:     ScopeCenter,
		OpCreatePresident: ScopeCenter,
		OpPostContent:     ScopeCenter,
		OpDeleteContent:   ScopeCenter,
		OpViewContent:     ScopeCenter,
		OpViewChild:       ScopeCenter,
	},
	domain.RoleWorker: {
		OpEnrollChild:    ScopeCenter,
		OpViewChild:      ScopeCenter,
		OpMarkAttendance: ScopeCenter,
		OpViewAttendance: ScopeCenter,
		OpPostContent:    ScopeCenter,
		OpViewContent:    ScopeCenter,
	},
	domain.RoleParent: {
		OpViewChild:   ScopeOwnChild,
		OpViewContent: ScopeOwnChild,
	},
	domain.RoleFocal: {
		OpViewContent: ScopeGeography,
	},
	domain.RoleMSW: {
		OpViewAggregates: ScopeUnrestricted,
	},
}

// Decide applies the role by operation table to one request. It is pure and
// deterministic: the same actor, operation and target always produce the
// same decision.
func Decide(actor Actor, op Operation, target Target) Decision {
	if actor.Role == domain.RoleUnassigned || !actor.Role.IsValid() {
		return deny(ReasonUnauthenticatedRole)
	}

	grants, ok := roleGrants[actor.Role]
	if !ok {
		return deny(ReasonUnauthenticatedRole)
	}
	scope, ok := grants[op]
	if !ok {
		return deny(ReasonRoleNotPermitted)
	}

	// Center-bound actors lose all access the moment their own center is
	// deactivated, whatever the operation's scope.
	if actor.Role.RequiresCenter() {
		if actor.CenterID == nil {
			return deny(ReasonCrossTenant)
		}
		if !actor.CenterActive {
			return deny(ReasonDeactivatedTenant)
		}
	}

	// A deactivated target center is invisible to every actor, whatever
	// their scope.
	if target.CenterID != nil && !target.CenterActive {
		return deny(ReasonDeactivatedTenant)
	}

	switch scope {
	case ScopeCenter:
		return decideCenterScoped(actor, target)
	case ScopeOwnChild:
		return decideOwnChild(actor, target)
	case ScopeGeography:
		d := allow(ScopeGeography)
		d.CenterID = actor.CenterID
		return d
	case ScopeUnrestricted:
		return allow(ScopeUnrestricted)
	default:
		return deny(ReasonRoleNotPermitted)
	}
}

func decideCenterScoped(actor Actor, target Target) Decision {
	if target.CenterID != nil && *target.CenterID != *actor.CenterID {
		return deny(ReasonCrossTenant)
	}
	d := allow(ScopeCenter)
	d.CenterID = actor.CenterID
	return d
}

func decideOwnChild(actor Actor, target Target) Decision {
	if actor.LinkedChild == nil {
		return deny(ReasonNoLinkedStudent)
	}
	if target.ChildID != nil && *target.ChildID != *actor.LinkedChild {
		return deny(ReasonCrossTenant)
	}
	d := allow(ScopeOwnChild)
	d.ChildID = actor.LinkedChild
	return d
}
