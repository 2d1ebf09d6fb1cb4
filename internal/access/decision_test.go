package access

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
)

func centerRef() *domain.CenterID {
	id := domain.CenterID(uuid.New())
	return &id
}

func childRef() *domain.ChildID {
	id := domain.ChildID(uuid.New())
	return &id
}

func activeActor(role domain.Role, center *domain.CenterID) Actor {
	return Actor{
		UserID:       domain.UserID(uuid.New()),
		Role:         role,
		CenterID:     center,
		CenterActive: center != nil,
	}
}

func TestDecide_RoleTable(t *testing.T) {
	home := centerRef()

	tests := []struct {
		name      string
		actor     Actor
		op        Operation
		target    Target
		wantAllow bool
		wantScope Scope
		wantDeny  DenyReason
	}{
		{
			name:      "president manages users in own center",
			actor:     activeActor(domain.RolePresident, home),
			op:        OpManageUsers,
			target:    Target{CenterID: home, CenterActive: true},
			wantAllow: true,
			wantScope: ScopeCenter,
		},
		{
			name:     "president cannot create presidents",
			actor:    activeActor(domain.RolePresident, home),
			op:       OpCreatePresident,
			target:   Target{},
			wantDeny: ReasonRoleNotPermitted,
		},
		{
			name:      "admin creates presidents in own center",
			actor:     activeActor(domain.RoleAdmin, home),
			op:        OpCreatePresident,
			target:    Target{CenterID: home, CenterActive: true},
			wantAllow: true,
			wantScope: ScopeCenter,
		},
		{
			name:      "worker marks attendance in own center",
			actor:     activeActor(domain.RoleWorker, home),
			op:        OpMarkAttendance,
			target:    Target{CenterID: home, CenterActive: true},
			wantAllow: true,
			wantScope: ScopeCenter,
		},
		{
			name:     "worker cannot manage users",
			actor:    activeActor(domain.RoleWorker, home),
			op:       OpManageUsers,
			target:   Target{},
			wantDeny: ReasonRoleNotPermitted,
		},
		{
			name: "focal views content geography-scoped",
			actor: Actor{
				UserID: domain.UserID(uuid.New()),
				Role:   domain.RoleFocal,
			},
			op:        OpViewContent,
			target:    Target{},
			wantAllow: true,
			wantScope: ScopeGeography,
		},
		{
			name: "msw reads aggregates unrestricted",
			actor: Actor{
				UserID: domain.UserID(uuid.New()),
				Role:   domain.RoleMSW,
			},
			op:        OpViewAggregates,
			target:    Target{},
			wantAllow: true,
			wantScope: ScopeUnrestricted,
		},
		{
			name: "msw cannot list a day's register",
			actor: Actor{
				UserID: domain.UserID(uuid.New()),
				Role:   domain.RoleMSW,
			},
			op:       OpViewAttendance,
			target:   Target{},
			wantDeny: ReasonRoleNotPermitted,
		},
		{
			name: "msw cannot write content",
			actor: Actor{
				UserID: domain.UserID(uuid.New()),
				Role:   domain.RoleMSW,
			},
			op:       OpPostContent,
			target:   Target{},
			wantDeny: ReasonRoleNotPermitted,
		},
		{
			name: "unassigned role is refused outright",
			actor: Actor{
				UserID: domain.UserID(uuid.New()),
				Role:   domain.RoleUnassigned,
			},
			op:       OpViewContent,
			target:   Target{},
			wantDeny: ReasonUnauthenticatedRole,
		},
		{
			name: "unknown role is refused outright",
			actor: Actor{
				UserID: domain.UserID(uuid.New()),
				Role:   domain.Role("superuser"),
			},
			op:       OpViewContent,
			target:   Target{},
			wantDeny: ReasonUnauthenticatedRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.actor, tt.op, tt.target)
			if tt.wantAllow {
				require.True(t, got.Allowed, "expected allow, denied with %q", got.Reason)
				assert.Equal(t, tt.wantScope, got.Scope)
			} else {
				require.False(t, got.Allowed)
				assert.Equal(t, tt.wantDeny, got.Reason)
			}
		})
	}
}

func TestDecide_CrossTenant(t *testing.T) {
	home := centerRef()
	other := centerRef()

	t.Run("target in another center is denied", func(t *testing.T) {
		got := Decide(activeActor(domain.RoleWorker, home), OpMarkAttendance,
			Target{CenterID: other, CenterActive: true})
		require.False(t, got.Allowed)
		assert.Equal(t, ReasonCrossTenant, got.Reason)
	})

	t.Run("listing without a concrete target scopes to own center", func(t *testing.T) {
		got := Decide(activeActor(domain.RoleWorker, home), OpViewAttendance, Target{})
		require.True(t, got.Allowed)
		require.NotNil(t, got.CenterID)
		assert.Equal(t, *home, *got.CenterID)
	})

	t.Run("center-bound role without a center is denied", func(t *testing.T) {
		got := Decide(activeActor(domain.RoleWorker, nil), OpMarkAttendance, Target{})
		require.False(t, got.Allowed)
		assert.Equal(t, ReasonCrossTenant, got.Reason)
	})
}

func TestDecide_DeactivatedCenter(t *testing.T) {
	home := centerRef()

	t.Run("actor's own center deactivated", func(t *testing.T) {
		actor := activeActor(domain.RoleWorker, home)
		actor.CenterActive = false

		got := Decide(actor, OpMarkAttendance, Target{CenterID: home, CenterActive: false})
		require.False(t, got.Allowed)
		assert.Equal(t, ReasonDeactivatedTenant, got.Reason)
	})

	t.Run("deactivated target center is invisible even to unrestricted readers", func(t *testing.T) {
		actor := Actor{UserID: domain.UserID(uuid.New()), Role: domain.RoleMSW}

		got := Decide(actor, OpViewAggregates, Target{CenterID: home, CenterActive: false})
		require.False(t, got.Allowed)
		assert.Equal(t, ReasonDeactivatedTenant, got.Reason)
	})
}

func TestDecide_ParentLinkage(t *testing.T) {
	child := childRef()

	parentWith := func(linked *domain.ChildID) Actor {
		return Actor{
			UserID:      domain.UserID(uuid.New()),
			Role:        domain.RoleParent,
			LinkedChild: linked,
		}
	}

	t.Run("parent views their linked child", func(t *testing.T) {
		got := Decide(parentWith(child), OpViewChild, Target{ChildID: child})
		require.True(t, got.Allowed)
		assert.Equal(t, ScopeOwnChild, got.Scope)
		require.NotNil(t, got.ChildID)
		assert.Equal(t, *child, *got.ChildID)
	})

	t.Run("parent with no linked child gets a distinct refusal", func(t *testing.T) {
		got := Decide(parentWith(nil), OpViewChild, Target{ChildID: child})
		require.False(t, got.Allowed)
		assert.Equal(t, ReasonNoLinkedStudent, got.Reason)
	})

	t.Run("someone else's child is out of scope", func(t *testing.T) {
		got := Decide(parentWith(child), OpViewChild, Target{ChildID: childRef()})
		require.False(t, got.Allowed)
		assert.Equal(t, ReasonCrossTenant, got.Reason)
	})
}

func TestDecide_Deterministic(t *testing.T) {
	home := centerRef()
	actor := activeActor(domain.RoleWorker, home)
	target := Target{CenterID: home, CenterActive: true}

	first := Decide(actor, OpMarkAttendance, target)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Decide(actor, OpMarkAttendance, target))
	}
}
