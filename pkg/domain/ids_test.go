package domain

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs".
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseChildID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseCenterID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		valid := uuid.New()
		id, err := ParseUserID(valid.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(valid), id)
	})
}

// TestParseID_SecurityInvariants validates trust-boundary parsing: API entry
// points must reject attack vectors before an ID reaches a scoped query.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE students;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCenterID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestTypeDistinction documents the compile-time invariant: typed IDs prevent
// a ChildID or UserID from standing in for a CenterID in a scoped query.
func TestTypeDistinction(t *testing.T) {
	userID := UserID(uuid.New())
	centerID := CenterID(uuid.New())

	// These would fail to compile if the types were interchangeable:
	// var _ UserID = centerID   // compile error
	// var _ CenterID = userID   // compile error

	assert.NotEqual(t, uuid.UUID(userID), uuid.UUID(centerID))
}

func TestParseRole(t *testing.T) {
	for _, r := range []Role{RolePresident, RoleAdmin, RoleWorker, RoleParent, RoleFocal, RoleMSW, RoleUnassigned} {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRole("superuser")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseRole("")
	require.Error(t, err)
}

func TestRoleScoping(t *testing.T) {
	assert.True(t, RolePresident.RequiresCenter())
	assert.True(t, RoleAdmin.RequiresCenter())
	assert.True(t, RoleWorker.RequiresCenter())
	assert.False(t, RoleParent.RequiresCenter())
	assert.False(t, RoleFocal.RequiresCenter())
	assert.False(t, RoleMSW.RequiresCenter())

	assert.True(t, RoleFocal.GeographyScoped())
	assert.False(t, RoleMSW.GeographyScoped())
	assert.False(t, RoleAdmin.GeographyScoped())

	assert.True(t, RoleFocal.CenterOptional())
	assert.True(t, RoleMSW.CenterOptional())
	assert.False(t, RoleParent.CenterOptional())
	assert.False(t, RoleWorker.CenterOptional())
}
