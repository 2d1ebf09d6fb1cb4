package audit

import (
	"time"

	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
)

// Action names the administrative act an event records.
type Action string

const (
	ActionCenterCreated     Action = "center_created"
	ActionCenterDeactivated Action = "center_deactivated"
	ActionCenterReactivated Action = "center_reactivated"
	ActionUserRegistered    Action = "user_registered"
	ActionChildEnrolled     Action = "child_enrolled"
	ActionGuardianLinked    Action = "guardian_linked"
	ActionContentPosted     Action = "content_posted"
	ActionContentDeleted    Action = "content_deleted"
	ActionAttendanceMarked  Action = "attendance_marked"
	ActionAccessDenied      Action = "access_denied"
)

// Event is emitted from domain logic to capture key administrative actions.
// Kept transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time        `json:"timestamp"`
	Action    Action           `json:"action"`
	ActorID   domain.UserID    `json:"actor_id"`
	Role      domain.Role      `json:"role"`
	CenterID  *domain.CenterID `json:"center_id,omitempty"`
	Subject   string           `json:"subject,omitempty"`
	Reason    string           `json:"reason,omitempty"`
	RequestID string           `json:"request_id,omitempty"`
}
