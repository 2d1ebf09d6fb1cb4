package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/tx"
)

// PostgresStore persists audit events durably. Writes join any ambient
// transaction so an audited action and its event commit together.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	ts := event.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	var centerID *uuid.UUID
	if event.CenterID != nil {
		cid := uuid.UUID(*event.CenterID)
		centerID = &cid
	}

	query := `
		INSERT INTO audit_events (
			id, timestamp, action, actor_id, role,
			center_id, subject, reason, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := tx.Resolve(ctx, s.db).ExecContext(ctx, query,
		uuid.New(),
		ts,
		string(event.Action),
		uuid.UUID(event.ActorID),
		string(event.Role),
		centerID,
		event.Subject,
		event.Reason,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListRecent returns the N most recent events, newest first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	query := `
		SELECT timestamp, action, actor_id, role,
			   center_id, subject, reason, request_id
		FROM audit_events
		ORDER BY timestamp DESC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event    Event
			actorID  uuid.UUID
			role     string
			action   string
			centerID *uuid.UUID
		)
		if err := rows.Scan(
			&event.Timestamp,
			&action,
			&actorID,
			&role,
			&centerID,
			&event.Subject,
			&event.Reason,
			&event.RequestID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Action = Action(action)
		event.ActorID = domain.UserID(actorID)
		event.Role = domain.Role(role)
		if centerID != nil {
			cid := domain.CenterID(*centerID)
			event.CenterID = &cid
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
