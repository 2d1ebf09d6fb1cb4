package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/R3gret/TinyBackend-sub000/internal/attendance/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/tx"
)

// Postgres persists attendance records. The (child_id, date) primary key
// enforces one record per child per day.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Mark(ctx context.Context, rec *models.Record) error {
	_, err := tx.Resolve(ctx, s.db).ExecContext(ctx, `
		INSERT INTO attendance (child_id, center_id, date, status, marked_by, marked_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.UUID(rec.ChildID), uuid.UUID(rec.CenterID), rec.Date, string(rec.Status),
		uuid.UUID(rec.MarkedBy), rec.MarkedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

func (s *Postgres) ListByCenterAndDate(ctx context.Context, centerID domain.CenterID, date time.Time) ([]*models.Record, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, `
		SELECT child_id, center_id, date, status, marked_by, marked_at
		FROM attendance
		WHERE center_id = $1 AND date = $2
		ORDER BY child_id ASC
	`, uuid.UUID(centerID), date)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var out []*models.Record
	for rows.Next() {
		var (
			rec      models.Record
			childID  uuid.UUID
			cID      uuid.UUID
			status   string
			markedBy uuid.UUID
		)
		if err := rows.Scan(&childID, &cID, &rec.Date, &status, &markedBy, &rec.MarkedAt); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		rec.ChildID = domain.ChildID(childID)
		rec.CenterID = domain.CenterID(cID)
		rec.Status = models.Status(status)
		rec.MarkedBy = domain.UserID(markedBy)
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance: %w", err)
	}
	return out, nil
}

func (s *Postgres) Summarize(ctx context.Context, from, to time.Time) ([]*models.DaySummary, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, `
		SELECT center_id, date,
		       COUNT(*) FILTER (WHERE status = 'present'),
		       COUNT(*) FILTER (WHERE status = 'absent'),
		       COUNT(*) FILTER (WHERE status = 'late'),
		       COUNT(*) FILTER (WHERE status = 'excused')
		FROM attendance
		WHERE date BETWEEN $1 AND $2
		GROUP BY center_id, date
		ORDER BY date ASC, center_id ASC
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarize attendance: %w", err)
	}
	defer rows.Close()

	var out []*models.DaySummary
	for rows.Next() {
		var (
			sum models.DaySummary
			cID uuid.UUID
		)
		if err := rows.Scan(&cID, &sum.Date, &sum.Present, &sum.Absent, &sum.Late, &sum.Excused); err != nil {
			return nil, fmt.Errorf("scan attendance summary: %w", err)
		}
		sum.CenterID = domain.CenterID(cID)
		out = append(out, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendance summaries: %w", err)
	}
	return out, nil
}
