package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/R3gret/TinyBackend-sub000/internal/center/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/tx"
)

// Postgres persists centers in PostgreSQL. The center row and its location
// row live in separate tables; creation writes both inside the caller's
// transaction (or its own) so a half-created center is never visible.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateIfNameAvailable(ctx context.Context, center *models.Center) error {
	run := func(ctx context.Context) error {
		q := tx.Resolve(ctx, s.db)

		_, err := q.ExecContext(ctx, `
			INSERT INTO centers (id, name, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.UUID(center.ID), center.Name, string(center.Status), center.CreatedAt, center.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return sentinel.ErrAlreadyUsed
			}
			return fmt.Errorf("insert center: %w", err)
		}

		_, err = q.ExecContext(ctx, `
			INSERT INTO center_locations (center_id, region, province, municipality, barangay)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.UUID(center.ID), center.Location.Region, center.Location.Province,
			center.Location.Municipality, center.Location.Barangay)
		if err != nil {
			return fmt.Errorf("insert center location: %w", err)
		}
		return nil
	}

	if _, inTx := tx.From(ctx); inTx {
		return run(ctx)
	}
	return tx.RunInTx(ctx, s.db, run)
}

func (s *Postgres) FindByID(ctx context.Context, id domain.CenterID) (*models.Center, error) {
	row := tx.Resolve(ctx, s.db).QueryRowContext(ctx, `
		SELECT c.id, c.name, c.status, c.created_at, c.updated_at,
		       COALESCE(l.region, ''), COALESCE(l.province, ''),
		       COALESCE(l.municipality, ''), COALESCE(l.barangay, '')
		FROM centers c
		LEFT JOIN center_locations l ON l.center_id = c.id
		WHERE c.id = $1
	`, uuid.UUID(id))
	return scanCenter(row)
}

func (s *Postgres) FindLocation(ctx context.Context, id domain.CenterID) (*models.Location, error) {
	var (
		exists bool
		loc    models.Location
		hasLoc bool
	)
	err := tx.Resolve(ctx, s.db).QueryRowContext(ctx, `
		SELECT TRUE,
		       l.center_id IS NOT NULL,
		       COALESCE(l.region, ''), COALESCE(l.province, ''),
		       COALESCE(l.municipality, ''), COALESCE(l.barangay, '')
		FROM centers c
		LEFT JOIN center_locations l ON l.center_id = c.id
		WHERE c.id = $1
	`, uuid.UUID(id)).Scan(&exists, &hasLoc, &loc.Region, &loc.Province, &loc.Municipality, &loc.Barangay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find center location: %w", err)
	}
	if !hasLoc {
		return nil, nil
	}
	return &loc, nil
}

func (s *Postgres) ListActive(ctx context.Context) ([]*models.Center, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, `
		SELECT c.id, c.name, c.status, c.created_at, c.updated_at,
		       COALESCE(l.region, ''), COALESCE(l.province, ''),
		       COALESCE(l.municipality, ''), COALESCE(l.barangay, '')
		FROM centers c
		LEFT JOIN center_locations l ON l.center_id = c.id
		WHERE c.status = $1
		ORDER BY c.name ASC
	`, string(models.StatusActive))
	if err != nil {
		return nil, fmt.Errorf("list centers: %w", err)
	}
	defer rows.Close()

	var out []*models.Center
	for rows.Next() {
		c, err := scanCenter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate centers: %w", err)
	}
	return out, nil
}

func (s *Postgres) UpdateStatus(ctx context.Context, center *models.Center) error {
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, `
		UPDATE centers SET status = $2, updated_at = $3 WHERE id = $1
	`, uuid.UUID(center.ID), string(center.Status), center.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update center status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update center status: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCenter(row rowScanner) (*models.Center, error) {
	var (
		c      models.Center
		id     uuid.UUID
		status string
	)
	err := row.Scan(&id, &c.Name, &status, &c.CreatedAt, &c.UpdatedAt,
		&c.Location.Region, &c.Location.Province, &c.Location.Municipality, &c.Location.Barangay)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan center: %w", err)
	}
	c.ID = domain.CenterID(id)
	c.Status = models.Status(strings.TrimSpace(status))
	return &c, nil
}
