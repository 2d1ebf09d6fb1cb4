package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Postgres reads the age band catalog from PostgreSQL.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) ListBands(ctx context.Context) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, label, range_text, position
		FROM age_bands
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list age bands: %w", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var r Row
		if err := rows.Scan(&r.ID, &r.Label, &r.Raw, &r.Position); err != nil {
			return nil, fmt.Errorf("scan age band: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate age bands: %w", err)
	}
	return out, nil
}
