package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/R3gret/TinyBackend-sub000/internal/content/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/tx"
)

// Postgres persists content items. Role filters are stored as a text array.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const itemColumns = `id, kind, title, body, center_id, age_filter, role_filter, attachment_path, created_by, created_at`

func (s *Postgres) Create(ctx context.Context, item *models.Item) error {
	var centerID any
	if item.CenterID != nil {
		centerID = uuid.UUID(*item.CenterID)
	}

	roles := make([]string, 0, len(item.RoleFilter))
	for _, r := range item.RoleFilter {
		roles = append(roles, string(r))
	}

	_, err := tx.Resolve(ctx, s.db).ExecContext(ctx, `
		INSERT INTO content_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, uuid.UUID(item.ID), string(item.Kind), item.Title, item.Body, centerID,
		item.AgeFilter, pq.Array(roles), item.AttachmentPath,
		uuid.UUID(item.CreatedBy), item.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert content item: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, id domain.ContentID) (*models.Item, error) {
	return scanItem(tx.Resolve(ctx, s.db).QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM content_items WHERE id = $1
	`, uuid.UUID(id)))
}

func (s *Postgres) ListForCenter(ctx context.Context, centerID domain.CenterID) ([]*models.Item, error) {
	return s.list(ctx, `
		SELECT `+itemColumns+` FROM content_items
		WHERE center_id IS NULL OR center_id = $1
		ORDER BY created_at DESC, id ASC
	`, uuid.UUID(centerID))
}

func (s *Postgres) ListCenterBound(ctx context.Context) ([]*models.Item, error) {
	return s.list(ctx, `
		SELECT `+itemColumns+` FROM content_items
		WHERE center_id IS NOT NULL
		ORDER BY created_at DESC, id ASC
	`)
}

func (s *Postgres) Delete(ctx context.Context, id domain.ContentID) error {
	res, err := tx.Resolve(ctx, s.db).ExecContext(ctx, `
		DELETE FROM content_items WHERE id = $1
	`, uuid.UUID(id))
	if err != nil {
		return fmt.Errorf("delete content item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete content item: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) list(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	defer rows.Close()

	var out []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content items: %w", err)
	}
	return out, nil
}

func scanItem(row interface{ Scan(dest ...any) error }) (*models.Item, error) {
	var (
		item      models.Item
		id        uuid.UUID
		kind      string
		centerID  sql.Null[uuid.UUID]
		roles     pq.StringArray
		createdBy uuid.UUID
	)
	err := row.Scan(&id, &kind, &item.Title, &item.Body, &centerID,
		&item.AgeFilter, &roles, &item.AttachmentPath, &createdBy, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan content item: %w", err)
	}
	item.ID = domain.ContentID(id)
	item.Kind = models.Kind(kind)
	item.CreatedBy = domain.UserID(createdBy)
	if centerID.Valid {
		cid := domain.CenterID(centerID.V)
		item.CenterID = &cid
	}
	item.RoleFilter = make([]domain.Role, 0, len(roles))
	for _, r := range roles {
		item.RoleFilter = append(item.RoleFilter, domain.Role(r))
	}
	return &item, nil
}
