package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/R3gret/TinyBackend-sub000/internal/people/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/tx"
)

// PostgresUsers persists user accounts. The municipality and province
// columns hold the parsed geography of geography-scoped accounts so the
// one-focal-per-municipality rule is a single indexed lookup.
type PostgresUsers struct {
	db *sql.DB
}

func NewPostgresUsers(db *sql.DB) *PostgresUsers {
	return &PostgresUsers{db: db}
}

func (s *PostgresUsers) CreateIfUsernameAvailable(ctx context.Context, user *models.User, municipality, province string) error {
	var centerID any
	if user.CenterID != nil {
		centerID = uuid.UUID(*user.CenterID)
	}

	_, err := tx.Resolve(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (id, username, role, center_id, address, municipality, province, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF(LOWER($6), ''), NULLIF(LOWER($7), ''), $8, $9)
	`, uuid.UUID(user.ID), user.Username, string(user.Role), centerID,
		user.Address, municipality, province, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUsers) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	return scanUser(tx.Resolve(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, username, role, center_id, address, password_hash, created_at
		FROM users WHERE id = $1
	`, uuid.UUID(id)))
}

func (s *PostgresUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(tx.Resolve(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, username, role, center_id, address, password_hash, created_at
		FROM users WHERE LOWER(username) = LOWER($1)
	`, username))
}

func (s *PostgresUsers) FocalExistsInMunicipality(ctx context.Context, municipality, province string) (bool, error) {
	var exists bool
	err := tx.Resolve(ctx, s.db).QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE role = 'focal' AND municipality = LOWER($1) AND province = LOWER($2)
		)
	`, municipality, province).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check focal municipality: %w", err)
	}
	return exists, nil
}

func (s *PostgresUsers) ListByCenter(ctx context.Context, centerID domain.CenterID) ([]*models.User, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, `
		SELECT id, username, role, center_id, address, password_hash, created_at
		FROM users WHERE center_id = $1
		ORDER BY username ASC
	`, uuid.UUID(centerID))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var (
		u        models.User
		id       uuid.UUID
		role     string
		centerID sql.Null[uuid.UUID]
		address  sql.NullString
	)
	err := row.Scan(&id, &u.Username, &role, &centerID, &address, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = domain.UserID(id)
	u.Role = domain.Role(role)
	u.Address = address.String
	if centerID.Valid {
		cid := domain.CenterID(centerID.V)
		u.CenterID = &cid
	}
	return &u, nil
}

// PostgresChildren persists children, their profile rows and guardian links.
type PostgresChildren struct {
	db *sql.DB
}

func NewPostgresChildren(db *sql.DB) *PostgresChildren {
	return &PostgresChildren{db: db}
}

// Enroll writes the child row and every profile row in one transaction. A
// child with fewer than its full set of profile rows must never be visible.
func (s *PostgresChildren) Enroll(ctx context.Context, child *models.Child, profiles []models.Profile) error {
	run := func(ctx context.Context) error {
		q := tx.Resolve(ctx, s.db)

		_, err := q.ExecContext(ctx, `
			INSERT INTO children (id, name, birthdate, center_id, enrolled_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.UUID(child.ID), child.Name, child.Birthdate, uuid.UUID(child.CenterID), child.EnrolledAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("insert child: %w", err)
		}

		for _, p := range profiles {
			_, err := q.ExecContext(ctx, `
				INSERT INTO child_profiles (child_id, kind, notes, updated_at)
				VALUES ($1, $2, $3, $4)
			`, uuid.UUID(p.ChildID), string(p.Kind), p.Notes, p.UpdatedAt)
			if err != nil {
				return fmt.Errorf("insert %s profile: %w", p.Kind, err)
			}
		}
		return nil
	}

	if _, inTx := tx.From(ctx); inTx {
		return run(ctx)
	}
	return tx.RunInTx(ctx, s.db, run)
}

func (s *PostgresChildren) FindByID(ctx context.Context, id domain.ChildID) (*models.Child, error) {
	var (
		c   models.Child
		cid uuid.UUID
		hid uuid.UUID
	)
	err := tx.Resolve(ctx, s.db).QueryRowContext(ctx, `
		SELECT id, name, birthdate, center_id, enrolled_at
		FROM children WHERE id = $1
	`, uuid.UUID(id)).Scan(&cid, &c.Name, &c.Birthdate, &hid, &c.EnrolledAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find child: %w", err)
	}
	c.ID = domain.ChildID(cid)
	c.CenterID = domain.CenterID(hid)
	return &c, nil
}

func (s *PostgresChildren) ListByCenter(ctx context.Context, centerID domain.CenterID) ([]*models.Child, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, `
		SELECT id, name, birthdate, center_id, enrolled_at
		FROM children WHERE center_id = $1
		ORDER BY name ASC
	`, uuid.UUID(centerID))
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var out []*models.Child
	for rows.Next() {
		var (
			c   models.Child
			cid uuid.UUID
			hid uuid.UUID
		)
		if err := rows.Scan(&cid, &c.Name, &c.Birthdate, &hid, &c.EnrolledAt); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		c.ID = domain.ChildID(cid)
		c.CenterID = domain.CenterID(hid)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children: %w", err)
	}
	return out, nil
}

func (s *PostgresChildren) Profiles(ctx context.Context, id domain.ChildID) ([]models.Profile, error) {
	rows, err := tx.Resolve(ctx, s.db).QueryContext(ctx, `
		SELECT child_id, kind, notes, updated_at
		FROM child_profiles WHERE child_id = $1
		ORDER BY kind ASC
	`, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list child profiles: %w", err)
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		var (
			p   models.Profile
			cid uuid.UUID
		)
		if err := rows.Scan(&cid, &p.Kind, &p.Notes, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan child profile: %w", err)
		}
		p.ChildID = domain.ChildID(cid)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate child profiles: %w", err)
	}
	if out == nil {
		if _, err := s.FindByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *PostgresChildren) LinkGuardian(ctx context.Context, parent domain.UserID, child domain.ChildID) error {
	_, err := tx.Resolve(ctx, s.db).ExecContext(ctx, `
		INSERT INTO guardian_links (parent_id, child_id)
		VALUES ($1, $2)
	`, uuid.UUID(parent), uuid.UUID(child))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return sentinel.ErrConflict
			case "23503":
				return sentinel.ErrNotFound
			}
		}
		return fmt.Errorf("link guardian: %w", err)
	}
	return nil
}

func (s *PostgresChildren) LinkedChild(ctx context.Context, parent domain.UserID) (domain.ChildID, bool, error) {
	var cid uuid.UUID
	err := tx.Resolve(ctx, s.db).QueryRowContext(ctx, `
		SELECT child_id FROM guardian_links WHERE parent_id = $1
	`, uuid.UUID(parent)).Scan(&cid)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ChildID{}, false, nil
	}
	if err != nil {
		return domain.ChildID{}, false, fmt.Errorf("find linked child: %w", err)
	}
	return domain.ChildID(cid), true, nil
}
