// Package service implements person registration and enrollment: user
// accounts, child records with their profile sheets, and guardian linkage.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/R3gret/TinyBackend-sub000/internal/audit"
	centermodels "github.com/R3gret/TinyBackend-sub000/internal/center/models"
	"github.com/R3gret/TinyBackend-sub000/internal/people/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// UserStore persists user accounts. Municipality and province are the
// parsed geography of geography-scoped accounts, empty otherwise.
type UserStore interface {
	CreateIfUsernameAvailable(ctx context.Context, user *models.User, municipality, province string) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// FocalExistsInMunicipality backs the one-focal-per-municipality rule,
	// enforced here at write time rather than by the schema.
	FocalExistsInMunicipality(ctx context.Context, municipality, province string) (bool, error)
	ListByCenter(ctx context.Context, centerID domain.CenterID) ([]*models.User, error)
}

// ChildStore persists children, profile rows and guardian links.
type ChildStore interface {
	// Enroll writes the child and all profile rows atomically.
	Enroll(ctx context.Context, child *models.Child, profiles []models.Profile) error
	FindByID(ctx context.Context, id domain.ChildID) (*models.Child, error)
	ListByCenter(ctx context.Context, centerID domain.CenterID) ([]*models.Child, error)
	Profiles(ctx context.Context, id domain.ChildID) ([]models.Profile, error)
	LinkGuardian(ctx context.Context, parent domain.UserID, child domain.ChildID) error
	LinkedChild(ctx context.Context, parent domain.UserID) (domain.ChildID, bool, error)
}

// CenterDirectory checks that a center exists and is active before people
// are attached to it.
type CenterDirectory interface {
	GetCenter(ctx context.Context, id domain.CenterID) (*centermodels.Center, error)
}

// CredentialHasher hashes and verifies account passwords.
type CredentialHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuditPublisher records registration and enrollment events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Registry manages person records.
type Registry struct {
	users    UserStore
	children ChildStore
	centers  CenterDirectory
	hasher   CredentialHasher
	logger   *slog.Logger
	auditor  AuditPublisher
}

// Option configures a Registry.
type Option func(*Registry)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(r *Registry) { r.auditor = p }
}

// New constructs a Registry.
func New(users UserStore, children ChildStore, centers CenterDirectory, hasher CredentialHasher, opts ...Option) *Registry {
	r := &Registry{
		users:    users,
		children: children,
		centers:  centers,
		hasher:   hasher,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterUserRequest carries the validated inputs for account creation.
type RegisterUserRequest struct {
	Username string
	Password string
	Role     domain.Role
	CenterID *domain.CenterID
	Address  string
}

// RegisterUser creates an account.
//
// Center-bound roles must name an active center. Focal accounts must carry
// a parseable home address, and at most one focal account may exist per
// municipality; that rule is checked here at write time.
func (r *Registry) RegisterUser(ctx context.Context, req RegisterUserRequest) (*models.User, error) {
	if len(req.Password) < 8 {
		return nil, dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}

	user, err := models.NewUser(domain.UserID(uuid.New()), req.Username, req.Role, req.CenterID, req.Address, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if user.CenterID != nil {
		if err := r.requireActiveCenter(ctx, *user.CenterID); err != nil {
			return nil, err
		}
	}

	var municipality, province string
	if user.Role.GeographyScoped() {
		geo, err := centermodels.ParseGeography(user.Address)
		if err != nil {
			return nil, err
		}
		exists, err := r.users.FocalExistsInMunicipality(ctx, geo.Municipality, geo.Province)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check focal municipality")
		}
		if exists {
			return nil, dErrors.Newf(dErrors.CodeConflict, "municipality %s already has a focal account", geo.Municipality)
		}
		municipality, province = geo.Municipality, geo.Province
	}

	hash, err := r.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := r.users.CreateIfUsernameAvailable(ctx, user, municipality, province); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "username is taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	r.emit(ctx, audit.ActionUserRegistered, user.CenterID, user.ID.String())
	return user, nil
}

// Authenticate verifies a username and password, returning the account.
// The same refusal covers unknown usernames and wrong passwords.
func (r *Registry) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := r.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	if err := r.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUser retrieves an account by ID.
func (r *Registry) GetUser(ctx context.Context, id domain.UserID) (*models.User, error) {
	user, err := r.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up user")
	}
	return user, nil
}

// EnrollChildRequest carries the validated inputs for enrollment.
type EnrollChildRequest struct {
	Name      string
	Birthdate time.Time
	CenterID  domain.CenterID
}

// EnrollChild creates the child record together with its full set of
// profile sheets in one transaction. A partially enrolled child is never
// visible.
func (r *Registry) EnrollChild(ctx context.Context, req EnrollChildRequest) (*models.Child, error) {
	now := requestcontext.Now(ctx)

	child, err := models.NewChild(domain.ChildID(uuid.New()), req.Name, req.Birthdate, req.CenterID, now)
	if err != nil {
		return nil, err
	}
	if err := r.requireActiveCenter(ctx, child.CenterID); err != nil {
		return nil, err
	}

	profiles := make([]models.Profile, 0, len(models.ProfileKinds))
	for _, kind := range models.ProfileKinds {
		profiles = append(profiles, models.Profile{
			ChildID:   child.ID,
			Kind:      kind,
			UpdatedAt: now,
		})
	}

	if err := r.children.Enroll(ctx, child, profiles); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "child already enrolled")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to enroll child")
	}

	r.emit(ctx, audit.ActionChildEnrolled, &child.CenterID, child.ID.String())
	return child, nil
}

// GetChild retrieves a child by ID.
func (r *Registry) GetChild(ctx context.Context, id domain.ChildID) (*models.Child, error) {
	child, err := r.children.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "child not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up child")
	}
	return child, nil
}

// ListChildren lists the children of one center.
func (r *Registry) ListChildren(ctx context.Context, centerID domain.CenterID) ([]*models.Child, error) {
	children, err := r.children.ListByCenter(ctx, centerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list children")
	}
	return children, nil
}

// LinkGuardian ties a parent account to its single child. A parent links to
// at most one child; a second link is a conflict.
func (r *Registry) LinkGuardian(ctx context.Context, parentID domain.UserID, childID domain.ChildID) error {
	parent, err := r.GetUser(ctx, parentID)
	if err != nil {
		return err
	}
	if parent.Role != domain.RoleParent {
		return dErrors.Newf(dErrors.CodeValidation, "role %s cannot be a guardian", parent.Role)
	}

	if err := r.children.LinkGuardian(ctx, parentID, childID); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNotFound, "child not found")
		case errors.Is(err, sentinel.ErrConflict):
			return dErrors.New(dErrors.CodeConflict, "parent is already linked to a child")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to link guardian")
	}

	r.emit(ctx, audit.ActionGuardianLinked, nil, childID.String())
	return nil
}

// LinkedChild resolves the single child linked to a parent account.
func (r *Registry) LinkedChild(ctx context.Context, parent domain.UserID) (domain.ChildID, bool, error) {
	return r.children.LinkedChild(ctx, parent)
}

func (r *Registry) requireActiveCenter(ctx context.Context, id domain.CenterID) error {
	c, err := r.centers.GetCenter(ctx, id)
	if err != nil {
		return err
	}
	if !c.IsActive() {
		return dErrors.New(dErrors.CodeValidation, "center is deactivated")
	}
	return nil
}

func (r *Registry) emit(ctx context.Context, action audit.Action, centerID *domain.CenterID, subject string) {
	if r.auditor == nil {
		return
	}
	ident, _ := requestcontext.Identity(ctx)
	event := audit.Event{
		Action:    action,
		ActorID:   ident.UserID,
		Role:      ident.Role,
		CenterID:  centerID,
		Subject:   subject,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := r.auditor.Emit(ctx, event); err != nil {
		r.logger.WarnContext(ctx, "audit emit failed", "action", string(action), "error", err)
	}
}
