// Package service implements the center directory: resolving which center a
// record belongs to, a center's geographic location, and the viewer geography
// of municipality-scoped roles.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/R3gret/TinyBackend-sub000/internal/audit"
	centermetrics "github.com/R3gret/TinyBackend-sub000/internal/center/metrics"
	"github.com/R3gret/TinyBackend-sub000/internal/center/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// CenterStore persists centers together with their location rows.
type CenterStore interface {
	// CreateIfNameAvailable writes the center and its location row as one
	// atomic unit; a partially created center must never become visible.
	CreateIfNameAvailable(ctx context.Context, center *models.Center) error
	FindByID(ctx context.Context, id domain.CenterID) (*models.Center, error)
	// FindLocation returns nil (with no error) when the center row exists but
	// its location row is missing; the service surfaces that as OrphanCenter.
	FindLocation(ctx context.Context, id domain.CenterID) (*models.Location, error)
	// ListActive returns active centers only; deactivated centers are
	// invisible to every listing regardless of caller.
	ListActive(ctx context.Context) ([]*models.Center, error)
	UpdateStatus(ctx context.Context, center *models.Center) error
}

// AuditPublisher records center lifecycle actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Directory orchestrates center resolution and lifecycle.
type Directory struct {
	centers CenterStore
	logger  *slog.Logger
	metrics *centermetrics.Metrics
	auditor AuditPublisher
}

// Option configures a Directory.
type Option func(*Directory)

func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) { d.logger = logger }
}

func WithMetrics(m *centermetrics.Metrics) Option {
	return func(d *Directory) { d.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(d *Directory) { d.auditor = p }
}

// New constructs a Directory.
func New(centers CenterStore, opts ...Option) *Directory {
	d := &Directory{centers: centers, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// CenterScoped is any record bound to a home center: a user account or an
// enrolled child.
type CenterScoped interface {
	HomeCenter() (domain.CenterID, bool)
}

// CenterOf resolves the center a record belongs to. The second return is
// false for records without one (focal and msw accounts).
func CenterOf(rec CenterScoped) (domain.CenterID, bool) {
	return rec.HomeCenter()
}

// CreateCenter registers a new center with its location in one transaction.
func (d *Directory) CreateCenter(ctx context.Context, name string, loc models.Location) (*models.Center, error) {
	name = strings.TrimSpace(name)

	c, err := models.NewCenter(domain.CenterID(uuid.New()), name, loc, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := d.centers.CreateIfNameAvailable(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "center name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create center")
	}

	if d.metrics != nil {
		d.metrics.IncrementCenterCreated()
	}
	d.emit(ctx, audit.ActionCenterCreated, c.ID, "")
	return c, nil
}

// GetCenter retrieves a center by ID.
func (d *Directory) GetCenter(ctx context.Context, id domain.CenterID) (*models.Center, error) {
	c, err := d.centers.FindByID(ctx, id)
	if err != nil {
		return nil, wrapCenterErr(err)
	}
	return c, nil
}

// ListActive lists active centers. Deactivated centers never appear here.
func (d *Directory) ListActive(ctx context.Context) ([]*models.Center, error) {
	centers, err := d.centers.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list centers")
	}
	return centers, nil
}

// LocationOf resolves a center's geographic location.
//
// Errors: CodeNotFound for an unknown center; CodeOrphanCenter when the
// center row exists but its location row does not. The orphan case is a
// data-integrity violation and is surfaced, not defaulted.
func (d *Directory) LocationOf(ctx context.Context, id domain.CenterID) (models.Location, error) {
	if d.metrics != nil {
		defer d.metrics.ObserveLocationOf(time.Now())
	}

	loc, err := d.centers.FindLocation(ctx, id)
	if err != nil {
		return models.Location{}, wrapCenterErr(err)
	}
	if loc == nil {
		d.logger.ErrorContext(ctx, "center has no location row", "center_id", id.String())
		return models.Location{}, dErrors.Newf(dErrors.CodeOrphanCenter, "center %s has no location", id)
	}
	return *loc, nil
}

// ResolveViewerGeography derives the geography of a municipality-scoped
// viewer from the free-text address on their account.
func (d *Directory) ResolveViewerGeography(role domain.Role, address string) (models.Geography, error) {
	if !role.GeographyScoped() {
		return models.Geography{}, dErrors.Newf(dErrors.CodeInvalidInput, "role %s is not geography-scoped", role)
	}
	return models.ParseGeography(address)
}

// DeactivateCenter soft-deactivates a center. Takes effect for every
// operation immediately; status is re-read per request, never cached.
func (d *Directory) DeactivateCenter(ctx context.Context, id domain.CenterID) (*models.Center, error) {
	c, err := d.centers.FindByID(ctx, id)
	if err != nil {
		return nil, wrapCenterErr(err)
	}
	if err := c.Deactivate(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := d.centers.UpdateStatus(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate center")
	}
	d.emit(ctx, audit.ActionCenterDeactivated, c.ID, "")
	return c, nil
}

// ReactivateCenter returns a deactivated center to service.
func (d *Directory) ReactivateCenter(ctx context.Context, id domain.CenterID) (*models.Center, error) {
	c, err := d.centers.FindByID(ctx, id)
	if err != nil {
		return nil, wrapCenterErr(err)
	}
	if err := c.Reactivate(requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := d.centers.UpdateStatus(ctx, c); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reactivate center")
	}
	d.emit(ctx, audit.ActionCenterReactivated, c.ID, "")
	return c, nil
}

func (d *Directory) emit(ctx context.Context, action audit.Action, centerID domain.CenterID, reason string) {
	if d.auditor == nil {
		return
	}
	ident, _ := requestcontext.Identity(ctx)
	event := audit.Event{
		Action:    action,
		ActorID:   ident.UserID,
		Role:      ident.Role,
		CenterID:  &centerID,
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := d.auditor.Emit(ctx, event); err != nil {
		d.logger.WarnContext(ctx, "audit emit failed", "action", string(action), "error", err)
	}
}

func wrapCenterErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "center not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "center store failure")
}
