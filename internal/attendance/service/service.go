// Package service implements attendance marking by workers and the
// aggregate views read-only statistical roles see.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/R3gret/TinyBackend-sub000/internal/access"
	"github.com/R3gret/TinyBackend-sub000/internal/attendance/models"
	"github.com/R3gret/TinyBackend-sub000/internal/audit"
	centermodels "github.com/R3gret/TinyBackend-sub000/internal/center/models"
	peoplemodels "github.com/R3gret/TinyBackend-sub000/internal/people/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// Store persists attendance records.
type Store interface {
	// Mark inserts one record; a second record for the same child and day
	// is a conflict.
	Mark(ctx context.Context, rec *models.Record) error
	ListByCenterAndDate(ctx context.Context, centerID domain.CenterID, date time.Time) ([]*models.Record, error)
	Summarize(ctx context.Context, from, to time.Time) ([]*models.DaySummary, error)
}

// Authorizer decides operations for the identity in ctx.
type Authorizer interface {
	Authorize(ctx context.Context, op access.Operation, target access.TargetRef) (access.Decision, error)
}

// People resolves child records so the target center comes from the record,
// not from the client.
type People interface {
	GetChild(ctx context.Context, id domain.ChildID) (*peoplemodels.Child, error)
}

// Directory lists active centers so aggregates exclude deactivated ones.
type Directory interface {
	ListActive(ctx context.Context) ([]*centermodels.Center, error)
}

// AuditPublisher records attendance marking.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates attendance operations.
type Service struct {
	store     Store
	auth      Authorizer
	people    People
	directory Directory
	logger    *slog.Logger
	auditor   AuditPublisher
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

// New constructs a Service.
func New(store Store, auth Authorizer, people People, directory Directory, opts ...Option) *Service {
	s := &Service{
		store:     store,
		auth:      auth,
		people:    people,
		directory: directory,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Mark records one child's attendance for one day. The target center is the
// child's own center, re-derived from the child record.
func (s *Service) Mark(ctx context.Context, childID domain.ChildID, date time.Time, status models.Status) (*models.Record, error) {
	child, err := s.people.GetChild(ctx, childID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			// Same refusal as a denied mark; existence is not revealed.
			return nil, access.Forbidden()
		}
		return nil, err
	}

	d, err := s.auth.Authorize(ctx, access.OpMarkAttendance, access.TargetRef{
		CenterID: &child.CenterID,
		ChildID:  &childID,
	})
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return nil, access.Forbidden()
	}

	ident, _ := requestcontext.Identity(ctx)
	rec, err := models.NewRecord(childID, child.CenterID, date, status, ident.UserID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Mark(ctx, rec); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "attendance already marked for that day")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark attendance")
	}

	s.emit(ctx, rec)
	return rec, nil
}

// ListForDay returns the caller's center's records for one day.
func (s *Service) ListForDay(ctx context.Context, date time.Time) ([]*models.Record, error) {
	d, err := s.auth.Authorize(ctx, access.OpViewAttendance, access.TargetRef{})
	if err != nil {
		return nil, err
	}
	if !d.Allowed || d.Scope != access.ScopeCenter {
		return nil, access.Forbidden()
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	records, err := s.store.ListByCenterAndDate(ctx, *d.CenterID, day)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list attendance")
	}
	return records, nil
}

// Summarize returns per-center daily counts over [from, to] for read-only
// statistical roles. Deactivated centers are dropped from the result at
// read time.
func (s *Service) Summarize(ctx context.Context, from, to time.Time) ([]*models.DaySummary, error) {
	d, err := s.auth.Authorize(ctx, access.OpViewAggregates, access.TargetRef{})
	if err != nil {
		return nil, err
	}
	if !d.Allowed || d.Scope != access.ScopeUnrestricted {
		return nil, access.Forbidden()
	}

	sums, err := s.store.Summarize(ctx, from, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to summarize attendance")
	}

	active, err := s.directory.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	activeSet := make(map[domain.CenterID]bool, len(active))
	for _, c := range active {
		activeSet[c.ID] = true
	}

	out := sums[:0]
	for _, sum := range sums {
		if activeSet[sum.CenterID] {
			out = append(out, sum)
		}
	}
	return out, nil
}

func (s *Service) emit(ctx context.Context, rec *models.Record) {
	if s.auditor == nil {
		return
	}
	ident, _ := requestcontext.Identity(ctx)
	event := audit.Event{
		Action:    audit.ActionAttendanceMarked,
		ActorID:   ident.UserID,
		Role:      ident.Role,
		CenterID:  &rec.CenterID,
		Subject:   rec.ChildID.String(),
		RequestID: requestcontext.RequestID(ctx),
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", string(audit.ActionAttendanceMarked), "error", err)
	}
}
