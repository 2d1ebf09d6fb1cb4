package access

import (
	"context"
	"log/slog"

	"github.com/R3gret/TinyBackend-sub000/internal/access/metrics"
	"github.com/R3gret/TinyBackend-sub000/internal/audit"
	centermodels "github.com/R3gret/TinyBackend-sub000/internal/center/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// CenterDirectory resolves centers so their status can be checked fresh on
// every decision. Caching a status here would let a deactivated center keep
// serving for the lifetime of the cache entry.
type CenterDirectory interface {
	GetCenter(ctx context.Context, id domain.CenterID) (*centermodels.Center, error)
}

// GuardianLinks resolves the single child linked to a parent account.
type GuardianLinks interface {
	LinkedChild(ctx context.Context, parent domain.UserID) (domain.ChildID, bool, error)
}

// AuditPublisher records denied authorization attempts.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// TargetRef identifies the record an operation acts on, by IDs only. The
// Authorizer resolves the live facts (center status, guardian linkage)
// before deciding.
type TargetRef struct {
	CenterID *domain.CenterID
	ChildID  *domain.ChildID
}

// Authorizer turns a caller identity plus a target reference into an
// authorization decision, fetching the record facts each time.
type Authorizer struct {
	centers   CenterDirectory
	guardians GuardianLinks
	logger    *slog.Logger
	metrics   *metrics.Metrics
	auditor   AuditPublisher
}

// Option configures an Authorizer.
type Option func(*Authorizer)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Authorizer) { a.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Authorizer) { a.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(a *Authorizer) { a.auditor = p }
}

// New constructs an Authorizer.
func New(centers CenterDirectory, guardians GuardianLinks, opts ...Option) *Authorizer {
	a := &Authorizer{
		centers:   centers,
		guardians: guardians,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authorize decides one operation for the identity carried in ctx.
//
// Facts are fetched fresh on every call: the actor's center status, the
// target's center status, and (for parents) the guardian linkage. A denial
// is a normal Decision, not an error; errors mean a fact could not be
// fetched.
func (a *Authorizer) Authorize(ctx context.Context, op Operation, target TargetRef) (Decision, error) {
	ident, ok := requestcontext.Identity(ctx)
	if !ok {
		d := deny(ReasonUnauthenticatedRole)
		a.record(ctx, op, d)
		return d, nil
	}

	actor := Actor{UserID: ident.UserID, Role: ident.Role, CenterID: ident.CenterID}

	if ident.CenterID != nil {
		active, err := a.centerActive(ctx, *ident.CenterID)
		if err != nil {
			return Decision{}, err
		}
		actor.CenterActive = active
	}

	if ident.Role == domain.RoleParent {
		childID, linked, err := a.guardians.LinkedChild(ctx, ident.UserID)
		if err != nil {
			return Decision{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve guardian linkage")
		}
		if linked {
			actor.LinkedChild = &childID
		}
	}

	resolved := Target{CenterID: target.CenterID, ChildID: target.ChildID}
	if target.CenterID != nil {
		active, err := a.centerActive(ctx, *target.CenterID)
		if err != nil {
			return Decision{}, err
		}
		resolved.CenterActive = active
	}

	d := Decide(actor, op, resolved)
	a.record(ctx, op, d)
	return d, nil
}

// Forbidden is the uniform client-facing refusal. It carries no detail about
// the target so a denial never confirms that a record exists.
func Forbidden() error {
	return dErrors.New(dErrors.CodeForbidden, "not authorized")
}

func (a *Authorizer) centerActive(ctx context.Context, id domain.CenterID) (bool, error) {
	c, err := a.centers.GetCenter(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return false, nil
		}
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check center status")
	}
	return c.IsActive(), nil
}

func (a *Authorizer) record(ctx context.Context, op Operation, d Decision) {
	if d.Allowed {
		if a.metrics != nil {
			a.metrics.RecordAllow()
		}
		return
	}

	if a.metrics != nil {
		a.metrics.RecordDeny(string(d.Reason))
	}

	ident, _ := requestcontext.Identity(ctx)
	a.logger.InfoContext(ctx, "authorization denied",
		"operation", string(op),
		"role", string(ident.Role),
		"reason", string(d.Reason),
		"request_id", requestcontext.RequestID(ctx),
	)

	if a.auditor != nil {
		event := audit.Event{
			Action:    audit.ActionAccessDenied,
			ActorID:   ident.UserID,
			Role:      ident.Role,
			CenterID:  ident.CenterID,
			Subject:   string(op),
			Reason:    string(d.Reason),
			RequestID: requestcontext.RequestID(ctx),
		}
		if err := a.auditor.Emit(ctx, event); err != nil {
			a.logger.WarnContext(ctx, "audit emit failed", "action", string(audit.ActionAccessDenied), "error", err)
		}
	}
}
