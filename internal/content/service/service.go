// Package service implements content posting, deletion and viewer-scoped
// listing. Listing is where the decision components meet: authorization
// picks the scope, age classification and geography resolve the viewer, and
// the targeting rules filter the candidate set.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/R3gret/TinyBackend-sub000/internal/access"
	"github.com/R3gret/TinyBackend-sub000/internal/ageband"
	"github.com/R3gret/TinyBackend-sub000/internal/audit"
	centermodels "github.com/R3gret/TinyBackend-sub000/internal/center/models"
	contentmetrics "github.com/R3gret/TinyBackend-sub000/internal/content/metrics"
	"github.com/R3gret/TinyBackend-sub000/internal/content/models"
	peoplemodels "github.com/R3gret/TinyBackend-sub000/internal/people/models"
	"github.com/R3gret/TinyBackend-sub000/internal/targeting"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/sentinel"
	platformstrings "github.com/R3gret/TinyBackend-sub000/pkg/platform/strings"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// Store persists content items.
type Store interface {
	Create(ctx context.Context, item *models.Item) error
	FindByID(ctx context.Context, id domain.ContentID) (*models.Item, error)
	// ListForCenter returns broadcast items plus the center's own items.
	ListForCenter(ctx context.Context, centerID domain.CenterID) ([]*models.Item, error)
	// ListCenterBound returns every center-bound item and no broadcast ones.
	ListCenterBound(ctx context.Context) ([]*models.Item, error)
	Delete(ctx context.Context, id domain.ContentID) error
}

// Authorizer decides operations for the identity in ctx.
type Authorizer interface {
	Authorize(ctx context.Context, op access.Operation, target access.TargetRef) (access.Decision, error)
}

// Directory resolves center locations for geography-scoped listings.
type Directory interface {
	LocationOf(ctx context.Context, id domain.CenterID) (centermodels.Location, error)
	ResolveViewerGeography(role domain.Role, address string) (centermodels.Geography, error)
}

// People resolves the person records a listing needs: the viewer's account
// (for its address) and a linked child (for its birthdate and center).
type People interface {
	GetUser(ctx context.Context, id domain.UserID) (*peoplemodels.User, error)
	GetChild(ctx context.Context, id domain.ChildID) (*peoplemodels.Child, error)
}

// BandCatalog supplies the ordered age band list for classification.
type BandCatalog interface {
	Bands(ctx context.Context) ([]ageband.Band, error)
}

// AuditPublisher records content lifecycle actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates content operations.
type Service struct {
	store      Store
	authorizer Authorizer
	directory  Directory
	people     People
	bands      BandCatalog
	logger     *slog.Logger
	metrics    *contentmetrics.Metrics
	auditor    AuditPublisher
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *contentmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

// New constructs a Service.
func New(store Store, authorizer Authorizer, directory Directory, people People, bands BandCatalog, opts ...Option) *Service {
	s := &Service{
		store:      store,
		authorizer: authorizer,
		directory:  directory,
		people:     people,
		bands:      bands,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PostRequest carries the inputs for posting an item. Roles are free-text
// from the client and are normalized here.
type PostRequest struct {
	Kind           models.Kind
	Title          string
	Body           string
	AgeFilter      string
	Roles          []string
	AttachmentPath string
	// Broadcast posts to every center. Admin only.
	Broadcast bool
}

// Post creates a content item bound to the caller's center, or broadcast
// when requested by an admin.
func (s *Service) Post(ctx context.Context, req PostRequest) (*models.Item, error) {
	d, err := s.authorizer.Authorize(ctx, access.OpPostContent, access.TargetRef{})
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return nil, access.Forbidden()
	}

	ident, _ := requestcontext.Identity(ctx)

	centerID := d.CenterID
	if req.Broadcast {
		if ident.Role != domain.RoleAdmin {
			return nil, access.Forbidden()
		}
		centerID = nil
	}

	roleFilter := make([]domain.Role, 0, len(req.Roles))
	for _, r := range platformstrings.DedupeAndTrimLower(req.Roles) {
		roleFilter = append(roleFilter, domain.Role(r))
	}

	item, err := models.NewItem(domain.ContentID(uuid.New()), req.Kind, req.Title, req.Body,
		centerID, req.AgeFilter, roleFilter, req.AttachmentPath, ident.UserID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, item); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create content item")
	}

	if s.metrics != nil {
		s.metrics.RecordPosted(string(item.Kind))
	}
	s.emit(ctx, audit.ActionContentPosted, item.CenterID, item.ID.String())
	return item, nil
}

// Delete removes an item. The target center is re-derived from the stored
// item, so a cross-center delete is refused no matter what the client sent.
func (s *Service) Delete(ctx context.Context, id domain.ContentID) error {
	item, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Same refusal as a denied delete; existence is not revealed.
			return access.Forbidden()
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load content item")
	}

	d, err := s.authorizer.Authorize(ctx, access.OpDeleteContent, access.TargetRef{CenterID: item.CenterID})
	if err != nil {
		return err
	}
	if !d.Allowed {
		return access.Forbidden()
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete content item")
	}

	s.emit(ctx, audit.ActionContentDeleted, item.CenterID, item.ID.String())
	return nil
}

// ListForViewer returns the items visible to the caller, applying the
// authorization scope and then the targeting rules.
func (s *Service) ListForViewer(ctx context.Context) ([]*models.Item, error) {
	d, err := s.authorizer.Authorize(ctx, access.OpViewContent, access.TargetRef{})
	if err != nil {
		return nil, err
	}
	if !d.Allowed {
		return nil, access.Forbidden()
	}

	switch d.Scope {
	case access.ScopeCenter:
		return s.listCenterScoped(ctx, *d.CenterID)
	case access.ScopeOwnChild:
		return s.listForChild(ctx, *d.ChildID)
	case access.ScopeGeography:
		return s.listGeographyScoped(ctx)
	default:
		return nil, access.Forbidden()
	}
}

func (s *Service) listCenterScoped(ctx context.Context, centerID domain.CenterID) ([]*models.Item, error) {
	ident, _ := requestcontext.Identity(ctx)

	candidates, err := s.store.ListForCenter(ctx, centerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list content")
	}

	viewer := targeting.Viewer{Role: ident.Role, CenterID: &centerID}
	return s.filter(candidates, viewer, nil), nil
}

func (s *Service) listForChild(ctx context.Context, childID domain.ChildID) ([]*models.Item, error) {
	ident, _ := requestcontext.Identity(ctx)

	child, err := s.people.GetChild(ctx, childID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.ListForCenter(ctx, child.CenterID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list content")
	}

	viewer := targeting.Viewer{
		Role:     ident.Role,
		CenterID: &child.CenterID,
		Child:    &targeting.ChildView{BandID: s.classify(ctx, child)},
	}
	return s.filter(candidates, viewer, nil), nil
}

func (s *Service) listGeographyScoped(ctx context.Context) ([]*models.Item, error) {
	ident, _ := requestcontext.Identity(ctx)

	user, err := s.people.GetUser(ctx, ident.UserID)
	if err != nil {
		return nil, err
	}
	geo, err := s.directory.ResolveViewerGeography(user.Role, user.Address)
	if err != nil {
		// An unresolvable geography means nothing is visible; the listing
		// itself does not fail.
		s.logger.WarnContext(ctx, "viewer geography unresolvable",
			"user_id", user.ID.String(), "error", err)
		return nil, nil
	}

	candidates, err := s.store.ListCenterBound(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list content")
	}

	viewer := targeting.Viewer{Role: ident.Role, Geography: &geo}
	locations := s.resolveLocations(ctx, candidates)
	return s.filter(candidates, viewer, locations), nil
}

// classify resolves a child's age band against the catalog, with the
// canonical fallback when the catalog is empty. An unclassifiable child
// yields an empty band; band-filtered items just won't match.
func (s *Service) classify(ctx context.Context, child *peoplemodels.Child) string {
	asOf := requestcontext.Now(ctx)

	age, err := ageband.Compute(child.Birthdate, asOf)
	if err != nil {
		s.logger.WarnContext(ctx, "child age not computable",
			"child_id", child.ID.String(), "error", err)
		return ""
	}

	bands, err := s.bands.Bands(ctx)
	if err != nil || len(bands) == 0 {
		if id, ok := ageband.ClassifyFallback(child.Birthdate, asOf); ok {
			return id
		}
		return ""
	}
	if id, ok := ageband.Classify(age.TotalMonths, bands); ok {
		return id
	}
	return ""
}

// resolveLocations maps each candidate's center to its location. A center
// whose location cannot be resolved leaves its items invisible.
func (s *Service) resolveLocations(ctx context.Context, items []*models.Item) map[domain.CenterID]*centermodels.Location {
	out := make(map[domain.CenterID]*centermodels.Location)
	for _, item := range items {
		if item.CenterID == nil {
			continue
		}
		if _, seen := out[*item.CenterID]; seen {
			continue
		}
		loc, err := s.directory.LocationOf(ctx, *item.CenterID)
		if err != nil {
			s.logger.WarnContext(ctx, "center location unresolvable",
				"center_id", item.CenterID.String(), "error", err)
			out[*item.CenterID] = nil
			continue
		}
		out[*item.CenterID] = &loc
	}
	return out
}

func (s *Service) filter(items []*models.Item, viewer targeting.Viewer, locations map[domain.CenterID]*centermodels.Location) []*models.Item {
	var out []*models.Item
	for _, item := range items {
		t := targeting.Item{
			CenterID:   item.CenterID,
			AgeFilter:  item.AgeFilter,
			RoleFilter: item.RoleFilter,
		}
		if item.CenterID != nil && locations != nil {
			t.Location = locations[*item.CenterID]
		}
		if targeting.Visible(t, viewer) {
			out = append(out, item)
		}
	}
	return out
}

func (s *Service) emit(ctx context.Context, action audit.Action, centerID *domain.CenterID, subject string) {
	if s.auditor == nil {
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
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", string(action), "error", err)
	}
}
