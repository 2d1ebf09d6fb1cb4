package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/R3gret/TinyBackend-sub000/internal/access"
	"github.com/R3gret/TinyBackend-sub000/internal/center/metrics"
	"github.com/R3gret/TinyBackend-sub000/internal/center/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/httputil"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// Service defines the interface for center directory operations.
type Service interface {
	CreateCenter(ctx context.Context, name string, loc models.Location) (*models.Center, error)
	GetCenter(ctx context.Context, id domain.CenterID) (*models.Center, error)
	ListActive(ctx context.Context) ([]*models.Center, error)
	DeactivateCenter(ctx context.Context, id domain.CenterID) (*models.Center, error)
	ReactivateCenter(ctx context.Context, id domain.CenterID) (*models.Center, error)
}

// Authorizer gates every center management operation.
type Authorizer interface {
	Authorize(ctx context.Context, op access.Operation, target access.TargetRef) (access.Decision, error)
}

// Handler wires center management endpoints to the directory service.
type Handler struct {
	service    Service
	authorizer Authorizer
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// New constructs a center handler with its dependencies.
func New(service Service, authorizer Authorizer, logger *slog.Logger, metrics *metrics.Metrics) *Handler {
	return &Handler{
		service:    service,
		authorizer: authorizer,
		logger:     logger,
		metrics:    metrics,
	}
}

// Register mounts center endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/centers", h.HandleCreate)
	r.Get("/centers", h.HandleList)
	r.Get("/centers/{centerID}", h.HandleGet)
	r.Post("/centers/{centerID}/deactivate", h.HandleDeactivate)
	r.Post("/centers/{centerID}/reactivate", h.HandleReactivate)
}

// authorize checks the caller against the center management grant.
// Target is left empty so deactivated centers stay reachable for
// reactivation by the roles that manage them.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request) bool {
	d, err := h.authorizer.Authorize(r.Context(), access.OpManageCenters, access.TargetRef{})
	if err != nil {
		httputil.WriteError(w, err)
		return false
	}
	if !d.Allowed {
		httputil.WriteError(w, access.Forbidden())
		return false
	}
	return true
}

// HandleCreate handles POST /centers requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.authorize(w, r) {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CreateCenterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	center, err := h.service.CreateCenter(ctx, req.Name, req.ParsedLocation())
	if err != nil {
		h.logger.ErrorContext(ctx, "center creation failed",
			"request_id", requestID,
			"name", req.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.metrics.IncrementCenterCreated()
	h.logger.InfoContext(ctx, "center created",
		"request_id", requestID,
		"center_id", center.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, center)
}

// HandleList handles GET /centers requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.authorize(w, r) {
		return
	}

	centers, err := h.service.ListActive(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"centers": centers})
}

// HandleGet handles GET /centers/{centerID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if !h.authorize(w, r) {
		return
	}

	centerID, err := domain.ParseCenterID(chi.URLParam(r, "centerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	center, err := h.service.GetCenter(ctx, centerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, center)
}

// HandleDeactivate handles POST /centers/{centerID}/deactivate requests.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.DeactivateCenter, "center deactivated")
}

// HandleReactivate handles POST /centers/{centerID}/reactivate requests.
func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ReactivateCenter, "center reactivated")
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, domain.CenterID) (*models.Center, error), msg string) {

	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	if !h.authorize(w, r) {
		return
	}

	centerID, err := domain.ParseCenterID(chi.URLParam(r, "centerID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	center, err := fn(ctx, centerID)
	if err != nil {
		h.logger.ErrorContext(ctx, "center status transition failed",
			"request_id", requestID,
			"center_id", centerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, msg,
		"request_id", requestID,
		"center_id", center.ID,
	)
	httputil.WriteJSON(w, http.StatusOK, center)
}
