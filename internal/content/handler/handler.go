package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/R3gret/TinyBackend-sub000/internal/content/models"
	"github.com/R3gret/TinyBackend-sub000/internal/content/service"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/httputil"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// Service defines the interface for content operations. Authorization and
// visibility filtering live in the service; the handler only translates HTTP.
type Service interface {
	Post(ctx context.Context, req service.PostRequest) (*models.Item, error)
	Delete(ctx context.Context, id domain.ContentID) error
	ListForViewer(ctx context.Context) ([]*models.Item, error)
}

// Handler wires content endpoints to the content service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a content handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts content endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/content", h.HandlePost)
	r.Get("/content", h.HandleList)
	r.Delete("/content/{contentID}", h.HandleDelete)
}

// HandlePost handles POST /content requests.
func (h *Handler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[PostContentRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	item, err := h.service.Post(ctx, req.ToServiceRequest())
	if err != nil {
		h.logger.ErrorContext(ctx, "content post failed",
			"request_id", requestID,
			"kind", req.Kind,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "content posted",
		"request_id", requestID,
		"content_id", item.ID,
		"kind", item.Kind,
		"broadcast", item.Broadcast(),
	)
	httputil.WriteJSON(w, http.StatusCreated, item)
}

// HandleList handles GET /content requests. The caller never states what
// they may see; the result is whatever their grant filters down to.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	items, err := h.service.ListForViewer(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "content listed",
		"request_id", requestID,
		"count", len(items),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"items": items})
}

// HandleDelete handles DELETE /content/{contentID} requests.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	contentID, err := domain.ParseContentID(chi.URLParam(r, "contentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.service.Delete(ctx, contentID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "content deleted",
		"request_id", requestID,
		"content_id", contentID,
	)
	w.WriteHeader(http.StatusNoContent)
}
