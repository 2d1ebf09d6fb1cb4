package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/R3gret/TinyBackend-sub000/internal/attendance/models"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/httputil"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// Service defines the interface for attendance operations. Scope checks
// live in the service; the handler only translates HTTP.
type Service interface {
	Mark(ctx context.Context, childID domain.ChildID, date time.Time, status models.Status) (*models.Record, error)
	ListForDay(ctx context.Context, date time.Time) ([]*models.Record, error)
	Summarize(ctx context.Context, from, to time.Time) ([]*models.DaySummary, error)
}

// Handler wires attendance endpoints to the attendance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an attendance handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts attendance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/attendance", h.HandleMark)
	r.Get("/attendance", h.HandleListForDay)
	r.Get("/attendance/summary", h.HandleSummary)
}

// HandleMark handles POST /attendance requests.
func (h *Handler) HandleMark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[MarkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.Mark(ctx, req.ParsedChildID(), req.ParsedDate(), req.ParsedStatus())
	if err != nil {
		h.logger.WarnContext(ctx, "attendance mark refused",
			"request_id", requestID,
			"child_id", req.ParsedChildID(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "attendance marked",
		"request_id", requestID,
		"child_id", rec.ChildID,
		"date", rec.Date.Format(dateLayout),
		"status", rec.Status,
	)
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

// HandleListForDay handles GET /attendance?date=YYYY-MM-DD requests.
func (h *Handler) HandleListForDay(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	date, err := parseDateParam(r.URL.Query().Get("date"), "date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	records, err := h.service.ListForDay(ctx, date)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"records": records})
}

// HandleSummary handles GET /attendance/summary?from=&to= requests.
// The response carries per-center counts only, never child identities.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	from, err := parseDateParam(r.URL.Query().Get("from"), "from")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	to, err := parseDateParam(r.URL.Query().Get("to"), "to")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if to.Before(from) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "to must not precede from"))
		return
	}

	sums, err := h.service.Summarize(ctx, from, to)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"summaries": sums})
}
