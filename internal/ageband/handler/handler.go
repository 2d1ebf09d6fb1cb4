package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/R3gret/TinyBackend-sub000/internal/ageband"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/httputil"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// Catalog serves the current age band table.
type Catalog interface {
	Bands(ctx context.Context) ([]ageband.Band, error)
}

// Handler exposes the band table to authenticated clients so admin UIs can
// render band labels without hardcoding them.
type Handler struct {
	catalog Catalog
	logger  *slog.Logger
}

func New(catalog Catalog, logger *slog.Logger) *Handler {
	return &Handler{catalog: catalog, logger: logger}
}

// Register mounts band endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/bands", h.HandleList)
}

// HandleList handles GET /bands requests.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bands, err := h.catalog.Bands(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "band catalog lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	type bandResponse struct {
		ID    string `json:"id"`
		Label string `json:"label"`
		Range string `json:"range"`
	}
	out := make([]bandResponse, 0, len(bands))
	for _, b := range bands {
		out = append(out, bandResponse{ID: b.ID, Label: b.Label, Range: b.Raw})
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"bands": out})
}
