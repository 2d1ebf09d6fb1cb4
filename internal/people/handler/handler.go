package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/R3gret/TinyBackend-sub000/internal/access"
	"github.com/R3gret/TinyBackend-sub000/internal/people/models"
	"github.com/R3gret/TinyBackend-sub000/internal/people/service"
	"github.com/R3gret/TinyBackend-sub000/pkg/domain"
	dErrors "github.com/R3gret/TinyBackend-sub000/pkg/domain-errors"
	"github.com/R3gret/TinyBackend-sub000/pkg/platform/httputil"
	"github.com/R3gret/TinyBackend-sub000/pkg/requestcontext"
)

// AccessTokenTTL bounds how long an issued login token stays valid.
const AccessTokenTTL = 8 * time.Hour

// Service defines the interface for account and enrollment operations.
type Service interface {
	RegisterUser(ctx context.Context, req service.RegisterUserRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	EnrollChild(ctx context.Context, req service.EnrollChildRequest) (*models.Child, error)
	GetChild(ctx context.Context, id domain.ChildID) (*models.Child, error)
	ListChildren(ctx context.Context, centerID domain.CenterID) ([]*models.Child, error)
	LinkGuardian(ctx context.Context, parentID domain.UserID, childID domain.ChildID) error
}

// Authorizer gates every people operation.
type Authorizer interface {
	Authorize(ctx context.Context, op access.Operation, target access.TargetRef) (access.Decision, error)
}

// TokenIssuer signs access tokens for authenticated accounts.
type TokenIssuer interface {
	GenerateAccessToken(ident domain.Identity, expiresIn time.Duration) (string, error)
}

// Handler wires account and enrollment endpoints to the registry service.
type Handler struct {
	service    Service
	authorizer Authorizer
	tokens     TokenIssuer
	logger     *slog.Logger
}

// New constructs a people handler with its dependencies.
func New(service Service, authorizer Authorizer, tokens TokenIssuer, logger *slog.Logger) *Handler {
	return &Handler{
		service:    service,
		authorizer: authorizer,
		tokens:     tokens,
		logger:     logger,
	}
}

// RegisterPublic mounts the endpoints that run before authentication.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

// Register mounts the authenticated endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/users", h.HandleRegisterUser)
	r.Post("/children", h.HandleEnrollChild)
	r.Get("/children", h.HandleListChildren)
	r.Get("/children/{childID}", h.HandleGetChild)
	r.Post("/guardian-links", h.HandleLinkGuardian)
}

// HandleLogin handles POST /auth/login requests.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	user, err := h.service.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login refused",
			"request_id", requestID,
			"username", req.Username,
		)
		httputil.WriteError(w, err)
		return
	}

	token, err := h.tokens.GenerateAccessToken(domain.Identity{
		UserID:   user.ID,
		Role:     user.Role,
		CenterID: user.CenterID,
	}, AccessTokenTTL)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token"))
		return
	}

	h.logger.InfoContext(ctx, "login succeeded",
		"request_id", requestID,
		"user_id", user.ID,
		"role", user.Role,
	)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(AccessTokenTTL.Seconds()),
	})
}

// HandleRegisterUser handles POST /users requests.
// Creating a president account is a separate, narrower grant than creating
// the other center-bound roles.
func (h *Handler) HandleRegisterUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[RegisterUserRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	op := access.OpManageUsers
	if req.ParsedRole() == domain.RolePresident {
		op = access.OpCreatePresident
	}
	if !h.authorize(w, r, op, access.TargetRef{CenterID: req.ParsedCenterID()}) {
		return
	}

	user, err := h.service.RegisterUser(ctx, req.ToServiceRequest())
	if err != nil {
		h.logger.ErrorContext(ctx, "user registration failed",
			"request_id", requestID,
			"username", req.Username,
			"role", req.Role,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "user registered",
		"request_id", requestID,
		"user_id", user.ID,
		"role", user.Role,
	)
	httputil.WriteJSON(w, http.StatusCreated, user)
}

// HandleEnrollChild handles POST /children requests.
func (h *Handler) HandleEnrollChild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EnrollChildRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	centerID := req.ParsedCenterID()
	if !h.authorize(w, r, access.OpEnrollChild, access.TargetRef{CenterID: &centerID}) {
		return
	}

	child, err := h.service.EnrollChild(ctx, req.ToServiceRequest())
	if err != nil {
		h.logger.ErrorContext(ctx, "enrollment failed",
			"request_id", requestID,
			"center_id", centerID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "child enrolled",
		"request_id", requestID,
		"child_id", child.ID,
		"center_id", child.CenterID,
	)
	httputil.WriteJSON(w, http.StatusCreated, child)
}

// HandleListChildren handles GET /children requests. The result is scoped
// by the caller's grant: center staff see their center's children, a parent
// sees only the linked child.
func (h *Handler) HandleListChildren(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, err := h.authorizer.Authorize(ctx, access.OpViewChild, access.TargetRef{})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !d.Allowed {
		httputil.WriteError(w, access.Forbidden())
		return
	}

	var children []*models.Child
	switch {
	case d.Scope == access.ScopeOwnChild && d.ChildID != nil:
		child, err := h.service.GetChild(ctx, *d.ChildID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		children = []*models.Child{child}
	case d.CenterID != nil:
		children, err = h.service.ListChildren(ctx, *d.CenterID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	default:
		httputil.WriteError(w, access.Forbidden())
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"children": children})
}

// HandleGetChild handles GET /children/{childID} requests.
// The child's center is re-derived from its record before the access check;
// an unknown child and a denied one produce the same refusal.
func (h *Handler) HandleGetChild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	childID, err := domain.ParseChildID(chi.URLParam(r, "childID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	child, err := h.service.GetChild(ctx, childID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			httputil.WriteError(w, access.Forbidden())
			return
		}
		httputil.WriteError(w, err)
		return
	}

	if !h.authorize(w, r, access.OpViewChild, access.TargetRef{
		CenterID: &child.CenterID,
		ChildID:  &child.ID,
	}) {
		return
	}

	httputil.WriteJSON(w, http.StatusOK, child)
}

// HandleLinkGuardian handles POST /guardian-links requests.
func (h *Handler) HandleLinkGuardian(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[LinkGuardianRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	child, err := h.service.GetChild(ctx, req.ParsedChildID())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			httputil.WriteError(w, access.Forbidden())
			return
		}
		httputil.WriteError(w, err)
		return
	}

	if !h.authorize(w, r, access.OpManageUsers, access.TargetRef{CenterID: &child.CenterID}) {
		return
	}

	if err := h.service.LinkGuardian(ctx, req.ParsedParentID(), req.ParsedChildID()); err != nil {
		h.logger.ErrorContext(ctx, "guardian link failed",
			"request_id", requestID,
			"parent_id", req.ParsedParentID(),
			"child_id", req.ParsedChildID(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "guardian linked",
		"request_id", requestID,
		"parent_id", req.ParsedParentID(),
		"child_id", req.ParsedChildID(),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, op access.Operation, target access.TargetRef) bool {
	d, err := h.authorizer.Authorize(r.Context(), op, target)
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
