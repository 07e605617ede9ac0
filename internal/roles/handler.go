package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/muster-hq/muster/internal/auth"
	"github.com/muster-hq/muster/internal/platform/httpx"
	"github.com/muster-hq/muster/internal/shared"
)

// Handler exposes role management endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	authmw   auth.Middleware
	validate *validator.Validate
}

// NewHandler constructs the roles HTTP handler.
func NewHandler(logger *slog.Logger, service *Service, authmw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authmw: authmw, validate: validator.New()}
}

// MountRoutes attaches role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth)
		r.Get("/", h.List)
		r.Post("/grant", h.GrantPreassigned)
		r.Post("/invite", h.Invite)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth, h.authmw.RequireAdmin)
		r.Post("/", h.Create)
		r.Post("/assign", h.Assign)
		r.Post("/revoke", h.Revoke)
		r.Post("/preassign", h.Preassign)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	def, err := h.service.CreateRole(r.Context(), req.Name, req.Level)
	if err != nil {
		h.logger.Error("create role failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"name": def.Name, "level": def.Level})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	defs, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	httpx.JSON(w, http.StatusOK, names)
}

func (h *Handler) GrantPreassigned(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	def, err := h.service.GrantPreassigned(r.Context(), principal.Email)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"role": def.Name, "level": def.Level})
}

func (h *Handler) Assign(w http.ResponseWriter, r *http.Request) {
	var req AssignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	def, err := h.service.Assign(r.Context(), req.Email, req.Role)
	if err != nil {
		h.logger.Error("assign role failed", slog.Any("error", err), slog.String("role", req.Role))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"role": def.Name, "level": def.Level})
}

func (h *Handler) Revoke(w http.ResponseWriter, r *http.Request) {
	var req RevokeRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	if err := h.service.Revoke(r.Context(), req.Email, req.Role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Preassign(w http.ResponseWriter, r *http.Request) {
	var req PreassignRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	if err := h.service.Preassign(r.Context(), req.Email, req.Role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req InviteRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	principal := shared.PrincipalFromContext(r.Context())
	invited, err := h.service.Invite(r.Context(), req.Role, req.EventID, principal.Email)
	if err != nil {
		h.logger.Error("invite failed", slog.Any("error", err), slog.String("role", req.Role))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invited": invited})
}
