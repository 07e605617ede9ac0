package users

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/muster-hq/muster/internal/auth"
	"github.com/muster-hq/muster/internal/platform/httpx"
	"github.com/muster-hq/muster/internal/shared"
)

// Handler exposes profile endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	authmw   auth.Middleware
	validate *validator.Validate
}

// NewHandler constructs the users HTTP handler.
func NewHandler(logger *slog.Logger, service *Service, authmw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authmw: authmw, validate: validator.New()}
}

// MountRoutes attaches user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth)
		r.Post("/", h.Register)
		r.Get("/me", h.Me)
		r.Put("/me", h.Update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth, h.authmw.RequireAdmin)
		r.Get("/", h.List)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	principal := shared.PrincipalFromContext(r.Context())
	profile, err := h.service.Register(r.Context(), principal, req)
	if err != nil {
		h.logger.Error("register user failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"account_id": profile.AccountID})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	resp, err := h.service.Get(r.Context(), principal.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	principal := shared.PrincipalFromContext(r.Context())
	if _, err := h.service.Update(r.Context(), principal.ID, req); err != nil {
		h.logger.Error("update user failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete user failed", slog.Any("error", err), slog.Int64("id", id))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := ListUsersFilters{Limit: shared.PageLimit(r)}
	query := r.URL.Query()
	if dod := query.Get("dod"); dod != "" {
		filters.DoD = &dod
	}
	if rank := query.Get("rank"); rank != "" {
		filters.Rank = &rank
	}
	if query.Has("officer") {
		officer := query.Get("officer") == "true"
		filters.Officer = &officer
	}

	profiles, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, profiles)
}
