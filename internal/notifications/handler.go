package notifications

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/muster-hq/muster/internal/auth"
	"github.com/muster-hq/muster/internal/platform/httpx"
	"github.com/muster-hq/muster/internal/shared"
)

// Handler exposes notification endpoints, including the delayed-delivery
// schedule backed by the timer registry.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	registry *Registry
	authmw   auth.Middleware
	validate *validator.Validate
}

// NewHandler constructs the notifications HTTP handler.
func NewHandler(logger *slog.Logger, service *Service, registry *Registry, authmw auth.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		registry: registry,
		authmw:   authmw,
		validate: validator.New(),
	}
}

// MountRoutes attaches notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth)
		r.Get("/", h.List)
		r.Put("/{id}/read", h.MarkRead)
		r.Delete("/{id}", h.Delete)
		r.Post("/schedule", h.Schedule)
		r.Delete("/schedule/{id}", h.CancelScheduled)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth, h.authmw.RequireAdmin)
		r.Post("/", h.Create)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateNotificationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	n, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create notification failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"id": n.ID})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := ListNotificationsFilters{Limit: shared.PageLimit(r)}
	query := r.URL.Query()
	if query.Has("read") {
		read := query.Get("read") == "true"
		filters.Read = &read
	}
	if t := query.Get("type"); t != "" {
		filters.Type = &t
	}

	principal := shared.PrincipalFromContext(r.Context())
	items, err := h.service.List(r.Context(), principal, filters)
	if err != nil {
		h.logger.Error("list notifications failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.MarkRead(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Schedule registers a delayed push delivery and returns its timer id.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	id, err := h.registry.Schedule(req.Time, req.DeviceTokens, req.Data)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"timer_id": id})
}

// CancelScheduled stops a pending delivery. Cancelling an unknown or
// already-fired timer succeeds.
func (h *Handler) CancelScheduled(w http.ResponseWriter, r *http.Request) {
	h.registry.Cancel(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusOK)
}
