package events

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/muster-hq/muster/internal/auth"
	"github.com/muster-hq/muster/internal/platform/httpx"
	"github.com/muster-hq/muster/internal/shared"
)

// Handler exposes event endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	authmw   auth.Middleware
	validate *validator.Validate
}

// NewHandler constructs the events HTTP handler.
func NewHandler(logger *slog.Logger, service *Service, authmw auth.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authmw: authmw, validate: validator.New()}
}

// MountRoutes attaches event routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/confirm", h.Confirm)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authmw.RequireAuth, h.authmw.RequireAdmin)
		r.Post("/import", h.Import)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	principal := shared.PrincipalFromContext(r.Context())
	event, err := h.service.Create(r.Context(), principal, req)
	if err != nil {
		h.logger.Error("create event failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"event_id": event.ID})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.service.List(r.Context(), shared.PageLimit(r))
	if err != nil {
		h.logger.Error("list events failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, events)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateEventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	principal := shared.PrincipalFromContext(r.Context())
	event, err := h.service.Update(r.Context(), principal, chi.URLParam(r, "id"), req)
	if err != nil {
		h.logger.Error("update event failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, event)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		h.logger.Error("delete event failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	principal := shared.PrincipalFromContext(r.Context())
	if err := h.service.Confirm(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}

	principal := shared.PrincipalFromContext(r.Context())
	created, err := h.service.Import(r.Context(), principal, req)
	if err != nil {
		h.logger.Error("import events failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	ids := make([]string, 0, len(created))
	for _, event := range created {
		ids = append(ids, event.ID)
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"imported": len(ids), "event_ids": ids})
}
