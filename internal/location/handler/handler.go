package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	identity "civreg/internal/identity/models"
	"civreg/internal/location/models"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/httputil"
	"civreg/pkg/requestcontext"
)

// Service defines the location operations the handler exposes.
// Returns domain objects, not HTTP response DTOs.
type Service interface {
	CreateWard(ctx context.Context, actor identity.Actor, name, code string) (*models.Ward, error)
	CreateVillage(ctx context.Context, actor identity.Actor, name, code string, wardID id.WardID) (*models.Village, error)
	SetWardStatus(ctx context.Context, actor identity.Actor, wardID id.WardID, status models.LocationStatus) (*models.Ward, error)
	SetVillageStatus(ctx context.Context, actor identity.Actor, villageID id.VillageID, status models.LocationStatus) (*models.Village, error)
	DeleteWard(ctx context.Context, actor identity.Actor, wardID id.WardID) error
	ListWards(ctx context.Context) ([]*models.Ward, error)
	ListVillages(ctx context.Context, wardID id.WardID) ([]*models.Village, error)
}

// ActorResolver loads the acting user's authorization view from the
// authenticated user ID the middleware placed in the context.
type ActorResolver interface {
	ResolveActor(ctx context.Context, userID id.UserID) (identity.Actor, error)
}

type Handler struct {
	service Service
	actors  ActorResolver
	logger  *slog.Logger
}

func New(service Service, actors ActorResolver, logger *slog.Logger) *Handler {
	return &Handler{service: service, actors: actors, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/wards", h.HandleCreateWard)
	r.Get("/wards", h.HandleListWards)
	r.Post("/wards/{id}/status", h.HandleSetWardStatus)
	r.Delete("/wards/{id}", h.HandleDeleteWard)
	r.Get("/wards/{id}/villages", h.HandleListVillages)
	r.Post("/villages", h.HandleCreateVillage)
	r.Post("/villages/{id}/status", h.HandleSetVillageStatus)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (identity.Actor, bool) {
	ctx := r.Context()
	actorID, err := httputil.RequireActorID(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return identity.Actor{}, false
	}
	actor, err := h.actors.ResolveActor(ctx, actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return identity.Actor{}, false
	}
	return actor, true
}

// HandleCreateWard creates a ward.
func (h *Handler) HandleCreateWard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[CreateWardRequest](w, r)
	if !ok {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	ward, err := h.service.CreateWard(ctx, actor, req.Name, req.Code)
	if err != nil {
		h.logger.ErrorContext(ctx, "create ward failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toWardResponse(ward))
}

// HandleListWards lists all wards for location selectors.
func (h *Handler) HandleListWards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.actor(w, r); !ok {
		return
	}
	wards, err := h.service.ListWards(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toWardListResponse(wards))
}

// HandleSetWardStatus activates or deactivates a ward.
func (h *Handler) HandleSetWardStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	wardID, err := id.ParseWardID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ward id"))
		return
	}
	req, ok := httputil.DecodeJSON[SetStatusRequest](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	ward, err := h.service.SetWardStatus(ctx, actor, wardID, models.LocationStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toWardResponse(ward))
}

// HandleDeleteWard deletes a ward without villages.
func (h *Handler) HandleDeleteWard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	wardID, err := id.ParseWardID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ward id"))
		return
	}
	if err := h.service.DeleteWard(ctx, actor, wardID); err != nil {
		h.logger.ErrorContext(ctx, "delete ward failed", "error", err, "request_id", requestcontext.RequestID(ctx), "ward_id", wardID)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListVillages lists the villages of a ward.
func (h *Handler) HandleListVillages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := h.actor(w, r); !ok {
		return
	}
	wardID, err := id.ParseWardID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ward id"))
		return
	}
	villages, err := h.service.ListVillages(ctx, wardID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVillageListResponse(villages))
}

// HandleCreateVillage creates a village inside a ward.
func (h *Handler) HandleCreateVillage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[CreateVillageRequest](w, r)
	if !ok {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}
	wardID, err := id.ParseWardID(req.WardID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid ward id"))
		return
	}

	village, err := h.service.CreateVillage(ctx, actor, req.Name, req.Code, wardID)
	if err != nil {
		h.logger.ErrorContext(ctx, "create village failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toVillageResponse(village))
}

// HandleSetVillageStatus activates or deactivates a village.
func (h *Handler) HandleSetVillageStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	villageID, err := id.ParseVillageID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid village id"))
		return
	}
	req, ok := httputil.DecodeJSON[SetStatusRequest](w, r)
	if !ok {
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	village, err := h.service.SetVillageStatus(ctx, actor, villageID, models.LocationStatus(req.Status))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVillageResponse(village))
}
