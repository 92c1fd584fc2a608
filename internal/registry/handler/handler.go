package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	identity "civreg/internal/identity/models"
	"civreg/internal/registry/models"
	"civreg/internal/registry/service"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/httputil"
	"civreg/pkg/requestcontext"
)

// Service defines the registry operations the handler exposes.
type Service interface {
	Register(ctx context.Context, actor identity.Actor, cmd service.RegisterCommand) (*models.Residence, error)
	SetStatus(ctx context.Context, actor identity.Actor, residenceID id.ResidenceID, status models.ResidenceStatus) (*models.Residence, error)
	GetResidence(ctx context.Context, actor identity.Actor, residenceID id.ResidenceID) (*models.Residence, []*models.FamilyMember, error)
	ListAccessible(ctx context.Context, actor identity.Actor) ([]*models.Residence, error)
	AddFamilyMember(ctx context.Context, actor identity.Actor, residenceID id.ResidenceID, cmd service.FamilyMemberCommand) (*models.FamilyMember, error)
	RemoveFamilyMember(ctx context.Context, actor identity.Actor, memberID id.FamilyMemberID) error
}

// ActorResolver loads the acting user's authorization view.
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
	r.Post("/residences", h.HandleRegister)
	r.Get("/residences", h.HandleList)
	r.Get("/residences/{id}", h.HandleGet)
	r.Post("/residences/{id}/status", h.HandleSetStatus)
	r.Post("/residences/{id}/family-members", h.HandleAddFamilyMember)
	r.Delete("/family-members/{id}", h.HandleRemoveFamilyMember)
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

// HandleRegister creates a residence record.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[RegisterResidenceRequest](w, r)
	if !ok {
		return
	}
	req.Normalize()
	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	residence, err := h.service.Register(ctx, actor, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "register residence failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResidenceResponse(residence))
}

// HandleList lists the residences in the actor's scope.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	residences, err := h.service.ListAccessible(ctx, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResidenceListResponse(residences))
}

// HandleGet returns a residence with its family members.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	residenceID, err := id.ParseResidenceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid residence id"))
		return
	}
	residence, members, err := h.service.GetResidence(ctx, actor, residenceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResidenceDetailsResponse(residence, members))
}

// HandleSetStatus toggles a residence between active and inactive.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	residenceID, err := id.ParseResidenceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid residence id"))
		return
	}
	req, ok := httputil.DecodeJSON[SetResidenceStatusRequest](w, r)
	if !ok {
		return
	}
	status, err := models.ParseResidenceStatus(req.Status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	residence, err := h.service.SetStatus(ctx, actor, residenceID, status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResidenceResponse(residence))
}

// HandleAddFamilyMember appends a family member to a residence.
func (h *Handler) HandleAddFamilyMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	residenceID, err := id.ParseResidenceID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid residence id"))
		return
	}
	req, ok := httputil.DecodeJSON[AddFamilyMemberRequest](w, r)
	if !ok {
		return
	}
	req.Normalize()
	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	member, err := h.service.AddFamilyMember(ctx, actor, residenceID, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "add family member failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toFamilyMemberResponse(member))
}

// HandleRemoveFamilyMember deletes a family member record.
func (h *Handler) HandleRemoveFamilyMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	memberID, err := id.ParseFamilyMemberID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid family member id"))
		return
	}
	if err := h.service.RemoveFamilyMember(ctx, actor, memberID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
