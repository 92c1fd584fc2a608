package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	identity "civreg/internal/identity/models"
	"civreg/internal/transfer/models"
	"civreg/internal/transfer/service"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/httputil"
	"civreg/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mock_service.go -package=mocks

// Service defines the transfer workflow operations the handler exposes.
type Service interface {
	RequestTransfer(ctx context.Context, actor identity.Actor, cmd service.RequestCommand) (*models.Transfer, error)
	ApproveAsWeo(ctx context.Context, actor identity.Actor, transferID id.TransferID) (*models.Transfer, error)
	ApproveAsReceivingWard(ctx context.Context, actor identity.Actor, transferID id.TransferID) (*models.Transfer, error)
	AcceptAsReceivingVeo(ctx context.Context, actor identity.Actor, transferID id.TransferID) (*models.Transfer, error)
	Reject(ctx context.Context, actor identity.Actor, transferID id.TransferID, reason string) (*models.Transfer, error)
	GetTransfer(ctx context.Context, actor identity.Actor, transferID id.TransferID) (*models.Transfer, models.Progress, error)
	ListByResidence(ctx context.Context, actor identity.Actor, residenceID id.ResidenceID) ([]*models.Transfer, error)
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
	r.Post("/transfers", h.HandleRequest)
	r.Get("/transfers/{id}", h.HandleGet)
	r.Post("/transfers/{id}/approve/weo", h.HandleApproveAsWeo)
	r.Post("/transfers/{id}/approve/ward", h.HandleApproveAsReceivingWard)
	r.Post("/transfers/{id}/accept", h.HandleAcceptAsReceivingVeo)
	r.Post("/transfers/{id}/reject", h.HandleReject)
	r.Get("/residences/{id}/transfers", h.HandleListByResidence)
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

func (h *Handler) transferID(w http.ResponseWriter, r *http.Request) (id.TransferID, bool) {
	transferID, err := id.ParseTransferID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid transfer id"))
		return id.TransferID{}, false
	}
	return transferID, true
}

// HandleRequest opens a transfer for a residence.
func (h *Handler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[RequestTransferRequest](w, r)
	if !ok {
		return
	}
	req.Normalize()
	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	t, err := h.service.RequestTransfer(ctx, actor, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "transfer request failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toTransferResponse(t))
}

// HandleGet returns a transfer with its progress projection.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}
	t, progress, err := h.service.GetTransfer(ctx, actor, transferID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTransferDetailsResponse(t, progress))
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request,
	step func(ctx context.Context, actor identity.Actor, transferID id.TransferID) (*models.Transfer, error)) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}
	t, err := step(ctx, actor, transferID)
	if err != nil {
		h.logger.ErrorContext(ctx, "transfer approval failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTransferResponse(t))
}

// HandleApproveAsWeo records the origin ward WEO's approval.
func (h *Handler) HandleApproveAsWeo(w http.ResponseWriter, r *http.Request) {
	h.approve(w, r, h.service.ApproveAsWeo)
}

// HandleApproveAsReceivingWard records the receiving ward Admin's approval.
func (h *Handler) HandleApproveAsReceivingWard(w http.ResponseWriter, r *http.Request) {
	h.approve(w, r, h.service.ApproveAsReceivingWard)
}

// HandleAcceptAsReceivingVeo records the receiving village VEO's acceptance.
func (h *Handler) HandleAcceptAsReceivingVeo(w http.ResponseWriter, r *http.Request) {
	h.approve(w, r, h.service.AcceptAsReceivingVeo)
}

// HandleReject terminates a transfer without relocating the residence.
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	transferID, ok := h.transferID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[RejectTransferRequest](w, r)
	if !ok {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	t, err := h.service.Reject(ctx, actor, transferID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTransferResponse(t))
}

// HandleListByResidence returns a residence's transfer history.
func (h *Handler) HandleListByResidence(w http.ResponseWriter, r *http.Request) {
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
	history, err := h.service.ListByResidence(ctx, actor, residenceID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTransferListResponse(history))
}
