package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civreg/internal/identity/models"
	"civreg/internal/identity/service"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/httputil"
	"civreg/pkg/requestcontext"
)

// Service defines the identity operations the handler exposes.
type Service interface {
	Authenticate(ctx context.Context, username, password string) (*service.LoginResult, error)
	Logout(ctx context.Context, actorID id.UserID, sessionID id.SessionID) error
	ResolveActor(ctx context.Context, userID id.UserID) (models.Actor, error)
	CreateUser(ctx context.Context, actor models.Actor, cmd service.CreateUserCommand) (*models.User, error)
	SetUserLock(ctx context.Context, actor models.Actor, userID id.UserID, locked bool) (*models.User, error)
	ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error)
	ListSessions(ctx context.Context, actor models.Actor, userID id.UserID) ([]*models.Session, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the unauthenticated login route.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/login", h.HandleLogin)
}

// Register mounts the authenticated identity routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/logout", h.HandleLogout)
	r.Post("/users", h.HandleCreateUser)
	r.Get("/users", h.HandleListUsers)
	r.Post("/users/{id}/lock", h.HandleLockUser)
	r.Post("/users/{id}/unlock", h.HandleUnlockUser)
	r.Get("/users/{id}/sessions", h.HandleListSessions)
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (models.Actor, bool) {
	ctx := r.Context()
	actorID, err := httputil.RequireActorID(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return models.Actor{}, false
	}
	actor, err := h.service.ResolveActor(ctx, actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return models.Actor{}, false
	}
	return actor, true
}

// HandleLogin authenticates and issues a token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeJSON[LoginRequest](w, r)
	if !ok {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, err)
		return
	}

	res, err := h.service.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed", "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toLoginResponse(res))
}

// HandleLogout revokes the current session.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID, err := httputil.RequireActorID(ctx, h.logger, requestcontext.RequestID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Logout(ctx, actorID, requestcontext.SessionID(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleCreateUser registers a staff account.
func (h *Handler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeJSON[CreateUserRequest](w, r)
	if !ok {
		return
	}
	req.Normalize()
	cmd, err := req.ToCommand()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	user, err := h.service.CreateUser(ctx, actor, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "create user failed", "error", err, "request_id", requestcontext.RequestID(ctx))
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleListUsers lists the accounts the actor may manage.
func (h *Handler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	users, err := h.service.ListUsers(ctx, actor)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserListResponse(users))
}

func (h *Handler) HandleLockUser(w http.ResponseWriter, r *http.Request) {
	h.setLock(w, r, true)
}

func (h *Handler) HandleUnlockUser(w http.ResponseWriter, r *http.Request) {
	h.setLock(w, r, false)
}

func (h *Handler) setLock(w http.ResponseWriter, r *http.Request, locked bool) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}

	user, err := h.service.SetUserLock(ctx, actor, userID, locked)
	if err != nil {
		h.logger.ErrorContext(ctx, "set user lock failed", "error", err, "request_id", requestcontext.RequestID(ctx), "user_id", userID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleListSessions lists a user's sessions for administrative review.
func (h *Handler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid user id"))
		return
	}
	sessions, err := h.service.ListSessions(ctx, actor, userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSessionListResponse(sessions))
}
