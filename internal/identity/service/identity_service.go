// Package service implements authentication and staff account management.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"civreg/internal/identity/device"
	"civreg/internal/identity/metrics"
	"civreg/internal/identity/models"
	"civreg/internal/identity/token"
	id "civreg/pkg/domain"
	dErrors "civreg/pkg/domain-errors"
	"civreg/pkg/platform/audit"
	"civreg/pkg/platform/sentinel"
	"civreg/pkg/requestcontext"
	"civreg/pkg/secrets"
)

type UserStore interface {
	CreateIfAvailable(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error
}

type SessionStore interface {
	Create(ctx context.Context, sess *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error)
	Update(ctx context.Context, sess *models.Session) error
}

// AccessChecker gates user management to actors with authority over the
// target's location.
type AccessChecker interface {
	CanManageActor(actor models.Actor, target models.Actor) bool
}

// AssignmentValidator verifies a village belongs to a ward before a
// village-scoped role is assigned.
type AssignmentValidator interface {
	VillageBelongsToWard(ctx context.Context, villageID id.VillageID, wardID id.WardID) (bool, error)
}

type Service struct {
	users     UserStore
	sessions  SessionStore
	tokens    *token.Service
	checker   AccessChecker
	hierarchy AssignmentValidator
	audit     audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	tokenTTL  time.Duration
}

func New(users UserStore, sessions SessionStore, tokens *token.Service, checker AccessChecker, hierarchy AssignmentValidator, publisher audit.Publisher, m *metrics.Metrics, logger *slog.Logger, tokenTTL time.Duration) *Service {
	return &Service{
		users:     users,
		sessions:  sessions,
		tokens:    tokens,
		checker:   checker,
		hierarchy: hierarchy,
		audit:     publisher,
		metrics:   m,
		logger:    logger,
		tokenTTL:  tokenTTL,
	}
}

// LoginResult carries the issued token and its session.
type LoginResult struct {
	Token     string
	User      *models.User
	SessionID id.SessionID
	ExpiresAt time.Time
}

// Authenticate verifies credentials and issues a session-backed token.
// Failures are deliberately uniform so usernames cannot be probed.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.RecordLogin("failure")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	if err := secrets.Verify(password, u.PasswordHash); err != nil {
		s.metrics.RecordLogin("failure")
		s.emit(ctx, audit.NewEvent(ctx, audit.EventLoginFailed, u.ID, u.Role.String(), "user", u.ID.String()).
			WithReason("password mismatch"))
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	if !u.CanLogin() {
		s.metrics.RecordLogin("locked")
		s.emit(ctx, audit.NewEvent(ctx, audit.EventLoginFailed, u.ID, u.Role.String(), "user", u.ID.String()).
			WithReason("account locked"))
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := requestcontext.Now(ctx)
	sess := &models.Session{
		ID:         id.NewSessionID(),
		UserID:     u.ID,
		Role:       u.Role,
		DeviceName: device.DisplayName(requestcontext.UserAgent(ctx)),
		ClientIP:   requestcontext.ClientIP(ctx),
		UserAgent:  requestcontext.UserAgent(ctx),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.tokenTTL),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	signed, err := s.tokens.Generate(u.ID, sess.ID, u.Role.String(), now, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin("success")
	s.emit(ctx, audit.NewEvent(ctx, audit.EventLoginOK, u.ID, u.Role.String(), "session", sess.ID.String()))
	s.logger.Info("login succeeded", "user_id", u.ID, "device", sess.DeviceName)
	return &LoginResult{Token: signed, User: u, SessionID: sess.ID, ExpiresAt: sess.ExpiresAt}, nil
}

// Logout revokes the session backing the current token.
func (s *Service) Logout(ctx context.Context, actorID id.UserID, sessionID id.SessionID) error {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if sess.UserID != actorID {
		return dErrors.New(dErrors.CodeForbidden, "session belongs to another user")
	}
	sess.Revoke(requestcontext.Now(ctx))
	if err := s.sessions.Update(ctx, sess); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke session")
	}
	s.emit(ctx, audit.NewEvent(ctx, audit.EventLogout, actorID, string(sess.Role), "session", sessionID.String()))
	return nil
}

// IsSessionActive satisfies the auth middleware's session check.
func (s *Service) IsSessionActive(ctx context.Context, sessionID id.SessionID) (bool, error) {
	sess, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return sess.IsActive(requestcontext.Now(ctx)), nil
}

// ResolveActor loads the acting user's current authorization view. Reading
// the assignment from storage rather than the token means reassignments and
// locks take effect on the next request.
func (s *Service) ResolveActor(ctx context.Context, userID id.UserID) (models.Actor, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "unknown user")
		}
		return models.Actor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if u.Locked {
		return models.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "account is locked")
	}
	return u.Actor(), nil
}

// CreateUserCommand carries validated input for CreateUser.
type CreateUserCommand struct {
	Username   string
	FullName   string
	NIDANumber id.NIDANumber
	Password   string
	Role       models.Role
	WardID     id.WardID
	VillageID  id.VillageID
}

// CreateUser registers a staff account. The actor must have management
// authority over the target's assigned location.
func (s *Service) CreateUser(ctx context.Context, actor models.Actor, cmd CreateUserCommand) (*models.User, error) {
	hash, err := secrets.Hash(cmd.Password)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid password")
	}
	u, err := models.NewUser(id.NewUserID(), cmd.Username, cmd.FullName, cmd.NIDANumber,
		hash, cmd.Role, cmd.WardID, cmd.VillageID, requestcontext.Now(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeValidation, "invalid user")
	}

	if cmd.Role.VillageScoped() {
		ok, err := s.hierarchy.VillageBelongsToWard(ctx, cmd.VillageID, cmd.WardID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, dErrors.New(dErrors.CodeValidation, "assigned village does not belong to the assigned ward")
		}
	}

	if !s.checker.CanManageActor(actor, u.Actor()) {
		s.emit(ctx, audit.NewEvent(ctx, audit.EventUserCreated, actor.ID, actor.Role.String(), "user", "").
			Denied("no management authority over the target location"))
		return nil, dErrors.New(dErrors.CodeForbidden, "actor cannot manage users at this location")
	}

	if err := s.users.CreateIfAvailable(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "username or nida number already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.metrics.UsersCreated.Inc()
	s.emit(ctx, audit.NewEvent(ctx, audit.EventUserCreated, actor.ID, actor.Role.String(), "user", u.ID.String()))
	s.logger.Info("user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// SetUserLock locks or unlocks a staff account.
func (s *Service) SetUserLock(ctx context.Context, actor models.Actor, userID id.UserID, locked bool) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}

	action := audit.EventUserUnlocked
	if locked {
		action = audit.EventUserLocked
	}
	if !s.checker.CanManageActor(actor, u.Actor()) {
		s.emit(ctx, audit.NewEvent(ctx, action, actor.ID, actor.Role.String(), "user", userID.String()).
			Denied("no management authority over the target location"))
		return nil, dErrors.New(dErrors.CodeForbidden, "actor cannot manage this user")
	}
	if actor.ID == userID && locked {
		return nil, dErrors.New(dErrors.CodeValidation, "cannot lock your own account")
	}

	now := requestcontext.Now(ctx)
	if locked {
		u.Lock(now)
		s.metrics.UsersLocked.Inc()
	} else {
		u.Unlock(now)
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	s.emit(ctx, audit.NewEvent(ctx, action, actor.ID, actor.Role.String(), "user", userID.String()))
	return u, nil
}

// ListUsers returns the accounts the actor may manage.
func (s *Service) ListUsers(ctx context.Context, actor models.Actor) ([]*models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	out := make([]*models.User, 0, len(users))
	for _, u := range users {
		if s.checker.CanManageActor(actor, u.Actor()) {
			out = append(out, u)
		}
	}
	return out, nil
}

// ListSessions returns a user's sessions for administrative review.
func (s *Service) ListSessions(ctx context.Context, actor models.Actor, userID id.UserID) ([]*models.Session, error) {
	if actor.ID != userID {
		target, err := s.ResolveActor(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !s.checker.CanManageActor(actor, target) {
			return nil, dErrors.New(dErrors.CodeForbidden, "actor cannot view this user's sessions")
		}
	}
	sessions, err := s.sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list sessions")
	}
	return sessions, nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "action", event.Action, "error", err)
	}
}
