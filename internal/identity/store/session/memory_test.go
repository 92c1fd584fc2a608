package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civreg/internal/identity/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

type SessionStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestSessionStoreSuite(t *testing.T) {
	suite.Run(t, new(SessionStoreSuite))
}

func (s *SessionStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *SessionStoreSuite) newSession(userID id.UserID) *models.Session {
	now := time.Now().UTC()
	return &models.Session{
		ID:         id.NewSessionID(),
		UserID:     userID,
		Role:       models.RoleVeo,
		DeviceName: "Chrome on Windows 10",
		CreatedAt:  now,
		ExpiresAt:  now.Add(8 * time.Hour),
	}
}

func (s *SessionStoreSuite) TestCreateAndFind() {
	sess := s.newSession(id.NewUserID())
	s.Require().NoError(s.store.Create(s.ctx, sess))

	found, err := s.store.FindByID(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.UserID, found.UserID)
	s.True(found.IsActive(time.Now().UTC()))

	_, err = s.store.FindByID(s.ctx, id.NewSessionID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *SessionStoreSuite) TestRevocation() {
	sess := s.newSession(id.NewUserID())
	s.Require().NoError(s.store.Create(s.ctx, sess))

	sess.Revoke(time.Now().UTC())
	s.Require().NoError(s.store.Update(s.ctx, sess))

	found, err := s.store.FindByID(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.False(found.IsActive(time.Now().UTC()))
}

func (s *SessionStoreSuite) TestListByUser() {
	userID := id.NewUserID()
	s.Require().NoError(s.store.Create(s.ctx, s.newSession(userID)))
	s.Require().NoError(s.store.Create(s.ctx, s.newSession(userID)))
	s.Require().NoError(s.store.Create(s.ctx, s.newSession(id.NewUserID())))

	sessions, err := s.store.ListByUser(s.ctx, userID)
	s.Require().NoError(err)
	s.Len(sessions, 2)
}

func (s *SessionStoreSuite) TestExpiry() {
	sess := s.newSession(id.NewUserID())
	sess.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	s.Require().NoError(s.store.Create(s.ctx, sess))

	found, err := s.store.FindByID(s.ctx, sess.ID)
	s.Require().NoError(err)
	s.False(found.IsActive(time.Now().UTC()))
}
