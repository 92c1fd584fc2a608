//go:build integration

package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"civreg/internal/identity/models"
	sessionstore "civreg/internal/identity/store/session"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
	"civreg/pkg/testutil/containers"
)

type RedisSessionSuite struct {
	suite.Suite
	store *sessionstore.RedisStore
}

func TestRedisSessionSuite(t *testing.T) {
	suite.Run(t, new(RedisSessionSuite))
}

func (s *RedisSessionSuite) SetupSuite() {
	rc := containers.NewRedisContainer(s.T())
	s.store = sessionstore.NewRedis(rc.Client)
}

func (s *RedisSessionSuite) newSession(userID id.UserID) *models.Session {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &models.Session{
		ID:         id.NewSessionID(),
		UserID:     userID,
		Role:       models.RoleVeo,
		DeviceName: "Chrome on Linux",
		ClientIP:   "10.0.0.7",
		UserAgent:  "Mozilla/5.0",
		CreatedAt:  now,
		ExpiresAt:  now.Add(8 * time.Hour),
	}
}

func (s *RedisSessionSuite) TestCreateAndFindRoundTrip() {
	ctx := context.Background()
	sess := s.newSession(id.NewUserID())
	s.Require().NoError(s.store.Create(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, found.ID)
	s.Equal(sess.UserID, found.UserID)
	s.Equal(models.RoleVeo, found.Role)
	s.Equal("Chrome on Linux", found.DeviceName)
	s.True(found.ExpiresAt.Equal(sess.ExpiresAt))
	s.Nil(found.RevokedAt)
}

func (s *RedisSessionSuite) TestFindUnknownSession() {
	_, err := s.store.FindByID(context.Background(), id.NewSessionID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisSessionSuite) TestListByUserReturnsOnlyThatUsersSessions() {
	ctx := context.Background()
	userID := id.NewUserID()

	first := s.newSession(userID)
	second := s.newSession(userID)
	other := s.newSession(id.NewUserID())
	s.Require().NoError(s.store.Create(ctx, first))
	s.Require().NoError(s.store.Create(ctx, second))
	s.Require().NoError(s.store.Create(ctx, other))

	sessions, err := s.store.ListByUser(ctx, userID)
	s.Require().NoError(err)
	s.Require().Len(sessions, 2)
	ids := []id.SessionID{sessions[0].ID, sessions[1].ID}
	s.Contains(ids, first.ID)
	s.Contains(ids, second.ID)
}

func (s *RedisSessionSuite) TestUpdatePersistsRevocation() {
	ctx := context.Background()
	sess := s.newSession(id.NewUserID())
	s.Require().NoError(s.store.Create(ctx, sess))

	revokedAt := time.Now().UTC().Truncate(time.Millisecond)
	sess.RevokedAt = &revokedAt
	s.Require().NoError(s.store.Update(ctx, sess))

	found, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.RevokedAt)
	s.True(found.RevokedAt.Equal(revokedAt))
	s.False(found.IsActive(time.Now()))
}

func (s *RedisSessionSuite) TestUpdateUnknownSession() {
	sess := s.newSession(id.NewUserID())
	err := s.store.Update(context.Background(), sess)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
