package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"civreg/internal/identity/models"
	id "civreg/pkg/domain"
	"civreg/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix     = "session:"
	userSessionKeyPrefix = "user_sessions:"

	// maxSessionsPerUser caps the number of sessions loaded per user to
	// prevent unbounded memory growth on the admin session listing.
	maxSessionsPerUser = 100

	// defaultSessionTTL is the fallback when the session expiry has already
	// passed but the record must still be readable briefly.
	defaultSessionTTL = 24 * time.Hour
)

// sessionJSON is the JSON-serializable representation of a Session.
type sessionJSON struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	DeviceName string `json:"device_name"`
	ClientIP   string `json:"client_ip"`
	UserAgent  string `json:"user_agent"`
	CreatedAt  int64  `json:"created_at"`           // Unix nano
	ExpiresAt  int64  `json:"expires_at"`           // Unix nano
	RevokedAt  *int64 `json:"revoked_at,omitempty"` // Unix nano
}

func sessionToJSON(s *models.Session) *sessionJSON {
	j := &sessionJSON{
		ID:         s.ID.String(),
		UserID:     s.UserID.String(),
		Role:       string(s.Role),
		DeviceName: s.DeviceName,
		ClientIP:   s.ClientIP,
		UserAgent:  s.UserAgent,
		CreatedAt:  s.CreatedAt.UnixNano(),
		ExpiresAt:  s.ExpiresAt.UnixNano(),
	}
	if s.RevokedAt != nil {
		ts := s.RevokedAt.UnixNano()
		j.RevokedAt = &ts
	}
	return j
}

func sessionFromJSON(j *sessionJSON) (*models.Session, error) {
	sessionID, err := uuid.Parse(j.ID)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}
	userID, err := uuid.Parse(j.UserID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	s := &models.Session{
		ID:         id.SessionID(sessionID),
		UserID:     id.UserID(userID),
		Role:       models.Role(j.Role),
		DeviceName: j.DeviceName,
		ClientIP:   j.ClientIP,
		UserAgent:  j.UserAgent,
		CreatedAt:  time.Unix(0, j.CreatedAt),
		ExpiresAt:  time.Unix(0, j.ExpiresAt),
	}
	if j.RevokedAt != nil {
		t := time.Unix(0, *j.RevokedAt)
		s.RevokedAt = &t
	}
	return s, nil
}

// RedisStore persists sessions in Redis. This is the production
// implementation for deployments where multiple instances share session
// state.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed session store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

func userSessionsKey(userID id.UserID) string {
	return userSessionKeyPrefix + userID.String()
}

func sessionTTL(s *models.Session, now time.Time) time.Duration {
	ttl := s.ExpiresAt.Sub(now)
	if ttl <= 0 {
		return defaultSessionTTL
	}
	return ttl
}

// Create persists a new session and indexes it under its user.
func (s *RedisStore) Create(ctx context.Context, sess *models.Session) error {
	data, err := json.Marshal(sessionToJSON(sess))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := sessionTTL(sess, time.Now())
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sess.ID), data, ttl)
	pipe.SAdd(ctx, userSessionsKey(sess.UserID), sess.ID.String())
	pipe.Expire(ctx, userSessionsKey(sess.UserID), defaultSessionTTL+ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// FindByID retrieves a session.
func (s *RedisStore) FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var j sessionJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return sessionFromJSON(&j)
}

// ListByUser returns every stored session for a user, including revoked ones
// that have not yet expired out of Redis.
func (s *RedisStore) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Session, error) {
	ids, err := s.client.SMembers(ctx, userSessionsKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("list user sessions: %w", err)
	}
	if len(ids) > maxSessionsPerUser {
		ids = ids[:maxSessionsPerUser]
	}
	out := make([]*models.Session, 0, len(ids))
	for _, raw := range ids {
		sessionID, err := id.ParseSessionID(raw)
		if err != nil {
			continue
		}
		sess, err := s.FindByID(ctx, sessionID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				// Expired out of Redis; drop the stale index entry.
				s.client.SRem(ctx, userSessionsKey(userID), raw)
				continue
			}
			return nil, err
		}
		out = append(out, sess)
	}
	return out, nil
}

// Update rewrites an existing session, preserving its remaining TTL window.
func (s *RedisStore) Update(ctx context.Context, sess *models.Session) error {
	key := sessionKey(sess.ID)
	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if exists == 0 {
		return sentinel.ErrNotFound
	}
	data, err := json.Marshal(sessionToJSON(sess))
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, key, data, sessionTTL(sess, time.Now())).Err(); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}
