// Package session implements session issuance on top of Redis. The token is
// the key; expiry rides on the Redis TTL so revocation and expiry are a single
// mechanism.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"time"

	"passport/config"
	"passport/internal/domain/entity"
	"passport/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "session:"
	tokenBytes       = 32
)

// redisStore implements service.SessionIssuer.
type redisStore struct {
	client        redis.Cmdable
	ttl           time.Duration
	persistentTTL time.Duration
}

// NewRedisStore is the constructor for redisStore.
func NewRedisStore(client *redis.Client, cfg *config.Config) service.SessionIssuer {
	return &redisStore{
		client:        client,
		ttl:           cfg.Session.TTL,
		persistentTTL: cfg.Session.PersistentTTL,
	}
}

// Issue mints a fresh opaque token and stores the session under it.
func (s *redisStore) Issue(ctx context.Context, identityID uuid.UUID, persistent bool) (*entity.Session, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	ttl := s.ttl
	if persistent {
		ttl = s.persistentTTL
	}

	now := time.Now()
	session := &entity.Session{
		Token:      token,
		IdentityID: identityID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(ttl),
		Persistent: persistent,
	}

	payload, err := json.Marshal(session)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal session")
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+token, payload, ttl).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to store session")
	}

	return session, nil
}

// Validate resolves a token to its session.
func (s *redisStore) Validate(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, service.ErrSessionNotFound
	}

	payload, err := s.client.Get(ctx, sessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, service.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session")
	}

	var session entity.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal session")
	}
	session.Token = token

	// Redis TTL already bounds the lifetime; this guards against clock edges.
	if session.Expired(time.Now()) {
		return nil, service.ErrSessionNotFound
	}

	return &session, nil
}

// Revoke deletes the session. Deleting a missing key is a no-op.
func (s *redisStore) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	return errors.Wrap(s.client.Del(ctx, sessionKeyPrefix+token).Err(), "failed to delete session")
}

// newToken returns a URL-safe random token with 256 bits of entropy.
func newToken() (string, error) {
	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.Wrap(err, "failed to read random token")
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}
