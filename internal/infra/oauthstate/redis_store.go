// Package oauthstate stores the transient state of in-flight external logins.
package oauthstate

import (
	"context"
	"time"

	"passport/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	stateKeyPrefix = "oauthstate:"

	// stateTTL bounds how long a user can sit on the provider's consent
	// screen before the flow must be restarted.
	stateTTL = 10 * time.Minute
)

// redisStore implements service.OAuthStateStore.
type redisStore struct {
	client redis.Cmdable
}

// NewRedisStore is the constructor for redisStore.
func NewRedisStore(client *redis.Client) service.OAuthStateStore {
	return &redisStore{client: client}
}

// Save stores the return destination under a fresh state value.
func (s *redisStore) Save(ctx context.Context, state, returnURL string) error {
	return errors.Wrap(
		s.client.Set(ctx, stateKeyPrefix+state, returnURL, stateTTL).Err(),
		"failed to store oauth state")
}

// Consume retrieves and deletes the record in one step, so a replayed state
// never validates twice.
func (s *redisStore) Consume(ctx context.Context, state string) (string, bool, error) {
	if state == "" {
		return "", false, nil
	}

	returnURL, err := s.client.GetDel(ctx, stateKeyPrefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "failed to consume oauth state")
	}

	return returnURL, true, nil
}
