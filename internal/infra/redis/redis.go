// Package redis provides the shared Redis client for session, token and
// external-login state storage.
package redis

import (
	"context"

	"passport/config"
	"passport/internal/domain/lifecycle"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// Params defines the parameters required to build the Redis client.
type Params struct {
	fx.In

	Config    *config.Config
	Lifecycle fx.Lifecycle
}

// New creates the Redis client and wires its lifetime into the Fx lifecycle.
func New(params Params) (*redis.Client, error) {
	if params.Config.Redis == nil {
		return nil, errors.New("redis config missing")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     params.Config.Redis.Addr,
		Password: params.Config.Redis.Password,
		DB:       params.Config.Redis.DB,
	})

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
			defer cancel()

			return errors.Wrap(client.Ping(pingCtx).Err(), "redis ping failed")
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})

	return client, nil
}
