// Package postgres implements the repository interfaces on GORM.
package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"passport/config"
	"passport/internal/domain/lifecycle"

	"github.com/pkg/errors"
	pgLib "github.com/slighter12/go-lib/database/postgres"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

const poolStatsInterval = 10 * time.Second

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates the PostgreSQL connection for the credential store.
func New(params Params) (*gorm.DB, error) {
	db, err := pgLib.New(params.Config.Postgres)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create PostgreSQL client")
	}
	db = db.Session(&gorm.Session{
		// Lockout counters and 2FA state change inside explicit transactions
		// via txManager.Execute; GORM's implicit per-statement transaction
		// only adds round-trips on top of that.
		SkipDefaultTransaction: true,
		Logger:                 newGormSlogLogger(params.Logger, params.Config),
	})

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get PostgreSQL sql.DB")
	}

	statsCtx, cancelStats := context.WithCancel(context.Background())

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := sqlDB.PingContext(ctx); err != nil {
				return errors.Wrap(err, "failed to ping PostgreSQL")
			}

			go reportPoolContention(statsCtx, params.Logger, sqlDB)

			return nil
		},
		OnStop: func(_ context.Context) error {
			cancelStats()

			return sqlDB.Close()
		},
	})

	return db, nil
}

// reportPoolContention logs when requests had to wait for a connection. Row
// locks on hot identities (repeated failed logins) show up here first.
func reportPoolContention(ctx context.Context, logger *slog.Logger, sqlDB *sql.DB) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()

	prev := sqlDB.Stats()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := sqlDB.Stats()
			waited := cur.WaitCount - prev.WaitCount
			waitedFor := cur.WaitDuration - prev.WaitDuration
			prev = cur
			if waited == 0 {
				continue
			}

			logger.LogAttrs(ctx, slog.LevelWarn, "Postgres pool contention",
				slog.Int64("waitCount", waited),
				slog.Duration("waitDuration", waitedFor),
				slog.Int("openConns", cur.OpenConnections),
				slog.Int("inUseConns", cur.InUse),
				slog.Int("idleConns", cur.Idle),
			)
		}
	}
}
