package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"passport/config"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// slowQueryThreshold flags queries slow enough to matter for login latency.
const slowQueryThreshold = 200 * time.Millisecond

// gormSlogLogger adapts gorm's logger.Interface onto slog. Record-not-found
// is the normal outcome of an unknown-email lookup, so it never logs as an
// error.
type gormSlogLogger struct {
	logger *slog.Logger
	level  logger.LogLevel
}

func newGormSlogLogger(baseLogger *slog.Logger, cfg *config.Config) logger.Interface {
	level := logger.Warn
	if cfg != nil && cfg.Env.Debug {
		level = logger.Info
	}

	return &gormSlogLogger{
		logger: baseLogger,
		level:  level,
	}
}

func (l *gormSlogLogger) LogMode(level logger.LogLevel) logger.Interface {
	cloned := *l
	cloned.level = level

	return &cloned
}

func (l *gormSlogLogger) Info(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logger.Info, slog.LevelInfo, msg, args...)
}

func (l *gormSlogLogger) Warn(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logger.Warn, slog.LevelWarn, msg, args...)
}

func (l *gormSlogLogger) Error(ctx context.Context, msg string, args ...any) {
	l.log(ctx, logger.Error, slog.LevelError, msg, args...)
}

func (l *gormSlogLogger) log(ctx context.Context, gormLevel logger.LogLevel, slogLevel slog.Level, msg string, args ...any) {
	if l.level < gormLevel || l.logger == nil {
		return
	}

	l.logger.LogAttrs(ctx, slogLevel, "GORM",
		slog.String("message", fmt.Sprintf(msg, args...)),
	)
}

func (l *gormSlogLogger) Trace(ctx context.Context, begin time.Time, sqlAndRowsFn func() (string, int64), err error) {
	if l.logger == nil || l.level == logger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.LogAttrs(ctx, slog.LevelError, "GORM query failed",
			append(queryAttrs(sqlAndRowsFn, elapsed), slog.String("error", err.Error()))...)
	case elapsed > slowQueryThreshold && l.level >= logger.Warn:
		l.logger.LogAttrs(ctx, slog.LevelWarn, "GORM slow query",
			append(queryAttrs(sqlAndRowsFn, elapsed), slog.Duration("slowThreshold", slowQueryThreshold))...)
	case l.level >= logger.Info:
		l.logger.LogAttrs(ctx, slog.LevelInfo, "GORM query", queryAttrs(sqlAndRowsFn, elapsed)...)
	}
}

func queryAttrs(sqlAndRowsFn func() (string, int64), elapsed time.Duration) []slog.Attr {
	sql, rows := sqlAndRowsFn()

	return []slog.Attr{
		slog.Duration("elapsed", elapsed),
		slog.Int64("rows", rows),
		slog.String("sql", sql),
	}
}
