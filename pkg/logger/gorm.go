package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes GORM's statement logging through slog.
// Record-not-found is expected control flow and is never logged as an error.
type GormLogger struct {
	base          *slog.Logger
	level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

func NewGormLogger(l *slog.Logger, level gormlogger.LogLevel) *GormLogger {
	if l == nil {
		l = slog.Default()
	}
	return &GormLogger{base: l, level: level, SlowThreshold: 200 * time.Millisecond}
}

func (g *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *GormLogger) logger(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if v := ctx.Value(ctxKey{}); v != nil {
			if l, ok := v.(*slog.Logger); ok && l != nil {
				return l
			}
		}
	}
	return g.base
}

func (g *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Info {
		g.logger(ctx).InfoContext(ctx, fmt.Sprintf(msg, args...), "component", "gorm")
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Warn {
		g.logger(ctx).WarnContext(ctx, fmt.Sprintf(msg, args...), "component", "gorm")
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormlogger.Error {
		g.logger(ctx).ErrorContext(ctx, fmt.Sprintf(msg, args...), "component", "gorm")
	}
}

func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	l := g.logger(ctx)

	switch {
	case err != nil && g.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.ErrorContext(ctx, "gorm query failed",
			"component", "gorm", "err", err, "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	case g.SlowThreshold > 0 && elapsed > g.SlowThreshold && g.level >= gormlogger.Warn:
		sql, rows := fc()
		l.WarnContext(ctx, "gorm slow query",
			"component", "gorm", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds(), "threshold_ms", g.SlowThreshold.Milliseconds())
	case g.level >= gormlogger.Info:
		sql, rows := fc()
		l.DebugContext(ctx, "gorm query", "component", "gorm", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	}
}
