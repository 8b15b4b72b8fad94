package database

import (
	"context"
	"errors"
	"time"

	applog "github.com/yukikurage/minitrello-api/internal/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger routes gorm's query log into the application logger
type gormLogger struct {
	log   *applog.Logger
	level logger.LogLevel
}

func newGormLogger(log *applog.Logger, level logger.LogLevel) *gormLogger {
	return &gormLogger{log: log.WithComponent("gorm"), level: level}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		l.log.Infof(msg, args...)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		l.log.Warnf(msg, args...)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		l.log.Errorf(msg, args...)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.Errorw("Query failed", "sql", sql, "rows", rows, "duration_ms", elapsed.Milliseconds(), "error", err.Error())
	case elapsed > slowQueryThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.log.Warnw("Slow query", "sql", sql, "rows", rows, "duration_ms", elapsed.Milliseconds())
	case l.level >= logger.Info:
		sql, rows := fc()
		l.log.Debugw("Query", "sql", sql, "rows", rows, "duration_ms", elapsed.Milliseconds())
	}
}
