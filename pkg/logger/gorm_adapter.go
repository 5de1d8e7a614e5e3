package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storeassist/infrastructure/persistence"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormAdapter routes GORM's SQL logging through zap, tagging every line
// with the request id when one travels on the context.
type GormAdapter struct {
	logLevel      gormlogger.LogLevel
	logger        *zap.Logger
	slowThreshold time.Duration
}

func NewGormAdapter(logLevel gormlogger.LogLevel) *GormAdapter {
	baseLogger := log
	if baseLogger == nil {
		baseLogger = zap.NewNop()
	}
	return &GormAdapter{
		logLevel:      logLevel,
		logger:        baseLogger,
		slowThreshold: 200 * time.Millisecond,
	}
}

func (l *GormAdapter) LogMode(logLevel gormlogger.LogLevel) gormlogger.Interface {
	return &GormAdapter{logLevel: logLevel, logger: l.logger, slowThreshold: l.slowThreshold}
}

func (l *GormAdapter) withContext(ctx context.Context) *zap.Logger {
	if requestID := persistence.RequestIDFromContext(ctx); requestID != "" {
		return l.logger.With(zap.String("request_id", requestID))
	}
	return l.logger
}

func (l *GormAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= gormlogger.Info {
		l.withContext(ctx).Info(fmt.Sprintf(msg, args...))
	}
}

func (l *GormAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= gormlogger.Warn {
		l.withContext(ctx).Warn(fmt.Sprintf(msg, args...))
	}
}

func (l *GormAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.logLevel >= gormlogger.Error {
		l.withContext(ctx).Error(fmt.Sprintf(msg, args...))
	}
}

func (l *GormAdapter) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	sql, rows := fc()
	elapsed := time.Since(begin)
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
	}
	log := l.withContext(ctx)

	switch {
	case err != nil && l.logLevel >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		log.Error("database operation failed", append(fields, zap.Error(err))...)
	case l.slowThreshold != 0 && elapsed > l.slowThreshold && l.logLevel >= gormlogger.Warn:
		log.Warn("slow sql query", fields...)
	case l.logLevel >= gormlogger.Info:
		log.Info("sql query executed", fields...)
	}
}
