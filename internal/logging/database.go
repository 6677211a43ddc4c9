package logging

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseLogger adapts L to the gorm logger interface. Queries are logged at
// trace level, slow queries at warn, and failed queries at error.
type DatabaseLogger struct {
	SlowThreshold time.Duration
}

func NewDatabaseLogger(slow time.Duration) *DatabaseLogger {
	return &DatabaseLogger{SlowThreshold: slow}
}

// LogMode is a no-op. The level is controlled by L.
func (l *DatabaseLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return l
}

func (*DatabaseLogger) Info(_ context.Context, format string, v ...interface{}) {
	L.Info().Msgf(format, v...)
}

func (*DatabaseLogger) Warn(_ context.Context, format string, v ...interface{}) {
	L.Warn().Msgf(format, v...)
}

func (*DatabaseLogger) Error(_ context.Context, format string, v ...interface{}) {
	L.Error().Msgf(format, v...)
}

func (l *DatabaseLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)

	level := zerolog.TraceLevel
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound):
		level = zerolog.ErrorLevel
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold:
		level = zerolog.WarnLevel
	}

	if L.GetLevel() > level {
		return
	}

	sql, rows := fc()
	L.WithLevel(level).
		Int64("rows", rows).
		Str("query", sql).
		Dur("elapsed", elapsed).
		Err(err).
		Msg("database query")
}
