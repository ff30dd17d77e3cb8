package orm

import (
	"context"
	"log/slog"
)

// SlogQueryLogger logs executed queries through a *slog.Logger at debug
// level. Plug it in with DB.Debug:
//
//	db = db.Debug(orm.NewSlogQueryLogger(slog.Default()))
type SlogQueryLogger struct {
	logger *slog.Logger
}

// NewSlogQueryLogger wraps a *slog.Logger as a query Logger.
// A nil argument falls back to slog.Default().
func NewSlogQueryLogger(l *slog.Logger) *SlogQueryLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogQueryLogger{logger: l}
}

func (l *SlogQueryLogger) Log(ctx context.Context, query string, args ...any) {
	l.logger.DebugContext(ctx, "query", slog.String("sql", query), slog.Any("args", args))
}

var _ Logger = (*SlogQueryLogger)(nil)
