// Package logger adapts the shared zap logger to the application's logging
// interface and scrubs credentials from logged fields.
package logger

import (
	"context"

	"github.com/MyCarrier-DevOps/repo-mirror/internal/domain"
)

// Logger is the contract the wrapped backend must satisfy.
type Logger interface {
	Info(ctx context.Context, msg string, fields map[string]any)
	Debug(ctx context.Context, msg string, fields map[string]any)
	Warn(ctx context.Context, msg string, fields map[string]any)
	Error(ctx context.Context, msg string, err error, fields map[string]any)
}

// ZapAdapter wraps a backend logger and redacts userinfo from every
// string-valued field before it reaches the log stream. Remote URLs may carry
// embedded credentials when operators misconfigure them, so scrubbing happens
// at the sink rather than at each call site.
type ZapAdapter struct {
	log Logger
}

// NewZapAdapter creates a new ZapAdapter wrapping the given logger.
func NewZapAdapter(log Logger) *ZapAdapter {
	return &ZapAdapter{log: log}
}

func scrubFields(fields map[string]any) map[string]any {
	if fields == nil {
		return nil
	}
	scrubbed := make(map[string]any, len(fields))
	for k, v := range fields {
		if s, ok := v.(string); ok {
			scrubbed[k] = domain.RedactURL(s)
			continue
		}
		scrubbed[k] = v
	}
	return scrubbed
}

// Info logs an info message.
func (a *ZapAdapter) Info(ctx context.Context, msg string, fields map[string]any) {
	a.log.Info(ctx, msg, scrubFields(fields))
}

// Debug logs a debug message.
func (a *ZapAdapter) Debug(ctx context.Context, msg string, fields map[string]any) {
	a.log.Debug(ctx, msg, scrubFields(fields))
}

// Warn logs a warning message.
func (a *ZapAdapter) Warn(ctx context.Context, msg string, fields map[string]any) {
	a.log.Warn(ctx, msg, scrubFields(fields))
}

// Error logs an error message.
func (a *ZapAdapter) Error(ctx context.Context, msg string, err error, fields map[string]any) {
	a.log.Error(ctx, msg, err, scrubFields(fields))
}
