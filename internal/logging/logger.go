// Package logging defines the logging contract used by the client layers
// and an adapter over log/slog. Components receive a Logger rather than a
// concrete implementation so tests can pass a silent one.
package logging

import "context"

type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	With(args ...any) Logger
}
