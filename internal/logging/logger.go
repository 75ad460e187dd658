// Package logging defines the structured logger used across wsauth.
// Components receive a Logger and derive their own with With("module", ...).
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key–value pairs:
//
//	log.Info(ctx, "reconnected", "url", redacted, "epoch", n)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
