// Package logging defines the structured-logging interface used across
// userbook and the process-wide log that records every storage event and
// user mutation.
package logging

import "context"

// Logger writes leveled, structured entries. Trailing args are alternating
// keys and values:
//
//	logging.L().Info(ctx, "user added", "name", name)
type Logger interface {
	// Debug is off at the default level.
	Debug(ctx context.Context, msg string, args ...any)
	// Info records normal operation: startup, loads, saves, mutations.
	Info(ctx context.Context, msg string, args ...any)
	// Warn records rejected operator input.
	Warn(ctx context.Context, msg string, args ...any)
	// Error records storage failures and unexpected errors.
	Error(ctx context.Context, msg string, args ...any)
	// With returns a Logger that adds args to every entry.
	With(args ...any) Logger
}
