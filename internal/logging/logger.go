// Package logging is the structured logger handed to every contactkeeper
// component. Each component takes a child tagged with "module" (rest_server,
// grpc_server, auth, contacts, users, mail) so one log stream can be filtered
// per subsystem. HTTP request lines carry "request_id" and service events
// carry "user_id". SlogLogger is the only production implementation.
package logging

import "context"

// Logger takes a context on every call so handlers can attach request
// scoped values. Trailing args are alternating keys and values:
//
//	log.Info(ctx, "user registered", "user_id", user.ID)
type Logger interface {
	// Debug is for per-contact traces such as creates and deletes. The
	// server runs at info level unless configured otherwise.
	Debug(ctx context.Context, msg string, args ...any)

	// Info records account lifecycle events.
	Info(ctx context.Context, msg string, args ...any)

	Warn(ctx context.Context, msg string, args ...any)

	// Error is for failed side effects that do not fail the request, such
	// as an undeliverable mail or avatar upload.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that prepends args to every record.
	With(args ...any) Logger
}
