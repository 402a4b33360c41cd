// Package apperr defines the supervisor's error taxonomy, organized by the
// surface an error is reported on rather than by Go type. Handlers at the
// bus boundary (internal/bus) map a Kind to the right wire envelope instead
// of pattern-matching ad hoc error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies which surface an error belongs to.
type Kind string

const (
	// BadConfig covers unrecognized counter names, malformed runtime
	// config, and malformed agreement documents. Surfaced synchronously;
	// CLI modes exit non-zero.
	BadConfig Kind = "bad_config"
	// BadState covers start/stop calls made in an incompatible controller
	// state. Surfaced to the bus caller as an Activity error.
	BadState Kind = "bad_state"
	// StartupFailure covers a child adapter that could not confirm
	// readiness because the model-failure sentinel was observed.
	StartupFailure Kind = "startup_failure"
	// StartupTimeout covers a child adapter that never observed either
	// sentinel within the configured timeout.
	StartupTimeout Kind = "startup_timeout"
	// Transport covers bus or HTTP transport errors. Logged; RPC callers
	// see a Service error; the activity loop retries on the next tick.
	Transport Kind = "transport"
	// NotFound covers a requested batch id with no known state.
	NotFound Kind = "not_found"
	// Fatal covers the child exiting while the controller was Working;
	// the supervisor publishes Terminated and exits with an error.
	Fatal Kind = "fatal"
)

// Error is a Kind-tagged error. Use Is to test for a Kind without digging
// into the wrapped cause.
type Error struct {
	Kind  Kind
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether err (or anything it wraps) carries the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// New constructs a Kind-tagged error with a formatted message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an existing error with a Kind, preserving it as the cause.
func Wrap(kind Kind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Cause: cause}
}

// KindOf extracts the Kind of err, defaulting to Transport for untagged
// errors — an unrecognized failure is treated as a transport hiccup rather
// than silently swallowed.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Transport
}
