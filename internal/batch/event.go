// Package batch implements per-batch ordered command results and a bounded
// broadcast of lifecycle events to subscribers.
package batch

// Event is one of the three lifecycle notices a batch emits as its commands
// are walked. Exactly one concrete type is ever populated on a given Event;
// callers switch on the Kind field.
type Event struct {
	Kind Kind

	// Started fields.
	Command string

	// Progress fields.
	Progress float64

	// Finished fields.
	ReturnCode int
	Message    string

	// Index is set on every kind.
	Index int
}

// Kind distinguishes the three event shapes a batch can emit, plus the
// synthetic Lagged notice a subscriber receives when it fell behind.
type Kind string

const (
	KindStarted  Kind = "started"
	KindProgress Kind = "progress"
	KindFinished Kind = "finished"
	// KindLagged is delivered instead of a dropped event when a subscriber's
	// channel was full; it signals a gap, not a specific missed event.
	KindLagged Kind = "lagged"
)

// Outcome is the closed set of command result outcomes.
type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeError Outcome = "error"
)

// Result is one stored command outcome, at a fixed index within its batch.
type Result struct {
	Index           int
	Outcome         Outcome
	Message         string
	IsBatchFinished bool
}
