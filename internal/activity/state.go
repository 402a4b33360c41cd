// Package activity implements the activity state machine's data shape and
// the periodic usage-reporting loop (C7): it has no state of its own
// beyond what's passed in, and reports upward through a Reporter.
package activity

import (
	"context"
	"time"
)

// Primary is one of the four states an activity progresses through.
type Primary string

const (
	Initialized Primary = "Initialized"
	Deployed    Primary = "Deployed"
	Ready       Primary = "Ready"
	Terminated  Primary = "Terminated"
)

// State is the pair reported upward: Primary, plus an optional Pending
// next-state marker used for the two transitional reports
// (Initialized,Deployed) and (Deployed,Ready).
type State struct {
	Primary Primary
	Pending *Primary
}

// Transitioning builds a State reporting "currently at from, heading to
// to."
func Transitioning(from, to Primary) State {
	t := to
	return State{Primary: from, Pending: &t}
}

// Usage is one usage report: the dense vector in agreement order, sampled
// at Timestamp.
type Usage struct {
	Current   []float64
	Timestamp time.Time
}

// Reporter is what the activity loop and dispatcher use to tell the
// orchestrator about state and usage changes. Implemented by the outbound
// bus client.
type Reporter interface {
	SetState(ctx context.Context, activityID string, state State) error
	SetUsage(ctx context.Context, activityID string, usage Usage) error
}
