package runtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
)

// State is the process controller's tri-state lifecycle.
type State int

const (
	StateDeployed State = iota
	StateWorking
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateDeployed:
		return "deployed"
	case StateWorking:
		return "working"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller holds exactly one of Deployed/Working/Stopped over a single
// Adapter, and is the only thing allowed to start or stop the child it
// wraps.
type Controller struct {
	mu      sync.Mutex
	state   State
	adapter Adapter
}

// NewController returns a controller in the Deployed state, wrapping
// adapter (not yet started).
func NewController(adapter Adapter) *Controller {
	return &Controller{state: StateDeployed, adapter: adapter}
}

// Start transitions Deployed -> Working by delegating to the adapter.
// Calling Start from Working or Stopped fails with BadState.
func (c *Controller) Start(ctx context.Context, modelPath string) error {
	c.mu.Lock()
	if c.state != StateDeployed {
		state := c.state
		c.mu.Unlock()
		return apperr.New(apperr.BadState, "start called while controller is %s", state)
	}
	c.mu.Unlock()

	if err := c.adapter.Start(ctx, modelPath); err != nil {
		return err
	}

	c.mu.Lock()
	c.state = StateWorking
	c.mu.Unlock()
	return nil
}

// Stop transitions to Stopped. From Working it delegates to the adapter
// and returns its result; from Deployed it is a no-op; from Stopped it is
// idempotent.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	prev := c.state
	c.state = StateStopped
	c.mu.Unlock()

	if prev == StateWorking {
		return c.adapter.Stop(ctx)
	}
	return nil
}

// Report reports whether the controller is still "live" (Deployed or
// Working) as opposed to terminally Stopped. This is what lets the
// activity loop keep running after Deploy but before Start.
func (c *Controller) Report() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != StateStopped
}

// Done returns the adapter's completion channel while Working, or nil
// (which blocks forever in a select) in any other state.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateWorking {
		return nil
	}
	return c.adapter.Done()
}

// Err is the adapter's exit error, meaningful once Done is closed.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.adapter.Err()
}
