package counter

import (
	"runtime"
	"sync/atomic"
	"time"
)

// Monitor turns request begin/end events into counter updates. It exists
// separately from Set so that callers who only need to read the usage
// vector (the activity loop) never need to know about response handles.
type Monitor struct {
	set *Set
}

// NewMonitor wraps set with request-tracking behavior.
func NewMonitor(set *Set) *Monitor {
	return &Monitor{set: set}
}

// completionState is the piece of a ResponseHandle's state that the cleanup
// callback needs. It is kept free of any pointer back to the handle itself
// so holding it does not keep the handle alive and defeat the cleanup.
type completionState struct {
	set       *Set
	completed *atomic.Bool
}

func (c *completionState) release() {
	if c.completed.CompareAndSwap(false, true) {
		c.set.onResponse(time.Now())
	}
}

// ResponseHandle represents one in-flight request. Callers normally call
// Complete when the response finishes. If a handle is ever dropped without
// that call — the caller panicked, forgot, or returned early on an error
// path — the registered cleanup still fires the completion exactly once
// once the handle is garbage collected, so busy-time never gets stuck open.
type ResponseHandle struct {
	state   *completionState
	cleanup runtime.Cleanup
}

// OnRequest records that a request began and returns a handle the caller
// must eventually Complete.
func (m *Monitor) OnRequest() *ResponseHandle {
	m.set.onRequest(time.Now())

	state := &completionState{set: m.set, completed: &atomic.Bool{}}
	h := &ResponseHandle{state: state}
	h.cleanup = runtime.AddCleanup(h, (*completionState).release, state)
	return h
}

// Complete records that the request finished. Safe to call at most once
// meaningfully; later calls are no-ops. Cancels the failsafe cleanup since
// it is no longer needed.
func (h *ResponseHandle) Complete() {
	h.state.release()
	h.cleanup.Stop()
}
