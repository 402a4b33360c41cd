package runtime

import (
	"context"
	"sync"
)

// DummyAdapter is a child-less runtime used by CI and local testing: Start
// resolves immediately, and the "process" only exits when Stop is called.
type DummyAdapter struct {
	mu      sync.Mutex
	stopped bool
	done    chan struct{}
}

// NewDummyAdapter builds a DummyAdapter.
func NewDummyAdapter() *DummyAdapter {
	return &DummyAdapter{done: make(chan struct{})}
}

func (d *DummyAdapter) Start(context.Context, string) error { return nil }

func (d *DummyAdapter) Stop(context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.stopped {
		d.stopped = true
		close(d.done)
	}
	return nil
}

func (d *DummyAdapter) Done() <-chan struct{} { return d.done }

func (d *DummyAdapter) Err() error { return nil }
