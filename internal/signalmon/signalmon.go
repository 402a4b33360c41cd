// Package signalmon watches for OS termination signals and surfaces the
// first one received on a single-slot channel, so the supervisor's main
// select can race it against activity-loop completion.
package signalmon

import (
	"os"
	"os/signal"
	"syscall"
)

// Watcher delivers at most one signal to its channel; subsequent signals
// are ignored once the first has been delivered.
type Watcher struct {
	ch   chan os.Signal
	caps chan os.Signal
}

// Watch installs a signal handler for SIGINT and SIGTERM and returns a
// Watcher whose Triggered channel fires with the first one received.
func Watch() *Watcher {
	caps := make(chan os.Signal, 1)
	signal.Notify(caps, syscall.SIGINT, syscall.SIGTERM)

	w := &Watcher{ch: make(chan os.Signal, 1), caps: caps}
	go w.relay()
	return w
}

func (w *Watcher) relay() {
	sig, ok := <-w.caps
	if !ok {
		return
	}
	w.ch <- sig
}

// Triggered fires exactly once, with the first signal received.
func (w *Watcher) Triggered() <-chan os.Signal {
	return w.ch
}

// Stop disables the underlying signal relay. Safe to call after Triggered
// has already fired.
func (w *Watcher) Stop() {
	signal.Stop(w.caps)
	close(w.caps)
}
