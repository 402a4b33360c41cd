package runtime

import "context"

// Adapter is a strategy for spawning, detecting readiness of, and shutting
// down one kind of child process. Its associated config is fixed at
// construction; Start and Stop carry only what varies per activity.
type Adapter interface {
	// Start spawns the child (if modelPath is non-empty, the adapter is
	// responsible for passing it in whatever form the child expects) and
	// blocks until the adapter can confirm readiness or give up.
	Start(ctx context.Context, modelPath string) error
	// Stop requests graceful shutdown. Errors are for logging only; the
	// caller observes actual termination through Done.
	Stop(ctx context.Context) error
	// Done is closed when the child process exits. The channel exists from
	// construction; Controller.Done only hands it out while Working.
	Done() <-chan struct{}
	// Err is the child's exit error, valid once Done is closed.
	Err() error
}
