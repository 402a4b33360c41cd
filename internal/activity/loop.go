package activity

import (
	"context"
	"time"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
	"github.com/rs/zerolog"
)

// Controller is the subset of the process controller the loop needs: a
// liveness check and a completion signal. Declared locally so tests can
// supply a fake without depending on the runtime package.
type Controller interface {
	Report() bool
	Done() <-chan struct{}
	Err() error
}

// Counters is the subset of the counter set the loop needs.
type Counters interface {
	Current() []float64
}

// Loop periodically samples Counters and reports the usage vector to the
// orchestrator, until the controller dies or the context is cancelled.
type Loop struct {
	ActivityID string
	Controller Controller
	Counters   Counters
	Reporter   Reporter
	Logger     zerolog.Logger
	Cadence    time.Duration
}

// Run blocks until the controller reports dead, the controller's child
// exits unexpectedly, or ctx is cancelled. A child exit while the
// controller was still live is Fatal: the caller should treat a non-nil
// return as "the supervisor should now shut down."
func (l *Loop) Run(ctx context.Context) error {
	cadence := l.Cadence
	if cadence <= 0 {
		cadence = time.Second
	}
	ticker := time.NewTicker(cadence)
	defer ticker.Stop()

	for {
		if !l.Controller.Report() {
			return nil
		}

		l.reportUsage(ctx)

		select {
		case <-ticker.C:
		case <-l.Controller.Done():
			if !l.Controller.Report() {
				// The child exited because the controller was stopped.
				return nil
			}
			exitErr := l.Controller.Err()
			state := State{Primary: Terminated}
			if err := l.Reporter.SetState(ctx, l.ActivityID, state); err != nil {
				l.Logger.Warn().Err(err).Msg("failed to report Terminated after child exit")
			}
			return apperr.Wrap(apperr.Fatal, exitErr, "runtime process exited while working")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Loop) reportUsage(ctx context.Context) {
	usage := Usage{Current: l.Counters.Current(), Timestamp: time.Now()}
	if err := l.Reporter.SetUsage(ctx, l.ActivityID, usage); err != nil {
		l.Logger.Warn().Err(err).Msg("set_usage failed, will retry next tick")
	}
}
