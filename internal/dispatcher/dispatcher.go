package dispatcher

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/activity"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/batch"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/logging"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/transfer"
)

// Controller is the subset of the process controller the dispatcher
// drives on Start/Terminate.
type Controller interface {
	Start(ctx context.Context, modelPath string) error
	Stop(ctx context.Context) error
}

// TransferResolver is the subset of the transfer adapter the dispatcher
// drives on Deploy.
type TransferResolver interface {
	Deploy(ctx context.Context, taskPackage string, sink transfer.Progress) (string, error)
}

// Dispatcher binds one activity's exec script handling: it owns the
// sequencing of Deploy/Start/Terminate against the process controller and
// transfer adapter, and records every step into the batch store.
type Dispatcher struct {
	ActivityID string
	Model      string
	Controller Controller
	Transfer   TransferResolver
	Reporter   activity.Reporter
	Batches    *batch.Store
	Logger     zerolog.Logger

	modelPath string
}

// Exec starts a new batch for batchID (idempotent) and asynchronously
// walks script, returning the batch id synchronously as the RPC reply.
func (d *Dispatcher) Exec(ctx context.Context, batchID string, script []Command) string {
	b := d.Batches.StartBatch(batchID)
	go d.walk(ctx, b, script)
	return batchID
}

// Results returns a results snapshot for batchID, or NotFound.
func (d *Dispatcher) Results(batchID string) ([]batch.Result, error) {
	return d.Batches.Results(batchID)
}

// Subscribe returns batchID's event stream, or NotFound.
func (d *Dispatcher) Subscribe(batchID string) (<-chan batch.Event, func(), error) {
	return d.Batches.Subscribe(batchID)
}

func (d *Dispatcher) walk(ctx context.Context, b *batch.Batch, script []Command) {
	defer logging.RecoverAndLog()
	defer b.Finish()

	for _, cmd := range script {
		idx := b.NextCommand(string(cmd.Kind))
		if !d.execOne(ctx, b, idx, cmd) {
			return
		}
	}
}

// execOne runs one command, records its result, and returns whether the
// walk should continue.
func (d *Dispatcher) execOne(ctx context.Context, b *batch.Batch, idx int, cmd Command) bool {
	switch cmd.Kind {
	case KindDeploy:
		return d.doDeploy(ctx, b, idx)
	case KindStart:
		return d.doStart(ctx, b, idx)
	case KindTerminate:
		return d.doTerminate(ctx, b, idx)
	default:
		b.ErrResult(idx, fmt.Sprintf("invalid command: %s", cmd.Kind))
		return false
	}
}

func (d *Dispatcher) doDeploy(ctx context.Context, b *batch.Batch, idx int) bool {
	d.publish(ctx, activity.Transitioning(activity.Initialized, activity.Deployed))

	path, err := d.Transfer.Deploy(ctx, d.Model, func(current, total int64) {
		b.UpdateProgress(idx, progressFraction(current, total))
	})
	if err != nil {
		b.ErrResult(idx, err.Error())
		return false
	}

	d.modelPath = path
	d.publish(ctx, activity.State{Primary: activity.Deployed})
	b.OKResult(idx)
	return true
}

func (d *Dispatcher) doStart(ctx context.Context, b *batch.Batch, idx int) bool {
	d.publish(ctx, activity.Transitioning(activity.Deployed, activity.Ready))

	if err := d.Controller.Start(ctx, d.modelPath); err != nil {
		b.ErrResult(idx, err.Error())
		return false
	}

	d.publish(ctx, activity.State{Primary: activity.Ready})
	b.OKResult(idx)
	return true
}

func (d *Dispatcher) doTerminate(ctx context.Context, b *batch.Batch, idx int) bool {
	if err := d.Controller.Stop(ctx); err != nil {
		d.Logger.Warn().Err(err).Msg("controller stop reported an error")
	}

	// Terminated is reported unconditionally, even for a script that never
	// reached Start: a bare Deploy-then-Terminate still ends up Terminated.
	d.publish(ctx, activity.State{Primary: activity.Terminated})
	b.OKResult(idx)
	return true
}

func (d *Dispatcher) publish(ctx context.Context, state activity.State) {
	if err := d.Reporter.SetState(ctx, d.ActivityID, state); err != nil {
		d.Logger.Warn().Err(err).
			Str("primary", string(state.Primary)).
			Msg("failed to report activity state")
	}
}

func progressFraction(current, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(current) / float64(total)
}
