package dispatcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/activity"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/batch"
	"github.com/golem-exeunit/ai-runtime-supervisor/internal/transfer"
)

type fakeController struct {
	startErr error
	stopErr  error
	started  bool
	stopped  bool
}

func (f *fakeController) Start(_ context.Context, _ string) error {
	f.started = true
	return f.startErr
}

func (f *fakeController) Stop(_ context.Context) error {
	f.stopped = true
	return f.stopErr
}

type fakeTransfer struct {
	path string
	err  error
}

func (f *fakeTransfer) Deploy(_ context.Context, _ string, sink transfer.Progress) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if sink != nil {
		sink(10, 10)
	}
	return f.path, nil
}

type fakeReporter struct {
	mu     sync.Mutex
	states []activity.State
}

func (f *fakeReporter) SetState(_ context.Context, _ string, state activity.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, state)
	return nil
}

func (f *fakeReporter) SetUsage(context.Context, string, activity.Usage) error { return nil }

func (f *fakeReporter) snapshot() []activity.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]activity.State, len(f.states))
	copy(out, f.states)
	return out
}

func newDispatcher(ctrl Controller, xfer TransferResolver, rep activity.Reporter) *Dispatcher {
	return &Dispatcher{
		ActivityID: "act-1",
		Model:      "model.bin",
		Controller: ctrl,
		Transfer:   xfer,
		Reporter:   rep,
		Batches:    batch.NewStore(),
		Logger:     zerolog.Nop(),
	}
}

func waitForBatch(t *testing.T, d *Dispatcher, batchID string, wantResults int) []batch.Result {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		results, err := d.Results(batchID)
		if err == nil && len(results) >= wantResults {
			return results
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("batch %q did not reach %d results in time", batchID, wantResults)
	return nil
}

func TestExecRunsDeployStartTerminateInOrder(t *testing.T) {
	ctrl := &fakeController{}
	xfer := &fakeTransfer{path: "/cache/model.bin"}
	rep := &fakeReporter{}
	d := newDispatcher(ctrl, xfer, rep)

	d.Exec(context.Background(), "batch-1", []Command{
		{Kind: KindDeploy},
		{Kind: KindStart},
		{Kind: KindTerminate},
	})

	results := waitForBatch(t, d, "batch-1", 3)
	for i, r := range results {
		if r.Outcome != batch.OutcomeOK {
			t.Errorf("result[%d].Outcome = %v, want OK", i, r.Outcome)
		}
	}
	if !results[2].IsBatchFinished {
		t.Error("last result should be marked IsBatchFinished")
	}
	if !ctrl.started || !ctrl.stopped {
		t.Error("expected controller Start and Stop to both be called")
	}

	states := rep.snapshot()
	if len(states) != 5 {
		t.Fatalf("states = %v, want 5 (Deploy pending+final, Start pending+final, Terminate)", states)
	}
	if states[len(states)-1].Primary != activity.Terminated {
		t.Errorf("final state = %v, want Terminated", states[len(states)-1].Primary)
	}
}

func TestExecAbortsOnDeployFailure(t *testing.T) {
	ctrl := &fakeController{}
	xfer := &fakeTransfer{err: errDeployFailed}
	rep := &fakeReporter{}
	d := newDispatcher(ctrl, xfer, rep)

	d.Exec(context.Background(), "batch-2", []Command{
		{Kind: KindDeploy},
		{Kind: KindStart},
	})

	results := waitForBatch(t, d, "batch-2", 1)
	if results[0].Outcome != batch.OutcomeError {
		t.Errorf("result[0].Outcome = %v, want Error", results[0].Outcome)
	}
	if !results[0].IsBatchFinished {
		t.Error("aborted batch's only result should be marked IsBatchFinished")
	}
	if ctrl.started {
		t.Error("Start should never run after a failed Deploy")
	}
}

func TestExecRejectsUnknownCommand(t *testing.T) {
	ctrl := &fakeController{}
	xfer := &fakeTransfer{path: "/cache/model.bin"}
	rep := &fakeReporter{}
	d := newDispatcher(ctrl, xfer, rep)

	d.Exec(context.Background(), "batch-3", []Command{{Kind: "Bogus"}})

	results := waitForBatch(t, d, "batch-3", 1)
	if results[0].Outcome != batch.OutcomeError {
		t.Errorf("result[0].Outcome = %v, want Error", results[0].Outcome)
	}
}

var errDeployFailed = &deployError{"deploy failed"}

type deployError struct{ msg string }

func (e *deployError) Error() string { return e.msg }
