package batch

import (
	"testing"
	"time"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
)

func TestStartBatchIsIdempotent(t *testing.T) {
	store := NewStore()

	a := store.StartBatch("B")
	b := store.StartBatch("B")

	if a != b {
		t.Error("StartBatch returned different batches for the same id")
	}
}

func TestIndicesAreContiguousFromZero(t *testing.T) {
	store := NewStore()
	b := store.StartBatch("B")

	tests := []struct {
		command string
		want    int
	}{
		{"Deploy", 0},
		{"Start", 1},
		{"Terminate", 2},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			got := b.NextCommand(tt.command)
			if got != tt.want {
				t.Errorf("NextCommand(%q) = %d, want %d", tt.command, got, tt.want)
			}
		})
	}
}

func TestFinishMarksLastResult(t *testing.T) {
	store := NewStore()
	b := store.StartBatch("B")

	i0 := b.NextCommand("Deploy")
	b.OKResult(i0)
	i1 := b.NextCommand("Start")
	b.OKResult(i1)

	b.Finish()

	results := b.Results()
	if len(results) != 2 {
		t.Fatalf("len(Results()) = %d, want 2", len(results))
	}
	for i, r := range results {
		wantFinished := i == len(results)-1
		if r.IsBatchFinished != wantFinished {
			t.Errorf("results[%d].IsBatchFinished = %v, want %v", i, r.IsBatchFinished, wantFinished)
		}
	}
}

func TestFinishOnEmptyBatchAppendsSyntheticResult(t *testing.T) {
	store := NewStore()
	b := store.StartBatch("B")

	b.Finish()

	results := b.Results()
	if len(results) != 1 {
		t.Fatalf("len(Results()) = %d, want 1", len(results))
	}
	if results[0].Outcome != OutcomeError {
		t.Errorf("synthetic result outcome = %v, want error", results[0].Outcome)
	}
	if !results[0].IsBatchFinished {
		t.Error("synthetic result should carry IsBatchFinished=true")
	}
}

func TestNoResultsAppendedAfterFinish(t *testing.T) {
	store := NewStore()
	b := store.StartBatch("B")

	i0 := b.NextCommand("Deploy")
	b.OKResult(i0)
	b.Finish()

	b.OKResult(i0 + 1) // should be dropped: batch already finished

	results := b.Results()
	if len(results) != 1 {
		t.Fatalf("len(Results()) = %d, want 1 (write after Finish must be dropped)", len(results))
	}
}

func TestGetUnknownBatchIsNotFound(t *testing.T) {
	store := NewStore()

	_, err := store.Get("nope")
	if err == nil {
		t.Fatal("Get(\"nope\") succeeded, want NotFound")
	}
	if !apperr.Is(err, apperr.NotFound) {
		t.Errorf("Get(\"nope\") error kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestSubscribeReceivesStartedBeforeFinished(t *testing.T) {
	store := NewStore()
	b := store.StartBatch("B")

	ch, cancel := b.Subscribe()
	defer cancel()

	i0 := b.NextCommand("Deploy")
	b.OKResult(i0)

	var got []Kind
	deadline := time.After(time.Second)
	for len(got) < 2 {
		select {
		case ev := <-ch:
			got = append(got, ev.Kind)
		case <-deadline:
			t.Fatalf("timed out waiting for events, got %v so far", got)
		}
	}

	if got[0] != KindStarted || got[1] != KindFinished {
		t.Errorf("event order = %v, want [started finished]", got)
	}
}

func TestSubscribeCancelClosesChannel(t *testing.T) {
	store := NewStore()
	b := store.StartBatch("B")

	ch, cancel := b.Subscribe()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
}

func TestLaggingSubscriberGetsLaggedMarker(t *testing.T) {
	store := NewStore()
	b := store.StartBatch("B")

	ch, cancel := b.Subscribe()
	defer cancel()

	for i := 0; i < subscriberBound+5; i++ {
		b.UpdateProgress(0, float64(i))
	}

	sawLagged := false
	for i := 0; i < subscriberBound; i++ {
		select {
		case ev := <-ch:
			if ev.Kind == KindLagged {
				sawLagged = true
			}
		default:
		}
	}
	if !sawLagged {
		t.Error("expected at least one Lagged marker once the subscriber buffer overflowed")
	}
}
