package counter

import (
	"runtime"
	"testing"
	"time"
)

func TestMonitorCompleteRecordsOnResponse(t *testing.T) {
	set, err := New([]string{"golem.usage.gpu-sec", "ai-runtime.requests"})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	mon := NewMonitor(set)

	h := mon.OnRequest()
	time.Sleep(5 * time.Millisecond)
	h.Complete()

	vec := set.Current()
	if vec[0] <= 0 {
		t.Errorf("gpu-sec after Complete = %v, want > 0", vec[0])
	}
	if vec[1] != 1 {
		t.Errorf("requests after one OnRequest = %v, want 1", vec[1])
	}
}

func TestMonitorCompleteIsIdempotent(t *testing.T) {
	set, err := New([]string{"golem.usage.gpu-sec"})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	mon := NewMonitor(set)

	h := mon.OnRequest()
	time.Sleep(2 * time.Millisecond)
	h.Complete()
	after := set.Current()[0]

	h.Complete()
	h.Complete()

	if set.Current()[0] != after {
		t.Errorf("gpu-sec changed after redundant Complete calls: %v then %v", after, set.Current()[0])
	}
}

func TestMonitorCleanupReleasesAbandonedHandle(t *testing.T) {
	set, err := New([]string{"golem.usage.gpu-sec"})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}
	mon := NewMonitor(set)

	func() {
		h := mon.OnRequest()
		_ = h
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
		// An open span keeps growing between reads; a released one does not.
		first := set.Current()[0]
		time.Sleep(5 * time.Millisecond)
		if first > 0 && set.Current()[0] == first {
			return
		}
	}
	t.Error("abandoned response handle never released its busy-time span")
}
