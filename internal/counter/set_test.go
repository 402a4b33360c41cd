package counter

import (
	"math"
	"testing"
	"time"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
)

func TestNewRejectsUnrecognizedNames(t *testing.T) {
	tests := []struct {
		name    string
		counter string
	}{
		{"plain_unknown", "bogus"},
		{"prefixed_unknown", "golem.usage.bogus"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]string{tt.counter})
			if err == nil {
				t.Fatalf("New(%q) succeeded, want error", tt.counter)
			}
			if !apperr.Is(err, apperr.BadConfig) {
				t.Errorf("New(%q) error kind = %v, want BadConfig", tt.counter, apperr.KindOf(err))
			}
		})
	}
}

func TestNewResolvesBySuffix(t *testing.T) {
	names := []string{
		"golem.usage.duration_sec",
		"golem.usage.gpu-sec",
		"ai-runtime.requests",
	}

	set, err := New(names)
	if err != nil {
		t.Fatalf("New(%v) = %v, want no error", names, err)
	}
	if len(set.entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(set.entries))
	}
	if set.entries[0].kind != KindDurationSec {
		t.Errorf("entries[0].kind = %v, want %v", set.entries[0].kind, KindDurationSec)
	}
	if set.entries[1].kind != KindGPUSec {
		t.Errorf("entries[1].kind = %v, want %v", set.entries[1].kind, KindGPUSec)
	}
	if set.entries[2].kind != KindRequests {
		t.Errorf("entries[2].kind = %v, want %v", set.entries[2].kind, KindRequests)
	}
}

func TestCurrentOrdersVectorLikeAgreement(t *testing.T) {
	set, err := New([]string{"ai-runtime.requests", "golem.usage.duration_sec"})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	set.onRequest(time.Now())
	set.onRequest(time.Now())

	vec := set.Current()
	if len(vec) != 2 {
		t.Fatalf("len(Current()) = %d, want 2", len(vec))
	}
	if vec[0] != 2 {
		t.Errorf("requests counter = %v, want 2", vec[0])
	}
	if vec[1] < 0 {
		t.Errorf("duration counter = %v, want >= 0", vec[1])
	}
}

func TestDurationCounterMonotonic(t *testing.T) {
	set, err := New([]string{"golem.usage.duration_sec"})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	first := set.Current()[0]
	time.Sleep(5 * time.Millisecond)
	second := set.Current()[0]

	if second < first {
		t.Errorf("duration_sec went backwards: %v then %v", first, second)
	}
}

func TestGPUSecCoalescesOverlappingRequests(t *testing.T) {
	set, err := New([]string{"golem.usage.gpu-sec"})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	start := time.Now()
	set.onRequest(start)
	set.onRequest(start.Add(10 * time.Millisecond))
	set.onResponse(start.Add(20 * time.Millisecond))
	set.onResponse(start.Add(30 * time.Millisecond))

	got := set.Current()[0]
	want := 30 * time.Millisecond.Seconds()
	if math.Abs(got-want) > 0.001 {
		t.Errorf("gpu-sec = %v, want ~%v (one coalesced span, not two)", got, want)
	}
}

func TestGPUSecSequentialRequestsSum(t *testing.T) {
	set, err := New([]string{"golem.usage.gpu-sec"})
	if err != nil {
		t.Fatalf("New() = %v", err)
	}

	start := time.Now()
	set.onRequest(start)
	set.onResponse(start.Add(10 * time.Millisecond))
	set.onRequest(start.Add(20 * time.Millisecond))
	set.onResponse(start.Add(35 * time.Millisecond))

	got := set.Current()[0]
	want := 25 * time.Millisecond.Seconds()
	if math.Abs(got-want) > 0.001 {
		t.Errorf("gpu-sec = %v, want ~%v (two disjoint spans summed)", got, want)
	}
}
