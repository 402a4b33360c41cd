// Package counter implements the usage-metering subsystem: a pluggable set
// of counters keyed by agreement counter names, exposing a request monitor
// that attributes concurrent request spans without double counting.
package counter

import (
	"sync"
	"time"

	"github.com/golem-exeunit/ai-runtime-supervisor/internal/apperr"
)

type entry struct {
	name string
	kind Kind
	impl counterImpl
}

// Set is the counter set for one agreement, in agreement order. Reads
// (Current) take the read lock so they never block behind other reads;
// writes (from the request monitor) take the write lock only for the short
// critical section of updating the request-aware counters' fields.
type Set struct {
	mu      sync.RWMutex
	entries []entry
}

// New resolves every name to a Kind and constructs a fresh counter set.
// Unknown names fail the whole construction with BadConfig rather than
// silently skipping the offending entry.
func New(names []string) (*Set, error) {
	now := time.Now()
	entries := make([]entry, len(names))
	for i, name := range names {
		kind, ok := resolveKind(name)
		if !ok {
			return nil, apperr.New(apperr.BadConfig, "unrecognized counter name %q", name)
		}
		entries[i] = entry{name: name, kind: kind, impl: newCounterImpl(kind, now)}
	}
	return &Set{entries: entries}, nil
}

// Current reads the dense usage vector in agreement order. A request
// in-flight mid-call is reflected, because each counter's report() computes
// its value from current state rather than a stale cache.
func (s *Set) Current() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	out := make([]float64, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.impl.report(now)
	}
	return out
}

// onRequest tells every request-aware counter that a request began at now.
func (s *Set) onRequest(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if ra, ok := e.impl.(requestAware); ok {
			ra.onRequest(now)
		}
	}
}

// onResponse tells every request-aware counter that a request completed at
// now. Safe to call even if the set has no gpu-sec counter (no-op loop).
func (s *Set) onResponse(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if ra, ok := e.impl.(requestAware); ok {
			ra.onResponse(now)
		}
	}
}
