package batch

import "sync"

// subscriberBound is the size of each subscriber's event channel. The last
// slot is kept free for the Lagged marker: a subscriber whose other slots
// are all full has fallen behind, and it receives a single Lagged marker
// instead of blocking the publisher.
const subscriberBound = 16

// Batch holds one submitted exe-script's command results and the live
// subscribers waiting on its lifecycle events. Batches are created once and
// never renamed or merged.
type Batch struct {
	id string

	mu       sync.Mutex
	results  []Result
	finished bool
	nextIdx  int

	subMu   sync.Mutex
	subs    map[int]chan Event
	subNext int
}

func newBatch(id string) *Batch {
	return &Batch{id: id, subs: make(map[int]chan Event)}
}

// NextCommand reserves the next index, records nothing in the result log
// yet, and emits a Started event. Returns the reserved index.
func (b *Batch) NextCommand(command string) int {
	b.mu.Lock()
	idx := b.nextIdx
	b.nextIdx++
	b.mu.Unlock()

	b.publish(Event{Kind: KindStarted, Index: idx, Command: command})
	return idx
}

// OKResult appends a successful result for index and emits Finished(0).
func (b *Batch) OKResult(index int) {
	b.appendResult(Result{Index: index, Outcome: OutcomeOK})
	b.publish(Event{Kind: KindFinished, Index: index, ReturnCode: 0})
}

// ErrResult appends a failed result for index, carrying an optional
// message, and emits Finished(1).
func (b *Batch) ErrResult(index int, message string) {
	b.appendResult(Result{Index: index, Outcome: OutcomeError, Message: message})
	b.publish(Event{Kind: KindFinished, Index: index, ReturnCode: 1, Message: message})
}

// UpdateProgress emits a Progress event without altering stored results.
func (b *Batch) UpdateProgress(index int, progress float64) {
	b.publish(Event{Kind: KindProgress, Index: index, Progress: progress})
}

// Finish marks the batch complete: the last result is flagged
// IsBatchFinished, or, if no results were ever recorded, a synthetic
// terminal error result is appended so the invariant "if present, the
// finished marker is last" still has something to mark.
func (b *Batch) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return
	}
	b.finished = true

	if len(b.results) == 0 {
		b.results = append(b.results, Result{
			Index:           0,
			Outcome:         OutcomeError,
			Message:         "batch finished with no commands executed",
			IsBatchFinished: true,
		})
		return
	}
	b.results[len(b.results)-1].IsBatchFinished = true
}

// Results returns a snapshot of the stored results, in index order.
func (b *Batch) Results() []Result {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]Result, len(b.results))
	copy(out, b.results)
	return out
}

// Subscribe returns a channel of events from this point forward, and a
// cancel function the caller must invoke when finished reading (otherwise
// the subscriber leaks). The stream carries no replay of past events;
// callers needing history use Results.
func (b *Batch) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBound)

	b.subMu.Lock()
	id := b.subNext
	b.subNext++
	b.subs[id] = ch
	b.subMu.Unlock()

	cancel := func() {
		b.subMu.Lock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
		b.subMu.Unlock()
	}
	return ch, cancel
}

func (b *Batch) appendResult(r Result) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.results = append(b.results, r)
}

func (b *Batch) publish(ev Event) {
	b.subMu.Lock()
	defer b.subMu.Unlock()
	for _, ch := range b.subs {
		if len(ch) < subscriberBound-1 {
			select {
			case ch <- ev:
			default:
			}
			continue
		}
		select {
		case ch <- Event{Kind: KindLagged}:
		default:
		}
	}
}
