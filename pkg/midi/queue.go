package midi

import (
	"sort"
	"sync"

	"github.com/paingrille1/pedalboard/pkg/urid"
)

// Queue collects events arriving from a non-real-time thread, such as a MIDI
// driver callback, until the next processing block picks them up.
type Queue struct {
	events []queuedEvent
	mu     sync.Mutex
	sorted bool
}

type queuedEvent struct {
	offset int64
	msg    []byte
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		events: make([]queuedEvent, 0, 128),
		sorted: true,
	}
}

// Add queues a copy of msg at the given frame offset relative to the next
// block.
func (q *Queue) Add(offset int64, msg []byte) {
	if offset < 0 {
		offset = 0
	}
	cp := make([]byte, len(msg))
	copy(cp, msg)

	q.mu.Lock()
	defer q.mu.Unlock()

	if n := len(q.events); n > 0 && q.events[n-1].offset > offset {
		q.sorted = false
	}
	q.events = append(q.events, queuedEvent{offset: offset, msg: cp})
}

// DrainInto moves every event with an offset below frames into seq, in
// offset order, tagged with typ. Events that do not fit are dropped. The
// remaining events are shifted back by frames so they line up with the
// following block.
func (q *Queue) DrainInto(seq *Sequence, frames int64, typ urid.URID) (moved, dropped int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.sorted {
		q.sortEvents()
	}

	// Find the first event that belongs to a later block
	keepIdx := sort.Search(len(q.events), func(i int) bool {
		return q.events[i].offset >= frames
	})

	for _, ev := range q.events[:keepIdx] {
		if seq.Append(TimedEvent{Offset: ev.offset, Type: typ, Payload: ev.msg}) {
			moved++
		} else {
			dropped++
		}
	}

	if keepIdx > 0 {
		n := copy(q.events, q.events[keepIdx:])
		for i := n; i < len(q.events); i++ {
			q.events[i] = queuedEvent{}
		}
		q.events = q.events[:n]
	}

	for i := range q.events {
		q.events[i].offset -= frames
	}

	return moved, dropped
}

// Size returns the number of queued events.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

// IsEmpty reports whether the queue holds no events.
func (q *Queue) IsEmpty() bool {
	return q.Size() == 0
}

// Clear drops every queued event.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.events = q.events[:0]
	q.sorted = true
}

func (q *Queue) sortEvents() {
	sort.SliceStable(q.events, func(i, j int) bool {
		return q.events[i].offset < q.events[j].offset
	})
	q.sorted = true
}
