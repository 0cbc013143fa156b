// Package midi provides timed MIDI event buffers for real-time processing.
package midi

import (
	"iter"

	"github.com/paingrille1/pedalboard/pkg/urid"
)

// Sequence is an append-only, capacity-bounded buffer of timed events.
//
// All storage is allocated by NewSequence. Append, InsertOrdered, Clear and
// iteration never allocate, so a Sequence can be filled from the real-time
// thread. Payloads are copied into the sequence's own arena.
type Sequence struct {
	typ      urid.URID
	capacity int
	size     int

	events []TimedEvent
	arena  []byte
	used   int
}

// NewSequence creates a sequence holding at most capacity bytes, headers
// included. Capacities below SequenceHeaderSize are raised to it.
func NewSequence(capacity int) *Sequence {
	if capacity < SequenceHeaderSize {
		capacity = SequenceHeaderSize
	}

	// Every event costs at least EventHeaderSize, which bounds the count
	maxEvents := (capacity - SequenceHeaderSize) / EventHeaderSize

	return &Sequence{
		capacity: capacity,
		size:     SequenceHeaderSize,
		events:   make([]TimedEvent, 0, maxEvents),
		arena:    make([]byte, capacity-SequenceHeaderSize),
	}
}

// Clear empties the sequence. The type tag is kept.
func (s *Sequence) Clear() {
	s.events = s.events[:0]
	s.size = SequenceHeaderSize
	s.used = 0
}

// Type returns the declared sequence type.
func (s *Sequence) Type() urid.URID {
	return s.typ
}

// SetType sets the declared sequence type.
func (s *Sequence) SetType(t urid.URID) {
	s.typ = t
}

// Capacity returns the byte capacity.
func (s *Sequence) Capacity() int {
	return s.capacity
}

// Size returns the bytes in use, headers included.
func (s *Sequence) Size() int {
	return s.size
}

// Len returns the number of events.
func (s *Sequence) Len() int {
	return len(s.events)
}

// At returns the i-th event in stored order.
func (s *Sequence) At(i int) TimedEvent {
	return s.events[i]
}

// Fits reports whether an event with a payload of payloadLen bytes would fit.
func (s *Sequence) Fits(payloadLen int) bool {
	return s.capacity-s.size >= EncodedSize(payloadLen)
}

// Append adds ev at the end. When the event does not fit it is dropped and
// Append returns false; the sequence is left unchanged.
func (s *Sequence) Append(ev TimedEvent) bool {
	if !s.Fits(len(ev.Payload)) {
		return false
	}

	s.events = append(s.events, s.store(ev))
	s.size += ev.Size()
	return true
}

// InsertOrdered adds ev after every event whose offset is <= ev.Offset, so a
// sequence that was ordered by offset stays ordered. Capacity is handled as
// in Append.
func (s *Sequence) InsertOrdered(ev TimedEvent) bool {
	if !s.Fits(len(ev.Payload)) {
		return false
	}

	pos := len(s.events)
	for i, e := range s.events {
		if e.Offset > ev.Offset {
			pos = i
			break
		}
	}

	stored := s.store(ev)
	s.events = append(s.events, TimedEvent{})
	copy(s.events[pos+1:], s.events[pos:])
	s.events[pos] = stored
	s.size += ev.Size()
	return true
}

// All iterates the events in stored order. Payloads alias the sequence
// storage and stay valid until the next Clear.
func (s *Sequence) All() iter.Seq[TimedEvent] {
	return func(yield func(TimedEvent) bool) {
		for _, ev := range s.events {
			if !yield(ev) {
				return
			}
		}
	}
}

// Ordered reports whether offsets are non-decreasing.
func (s *Sequence) Ordered() bool {
	for i := 1; i < len(s.events); i++ {
		if s.events[i].Offset < s.events[i-1].Offset {
			return false
		}
	}
	return true
}

// store copies the payload into the arena.
func (s *Sequence) store(ev TimedEvent) TimedEvent {
	n := len(ev.Payload)
	payload := s.arena[s.used : s.used+n : s.used+n]
	copy(payload, ev.Payload)
	s.used += n

	return TimedEvent{Offset: ev.Offset, Type: ev.Type, Payload: payload}
}
