package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/paingrille1/pedalboard/pkg/urid"
)

// Sizes follow the atom sequence layout so capacities given by a host in
// bytes mean the same thing here.
const (
	// SequenceHeaderSize is the byte usage of an empty sequence.
	SequenceHeaderSize = 8
	// EventHeaderSize is the per-event overhead: frame time, size and type.
	EventHeaderSize = 16

	alignment = 8
)

// TimedEvent is one message in a Sequence.
type TimedEvent struct {
	Offset  int64     // frames since block start
	Type    urid.URID // body type, usually the mapped midi#MidiEvent
	Payload []byte
}

// PadSize rounds n up to the event alignment.
func PadSize(n int) int {
	return (n + alignment - 1) &^ (alignment - 1)
}

// EncodedSize returns the bytes an event with a payload of payloadLen bytes
// consumes in a sequence.
func EncodedSize(payloadLen int) int {
	return PadSize(EventHeaderSize + payloadLen)
}

// Size returns the encoded size of the event.
func (e TimedEvent) Size() int {
	return EncodedSize(len(e.Payload))
}

// Message returns the payload as a gomidi message.
func (e TimedEvent) Message() gomidi.Message {
	return gomidi.Message(e.Payload)
}

func (e TimedEvent) String() string {
	return fmt.Sprintf("Event{offset:%d, type:%d, msg:%s}",
		e.Offset, e.Type, e.Message().String())
}

// Equal reports whether two events carry the same offset, type and bytes.
func (e TimedEvent) Equal(o TimedEvent) bool {
	if e.Offset != o.Offset || e.Type != o.Type || len(e.Payload) != len(o.Payload) {
		return false
	}
	for i := range e.Payload {
		if e.Payload[i] != o.Payload[i] {
			return false
		}
	}
	return true
}
