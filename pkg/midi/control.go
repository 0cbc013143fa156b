package midi

import (
	gomidi "gitlab.com/gomidi/midi/v2"
)

// StatusNoteOn is the note-on status byte on channel 0. Pedal settings are
// announced as note-on messages whose key is the setting index.
const StatusNoteOn uint8 = 0x90

// ControlMessageSize is the length of an encoded control message.
const ControlMessageSize = 3

// MaxDataByte is the largest value a MIDI data byte can carry.
const MaxDataByte = 127

// ControlMessage is the 3-byte announcement of one pedal setting:
// [0x90, param, value]. It is a value type so encoding never touches shared
// scratch memory.
type ControlMessage [ControlMessageSize]byte

// NewControlMessage encodes param and value, clamping value to a data byte.
// The result is byte-identical to gomidi.NoteOn(0, param, value).
func NewControlMessage(param uint8, value int32) ControlMessage {
	return ControlMessage{StatusNoteOn, param & MaxDataByte, ClampDataByte(value)}
}

// Param returns the setting index.
func (m ControlMessage) Param() uint8 {
	return m[1]
}

// Value returns the setting value.
func (m ControlMessage) Value() uint8 {
	return m[2]
}

// ClampDataByte clamps v into 0..127.
func ClampDataByte(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > MaxDataByte {
		return MaxDataByte
	}
	return uint8(v)
}

// ParseControlMessage decodes a payload produced by NewControlMessage.
// ok is false for anything that is not a 3-byte note-on on channel 0.
func ParseControlMessage(payload []byte) (param, value uint8, ok bool) {
	if len(payload) != ControlMessageSize || payload[0] != StatusNoteOn {
		return 0, 0, false
	}

	// A zero value reads as note-off to gomidi.
	msg := gomidi.Message(payload)
	var channel uint8
	if !msg.GetNoteOn(&channel, &param, &value) && !msg.GetNoteOff(&channel, &param, &value) {
		return 0, 0, false
	}
	return param, value, true
}
