package main

import (
	"fmt"
	"strconv"

	"gitlab.com/gomidi/midi/v2"

	"github.com/paingrille1/pedalboard/pkg/bridge"
)

// LED commands go on channel 15 (14 zero-based), keyed from ledKeyBase.
const (
	ledChannel = 14
	ledKeyBase = 12
)

// LED modes as understood by the pedal firmware.
const (
	ledBlink uint8 = 1
	ledOff   uint8 = 3
	ledPulse uint8 = 4
	ledOn    uint8 = 5
)

// optionalByte is a flag that remembers whether it was set.
type optionalByte struct {
	value uint8
	set   bool
}

func (o *optionalByte) String() string {
	if o == nil || !o.set {
		return ""
	}
	return strconv.Itoa(int(o.value))
}

func (o *optionalByte) Set(s string) error {
	v, err := parseDataByte(s)
	if err != nil {
		return err
	}
	o.value, o.set = v, true
	return nil
}

// byteList is a repeatable flag.
type byteList []uint8

func (l *byteList) String() string {
	if l == nil {
		return ""
	}
	return fmt.Sprint([]uint8(*l))
}

func (l *byteList) Set(s string) error {
	v, err := parseDataByte(s)
	if err != nil {
		return err
	}
	*l = append(*l, v)
	return nil
}

func parseDataByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	if v > 127 {
		return 0, fmt.Errorf("%d is not a MIDI data byte", v)
	}
	return uint8(v), nil
}

type options struct {
	Type, Channel, Address, Curve optionalByte
	Blink, Pulse, On, Off         byteList
}

// messages builds the messages to send: settings first in index order,
// then LED commands grouped by mode.
func (o *options) messages() ([]midi.Message, error) {
	var msgs []midi.Message

	setting := func(c bridge.Control, v uint8) {
		msgs = append(msgs, midi.NoteOn(0, c.Param(), v))
	}
	if o.Type.set {
		setting(bridge.Type, o.Type.value)
	}
	if o.Channel.set {
		if o.Channel.value < 1 || o.Channel.value > 16 {
			return nil, fmt.Errorf("channel %d outside 1..16", o.Channel.value)
		}
		setting(bridge.Channel, o.Channel.value-1)
	}
	if o.Address.set {
		setting(bridge.Address, o.Address.value)
	}
	if o.Curve.set {
		setting(bridge.Curve, o.Curve.value)
	}

	for _, g := range []struct {
		leds byteList
		mode uint8
	}{
		{o.Blink, ledBlink},
		{o.Pulse, ledPulse},
		{o.On, ledOn},
		{o.Off, ledOff},
	} {
		for _, led := range g.leds {
			if led > 127-ledKeyBase {
				return nil, fmt.Errorf("LED %d out of range", led)
			}
			msgs = append(msgs, midi.NoteOn(ledChannel, ledKeyBase+led, g.mode))
		}
	}
	return msgs, nil
}
