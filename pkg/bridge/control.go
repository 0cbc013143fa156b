package bridge

import (
	"fmt"
	"strings"
)

// Control identifies one of the pedal settings the bridge announces. The
// numeric value is the parameter index carried in the announcement.
type Control int

const (
	Type Control = iota
	Channel
	Address
	Curve

	// NumControls is the number of announced settings.
	NumControls
)

var controlNames = [NumControls]string{"type", "channel", "address", "curve"}

// String returns the control name.
func (c Control) String() string {
	if c < 0 || c >= NumControls {
		return fmt.Sprintf("control(%d)", int(c))
	}
	return controlNames[c]
}

// Param returns the parameter index written into announcements.
func (c Control) Param() uint8 {
	return uint8(c)
}

// Valid reports whether c names a known control.
func (c Control) Valid() bool {
	return c >= 0 && c < NumControls
}

// ParseControl parses a control name. The short port symbols
// (type, chan, addr, curv) are accepted too.
func ParseControl(s string) (Control, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "type":
		return Type, nil
	case "channel", "chan":
		return Channel, nil
	case "address", "addr":
		return Address, nil
	case "curve", "curv":
		return Curve, nil
	}
	return 0, fmt.Errorf("unknown control %q", s)
}

// ControlNames returns the control names indexed by Control.
func ControlNames() []string {
	return controlNames[:]
}

// Ordering selects where announcements go in the output sequence.
type Ordering int

const (
	// OrderAppend appends announcements after every forwarded event, so
	// their offset 0 may follow later offsets.
	OrderAppend Ordering = iota
	// OrderByTime inserts announcements after forwarded events at offset 0
	// and before later ones, keeping the output sorted by offset.
	OrderByTime
)

// String returns the ordering name.
func (o Ordering) String() string {
	if o == OrderByTime {
		return "time"
	}
	return "append"
}

// ParseOrdering parses "append" or "time".
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "append", "":
		return OrderAppend, nil
	case "time":
		return OrderByTime, nil
	}
	return OrderAppend, fmt.Errorf("unknown ordering %q", s)
}
