// Package port describes plugin ports: control inputs and event streams.
package port

import "math"

// Kind represents the type of data a port carries
type Kind int32

const (
	// KindControl is a single float value per cycle
	KindControl Kind = 0
	// KindEvent is a timed event sequence
	KindEvent Kind = 1
)

// String returns the port kind name
func (k Kind) String() string {
	switch k {
	case KindControl:
		return "control"
	case KindEvent:
		return "event"
	default:
		return "unknown"
	}
}

// Direction represents the port direction
type Direction int32

const (
	// DirectionInput represents an input port
	DirectionInput Direction = 0
	// DirectionOutput represents an output port
	DirectionOutput Direction = 1
)

// String returns the direction name
func (d Direction) String() string {
	if d == DirectionOutput {
		return "output"
	}
	return "input"
}

// Info contains port configuration
type Info struct {
	Index     uint32
	Symbol    string
	Name      string
	Kind      Kind
	Direction Direction

	// Control ports only
	Min     float32
	Max     float32
	Default float32
	Integer bool
}

// Clamp limits v to the port range, rounding toward zero for integer
// ports. Non-control ports return v unchanged.
func (i Info) Clamp(v float32) float32 {
	if i.Kind != KindControl {
		return v
	}
	if v < i.Min {
		v = i.Min
	} else if v > i.Max {
		v = i.Max
	}
	if i.Integer {
		v = float32(math.Trunc(float64(v)))
	}
	return v
}

// Configuration holds the ordered port table of a plugin
type Configuration struct {
	ports    []Info
	bySymbol map[string]int
}

// Len returns the total number of ports
func (c *Configuration) Len() int {
	return len(c.ports)
}

// Count returns the number of ports for a given kind and direction
func (c *Configuration) Count(kind Kind, direction Direction) int {
	count := 0
	for _, p := range c.ports {
		if p.Kind == kind && p.Direction == direction {
			count++
		}
	}
	return count
}

// Get returns the port at index
func (c *Configuration) Get(index uint32) (Info, bool) {
	for _, p := range c.ports {
		if p.Index == index {
			return p, true
		}
	}
	return Info{}, false
}

// BySymbol returns the port with the given symbol
func (c *Configuration) BySymbol(symbol string) (Info, bool) {
	i, ok := c.bySymbol[symbol]
	if !ok {
		return Info{}, false
	}
	return c.ports[i], true
}

// All returns a copy of every port in index order
func (c *Configuration) All() []Info {
	return append([]Info(nil), c.ports...)
}
