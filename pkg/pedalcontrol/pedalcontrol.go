// Package pedalcontrol is the expression pedal control plugin. It forwards
// its MIDI input and announces the pedal type, channel, address and curve
// settings whenever they change.
package pedalcontrol

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/paingrille1/pedalboard/pkg/bridge"
	"github.com/paingrille1/pedalboard/pkg/framework/debug"
	"github.com/paingrille1/pedalboard/pkg/framework/plugin"
	"github.com/paingrille1/pedalboard/pkg/framework/port"
	lv2plugin "github.com/paingrille1/pedalboard/pkg/plugin"
)

// URI identifies the plugin.
const URI = "http://paingrille.fr/plugins/pedalcontrol"

// Port indices
const (
	PortType uint32 = iota
	PortChannel
	PortAddress
	PortCurve
	PortMidiIn
	PortMidiOut
)

// The chan port carries the zero-based MIDI channel, which is what the pedal
// firmware reads from the announcement. Users counting 1..16 subtract one.
var ports = port.NewBuilder().
	ControlInput(PortType, "type", "Type", 0, 127, 0).Integer().
	ControlInput(PortChannel, "chan", "Channel", 0, 15, 0).Integer().
	ControlInput(PortAddress, "addr", "Address", 0, 127, 0).Integer().
	ControlInput(PortCurve, "curv", "Curve", 0, 127, 0).Integer().
	EventInput(PortMidiIn, "midi_in", "MIDI In").
	EventOutput(PortMidiOut, "midi_out", "MIDI Out").
	MustBuild()

// Info returns the plugin metadata.
func Info() plugin.Info {
	return plugin.Info{
		URI:      URI,
		Name:     "Pedal Control",
		Version:  "1.0.0",
		Vendor:   "paingrille",
		Category: "MIDIPlugin",
	}
}

// Ports returns the port table.
func Ports() *port.Configuration {
	return ports
}

// Config for instances created after SetConfig
type Config struct {
	// Registerer receives per-instance metrics when set
	Registerer prometheus.Registerer

	// Ordering of announcements relative to forwarded events
	Ordering bridge.Ordering

	// LogLevel for the host log; the zero value is info
	LogLevel debug.LogLevel
}

var (
	globalConfig Config
	configMu     sync.RWMutex
)

// SetConfig sets the configuration used by later instantiations
func SetConfig(cfg Config) {
	configMu.Lock()
	defer configMu.Unlock()
	globalConfig = cfg
}

// CurrentConfig returns the configuration in effect
func CurrentConfig() Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

func init() {
	lv2plugin.MustRegister(Descriptor{})
}
