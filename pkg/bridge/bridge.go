// Package bridge forwards a MIDI event stream and announces changes of the
// expression pedal settings as note-on messages.
package bridge

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/paingrille1/pedalboard/pkg/framework/debug"
	"github.com/paingrille1/pedalboard/pkg/framework/process"
	"github.com/paingrille1/pedalboard/pkg/metrics"
	"github.com/paingrille1/pedalboard/pkg/midi"
	"github.com/paingrille1/pedalboard/pkg/urid"
)

// Unset is the tracked value before the first announcement. Any port value
// that truncates to something else is announced.
const Unset int32 = -1

// Config configures a Bridge.
type Config struct {
	// Mapper is required; it resolves the MIDI event type.
	Mapper urid.Mapper
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
	// Metrics is optional.
	Metrics *metrics.Bridge
	// Ordering defaults to OrderAppend.
	Ordering Ordering
}

// Stats are cumulative counters since creation.
type Stats struct {
	Cycles          uint64
	Forwarded       uint64
	Synthesized     uint64
	DroppedForward  uint64
	DroppedSynth    uint64
	Invalid         uint64
	SkippedNoOutput uint64
}

// Bridge is one plugin instance. It is not safe for concurrent use: the
// host calls Process from its audio thread and the lifecycle methods from
// elsewhere, never at the same time.
type Bridge struct {
	midiEvent urid.URID
	log       zerolog.Logger
	metrics   *metrics.Bridge
	ordered   bool

	ports   [NumControls]*float32
	tracked [NumControls]int32
	ctx     process.Context
	msg     midi.ControlMessage

	warnedControl [NumControls]bool
	warnedOutput  bool

	stats Stats
}

// New creates a bridge. It fails with a *MissingFeatureError when no URID
// mapper is configured.
func New(cfg Config) (*Bridge, error) {
	if cfg.Mapper == nil {
		return nil, &MissingFeatureError{URI: urid.URIDMap}
	}

	midiEvent := cfg.Mapper.Map(urid.MidiEvent)
	if midiEvent == 0 {
		return nil, fmt.Errorf("map %s: %w", urid.MidiEvent, ErrMissingDependency)
	}

	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	b := &Bridge{
		midiEvent: midiEvent,
		log:       log,
		metrics:   cfg.Metrics,
		ordered:   cfg.Ordering == OrderByTime,
	}
	b.reset()
	return b, nil
}

// MidiEventType returns the URID tagging announcements.
func (b *Bridge) MidiEventType() urid.URID {
	return b.midiEvent
}

// ConnectControl binds the value port of control c. Rebinding keeps the
// tracked value.
func (b *Bridge) ConnectControl(c Control, value *float32) {
	if !c.Valid() {
		return
	}
	b.ports[c] = value
}

// ConnectInput binds the input sequence.
func (b *Bridge) ConnectInput(in *midi.Sequence) {
	b.ctx.In = in
}

// ConnectOutput binds the output sequence.
func (b *Bridge) ConnectOutput(out *midi.Sequence) {
	b.ctx.Out = out
}

// Activate starts a session: every control is announced on the next cycle.
func (b *Bridge) Activate() {
	b.reset()
	b.log.Debug().Msg("activated")
}

// Deactivate ends a session. It may be called any number of times.
func (b *Bridge) Deactivate() {
	b.log.Debug().Msg("deactivated")
}

// Close unbinds every port so no host buffer stays referenced.
func (b *Bridge) Close() {
	b.ports = [NumControls]*float32{}
	b.ctx = process.Context{}
}

// Tracked returns the last announced value of c.
func (b *Bridge) Tracked(c Control) int32 {
	if !c.Valid() {
		return Unset
	}
	return b.tracked[c]
}

// Stats returns the cumulative counters.
func (b *Bridge) Stats() Stats {
	return b.stats
}

func (b *Bridge) reset() {
	for i := range b.tracked {
		b.tracked[i] = Unset
	}
	b.warnedControl = [NumControls]bool{}
	b.warnedOutput = false
}

// Process runs one cycle of frames. The output is rebuilt from the input
// events followed by one announcement per changed control. It never
// allocates, blocks or fails; dropped events are counted.
func (b *Bridge) Process(frames uint32) {
	b.ctx.Frames = frames

	if !b.ctx.HasOutput() {
		b.stats.SkippedNoOutput++
		if !b.warnedOutput {
			b.warnedOutput = true
			b.log.Warn().Err(ErrInvalidState).Str("port", "midi_out").Msg("cycle skipped")
		}
		return
	}

	b.stats.Cycles++
	b.metrics.Cycle()

	b.ctx.Clear()
	forwarded, dropped := b.ctx.PassThrough()
	b.stats.Forwarded += uint64(forwarded)
	b.stats.DroppedForward += uint64(dropped)
	b.metrics.Forwarded(forwarded, dropped)

	for c := Type; c < NumControls; c++ {
		b.update(c)
	}
}

func (b *Bridge) update(c Control) {
	debug.Assert(b.ports[c] != nil, "control port not connected")

	value, ok := b.read(c)
	if !ok {
		return
	}
	if value == b.tracked[c] {
		return
	}
	b.tracked[c] = value

	b.msg = midi.NewControlMessage(c.Param(), value)
	written := b.ctx.Emit(midi.TimedEvent{
		Offset:  0,
		Type:    b.midiEvent,
		Payload: b.msg[:],
	}, b.ordered)

	b.metrics.Synthesized(int(c), written)
	if !written {
		b.stats.DroppedSynth++
		b.log.Debug().Err(ErrCapacityExceeded).Str("control", c.String()).Int32("value", value).Msg("announcement dropped")
		return
	}
	b.stats.Synthesized++
	b.log.Debug().Str("control", c.String()).Int32("value", value).Msg("announced")
}

// read truncates the port value toward zero, saturating at the int32
// range. Unbound ports and non-finite values are skipped.
func (b *Bridge) read(c Control) (int32, bool) {
	p := b.ports[c]
	if p == nil {
		b.invalid(c, ErrInvalidState)
		return 0, false
	}

	v := float64(*p)
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		b.invalid(c, errNonFinite)
		return 0, false
	case v >= math.MaxInt32:
		return math.MaxInt32, true
	case v <= math.MinInt32:
		return math.MinInt32, true
	}
	return int32(v), true
}

var errNonFinite = errors.New("non-finite control value")

func (b *Bridge) invalid(c Control, err error) {
	b.stats.Invalid++
	b.metrics.Invalid(int(c))
	if b.warnedControl[c] {
		return
	}
	b.warnedControl[c] = true
	b.log.Warn().Err(err).Str("control", c.String()).Msg("control skipped")
}
