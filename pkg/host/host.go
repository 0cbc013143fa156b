// Package host runs a plugin instance outside of an audio host: it owns the
// port buffers, feeds live MIDI in and hands the output to a sink, one block
// per period.
package host

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/paingrille1/pedalboard/pkg/framework/debug"
	"github.com/paingrille1/pedalboard/pkg/framework/port"
	"github.com/paingrille1/pedalboard/pkg/metrics"
	"github.com/paingrille1/pedalboard/pkg/midi"
	"github.com/paingrille1/pedalboard/pkg/plugin"
	"github.com/paingrille1/pedalboard/pkg/urid"
)

// ErrClosed is returned by operations on a closed Runner.
var ErrClosed = errors.New("runner closed")

// RunSection is the profiler section timing the plugin's Run call alone,
// next to debug.CycleSection for the whole block.
const RunSection = "run"

// Sink receives every output event of a block. Payloads are only valid
// during the call.
type Sink func(ev midi.TimedEvent) error

// Options configures a Runner.
type Options struct {
	SampleRate  float64
	BlockSize   int
	InCapacity  int
	OutCapacity int
	BundlePath  string

	// Logger for the host and the plugin's log feature. Defaults to a no-op.
	Logger *zerolog.Logger
	// Metrics is optional.
	Metrics *metrics.Host
	// Sink is optional; without it output is discarded.
	Sink Sink
}

func (o *Options) setDefaults() {
	if o.SampleRate <= 0 {
		o.SampleRate = 48000
	}
	if o.BlockSize <= 0 {
		o.BlockSize = 256
	}
	if o.InCapacity <= 0 {
		o.InCapacity = 4096
	}
	if o.OutCapacity <= 0 {
		o.OutCapacity = 4096
	}
}

type control struct {
	info    port.Info
	value   float32       // bound to the plugin
	pending atomic.Uint32 // float bits written by SetControl
}

// Runner drives one plugin instance.
type Runner struct {
	opts     Options
	log      zerolog.Logger
	table    *urid.Table
	instance plugin.Instance

	midiEvent urid.URID
	seqType   urid.URID
	queue     *midi.Queue
	in        *midi.Sequence
	out       *midi.Sequence
	controls  map[uint32]*control

	profiler *debug.CycleProfiler
	blocks   atomic.Uint64

	mu     sync.Mutex
	closed bool
}

// New instantiates d, binds every port in ports and activates the instance.
func New(d plugin.Descriptor, ports *port.Configuration, opts Options) (*Runner, error) {
	opts.setDefaults()

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	log = log.With().Str("plugin", d.URI()).Logger()

	table := urid.NewTable()
	features := []plugin.Feature{
		{URI: urid.URIDMap, Data: table},
		{URI: urid.URIDUnmap, Data: table},
		{URI: urid.Log, Data: &logFeature{log: log, unmap: table}},
	}

	instance, err := d.Instantiate(opts.SampleRate, opts.BundlePath, features)
	if err != nil {
		return nil, fmt.Errorf("instantiate: %w", err)
	}

	r := &Runner{
		opts:      opts,
		log:       log,
		table:     table,
		instance:  instance,
		midiEvent: table.Map(urid.MidiEvent),
		seqType:   table.Map(urid.AtomSequence),
		queue:     midi.NewQueue(),
		in:        midi.NewSequence(opts.InCapacity),
		out:       midi.NewSequence(opts.OutCapacity),
		controls:  make(map[uint32]*control),
		profiler:  debug.NewCycleProfiler(opts.SampleRate, opts.BlockSize),
	}

	if err := r.bind(ports); err != nil {
		instance.Cleanup()
		return nil, err
	}

	instance.Activate()
	log.Info().
		Float64("sample_rate", opts.SampleRate).
		Int("block_size", opts.BlockSize).
		Dur("budget", r.profiler.Budget()).
		Msg("plugin running")
	return r, nil
}

func (r *Runner) bind(ports *port.Configuration) error {
	var in, out bool
	for _, p := range ports.All() {
		var data any
		switch {
		case p.Kind == port.KindControl && p.Direction == port.DirectionInput:
			c := &control{info: p, value: p.Default}
			c.pending.Store(math.Float32bits(p.Default))
			r.controls[p.Index] = c
			data = &c.value
		case p.Kind == port.KindEvent && p.Direction == port.DirectionInput && !in:
			in = true
			data = r.in
		case p.Kind == port.KindEvent && p.Direction == port.DirectionOutput && !out:
			out = true
			data = r.out
		default:
			r.log.Warn().Uint32("port", p.Index).Str("symbol", p.Symbol).Msg("port left unconnected")
			continue
		}
		if err := r.instance.ConnectPort(p.Index, data); err != nil {
			return fmt.Errorf("connect %s: %w", p.Symbol, err)
		}
	}
	return nil
}

// SetControl sets a control port value, clamped to the port range. It is
// safe to call from any goroutine; the value is applied at the next block.
func (r *Runner) SetControl(index uint32, v float32) error {
	c, ok := r.controls[index]
	if !ok {
		return fmt.Errorf("port %d is not a control input", index)
	}
	c.pending.Store(math.Float32bits(c.info.Clamp(v)))
	return nil
}

// Control returns the value the next block will see on a control port.
func (r *Runner) Control(index uint32) (float32, bool) {
	c, ok := r.controls[index]
	if !ok {
		return 0, false
	}
	return math.Float32frombits(c.pending.Load()), true
}

// Enqueue queues a MIDI message for the next block. It is safe to call
// from a driver callback.
func (r *Runner) Enqueue(msg []byte) {
	r.queue.Add(0, msg)
}

// Map resolves a URI with the host's URID table.
func (r *Runner) Map(uri string) urid.URID {
	return r.table.Map(uri)
}

// Profiler returns the block timing statistics.
func (r *Runner) Profiler() *debug.CycleProfiler {
	return r.profiler
}

// Blocks returns how many blocks have run.
func (r *Runner) Blocks() uint64 {
	return r.blocks.Load()
}

// Reactivate deactivates and activates the instance, which makes the
// plugin start a fresh session.
func (r *Runner) Reactivate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	r.instance.Deactivate()
	r.instance.Activate()
	r.log.Info().Msg("reactivated")
	return nil
}

// Step runs one block and delivers its output to the sink. Sink errors are
// joined into the returned error; the block itself always completes.
func (r *Runner) Step() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}

	start := time.Now()

	r.in.Clear()
	r.in.SetType(r.seqType)
	if _, dropped := r.queue.DrainInto(r.in, int64(r.opts.BlockSize), r.midiEvent); dropped > 0 {
		r.log.Warn().Int("dropped", dropped).Msg("input sequence full")
	}

	for _, c := range r.controls {
		c.value = math.Float32frombits(c.pending.Load())
	}

	stop := r.profiler.Start(RunSection)
	r.instance.Run(uint32(r.opts.BlockSize))
	stop()

	elapsed := time.Since(start)
	overrun := r.profiler.Observe(elapsed)
	r.opts.Metrics.ObserveCycle(elapsed, overrun)
	if overrun {
		r.log.Warn().Dur("elapsed", elapsed).Dur("budget", r.profiler.Budget()).Msg("block overrun")
	}
	r.blocks.Add(1)

	if r.opts.Sink == nil {
		return nil
	}

	var errs []error
	for ev := range r.out.All() {
		err := r.opts.Sink(ev)
		r.opts.Metrics.Sent(err)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run steps once per block period until ctx is done, then closes the
// runner.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.profiler.Budget())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			if err := r.Step(); err != nil {
				if errors.Is(err, ErrClosed) {
					return err
				}
				r.log.Warn().Err(err).Msg("output delivery failed")
			}
		}
	}
}

// Close deactivates and releases the instance. It is safe to call more
// than once.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true

	r.instance.Deactivate()
	r.instance.Cleanup()
	r.log.Info().Uint64("blocks", r.blocks.Load()).Float64("load_percent", r.profiler.Load()).Msg("plugin stopped")
}
