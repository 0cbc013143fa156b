// Package metrics exposes Prometheus collectors for the event bridge and the
// host runner. Every method is safe on a nil receiver so instrumentation
// stays optional.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pedalboard"

// Drop sources.
const (
	SourceForward = "forward"
	SourceSynth   = "synth"
)

// Bridge holds the per-instance bridge counters. Label children are
// resolved up front so the processing path only does atomic adds.
type Bridge struct {
	reg        prometheus.Registerer
	collectors []prometheus.Collector

	cycles       prometheus.Counter
	forwarded    prometheus.Counter
	droppedFwd   prometheus.Counter
	droppedSynth prometheus.Counter
	synthesized  []prometheus.Counter
	invalid      []prometheus.Counter
}

// NewBridge creates and registers bridge counters labelled with instance.
// controls names the control labels, indexed like the bridge's controls.
// A nil registerer creates unregistered collectors.
func NewBridge(reg prometheus.Registerer, instance string, controls []string) *Bridge {
	factory := promauto.With(reg)
	labels := prometheus.Labels{"instance": instance}

	synthesized := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "events_synthesized_total",
		Help:        "Control announcements written to the output",
		ConstLabels: labels,
	}, []string{"control"})

	dropped := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "events_dropped_total",
		Help:        "Events dropped because the output sequence was full",
		ConstLabels: labels,
	}, []string{"source"})

	invalid := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "invalid_inputs_total",
		Help:        "Control reads skipped because the port was unbound or non-finite",
		ConstLabels: labels,
	}, []string{"control"})

	cycles := factory.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "cycles_total",
		Help:        "Processing cycles run",
		ConstLabels: labels,
	})

	forwarded := factory.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "events_forwarded_total",
		Help:        "Input events copied to the output",
		ConstLabels: labels,
	})

	b := &Bridge{
		reg:          reg,
		collectors:   []prometheus.Collector{cycles, forwarded, synthesized, dropped, invalid},
		cycles:       cycles,
		forwarded:    forwarded,
		droppedFwd:   dropped.WithLabelValues(SourceForward),
		droppedSynth: dropped.WithLabelValues(SourceSynth),
		synthesized:  make([]prometheus.Counter, len(controls)),
		invalid:      make([]prometheus.Counter, len(controls)),
	}
	for i, name := range controls {
		b.synthesized[i] = synthesized.WithLabelValues(name)
		b.invalid[i] = invalid.WithLabelValues(name)
	}
	return b
}

// Unregister removes the collectors from the registerer they were created
// with.
func (b *Bridge) Unregister() {
	if b == nil || b.reg == nil {
		return
	}
	for _, c := range b.collectors {
		b.reg.Unregister(c)
	}
	b.reg = nil
}

// Cycle counts one processing cycle.
func (b *Bridge) Cycle() {
	if b == nil {
		return
	}
	b.cycles.Inc()
}

// Forwarded adds n forwarded events and d forwarding drops.
func (b *Bridge) Forwarded(n, d int) {
	if b == nil {
		return
	}
	if n > 0 {
		b.forwarded.Add(float64(n))
	}
	if d > 0 {
		b.droppedFwd.Add(float64(d))
	}
}

// Synthesized counts one announcement for control i, written or dropped.
func (b *Bridge) Synthesized(i int, written bool) {
	if b == nil || i < 0 || i >= len(b.synthesized) {
		return
	}
	if written {
		b.synthesized[i].Inc()
	} else {
		b.droppedSynth.Inc()
	}
}

// Invalid counts one skipped read of control i.
func (b *Bridge) Invalid(i int) {
	if b == nil || i < 0 || i >= len(b.invalid) {
		return
	}
	b.invalid[i].Inc()
}

// Host holds the host runner collectors.
type Host struct {
	duration prometheus.Histogram
	overruns prometheus.Counter
	sent     prometheus.Counter
	sendErrs prometheus.Counter
}

// NewHost creates and registers host runner collectors.
func NewHost(reg prometheus.Registerer) *Host {
	factory := promauto.With(reg)
	return &Host{
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one processing block",
			Buckets:   prometheus.ExponentialBuckets(10e-6, 2, 12),
		}),
		overruns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_overruns_total",
			Help:      "Blocks that took longer than their real-time budget",
		}),
		sent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_sent_total",
			Help:      "Output events delivered to the sink",
		}),
		sendErrs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_errors_total",
			Help:      "Output events the sink rejected",
		}),
	}
}

// ObserveCycle records a block duration.
func (h *Host) ObserveCycle(d time.Duration, overrun bool) {
	if h == nil {
		return
	}
	h.duration.Observe(d.Seconds())
	if overrun {
		h.overruns.Inc()
	}
}

// Sent counts one delivered event or one sink failure.
func (h *Host) Sent(err error) {
	if h == nil {
		return
	}
	if err != nil {
		h.sendErrs.Inc()
		return
	}
	h.sent.Inc()
}
