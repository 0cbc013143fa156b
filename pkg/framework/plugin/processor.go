// Package plugin provides base processor functionality shared by plugin
// implementations.
package plugin

import (
	"sync/atomic"

	"github.com/paingrille1/pedalboard/pkg/framework/port"
)

// BaseProcessor provides common lifecycle state for processors
type BaseProcessor struct {
	info       Info
	ports      *port.Configuration
	sampleRate float64
	active     atomic.Bool

	// Optional callbacks for customization
	onActivate   func()
	onDeactivate func()
}

// NewBaseProcessor creates a base processor with the given port table
func NewBaseProcessor(info Info, ports *port.Configuration, sampleRate float64) *BaseProcessor {
	return &BaseProcessor{
		info:       info,
		ports:      ports,
		sampleRate: sampleRate,
	}
}

// Info returns the plugin metadata
func (b *BaseProcessor) Info() Info {
	return b.info
}

// Ports returns the port configuration
func (b *BaseProcessor) Ports() *port.Configuration {
	return b.ports
}

// SampleRate returns the sample rate given at instantiation
func (b *BaseProcessor) SampleRate() float64 {
	return b.sampleRate
}

// IsActive reports whether the processor is between Activate and Deactivate
func (b *BaseProcessor) IsActive() bool {
	return b.active.Load()
}

// Activate marks the processor active and runs the activation callback.
// Hosts may re-activate without deactivating first; the callback runs every
// time.
func (b *BaseProcessor) Activate() {
	b.active.Store(true)
	if b.onActivate != nil {
		b.onActivate()
	}
}

// Deactivate marks the processor inactive. Repeated calls are no-ops.
func (b *BaseProcessor) Deactivate() {
	if !b.active.Swap(false) {
		return
	}
	if b.onDeactivate != nil {
		b.onDeactivate()
	}
}

// OnActivate sets a callback for activation
func (b *BaseProcessor) OnActivate(fn func()) {
	b.onActivate = fn
}

// OnDeactivate sets a callback for deactivation
func (b *BaseProcessor) OnDeactivate(fn func()) {
	b.onDeactivate = fn
}
