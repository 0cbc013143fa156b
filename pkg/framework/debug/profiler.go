package debug

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler records timing statistics for named sections.
type Profiler struct {
	mu           sync.RWMutex
	measurements map[string]*Measurement
	maxSamples   int
}

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	name        string
	count       uint64
	totalTime   time.Duration
	minTime     time.Duration
	maxTime     time.Duration
	lastTime    time.Duration
	samples     []time.Duration
	sampleIndex int
}

// NewProfiler creates a profiler keeping the last maxSamples timings per
// section.
func NewProfiler(maxSamples int) *Profiler {
	if maxSamples < 1 {
		maxSamples = 1
	}
	return &Profiler{
		measurements: make(map[string]*Measurement),
		maxSamples:   maxSamples,
	}
}

// Start begins timing a named section. Call the returned func to stop.
func (p *Profiler) Start(name string) func() {
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record stores one timing for name.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, exists := p.measurements[name]
	if !exists {
		m = &Measurement{
			name:    name,
			minTime: elapsed,
			maxTime: elapsed,
			samples: make([]time.Duration, p.maxSamples),
		}
		p.measurements[name] = m
	}

	m.count++
	m.totalTime += elapsed
	m.lastTime = elapsed
	if elapsed < m.minTime {
		m.minTime = elapsed
	}
	if elapsed > m.maxTime {
		m.maxTime = elapsed
	}

	m.samples[m.sampleIndex] = elapsed
	m.sampleIndex = (m.sampleIndex + 1) % p.maxSamples
}

// GetMeasurement returns a copy of the measurement for name.
func (p *Profiler) GetMeasurement(name string) (Measurement, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	m, exists := p.measurements[name]
	if !exists {
		return Measurement{}, false
	}

	cp := *m
	cp.samples = append([]time.Duration(nil), m.samples...)
	return cp, true
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.measurements = make(map[string]*Measurement)
}

// Report renders every measurement, sorted by name.
func (p *Profiler) Report() string {
	p.mu.RLock()
	names := make([]string, 0, len(p.measurements))
	for name := range p.measurements {
		names = append(names, name)
	}
	p.mu.RUnlock()

	if len(names) == 0 {
		return "No measurements recorded"
	}
	sort.Strings(names)

	var sb strings.Builder
	sb.WriteString("Performance Report:\n")
	for _, name := range names {
		m, _ := p.GetMeasurement(name)
		fmt.Fprintf(&sb, "%s: count=%d avg=%v min=%v max=%v p99=%v\n",
			name, m.count, m.Average(), m.minTime, m.maxTime, m.Percentile(99))
	}
	return sb.String()
}

// Count returns how many timings were recorded.
func (m Measurement) Count() uint64 {
	return m.count
}

// Max returns the longest recorded timing.
func (m Measurement) Max() time.Duration {
	return m.maxTime
}

// Last returns the most recent timing.
func (m Measurement) Last() time.Duration {
	return m.lastTime
}

// Average returns the mean timing.
func (m Measurement) Average() time.Duration {
	if m.count == 0 {
		return 0
	}
	return m.totalTime / time.Duration(m.count)
}

// Percentile returns the p-th percentile of the retained samples.
func (m Measurement) Percentile(p float64) time.Duration {
	n := len(m.samples)
	if uint64(n) > m.count {
		n = int(m.count)
	}
	if n == 0 {
		return 0
	}

	sorted := append([]time.Duration(nil), m.samples[:n]...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	index := int(float64(n-1) * p / 100.0)
	return sorted[index]
}

// CycleProfiler times processing cycles against the real-time budget of one
// block.
type CycleProfiler struct {
	*Profiler
	budget   time.Duration
	overruns atomic.Uint64
}

// CycleSection is the measurement name used for processing cycles.
const CycleSection = "cycle"

// NewCycleProfiler creates a profiler whose budget is frames/sampleRate.
func NewCycleProfiler(sampleRate float64, frames int) *CycleProfiler {
	var budget time.Duration
	if sampleRate > 0 {
		budget = time.Duration(float64(frames) / sampleRate * float64(time.Second))
	}
	return &CycleProfiler{
		Profiler: NewProfiler(1000),
		budget:   budget,
	}
}

// Budget returns the time available for one block.
func (c *CycleProfiler) Budget() time.Duration {
	return c.budget
}

// Observe records a cycle duration and reports whether it overran the
// budget.
func (c *CycleProfiler) Observe(elapsed time.Duration) bool {
	c.Record(CycleSection, elapsed)
	if c.budget > 0 && elapsed > c.budget {
		c.overruns.Add(1)
		return true
	}
	return false
}

// Overruns returns how many cycles exceeded the budget.
func (c *CycleProfiler) Overruns() uint64 {
	return c.overruns.Load()
}

// Load returns the average cycle time as a percentage of the budget.
func (c *CycleProfiler) Load() float64 {
	m, ok := c.GetMeasurement(CycleSection)
	if !ok || c.budget == 0 {
		return 0
	}
	return float64(m.Average()) / float64(c.budget) * 100.0
}
