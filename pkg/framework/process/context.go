// Package process provides the per-cycle event processing context.
package process

import (
	"github.com/paingrille1/pedalboard/pkg/midi"
)

// Context holds the port buffers of one processing cycle. Sequences are
// owned by the host and only borrowed for the duration of a cycle.
type Context struct {
	Frames uint32
	In     *midi.Sequence
	Out    *midi.Sequence
}

// HasInput reports whether an input sequence is bound.
func (c *Context) HasInput() bool {
	return c.In != nil
}

// HasOutput reports whether an output sequence is bound.
func (c *Context) HasOutput() bool {
	return c.Out != nil
}

// Clear empties the output and gives it the input's type tag. Without an
// input the output keeps its current tag.
func (c *Context) Clear() {
	if c.Out == nil {
		return
	}
	c.Out.Clear()
	if c.In != nil {
		c.Out.SetType(c.In.Type())
	}
}

// PassThrough copies every input event to the output at its original
// offset, in stored order. Events that no longer fit are dropped.
func (c *Context) PassThrough() (forwarded, dropped int) {
	if c.In == nil || c.Out == nil {
		return 0, 0
	}

	for i := 0; i < c.In.Len(); i++ {
		if c.Out.Append(c.In.At(i)) {
			forwarded++
		} else {
			dropped++
		}
	}
	return forwarded, dropped
}

// Emit writes ev to the output, appended after existing events or, when
// ordered is set, inserted by offset. It reports false when ev was dropped.
func (c *Context) Emit(ev midi.TimedEvent, ordered bool) bool {
	if c.Out == nil {
		return false
	}
	if ordered {
		return c.Out.InsertOrdered(ev)
	}
	return c.Out.Append(ev)
}
