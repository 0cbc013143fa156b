package process

import (
	"testing"

	"github.com/paingrille1/pedalboard/pkg/midi"
	"github.com/paingrille1/pedalboard/pkg/urid"
)

const midiType urid.URID = 7

func event(offset int64, b ...byte) midi.TimedEvent {
	return midi.TimedEvent{Offset: offset, Type: midiType, Payload: b}
}

func TestClear(t *testing.T) {
	in := midi.NewSequence(256)
	in.SetType(42)
	out := midi.NewSequence(256)
	out.Append(event(0, 0x90, 1, 1))

	ctx := &Context{In: in, Out: out}
	ctx.Clear()

	if out.Len() != 0 || out.Size() != midi.SequenceHeaderSize {
		t.Errorf("Expected empty output, got %d events / %d bytes", out.Len(), out.Size())
	}
	if out.Type() != 42 {
		t.Errorf("Expected output type 42, got %d", out.Type())
	}
}

func TestClearWithoutInput(t *testing.T) {
	out := midi.NewSequence(256)
	out.SetType(9)
	out.Append(event(0, 0x90, 1, 1))

	ctx := &Context{Out: out}
	ctx.Clear()

	if out.Len() != 0 || out.Type() != 9 {
		t.Errorf("Expected empty output keeping type 9, got %d events type %d", out.Len(), out.Type())
	}

	(&Context{}).Clear()
}

func TestPassThrough(t *testing.T) {
	in := midi.NewSequence(256)
	in.Append(event(5, 0xB0, 7, 100))
	in.Append(event(2, 0x90, 60, 64))
	out := midi.NewSequence(256)

	ctx := &Context{Frames: 64, In: in, Out: out}
	ctx.Clear()
	forwarded, dropped := ctx.PassThrough()

	if forwarded != 2 || dropped != 0 {
		t.Fatalf("Expected 2 forwarded 0 dropped, got %d/%d", forwarded, dropped)
	}
	for i := 0; i < in.Len(); i++ {
		if !out.At(i).Equal(in.At(i)) {
			t.Errorf("Event %d: expected %v, got %v", i, in.At(i), out.At(i))
		}
	}
}

func TestPassThroughOverflow(t *testing.T) {
	in := midi.NewSequence(256)
	for i := 0; i < 3; i++ {
		in.Append(event(int64(i), 0x90, byte(i), 1))
	}
	// Room for two 3-byte events
	out := midi.NewSequence(midi.SequenceHeaderSize + 2*midi.EncodedSize(3))

	ctx := &Context{In: in, Out: out}
	forwarded, dropped := ctx.PassThrough()

	if forwarded != 2 || dropped != 1 {
		t.Errorf("Expected 2 forwarded 1 dropped, got %d/%d", forwarded, dropped)
	}
}

func TestPassThroughUnbound(t *testing.T) {
	ctx := &Context{Out: midi.NewSequence(64)}
	if f, d := ctx.PassThrough(); f != 0 || d != 0 {
		t.Errorf("Expected nothing forwarded without input, got %d/%d", f, d)
	}
	if ctx.HasInput() || !ctx.HasOutput() {
		t.Error("Unexpected binding state")
	}
}

func TestEmit(t *testing.T) {
	out := midi.NewSequence(256)
	out.Append(event(0, 0xB0, 1, 1))
	out.Append(event(10, 0xB0, 2, 2))

	ctx := &Context{Out: out}
	if !ctx.Emit(event(0, 0x90, 0, 5), true) {
		t.Fatal("Ordered emit failed")
	}
	if got := out.At(1).Payload[0]; got != 0x90 {
		t.Errorf("Expected ordered emit at index 1, got status %#x", got)
	}

	if !ctx.Emit(event(0, 0x90, 1, 5), false) {
		t.Fatal("Append emit failed")
	}
	if got := out.At(out.Len() - 1).Payload[1]; got != 1 {
		t.Errorf("Expected appended emit last, got key %d", got)
	}

	if (&Context{}).Emit(event(0, 0x90), false) {
		t.Error("Emit without output should fail")
	}
}
