package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/paingrille1/pedalboard/pkg/bridge"
	"github.com/paingrille1/pedalboard/pkg/framework/debug"
	"github.com/paingrille1/pedalboard/pkg/pedalcontrol"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line    string
		want    command
		wantErr bool
	}{
		{"", command{kind: cmdNone}, false},
		{"   ", command{kind: cmdNone}, false},
		{"activate", command{kind: cmdActivate}, false},
		{"STATS", command{kind: cmdStats}, false},
		{"quit", command{kind: cmdQuit}, false},
		{"type 2", command{kind: cmdSet, control: bridge.Type, value: 2}, false},
		{"chan 10", command{kind: cmdSet, control: bridge.Channel, value: 10}, false},
		{"addr 3.5", command{kind: cmdSet, control: bridge.Address, value: 3.5}, false},
		{"curve 1", command{kind: cmdSet, control: bridge.Curve, value: 1}, false},
		{"curve", command{}, true},
		{"curve one", command{}, true},
		{"volume 3", command{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := parseCommand(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCommand(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseCommand(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

type fakeRunner struct {
	index       uint32
	value       float32
	reactivated bool
	err         error
}

func (f *fakeRunner) SetControl(index uint32, v float32) error {
	f.index, f.value = index, v
	return f.err
}

func (f *fakeRunner) Reactivate() error {
	f.reactivated = true
	return f.err
}

func (f *fakeRunner) Blocks() uint64 { return 0 }

func TestApply(t *testing.T) {
	prev := debug.Default()
	defer debug.SetDefault(prev)
	var buf bytes.Buffer
	debug.SetDefault(debug.New(&buf, ""))

	r := &fakeRunner{}

	if err := (command{kind: cmdSet, control: bridge.Address, value: 9}).apply(r); err != nil {
		t.Fatal(err)
	}
	if r.index != pedalcontrol.PortAddress || r.value != 9 {
		t.Errorf("Expected port %d = 9, got %d = %g", pedalcontrol.PortAddress, r.index, r.value)
	}
	if !strings.Contains(buf.String(), "address set to 9") {
		t.Errorf("Expected the change on the default logger: %s", buf.String())
	}

	if err := (command{kind: cmdActivate}).apply(r); err != nil || !r.reactivated {
		t.Errorf("Expected reactivation, got %v", err)
	}

	r.err = errors.New("closed")
	if err := (command{kind: cmdSet}).apply(r); err == nil {
		t.Error("Expected error to propagate")
	}
	if err := (command{kind: cmdNone}).apply(r); err != nil {
		t.Error("No-op should not fail")
	}
}
