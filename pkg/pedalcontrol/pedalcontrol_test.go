package pedalcontrol

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/paingrille1/pedalboard/pkg/bridge"
	"github.com/paingrille1/pedalboard/pkg/framework/debug"
	"github.com/paingrille1/pedalboard/pkg/framework/port"
	"github.com/paingrille1/pedalboard/pkg/midi"
	lv2plugin "github.com/paingrille1/pedalboard/pkg/plugin"
	"github.com/paingrille1/pedalboard/pkg/urid"
)

type hostLog struct {
	lines []string
}

func (h *hostLog) Printf(level urid.URID, format string, args ...any) int {
	line := fmt.Sprintf(format, args...)
	h.lines = append(h.lines, line)
	return len(line)
}

func features(table *urid.Table, log *hostLog) []lv2plugin.Feature {
	fs := []lv2plugin.Feature{{URI: urid.URIDMap, Data: table}}
	if log != nil {
		fs = append(fs, lv2plugin.Feature{URI: urid.Log, Data: log})
	}
	return fs
}

func instantiate(t *testing.T, table *urid.Table) *Instance {
	t.Helper()
	inst, err := Descriptor{}.Instantiate(48000, "/usr/lib/lv2/pedalcontrol.lv2", features(table, nil))
	if err != nil {
		t.Fatalf("Instantiate failed: %v", err)
	}
	return inst.(*Instance)
}

func TestRegistered(t *testing.T) {
	d, ok := lv2plugin.Find(URI)
	if !ok {
		t.Fatalf("%s not registered", URI)
	}
	if d.URI() != URI {
		t.Errorf("Unexpected URI %s", d.URI())
	}

	found := false
	for i := uint32(0); lv2plugin.DescriptorAt(i) != nil; i++ {
		if lv2plugin.DescriptorAt(i).URI() == URI {
			found = true
		}
	}
	if !found {
		t.Error("Descriptor not reachable by index")
	}
}

func TestInfoAndPorts(t *testing.T) {
	if err := Info().ValidateUID(); err != nil {
		t.Errorf("Invalid plugin URI: %v", err)
	}

	p := Ports()
	if p.Len() != 6 {
		t.Fatalf("Expected 6 ports, got %d", p.Len())
	}
	symbols := []string{"type", "chan", "addr", "curv", "midi_in", "midi_out"}
	for i, sym := range symbols {
		info, ok := p.Get(uint32(i))
		if !ok || info.Symbol != sym {
			t.Errorf("Port %d: expected %s, got %+v", i, sym, info)
		}
	}
	if ch, _ := p.Get(PortChannel); ch.Min != 0 || ch.Max != 15 || ch.Default != 0 {
		t.Errorf("Expected a zero-based channel port, got %+v", ch)
	}
	if n := p.Count(port.KindControl, port.DirectionInput); n != 4 {
		t.Errorf("Expected 4 control inputs, got %d", n)
	}
}

func TestInstantiateRequiresURIDMap(t *testing.T) {
	_, err := Descriptor{}.Instantiate(48000, "", []lv2plugin.Feature{{URI: urid.Log, Data: &hostLog{}}})
	if !errors.Is(err, bridge.ErrMissingDependency) {
		t.Fatalf("Expected ErrMissingDependency, got %v", err)
	}

	var missing *bridge.MissingFeatureError
	if !errors.As(err, &missing) || missing.URI != urid.URIDMap {
		t.Errorf("Expected %s reported missing, got %v", urid.URIDMap, err)
	}
}

func TestInstantiateLogsToHost(t *testing.T) {
	log := &hostLog{}
	inst, err := Descriptor{}.Instantiate(44100, "", features(urid.NewTable(), log))
	if err != nil {
		t.Fatal(err)
	}
	defer inst.Cleanup()

	if len(log.lines) == 0 {
		t.Error("Expected instantiation to be logged to the host")
	}
}

func TestZeroConfigLogsAtInfo(t *testing.T) {
	reg := prometheus.NewRegistry()
	SetConfig(Config{Registerer: reg})
	defer SetConfig(Config{})

	log := &hostLog{}
	inst, err := Descriptor{}.Instantiate(48000, "", features(urid.NewTable(), log))
	if err != nil {
		t.Fatal(err)
	}
	defer inst.Cleanup()

	var zero float32
	for p := PortType; p <= PortCurve; p++ {
		inst.ConnectPort(p, &zero)
	}
	inst.ConnectPort(PortMidiOut, midi.NewSequence(256))
	inst.Activate()
	inst.Run(64)

	for _, line := range log.lines {
		if strings.Contains(line, "announced") {
			t.Errorf("Announcements should not be logged at the default level: %s", line)
		}
	}
	if inst.(*Instance).Stats().Synthesized != 4 {
		t.Error("Expected the first cycle to announce every control")
	}
}

func TestConnectPort(t *testing.T) {
	inst := instantiate(t, urid.NewTable())
	defer inst.Cleanup()

	var v float32
	seq := midi.NewSequence(256)

	tests := []struct {
		name    string
		index   uint32
		data    any
		wantErr bool
	}{
		{"control", PortAddress, &v, false},
		{"unbind control", PortCurve, nil, false},
		{"input", PortMidiIn, seq, false},
		{"output", PortMidiOut, seq, false},
		{"control wrong type", PortType, seq, true},
		{"event wrong type", PortMidiOut, &v, true},
		{"float by value", PortType, float32(1), true},
		{"unknown port", 6, &v, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := inst.ConnectPort(tt.index, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("ConnectPort(%d, %T) error = %v, wantErr %v", tt.index, tt.data, err, tt.wantErr)
			}
		})
	}
}

func TestRunLifecycle(t *testing.T) {
	table := urid.NewTable()
	inst := instantiate(t, table)

	controls := []float32{2, 1, 11, 3}
	in := midi.NewSequence(1024)
	out := midi.NewSequence(1024)
	for i := range controls {
		if err := inst.ConnectPort(PortType+uint32(i), &controls[i]); err != nil {
			t.Fatal(err)
		}
	}
	inst.ConnectPort(PortMidiIn, in)
	inst.ConnectPort(PortMidiOut, out)

	midiType := table.Map(urid.MidiEvent)
	in.Append(midi.TimedEvent{Offset: 4, Type: midiType, Payload: []byte{0xB0, 7, 90}})

	inst.Activate()
	if !inst.IsActive() {
		t.Fatal("Instance should be active")
	}
	inst.Run(128)

	if out.Len() != 5 {
		t.Fatalf("Expected 1 forwarded + 4 announcements, got %d", out.Len())
	}
	want := [][]byte{{0xB0, 7, 90}, {0x90, 0, 2}, {0x90, 1, 1}, {0x90, 2, 11}, {0x90, 3, 3}}
	for i, w := range want {
		if got := out.At(i).Payload; string(got) != string(w) {
			t.Errorf("Event %d: expected % x, got % x", i, w, got)
		}
	}

	controls[1] = 5
	inst.Run(128)
	if inst.Tracked(bridge.Channel) != 5 {
		t.Errorf("Expected channel 5, got %d", inst.Tracked(bridge.Channel))
	}

	inst.Deactivate()
	inst.Activate()
	in.Clear()
	inst.Run(128)
	if out.Len() != 4 {
		t.Errorf("Expected full announcement after reactivation, got %d events", out.Len())
	}

	if stats := inst.Stats(); stats.Cycles != 3 || stats.Synthesized != 9 {
		t.Errorf("Unexpected stats %+v", stats)
	}

	inst.Cleanup()
	if inst.IsActive() {
		t.Error("Cleanup should deactivate")
	}
	inst.Run(128)
	if inst.Stats().Cycles != 3 {
		t.Error("Cleaned up instance should not process")
	}
}

func TestRunRecoversFromPanics(t *testing.T) {
	if debug.Enabled {
		t.Skip("debug builds re-panic")
	}

	inst := instantiate(t, urid.NewTable())
	inst.bridge = nil

	inst.Run(64)
}

func TestMetricsConfig(t *testing.T) {
	reg := prometheus.NewRegistry()
	SetConfig(Config{Registerer: reg, Ordering: bridge.OrderByTime, LogLevel: debug.LogLevelOff})
	defer SetConfig(Config{LogLevel: debug.LogLevelInfo})

	if CurrentConfig().Ordering != bridge.OrderByTime {
		t.Fatal("SetConfig not applied")
	}

	inst := instantiate(t, urid.NewTable())
	var zero float32
	for p := PortType; p <= PortCurve; p++ {
		inst.ConnectPort(p, &zero)
	}
	inst.ConnectPort(PortMidiOut, midi.NewSequence(256))
	inst.Activate()
	inst.Run(64)

	expected := `
# HELP pedalboard_cycles_total Processing cycles run
# TYPE pedalboard_cycles_total counter
pedalboard_cycles_total{instance="` + inst.ID().String() + `"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "pedalboard_cycles_total"); err != nil {
		t.Error(err)
	}

	inst.Cleanup()
	if n, _ := testutil.GatherAndCount(reg); n != 0 {
		t.Errorf("Expected metrics unregistered on cleanup, %d series left", n)
	}
}

func TestExtensionData(t *testing.T) {
	inst := instantiate(t, urid.NewTable())
	defer inst.Cleanup()
	if inst.ExtensionData("http://lv2plug.in/ns/ext/state#interface") != nil {
		t.Error("Expected no extensions")
	}
}
