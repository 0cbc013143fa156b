package pedalcontrol

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/paingrille1/pedalboard/pkg/bridge"
	"github.com/paingrille1/pedalboard/pkg/framework/debug"
	"github.com/paingrille1/pedalboard/pkg/framework/plugin"
	"github.com/paingrille1/pedalboard/pkg/metrics"
	"github.com/paingrille1/pedalboard/pkg/midi"
	lv2plugin "github.com/paingrille1/pedalboard/pkg/plugin"
	"github.com/paingrille1/pedalboard/pkg/urid"
)

// Descriptor creates pedal control instances.
type Descriptor struct{}

// URI implements lv2plugin.Descriptor
func (Descriptor) URI() string {
	return URI
}

// Instantiate implements lv2plugin.Descriptor. The URID map feature is
// required; the log feature is optional.
func (Descriptor) Instantiate(sampleRate float64, bundlePath string, features []lv2plugin.Feature) (lv2plugin.Instance, error) {
	var (
		mapper urid.Mapper
		host   lv2plugin.LogFeature
	)
	missing := lv2plugin.QueryFeatures(features,
		lv2plugin.Required(urid.URIDMap, &mapper),
		lv2plugin.Optional(urid.Log, &host),
	)
	if missing != "" {
		return nil, &bridge.MissingFeatureError{URI: missing}
	}

	cfg := CurrentConfig()
	id := uuid.New()

	logger := debug.NewHostLogger(host, mapper, "pedalcontrol").With("instance", id.String())
	logger.SetLevel(cfg.LogLevel)
	log := logger.Zerolog()

	var m *metrics.Bridge
	if cfg.Registerer != nil {
		m = metrics.NewBridge(cfg.Registerer, id.String(), bridge.ControlNames())
	}

	b, err := bridge.New(bridge.Config{
		Mapper:   mapper,
		Logger:   &log,
		Metrics:  m,
		Ordering: cfg.Ordering,
	})
	if err != nil {
		m.Unregister()
		return nil, fmt.Errorf("instantiate %s: %w", URI, err)
	}

	inst := &Instance{
		BaseProcessor: plugin.NewBaseProcessor(Info(), ports, sampleRate),
		id:            id,
		bridge:        b,
		metrics:       m,
		log:           log,
	}
	inst.OnActivate(b.Activate)
	inst.OnDeactivate(b.Deactivate)

	log.Info().
		Float64("sample_rate", sampleRate).
		Str("bundle", bundlePath).
		Str("ordering", cfg.Ordering.String()).
		Msg("instantiated")
	return inst, nil
}

// Instance is one pedal control plugin instance.
type Instance struct {
	*plugin.BaseProcessor

	id      uuid.UUID
	bridge  *bridge.Bridge
	metrics *metrics.Bridge
	log     zerolog.Logger
}

// ID returns the instance identifier used in logs and metric labels.
func (i *Instance) ID() uuid.UUID {
	return i.id
}

// Tracked returns the last announced value of control c.
func (i *Instance) Tracked(c bridge.Control) int32 {
	return i.bridge.Tracked(c)
}

// Stats returns the bridge counters.
func (i *Instance) Stats() bridge.Stats {
	return i.bridge.Stats()
}

// ConnectPort binds a port buffer. Control ports take *float32, event
// ports take *midi.Sequence. A nil data unbinds the port.
func (i *Instance) ConnectPort(index uint32, data any) error {
	defer lv2plugin.RecoverPanic(&i.log, "connect_port")

	switch index {
	case PortType, PortChannel, PortAddress, PortCurve:
		v, ok := data.(*float32)
		if !ok && data != nil {
			return fmt.Errorf("port %d: expected *float32, got %T", index, data)
		}
		i.bridge.ConnectControl(bridge.Control(index-PortType), v)
	case PortMidiIn, PortMidiOut:
		seq, ok := data.(*midi.Sequence)
		if !ok && data != nil {
			return fmt.Errorf("port %d: expected *midi.Sequence, got %T", index, data)
		}
		if index == PortMidiIn {
			i.bridge.ConnectInput(seq)
		} else {
			i.bridge.ConnectOutput(seq)
		}
	default:
		return fmt.Errorf("port %d: no such port", index)
	}
	return nil
}

// Activate starts a session; every setting is announced on the next Run.
func (i *Instance) Activate() {
	defer lv2plugin.RecoverPanic(&i.log, "activate")
	i.BaseProcessor.Activate()
}

// Run processes one block.
func (i *Instance) Run(frames uint32) {
	defer lv2plugin.RecoverPanic(&i.log, "run")
	i.bridge.Process(frames)
}

// Deactivate ends a session.
func (i *Instance) Deactivate() {
	defer lv2plugin.RecoverPanic(&i.log, "deactivate")
	i.BaseProcessor.Deactivate()
}

// Cleanup releases port bindings and metrics.
func (i *Instance) Cleanup() {
	defer lv2plugin.RecoverPanic(&i.log, "cleanup")
	i.BaseProcessor.Deactivate()
	i.bridge.Close()
	i.metrics.Unregister()
	i.log.Debug().Msg("cleaned up")
}

// ExtensionData implements lv2plugin.Instance; no extensions are provided.
func (i *Instance) ExtensionData(uri string) any {
	return nil
}
