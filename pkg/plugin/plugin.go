// Package plugin defines the host-facing plugin ABI: descriptors, instances,
// feature negotiation and the descriptor registry.
package plugin

import (
	"github.com/paingrille1/pedalboard/pkg/framework/debug"
	"github.com/paingrille1/pedalboard/pkg/urid"
)

// Feature is a host capability passed at instantiation.
type Feature struct {
	URI  string
	Data any
}

// LogFeature is the data of a urid.Log feature.
type LogFeature = debug.HostPrinter

// Descriptor describes a plugin type and creates instances of it.
type Descriptor interface {
	// URI returns the unique plugin URI
	URI() string

	// Instantiate creates an instance for the given sample rate. Hosts pass
	// every feature they support; missing required ones fail instantiation.
	Instantiate(sampleRate float64, bundlePath string, features []Feature) (Instance, error)
}

// Instance is one running plugin.
type Instance interface {
	// ConnectPort binds the buffer of port index. It may be called at any
	// time outside Run.
	ConnectPort(index uint32, data any) error

	// Activate starts a processing session
	Activate()

	// Run processes one block - ZERO ALLOCATIONS!
	Run(frames uint32)

	// Deactivate ends a processing session
	Deactivate()

	// Cleanup releases the instance; it must not be used afterwards
	Cleanup()

	// ExtensionData returns extension interfaces, or nil
	ExtensionData(uri string) any
}

// Requirement names a feature and whether instantiation needs it.
type Requirement struct {
	URI      string
	Required bool
	// Dest receives the feature data when present. It must be a pointer to
	// a variable the data is assignable to.
	Dest any
}

// Required declares a required feature.
func Required(uri string, dest any) Requirement {
	return Requirement{URI: uri, Required: true, Dest: dest}
}

// Optional declares an optional feature.
func Optional(uri string, dest any) Requirement {
	return Requirement{URI: uri, Dest: dest}
}

// QueryFeatures fills each requirement from features. It returns the URI of
// the first required feature that is absent or of the wrong type, or "" when
// every required feature was found.
func QueryFeatures(features []Feature, reqs ...Requirement) (missing string) {
	for _, req := range reqs {
		if !assign(find(features, req.URI), req.Dest) && req.Required && missing == "" {
			missing = req.URI
		}
	}
	return missing
}

func find(features []Feature, uri string) any {
	for _, f := range features {
		if f.URI == uri {
			return f.Data
		}
	}
	return nil
}

func assign(data, dest any) bool {
	if data == nil {
		return false
	}
	switch d := dest.(type) {
	case *urid.Mapper:
		v, ok := data.(urid.Mapper)
		if ok {
			*d = v
		}
		return ok
	case *urid.Unmapper:
		v, ok := data.(urid.Unmapper)
		if ok {
			*d = v
		}
		return ok
	case *LogFeature:
		v, ok := data.(LogFeature)
		if ok {
			*d = v
		}
		return ok
	case *any:
		*d = data
		return true
	case nil:
		return true
	}
	return false
}
