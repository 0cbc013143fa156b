package port

import (
	"errors"
	"fmt"
	"sort"
)

// Builder provides a fluent API for building port configurations
type Builder struct {
	ports  []Info
	errors []error
}

// NewBuilder creates a new port configuration builder
func NewBuilder() *Builder {
	return &Builder{}
}

// ControlInput adds a control input port with a value range
func (b *Builder) ControlInput(index uint32, symbol, name string, min, max, def float32) *Builder {
	if min > max {
		b.errors = append(b.errors, fmt.Errorf("port %d (%s): empty range [%g, %g]", index, symbol, min, max))
	}
	if def < min || def > max {
		b.errors = append(b.errors, fmt.Errorf("port %d (%s): default %g outside [%g, %g]", index, symbol, def, min, max))
	}
	b.ports = append(b.ports, Info{
		Index:     index,
		Symbol:    symbol,
		Name:      name,
		Kind:      KindControl,
		Direction: DirectionInput,
		Min:       min,
		Max:       max,
		Default:   def,
	})
	return b
}

// Integer marks the last added control port as integer valued
func (b *Builder) Integer() *Builder {
	if len(b.ports) == 0 || b.ports[len(b.ports)-1].Kind != KindControl {
		b.errors = append(b.errors, errors.New("integer flag must follow a control port"))
		return b
	}
	b.ports[len(b.ports)-1].Integer = true
	return b
}

// EventInput adds an event input port
func (b *Builder) EventInput(index uint32, symbol, name string) *Builder {
	return b.event(index, symbol, name, DirectionInput)
}

// EventOutput adds an event output port
func (b *Builder) EventOutput(index uint32, symbol, name string) *Builder {
	return b.event(index, symbol, name, DirectionOutput)
}

func (b *Builder) event(index uint32, symbol, name string, dir Direction) *Builder {
	b.ports = append(b.ports, Info{
		Index:     index,
		Symbol:    symbol,
		Name:      name,
		Kind:      KindEvent,
		Direction: dir,
	})
	return b
}

// Build validates and returns the configuration
func (b *Builder) Build() (*Configuration, error) {
	seenIndex := make(map[uint32]bool, len(b.ports))
	bySymbol := make(map[string]int, len(b.ports))
	errs := append([]error(nil), b.errors...)

	ports := append([]Info(nil), b.ports...)
	sort.SliceStable(ports, func(i, j int) bool { return ports[i].Index < ports[j].Index })

	for i, p := range ports {
		if seenIndex[p.Index] {
			errs = append(errs, fmt.Errorf("duplicate port index %d", p.Index))
		}
		seenIndex[p.Index] = true

		if p.Symbol == "" {
			errs = append(errs, fmt.Errorf("port %d has no symbol", p.Index))
			continue
		}
		if _, dup := bySymbol[p.Symbol]; dup {
			errs = append(errs, fmt.Errorf("duplicate port symbol %q", p.Symbol))
			continue
		}
		bySymbol[p.Symbol] = i
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("port configuration: %w", errors.Join(errs...))
	}
	return &Configuration{ports: ports, bySymbol: bySymbol}, nil
}

// MustBuild builds the configuration and panics on error
func (b *Builder) MustBuild() *Configuration {
	config, err := b.Build()
	if err != nil {
		panic(err)
	}
	return config
}
