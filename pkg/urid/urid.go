// Package urid maps symbolic URIs to small integer identifiers.
//
// Hosts hand plugins a Mapper at instantiation time. Plugins map every URI
// they need once, before processing starts, and then compare plain integers
// on the real-time path.
package urid

import (
	"sync"
)

// URID is a mapped URI. Zero is never a valid mapping.
type URID uint32

// Well-known URIs used by the pedal plugin and its host.
const (
	URIDMap   = "http://lv2plug.in/ns/ext/urid#map"
	URIDUnmap = "http://lv2plug.in/ns/ext/urid#unmap"

	MidiEvent    = "http://lv2plug.in/ns/ext/midi#MidiEvent"
	AtomSequence = "http://lv2plug.in/ns/ext/atom#Sequence"

	Log        = "http://lv2plug.in/ns/ext/log#log"
	LogError   = "http://lv2plug.in/ns/ext/log#Error"
	LogWarning = "http://lv2plug.in/ns/ext/log#Warning"
	LogNote    = "http://lv2plug.in/ns/ext/log#Note"
	LogTrace   = "http://lv2plug.in/ns/ext/log#Trace"
)

// Mapper maps a URI to a URID. Implementations must return the same URID
// for the same URI for the lifetime of the host.
type Mapper interface {
	Map(uri string) URID
}

// Unmapper is the reverse of Mapper.
type Unmapper interface {
	Unmap(id URID) string
}

// Table is a thread-safe Mapper and Unmapper. IDs are assigned sequentially
// starting at 1.
type Table struct {
	mu   sync.RWMutex
	ids  map[string]URID
	uris []string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		ids:  make(map[string]URID),
		uris: make([]string, 1, 16), // index 0 is reserved
	}
}

// Map returns the URID for uri, assigning a new one on first use.
// The empty URI maps to 0.
func (t *Table) Map(uri string) URID {
	if uri == "" {
		return 0
	}

	t.mu.RLock()
	id, ok := t.ids[uri]
	t.mu.RUnlock()
	if ok {
		return id
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Another goroutine may have won the race
	if id, ok := t.ids[uri]; ok {
		return id
	}

	id = URID(len(t.uris))
	t.ids[uri] = id
	t.uris = append(t.uris, uri)
	return id
}

// Unmap returns the URI for id, or "" if id was never mapped.
func (t *Table) Unmap(id URID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if id == 0 || int(id) >= len(t.uris) {
		return ""
	}
	return t.uris[id]
}

// Len returns the number of mapped URIs.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.uris) - 1
}

// MapperFunc adapts a function to the Mapper interface.
type MapperFunc func(uri string) URID

// Map calls f(uri).
func (f MapperFunc) Map(uri string) URID {
	return f(uri)
}
