package plugin

import (
	"fmt"
	"sort"
	"sync"
)

var (
	// Registered descriptors in registration order
	descriptors   []Descriptor
	descriptorsMu sync.RWMutex
)

// Register adds a descriptor. Plugins call it from init.
func Register(d Descriptor) error {
	if d == nil || d.URI() == "" {
		return fmt.Errorf("register: descriptor has no URI")
	}

	descriptorsMu.Lock()
	defer descriptorsMu.Unlock()

	for _, existing := range descriptors {
		if existing.URI() == d.URI() {
			return fmt.Errorf("register: %s already registered", d.URI())
		}
	}
	descriptors = append(descriptors, d)
	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(d Descriptor) {
	if err := Register(d); err != nil {
		panic(err)
	}
}

// DescriptorAt returns the index-th registered descriptor, or nil past the
// end. Hosts enumerate plugins by counting up from 0 until nil.
func DescriptorAt(index uint32) Descriptor {
	descriptorsMu.RLock()
	defer descriptorsMu.RUnlock()

	if int(index) >= len(descriptors) {
		return nil
	}
	return descriptors[index]
}

// Find returns the descriptor registered for uri.
func Find(uri string) (Descriptor, bool) {
	descriptorsMu.RLock()
	defer descriptorsMu.RUnlock()

	for _, d := range descriptors {
		if d.URI() == uri {
			return d, true
		}
	}
	return nil, false
}

// URIs returns the registered plugin URIs, sorted.
func URIs() []string {
	descriptorsMu.RLock()
	defer descriptorsMu.RUnlock()

	uris := make([]string, len(descriptors))
	for i, d := range descriptors {
		uris[i] = d.URI()
	}
	sort.Strings(uris)
	return uris
}
