package plugin

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// Info contains plugin metadata
type Info struct {
	URI      string // Unique plugin identifier (e.g., "http://example.org/plugins/gain")
	Name     string // Display name
	Version  string // Semantic version (e.g., "1.0.0")
	Vendor   string // Company/developer name
	Category string // Plugin category (e.g., "MIDIPlugin", "UtilityPlugin")
}

// UID derives a stable identifier from the plugin URI.
func (i Info) UID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(i.URI))
}

// ValidateUID checks that the URI is usable as a plugin identity.
func (i Info) ValidateUID() error {
	if i.URI == "" {
		return errors.New("plugin URI is empty")
	}

	u, err := url.Parse(i.URI)
	if err != nil {
		return fmt.Errorf("plugin URI %q: %w", i.URI, err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("plugin URI %q is not absolute", i.URI)
	}
	return nil
}
