package debug

import (
	"github.com/rs/zerolog"

	"github.com/paingrille1/pedalboard/pkg/urid"
)

// HostPrinter is the printing half of a host's log feature.
type HostPrinter interface {
	Printf(level urid.URID, format string, args ...any) int
}

// HostWriter forwards zerolog records to a host log feature, translating
// record levels into the host's log level URIDs. Each message is one JSON
// record ending in a newline, as log feature messages do.
type HostWriter struct {
	host    HostPrinter
	trace   urid.URID
	note    urid.URID
	warning urid.URID
	err     urid.URID
}

// NewHostWriter maps the log level URIs once so writes are plain lookups.
func NewHostWriter(host HostPrinter, m urid.Mapper) *HostWriter {
	return &HostWriter{
		host:    host,
		trace:   m.Map(urid.LogTrace),
		note:    m.Map(urid.LogNote),
		warning: m.Map(urid.LogWarning),
		err:     m.Map(urid.LogError),
	}
}

// Write logs p as a note.
func (w *HostWriter) Write(p []byte) (int, error) {
	w.host.Printf(w.note, "%s", p)
	return len(p), nil
}

// WriteLevel implements zerolog.LevelWriter.
func (w *HostWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	w.host.Printf(w.levelURID(level), "%s", p)
	return len(p), nil
}

func (w *HostWriter) levelURID(level zerolog.Level) urid.URID {
	switch {
	case level <= zerolog.DebugLevel:
		return w.trace
	case level == zerolog.InfoLevel:
		return w.note
	case level == zerolog.WarnLevel:
		return w.warning
	default:
		return w.err
	}
}

// NewHostLogger builds a logger on top of a host log feature. A nil host
// yields a disabled logger, so a missing log feature degrades to silence.
func NewHostLogger(host HostPrinter, m urid.Mapper, prefix string) *Logger {
	if host == nil || m == nil {
		return Nop()
	}
	return New(NewHostWriter(host, m), prefix)
}
