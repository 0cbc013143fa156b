package host

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/paingrille1/pedalboard/pkg/urid"
)

// logFeature implements the log feature handed to plugins, writing plugin
// messages to the host's zerolog logger.
type logFeature struct {
	log   zerolog.Logger
	unmap urid.Unmapper
}

// Printf logs one plugin message. Messages that are zerolog JSON records
// are merged into the host record field by field; anything else becomes
// the record message.
func (l *logFeature) Printf(level urid.URID, format string, args ...any) int {
	msg := fmt.Sprintf(format, args...)
	ev := l.log.WithLevel(l.level(level)).Str("source", "plugin")

	var fields map[string]any
	if strings.HasPrefix(msg, "{") && json.Unmarshal([]byte(msg), &fields) == nil {
		text, _ := fields[zerolog.MessageFieldName].(string)
		delete(fields, zerolog.MessageFieldName)
		delete(fields, zerolog.LevelFieldName)
		delete(fields, zerolog.TimestampFieldName)
		ev.Fields(fields).Msg(text)
	} else {
		ev.Msg(strings.TrimRight(msg, "\n"))
	}
	return len(msg)
}

func (l *logFeature) level(id urid.URID) zerolog.Level {
	switch l.unmap.Unmap(id) {
	case urid.LogTrace:
		return zerolog.DebugLevel
	case urid.LogWarning:
		return zerolog.WarnLevel
	case urid.LogError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
