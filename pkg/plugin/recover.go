package plugin

import (
	"github.com/rs/zerolog"

	"github.com/paingrille1/pedalboard/pkg/framework/debug"
)

// RecoverPanic keeps a panic from crossing into the host. Use it deferred
// at the top of every host callback. Debug builds re-panic so failures
// surface during development.
func RecoverPanic(log *zerolog.Logger, operation string) {
	r := recover()
	if r == nil {
		return
	}
	if debug.Enabled {
		panic(r)
	}
	if log != nil {
		log.Error().Str("operation", operation).Interface("panic", r).Msg("recovered from panic")
	}
}
