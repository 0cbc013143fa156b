package bridge

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDependency is returned when a required host feature is absent.
	ErrMissingDependency = errors.New("missing required host feature")

	// ErrCapacityExceeded describes an event dropped for lack of room in the
	// output sequence. Process never returns it; drops show up in Stats.
	ErrCapacityExceeded = errors.New("output sequence capacity exceeded")

	// ErrInvalidState describes a cycle run with an unbound port.
	ErrInvalidState = errors.New("port not connected")
)

// MissingFeatureError names the host feature that was not provided.
type MissingFeatureError struct {
	URI string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingDependency, e.URI)
}

// Unwrap lets errors.Is match ErrMissingDependency.
func (e *MissingFeatureError) Unwrap() error {
	return ErrMissingDependency
}
