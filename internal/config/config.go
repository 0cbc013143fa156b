// Package config loads the host harness configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/paingrille1/pedalboard/pkg/bridge"
	"github.com/paingrille1/pedalboard/pkg/framework/debug"
	"github.com/paingrille1/pedalboard/pkg/midi"
)

// Config holds host harness configuration.
type Config struct {
	SampleRate  float64
	BlockSize   int
	OutCapacity int
	MIDIIn      string
	MIDIOut     string
	MetricsAddr string
	LogLevel    debug.LogLevel
	Ordering    bridge.Ordering
}

// Load loads configuration from environment variables. Every malformed
// variable is reported in the returned error.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		SampleRate:  parseFloat("PEDAL_SAMPLE_RATE", 48000, &errs),
		BlockSize:   parseInt("PEDAL_BLOCK_SIZE", 256, &errs),
		OutCapacity: parseInt("PEDAL_OUT_CAPACITY", 4096, &errs),
		MIDIIn:      getEnv("PEDAL_MIDI_IN", ""),
		MIDIOut:     getEnv("PEDAL_MIDI_OUT", ""),
		MetricsAddr: getEnv("PEDAL_METRICS_ADDR", ":9109"),
	}

	level, err := debug.ParseLevel(getEnv("PEDAL_LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("PEDAL_LOG_LEVEL: %w", err))
	}
	cfg.LogLevel = level

	ordering, err := bridge.ParseOrdering(getEnv("PEDAL_ORDERING", "append"))
	if err != nil {
		errs = append(errs, fmt.Errorf("PEDAL_ORDERING: %w", err))
	}
	cfg.Ordering = ordering

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.SampleRate <= 0 {
		errs = append(errs, fmt.Errorf("sample rate must be positive, got %g", c.SampleRate))
	}
	if c.BlockSize <= 0 {
		errs = append(errs, fmt.Errorf("block size must be positive, got %d", c.BlockSize))
	}
	if need := midi.SequenceHeaderSize + 4*midi.EncodedSize(midi.ControlMessageSize); c.OutCapacity < need {
		errs = append(errs, fmt.Errorf("output capacity %d cannot hold one announcement per control (need %d)", c.OutCapacity, need))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseInt(key string, fallback int, errs *[]error) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}

func parseFloat(key string, fallback float64, errs *[]error) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return v
}
