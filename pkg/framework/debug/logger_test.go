package debug

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/paingrille1/pedalboard/pkg/urid"
)

func TestLogger(t *testing.T) {
	t.Run("BasicLogging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "TEST")

		logger.Info("Hello %s", "World")

		output := buf.String()
		if !strings.Contains(output, `"level":"info"`) {
			t.Errorf("Missing log level: %s", output)
		}
		if !strings.Contains(output, `"component":"TEST"`) {
			t.Errorf("Missing prefix: %s", output)
		}
		if !strings.Contains(output, "Hello World") {
			t.Errorf("Missing message: %s", output)
		}
	})

	t.Run("LogLevels", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "")
		logger.SetLevel(LogLevelWarn)

		logger.Debug("debug message")
		logger.Info("info message")
		logger.Warn("warn message")
		logger.Error("error message")

		output := buf.String()
		if strings.Contains(output, "debug message") {
			t.Error("Debug message should not be logged")
		}
		if strings.Contains(output, "info message") {
			t.Error("Info message should not be logged")
		}
		if !strings.Contains(output, "warn message") {
			t.Error("Warn message should be logged")
		}
		if !strings.Contains(output, "error message") {
			t.Error("Error message should be logged")
		}
	})

	t.Run("ZeroLevelIsInfo", func(t *testing.T) {
		var level LogLevel
		if level != LogLevelInfo {
			t.Errorf("Expected zero level to be INFO, got %s", level)
		}

		var buf bytes.Buffer
		logger := New(&buf, "")
		logger.SetLevel(level)
		zl := logger.Zerolog()
		zl.Debug().Msg("hidden")
		zl.Info().Msg("shown")

		if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
			t.Errorf("Zero level should filter debug records: %s", buf.String())
		}
	})

	t.Run("Off", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "")
		logger.SetLevel(LogLevelOff)

		logger.Error("should not appear")
		if buf.Len() > 0 {
			t.Error("LogLevelOff should suppress everything")
		}
	})

	t.Run("With", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "").With("instance", "abc")

		logger.Info("tagged")
		if !strings.Contains(buf.String(), `"instance":"abc"`) {
			t.Errorf("Missing field: %s", buf.String())
		}
	})

	t.Run("Nop", func(t *testing.T) {
		logger := Nop()
		logger.SetLevel(LogLevelDebug)
		logger.Info("discarded")

		zl := logger.Zerolog()
		if zl.GetLevel() != zerolog.Disabled {
			t.Errorf("Nop logger should stay disabled, got %s", zl.GetLevel())
		}
	})

	t.Run("Default", func(t *testing.T) {
		prev := Default()
		defer SetDefault(prev)

		var buf bytes.Buffer
		SetDefault(New(&buf, ""))
		SetLevel(LogLevelWarn)

		Debug("debug %d", 1)
		Info("info %d", 2)
		Warn("warn %d", 3)
		Error("error %d", 4)

		output := buf.String()
		if strings.Contains(output, "debug 1") || strings.Contains(output, "info 2") {
			t.Errorf("Records below WARN should be filtered: %s", output)
		}
		if !strings.Contains(output, "warn 3") || !strings.Contains(output, "error 4") {
			t.Errorf("Expected warn and error records: %s", output)
		}
	})
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevelFatal, "FATAL"},
		{LogLevelOff, "OFF"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel.String() = %v, want %v", got, tt.expected)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LogLevelDebug, false},
		{"INFO", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{" warning ", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"off", LogLevelOff, false},
		{"loud", LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

type recordingHost struct {
	levels []urid.URID
	lines  []string
}

func (h *recordingHost) Printf(level urid.URID, format string, args ...any) int {
	line := fmt.Sprintf(format, args...)
	h.levels = append(h.levels, level)
	h.lines = append(h.lines, line)
	return len(line)
}

func TestHostWriter(t *testing.T) {
	table := urid.NewTable()
	host := &recordingHost{}
	logger := NewHostLogger(host, table, "pedal")
	logger.SetLevel(LogLevelDebug)

	logger.Debug("d")
	logger.Info("i")
	logger.Warn("w")
	logger.Error("e")

	want := []string{urid.LogTrace, urid.LogNote, urid.LogWarning, urid.LogError}
	if len(host.levels) != len(want) {
		t.Fatalf("Expected %d host records, got %d", len(want), len(host.levels))
	}
	for i, uri := range want {
		if got := table.Unmap(host.levels[i]); got != uri {
			t.Errorf("Record %d: expected level %s, got %s", i, uri, got)
		}
	}
	if !strings.Contains(host.lines[1], `"component":"pedal"`) {
		t.Errorf("Expected component field in host record: %s", host.lines[1])
	}

	w := NewHostWriter(host, table)
	if _, err := w.Write([]byte("plain")); err != nil {
		t.Fatal(err)
	}
	if got := table.Unmap(host.levels[len(host.levels)-1]); got != urid.LogNote {
		t.Errorf("Plain writes should be notes, got %s", got)
	}

	var _ zerolog.LevelWriter = w
}

func TestNewHostLoggerWithoutHost(t *testing.T) {
	logger := NewHostLogger(nil, urid.NewTable(), "pedal")
	zl := logger.Zerolog()
	if zl.GetLevel() != zerolog.Disabled {
		t.Error("Missing host log should yield a disabled logger")
	}
}

func BenchmarkLogger(b *testing.B) {
	logger := New(bytes.NewBuffer(nil), "BENCH")

	b.Run("Enabled", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})

	b.Run("Zerolog", func(b *testing.B) {
		zl := logger.Zerolog()
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			zl.Info().Int("i", i).Msg("benchmark")
		}
	})

	b.Run("BelowLevel", func(b *testing.B) {
		logger.SetLevel(LogLevelError)
		for i := 0; i < b.N; i++ {
			logger.Info("Benchmark message %d", i)
		}
	})
}
