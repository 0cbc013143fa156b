package main

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"github.com/paingrille1/pedalboard/internal/config"
	"github.com/paingrille1/pedalboard/pkg/framework/debug"
	"github.com/paingrille1/pedalboard/pkg/host"
	"github.com/paingrille1/pedalboard/pkg/metrics"
	"github.com/paingrille1/pedalboard/pkg/midi"
	"github.com/paingrille1/pedalboard/pkg/pedalcontrol"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	debug.SetDefault(debug.FromZerolog(log.Logger))
	debug.SetLevel(cfg.LogLevel)
	zl := debug.Default().Zerolog()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	pedalcontrol.SetConfig(pedalcontrol.Config{
		Registerer: reg,
		Ordering:   cfg.Ordering,
		LogLevel:   cfg.LogLevel,
	})

	defer gomidi.CloseDriver()

	sink, closeOut, err := openOutput(cfg.MIDIOut, zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open MIDI output")
	}
	defer closeOut()

	runner, err := host.New(pedalcontrol.Descriptor{}, pedalcontrol.Ports(), host.Options{
		SampleRate:  cfg.SampleRate,
		BlockSize:   cfg.BlockSize,
		OutCapacity: cfg.OutCapacity,
		Logger:      &zl,
		Metrics:     metrics.NewHost(reg),
		Sink:        sink,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start plugin")
	}

	stopIn, err := openInput(cfg.MIDIIn, runner)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open MIDI input")
	}
	defer stopIn()

	srv := startMetrics(cfg.MetricsAddr, reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := runner.Run(ctx); err != nil {
			debug.Error("runner stopped: %v", err)
		}
	}()

	go readCommands(os.Stdin, runner, cancel)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down...")
	cancel()
	<-done

	if srv != nil {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
		defer stop()
		srv.Shutdown(shutdownCtx)
	}
	log.Info().Str("profile", runner.Profiler().Report()).Msg("pedalhost exited")
}

// openOutput returns a sink sending to the first output port whose name
// contains name. Without a name the output is only logged.
func openOutput(name string, zl zerolog.Logger) (host.Sink, func(), error) {
	if name == "" {
		log.Warn().Msg("PEDAL_MIDI_OUT not set, output events are logged only")
		return func(ev midi.TimedEvent) error {
			zl.Info().Int64("offset", ev.Offset).Str("msg", ev.Message().String()).Msg("output")
			return nil
		}, func() {}, nil
	}

	out, err := findPort(gomidi.GetOutPorts(), name)
	if err != nil {
		return nil, nil, err
	}
	send, err := gomidi.SendTo(out)
	if err != nil {
		return nil, nil, err
	}
	log.Info().Str("port", out.String()).Msg("MIDI output open")

	return func(ev midi.TimedEvent) error {
		zl.Debug().Str("msg", ev.Message().String()).Msg("send")
		return send(ev.Message())
	}, func() { out.Close() }, nil
}

// openInput feeds the first input port whose name contains name into the
// runner. Without a name there is no live input.
func openInput(name string, runner *host.Runner) (func(), error) {
	if name == "" {
		return func() {}, nil
	}

	in, err := findPort(gomidi.GetInPorts(), name)
	if err != nil {
		return nil, err
	}
	stop, err := gomidi.ListenTo(in, func(msg gomidi.Message, timestampms int32) {
		runner.Enqueue(msg)
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("port", in.String()).Msg("MIDI input open")
	return stop, nil
}

type namedPort interface {
	String() string
}

func findPort[P namedPort](ports []P, name string) (P, error) {
	var zero P
	needle := strings.ToLower(name)
	for _, p := range ports {
		if strings.Contains(strings.ToLower(p.String()), needle) {
			return p, nil
		}
	}
	return zero, errors.New("no MIDI port matching " + name)
}

func startMetrics(addr string, reg *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info().Str("addr", addr).Msg("metrics listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
	return srv
}

func readCommands(f *os.File, runner *host.Runner, quit context.CancelFunc) {
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		debug.Debug("command %q", line)
		cmd, err := parseCommand(line)
		if err != nil {
			debug.Warn("bad command: %v", err)
			continue
		}
		if err := cmd.apply(runner); err != nil {
			debug.Warn("command failed: %v", err)
		}
		if cmd.kind == cmdQuit {
			quit()
			return
		}
	}
}
