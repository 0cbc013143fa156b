package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paingrille1/pedalboard/pkg/bridge"
	"github.com/paingrille1/pedalboard/pkg/framework/debug"
	"github.com/paingrille1/pedalboard/pkg/pedalcontrol"
)

type commandKind int

const (
	cmdNone commandKind = iota
	cmdSet
	cmdActivate
	cmdStats
	cmdQuit
)

type command struct {
	kind    commandKind
	control bridge.Control
	value   float32
}

// controller is the part of host.Runner the commands drive.
type controller interface {
	SetControl(index uint32, v float32) error
	Reactivate() error
	Blocks() uint64
}

// parseCommand parses one stdin line: "<control> <value>", "activate",
// "stats" or "quit". Blank lines are no-ops.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{kind: cmdNone}, nil
	}

	switch strings.ToLower(fields[0]) {
	case "activate":
		return command{kind: cmdActivate}, nil
	case "stats":
		return command{kind: cmdStats}, nil
	case "quit", "exit":
		return command{kind: cmdQuit}, nil
	}

	c, err := bridge.ParseControl(fields[0])
	if err != nil {
		return command{}, err
	}
	if len(fields) != 2 {
		return command{}, fmt.Errorf("usage: %s <value>", c)
	}
	v, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return command{}, fmt.Errorf("%s: %w", c, err)
	}
	return command{kind: cmdSet, control: c, value: float32(v)}, nil
}

func (c command) apply(r controller) error {
	switch c.kind {
	case cmdSet:
		if err := r.SetControl(pedalcontrol.PortType+uint32(c.control), c.value); err != nil {
			return err
		}
		debug.Info("%s set to %g", c.control, c.value)
	case cmdActivate:
		return r.Reactivate()
	case cmdStats:
		debug.Info("%d blocks run", r.Blocks())
	}
	return nil
}
