// Command pedalsend sends pedal settings and LED commands to a MIDI output,
// the same way the pedal firmware expects them from a controller.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	var opts options
	flag.Var(&opts.Type, "t", "pedal type (0-127)")
	flag.Var(&opts.Channel, "c", "output channel (1-16, sent zero-based)")
	flag.Var(&opts.Address, "a", "control address (0-127)")
	flag.Var(&opts.Curve, "u", "response curve (0-127)")
	flag.Var(&opts.Blink, "b", "blink LED `n` (repeatable)")
	flag.Var(&opts.Pulse, "p", "pulse LED `n` (repeatable)")
	flag.Var(&opts.On, "1", "switch LED `n` on (repeatable)")
	flag.Var(&opts.Off, "0", "switch LED `n` off (repeatable)")
	portName := flag.String("port", "", "output port name (substring, default first port)")
	list := flag.Bool("list", false, "list MIDI output ports and exit")
	flag.Parse()

	defer midi.CloseDriver()

	if *list {
		listPorts()
		return
	}

	msgs, err := opts.messages()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(msgs) == 0 {
		flag.Usage()
		return
	}

	outPort := findOutPort(*portName)
	if outPort == nil {
		fmt.Fprintln(os.Stderr, "No MIDI output port found")
		os.Exit(1)
	}
	fmt.Printf("Using output: %s\n", outPort.String())

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening port: %v\n", err)
		os.Exit(1)
	}

	for _, msg := range msgs {
		if err := send(msg); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  sent %s\n", msg)
	}
}

func findOutPort(name string) drivers.Out {
	outs := midi.GetOutPorts()
	if name == "" {
		if len(outs) == 0 {
			return nil
		}
		return outs[0]
	}

	needle := strings.ToLower(name)
	for _, p := range outs {
		if strings.Contains(strings.ToLower(p.String()), needle) {
			return p
		}
	}
	return nil
}

func listPorts() {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- midi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		for i, p := range outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! MIDI driver did not answer.")
	}
}
