// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/GermanBionicSystems/sevensegment/sevseg"
	"github.com/GermanBionicSystems/sevensegment/sevseg/sevsegreg"
	"github.com/chzyer/readline"
)

const shellHelp = `Commands:
  ls                        list attached displays
  ls <slot>                 list the control files of a display
  read <slot> <file>        print a control file
  write <slot> <file> <v>   write v to a control file
  attach <i2c|spi> [port]   attach another display
  detach <slot>             detach a display
  sim <slot>                show the emulated display state (-simulate)
  help                      show this help
  exit                      stop the daemon`

// shell is an interactive front end to the daemon.
type shell struct {
	d  *daemon
	rl *readline.Instance
}

func newShell() (*shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sevseg> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &shell{rl: rl}, nil
}

// Stderr returns a writer that does not corrupt the prompt.
func (s *shell) Stderr() io.Writer {
	return s.rl.Stderr()
}

// run reads commands until exit, EOF or ctx is done, then calls cancel.
func (s *shell) run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()
	defer cancel()
	fmt.Fprintln(s.rl.Stdout(), shellHelp)
	for ctx.Err() == nil {
		line, err := s.rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err != nil {
			return
		}
		if !s.d.exec(s.rl.Stdout(), line) {
			return
		}
	}
}

// exec runs one shell command and reports whether the shell should go on.
func (d *daemon) exec(w io.Writer, line string) bool {
	args := strings.Fields(line)
	if len(args) == 0 {
		return true
	}
	slot := func(i int) (sevsegreg.Slot, bool) {
		if len(args) <= i {
			fmt.Fprintln(w, "missing slot")
			return 0, false
		}
		s, err := sevsegreg.ParseSlot(args[i])
		if err != nil {
			fmt.Fprintln(w, err)
			return 0, false
		}
		return s, true
	}

	switch args[0] {
	case "help":
		fmt.Fprintln(w, shellHelp)
	case "exit", "quit":
		return false
	case "ls":
		if len(args) == 1 {
			for _, s := range d.reg.Slots() {
				dev, _ := d.reg.Lookup(s)
				fmt.Fprintf(w, "%s  %s\n", s, dev)
			}
			break
		}
		s, ok := slot(1)
		if !ok {
			break
		}
		if _, ok := d.reg.Lookup(s); !ok {
			fmt.Fprintln(w, sevsegreg.ErrNotAttached)
			break
		}
		for _, cp := range sevseg.ControlPoints() {
			mode := ""
			if cp.Readable() {
				mode += "r"
			}
			if cp.Writable() {
				mode += "w"
			}
			fmt.Fprintf(w, "%-3s %s\n", mode, cp)
		}
	case "read":
		s, ok := slot(1)
		if !ok {
			break
		}
		if len(args) != 3 {
			fmt.Fprintln(w, "usage: read <slot> <file>")
			break
		}
		dev, ok := d.reg.Lookup(s)
		if !ok {
			fmt.Fprintln(w, sevsegreg.ErrNotAttached)
			break
		}
		v, err := dev.Value(sevseg.ParseControlPoint(args[2]))
		if err != nil {
			fmt.Fprintln(w, err)
			break
		}
		fmt.Fprintln(w, v)
	case "write":
		s, ok := slot(1)
		if !ok {
			break
		}
		if len(args) < 3 {
			fmt.Fprintln(w, "usage: write <slot> <file> <value>")
			break
		}
		payload := strings.Join(args[3:], " ")
		if _, err := d.reg.Write(s, args[2], []byte(payload)); err != nil {
			fmt.Fprintln(w, err)
			break
		}
		fmt.Fprintln(w, "ok")
	case "attach":
		if len(args) < 2 || len(args) > 3 {
			fmt.Fprintln(w, "usage: attach <i2c|spi> [port]")
			break
		}
		c := DisplayConfig{Bus: args[1]}
		if len(args) == 3 {
			c.Port = args[2]
		}
		if err := (Config{LogLevel: "info", Displays: []DisplayConfig{c}}).Validate(); err != nil {
			fmt.Fprintln(w, err)
			break
		}
		a, err := d.attach(c)
		if err != nil {
			fmt.Fprintln(w, err)
			break
		}
		fmt.Fprintf(w, "attached slot %s\n", a.Slot)
	case "detach":
		s, ok := slot(1)
		if !ok {
			break
		}
		if err := d.detach(s); err != nil {
			fmt.Fprintln(w, err)
			break
		}
		fmt.Fprintf(w, "detached slot %s\n", s)
	case "sim":
		s, ok := slot(1)
		if !ok {
			break
		}
		sim := d.sim(s)
		if sim == nil {
			fmt.Fprintln(w, "no emulated display in slot", s)
			break
		}
		snap := sim.Snapshot()
		fmt.Fprintf(w, "text=%q decimals=%d brightness=%d cursor=%d commands=%d\n", snap.Text(), snap.Decimals, snap.Brightness, snap.Cursor, snap.Commands)
	default:
		fmt.Fprintf(w, "unknown command %q, type 'help'\n", args[0])
	}
	return true
}
