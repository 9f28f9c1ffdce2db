// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sevsegsim emulates the firmware of a SparkFun serial 7-segment
// display and shows its content on the terminal using ANSI color codes.
//
// The emulated display can be reached as an I²C bus or as a SPI port, so it
// can stand in for the real hardware while attaching drivers.
package sevsegsim

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/maruel/ansi256"
	"github.com/mattn/go-colorable"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	digits = 4

	// DefaultAddr is the I²C address the emulated display answers to.
	DefaultAddr uint16 = 0x71
	// MaxClock is the fastest SPI clock the emulated firmware accepts.
	MaxClock = 250 * physic.KiloHertz
)

// Snapshot is the content of the emulated display.
type Snapshot struct {
	// Chars holds the character shown on each digit, a space when blank.
	Chars [digits]byte
	// Segments holds the raw segments of digits set with a digit command.
	// Raw reports which digits show raw segments instead of a character.
	Segments   [digits]byte
	Raw        [digits]bool
	Decimals   byte
	Brightness byte
	Cursor     int
	// Commands counts the bus transactions received.
	Commands int
}

// Text returns the characters shown, with blank digits as spaces.
func (s Snapshot) Text() string {
	return string(s.Chars[:])
}

// Opts represents the options of the emulated display.
type Opts struct {
	// W receives the rendered display. It defaults to stdout.
	W io.Writer
	// Palette defaults to ansi256.Default.
	Palette *ansi256.Palette
	// Addr is the I²C address, DefaultAddr when 0.
	Addr uint16
	// Name is returned by String.
	Name string
}

// Display is an emulated 7-segment display.
type Display struct {
	w       io.Writer
	palette ansi256.Palette
	addr    uint16
	name    string

	mu        sync.Mutex
	state     Snapshot
	pending   byte
	failAfter int
	failErr   error
	clock     physic.Frequency
	buf       bytes.Buffer
}

// New returns an emulated display in its power on state.
func New(opts *Opts) *Display {
	if opts == nil {
		opts = &Opts{}
	}
	p := opts.Palette
	if p == nil {
		p = ansi256.Default
	}
	d := &Display{
		w:       opts.W,
		palette: *p,
		addr:    opts.Addr,
		name:    opts.Name,
	}
	if d.w == nil {
		d.w = colorable.NewColorableStdout()
	}
	if d.addr == 0 {
		d.addr = DefaultAddr
	}
	if d.name == "" {
		d.name = "sevsegsim"
	}
	d.reset()
	return d
}

func (d *Display) String() string {
	return d.name
}

// Snapshot returns the current content of the display.
func (d *Display) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Clock returns the clock the SPI port was last connected at.
func (d *Display) Clock() physic.Frequency {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clock
}

// FailAfter makes every bus transaction after the next n ones return err.
// A nil err stops the failures.
func (d *Display) FailAfter(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failAfter = n
	d.failErr = err
}

// Halt implements conn.Resource.
//
// It terminates the rendered line so the terminal is not corrupted.
func (d *Display) Halt() error {
	_, err := d.w.Write([]byte("\n\033[0m"))
	return err
}

// I2C returns the display as an I²C bus.
func (d *Display) I2C() i2c.BusCloser {
	return &i2cBus{d: d}
}

// SPI returns the display as a SPI port.
func (d *Display) SPI() spi.PortCloser {
	return &spiPort{d: d}
}

func (d *Display) reset() {
	d.state = Snapshot{Brightness: 100, Commands: d.state.Commands}
	d.clearLocked()
	d.pending = 0
}

func (d *Display) clearLocked() {
	for i := range d.state.Chars {
		d.state.Chars[i] = ' '
		d.state.Segments[i] = 0
		d.state.Raw[i] = false
	}
	d.state.Cursor = 0
}

// tx processes one bus transaction.
func (d *Display) tx(w []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failErr != nil {
		if d.failAfter <= 0 {
			return d.failErr
		}
		d.failAfter--
	}
	d.state.Commands++
	for _, b := range w {
		d.feed(b)
	}
	_, err := d.renderLocked()
	return err
}

// feed interprets one byte of the command stream.
func (d *Display) feed(b byte) {
	if op := d.pending; op != 0 {
		d.pending = 0
		switch {
		case op == 0x77:
			d.state.Decimals = b & 0x3f
		case op == 0x79:
			if int(b) < digits {
				d.state.Cursor = int(b)
			}
		case op == 0x7a:
			if b > 100 {
				b = 100
			}
			d.state.Brightness = b
		case op >= 0x7b && op <= 0x7e:
			i := op - 0x7b
			d.state.Segments[i] = b & 0x7f
			d.state.Raw[i] = true
		}
		return
	}
	switch {
	case b == 0x76:
		d.clearLocked()
	case b == 0x77, b == 0x79, b == 0x7a, b >= 0x7b && b <= 0x7e:
		d.pending = b
	case b == 0x81:
		d.reset()
	default:
		d.state.Chars[d.state.Cursor] = b
		d.state.Raw[d.state.Cursor] = false
		d.state.Cursor = (d.state.Cursor + 1) % digits
	}
}

func (d *Display) renderLocked() (int, error) {
	d.buf.Reset()
	_, _ = d.buf.WriteString("\r\033[0m")
	level := uint8(uint(d.state.Brightness) * 255 / 100)
	for i := 0; i < digits; i++ {
		c := color.NRGBA{A: 255}
		if d.state.Raw[i] && d.state.Segments[i] != 0 || !d.state.Raw[i] && d.state.Chars[i] != ' ' {
			c.R = level
		}
		_, _ = io.WriteString(&d.buf, d.palette.Block(c))
	}
	_, _ = d.buf.WriteString("\033[0m ")
	for i := 0; i < digits; i++ {
		ch := d.state.Chars[i]
		if d.state.Raw[i] {
			ch = '#'
		}
		_ = d.buf.WriteByte(ch)
		if d.state.Decimals&(1<<uint(i)) != 0 {
			_ = d.buf.WriteByte('.')
		}
	}
	if d.state.Decimals&0x10 != 0 {
		_, _ = d.buf.WriteString(" :")
	}
	if d.state.Decimals&0x20 != 0 {
		_, _ = d.buf.WriteString(" '")
	}
	_, _ = d.buf.WriteString(" ")
	n, err := d.buf.WriteTo(d.w)
	return int(n), err
}

var errReadUnsupported = errors.New("sevsegsim: the display cannot be read")

type i2cBus struct {
	d *Display
}

func (b *i2cBus) String() string {
	return b.d.name
}

func (b *i2cBus) Tx(addr uint16, w, r []byte) error {
	if addr != b.d.addr {
		return fmt.Errorf("sevsegsim: no device at address %#x", addr)
	}
	if len(r) != 0 {
		return errReadUnsupported
	}
	return b.d.tx(w)
}

func (b *i2cBus) SetSpeed(f physic.Frequency) error {
	return nil
}

func (b *i2cBus) Close() error {
	return nil
}

type spiPort struct {
	d *Display
}

func (p *spiPort) String() string {
	return p.d.name
}

func (p *spiPort) Connect(f physic.Frequency, mode spi.Mode, bits int) (spi.Conn, error) {
	if f > MaxClock {
		return nil, fmt.Errorf("sevsegsim: clock %s is faster than %s", f, MaxClock)
	}
	if bits != 8 {
		return nil, fmt.Errorf("sevsegsim: unsupported word size %d", bits)
	}
	p.d.mu.Lock()
	p.d.clock = f
	p.d.mu.Unlock()
	return &spiConn{d: p.d}, nil
}

func (p *spiPort) LimitSpeed(f physic.Frequency) error {
	return nil
}

func (p *spiPort) Close() error {
	return nil
}

type spiConn struct {
	d *Display
}

func (c *spiConn) String() string {
	return c.d.name
}

func (c *spiConn) Tx(w, r []byte) error {
	if len(r) != 0 {
		return errReadUnsupported
	}
	return c.d.tx(w)
}

func (c *spiConn) Duplex() conn.Duplex {
	return conn.Half
}

func (c *spiConn) TxPackets(p []spi.Packet) error {
	for _, pkt := range p {
		if err := c.Tx(pkt.W, pkt.R); err != nil {
			return err
		}
	}
	return nil
}

var _ conn.Resource = &Display{}
var _ i2c.BusCloser = &i2cBus{}
var _ spi.PortCloser = &spiPort{}
var _ spi.Conn = &spiConn{}
