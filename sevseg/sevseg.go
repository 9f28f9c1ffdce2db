// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sevseg

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/spi"
)

// State is the last known content of a display.
//
// Each field holds the last value successfully sent to the display. It is
// never read back from the hardware.
type State struct {
	Text       string
	Digits     [Digits]int
	Decimals   int
	Brightness int
}

// Opts holds the configuration of a display.
type Opts struct {
	// Addr is the I²C address. It defaults to DefaultI2CAddress and is
	// ignored for SPI.
	Addr uint16
	// Name overrides the identity reported by the transport.
	Name string
}

// Dev is a handle to a SparkFun serial 7-segment display.
//
// All operations on a Dev are serialized, so concurrent writes leave the
// cached state equal to the last write that completed.
type Dev struct {
	t Transport

	mu    sync.Mutex
	state State
}

// New returns a handle to the display reachable through t. Nothing is sent
// to the display.
func New(t Transport) (*Dev, error) {
	if t == nil {
		return nil, errors.New("sevseg: nil transport")
	}
	return &Dev{t: t}, nil
}

// NewI2C returns a handle to a display on an I²C bus.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	addr := DefaultI2CAddress
	name := ""
	if opts != nil {
		if opts.Addr != 0 {
			addr = opts.Addr
		}
		name = opts.Name
	}
	t, err := NewI2CTransport(b, addr, name)
	if err != nil {
		return nil, err
	}
	return New(t)
}

// NewSPI returns a handle to a display on a SPI port. The port is connected
// at SPIClock.
func NewSPI(p spi.Port, opts *Opts) (*Dev, error) {
	name := ""
	if opts != nil {
		name = opts.Name
	}
	t, err := NewSPITransport(p, name)
	if err != nil {
		return nil, err
	}
	return New(t)
}

// Name returns the identity of the display as reported by its transport.
func (d *Dev) Name() string {
	return d.t.Name()
}

// Bus returns the kind of bus the display is attached to.
func (d *Dev) Bus() BusKind {
	return d.t.Bus()
}

func (d *Dev) String() string {
	return fmt.Sprintf("SparkFun 7-Segment Display - %s %s", d.t.Bus(), d.t.Name())
}

// State returns a copy of the cached state.
func (d *Dev) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// SetText writes up to 4 characters, one bus transaction per character. A
// single trailing newline or NUL is ignored.
//
// If a transaction fails part way the display may show some of the new
// characters while the cached text keeps its previous value.
func (d *Dev) SetText(text string) error {
	cmds, text, err := TextCommands(text)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range cmds {
		if err := d.t.Send(c); err != nil {
			return err
		}
	}
	d.state.Text = text
	return nil
}

// Clear blanks the display. The cached state is left untouched.
func (d *Dev) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.t.Send(ClearCommand())
}

// FactoryReset restores the firmware defaults. The cached state is left
// untouched.
func (d *Dev) FactoryReset() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.t.Send(FactoryResetCommand())
}

// SetDigit lights the raw segments of digit 1 to 4.
func (d *Dev) SetDigit(digit, segments int) error {
	cmd, err := DigitCommand(digit, segments)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.t.Send(cmd); err != nil {
		return err
	}
	d.state.Digits[digit-1] = segments
	return nil
}

// SetDecimals sets the decimal point mask.
func (d *Dev) SetDecimals(mask int) error {
	cmd, err := DecimalsCommand(mask)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.t.Send(cmd); err != nil {
		return err
	}
	d.state.Decimals = mask
	return nil
}

// SetBrightness sets the brightness in percent.
func (d *Dev) SetBrightness(percent int) error {
	cmd, err := BrightnessCommand(percent)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.t.Send(cmd); err != nil {
		return err
	}
	d.state.Brightness = percent
	return nil
}

// Halt implements conn.Resource.
//
// It clears the display.
func (d *Dev) Halt() error {
	return d.Clear()
}

var _ conn.Resource = &Dev{}
var _ fmt.Stringer = &Dev{}
