// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/GermanBionicSystems/sevensegment/sevseg"
	"github.com/GermanBionicSystems/sevensegment/sevseg/sevsegreg"
	"github.com/GermanBionicSystems/sevensegment/sevseg/sevsegsim"
	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
)

// daemon owns the registry and the buses opened for the attached displays.
type daemon struct {
	log      zerolog.Logger
	reg      *sevsegreg.Registry
	simulate bool
	// simOut receives the rendering of simulated displays, nil for stdout.
	simOut io.Writer

	mu    sync.Mutex
	buses map[sevsegreg.Slot]io.Closer
	sims  map[sevsegreg.Slot]*sevsegsim.Display
}

func newDaemon(log zerolog.Logger, simulate bool) *daemon {
	return &daemon{
		log:      log,
		reg:      sevsegreg.New(&sevsegreg.Opts{Logger: log.With().Str("component", "registry").Logger()}),
		simulate: simulate,
		buses:    map[sevsegreg.Slot]io.Closer{},
		sims:     map[sevsegreg.Slot]*sevsegsim.Display{},
	}
}

// attach opens the bus of a display and attaches it to the lowest free
// slot. The bus is closed again if the display cannot be attached.
func (d *daemon) attach(c DisplayConfig) (sevsegreg.Attachment, error) {
	var bus io.Closer
	var sim *sevsegsim.Display
	a, err := d.reg.Attach(func() (*sevseg.Dev, error) {
		var dev *sevseg.Dev
		var err error
		dev, bus, sim, err = d.open(c)
		return dev, err
	})
	if err != nil {
		if bus != nil {
			_ = bus.Close()
		}
		return a, err
	}
	d.mu.Lock()
	d.buses[a.Slot] = bus
	if sim != nil {
		d.sims[a.Slot] = sim
	}
	d.mu.Unlock()
	return a, nil
}

func (d *daemon) open(c DisplayConfig) (*sevseg.Dev, io.Closer, *sevsegsim.Display, error) {
	opts := &sevseg.Opts{Addr: c.Addr, Name: c.Name}
	var sim *sevsegsim.Display
	if d.simulate {
		addr := c.Addr
		if addr == 0 {
			addr = sevseg.DefaultI2CAddress
		}
		sim = sevsegsim.New(&sevsegsim.Opts{W: d.simOut, Addr: addr, Name: "sim-" + c.Bus})
	}
	var err error
	switch c.Bus {
	case "i2c":
		var b i2c.BusCloser
		if sim != nil {
			b = sim.I2C()
		} else if b, err = i2creg.Open(c.Port); err != nil {
			return nil, nil, nil, err
		}
		dev, err := sevseg.NewI2C(b, opts)
		return dev, b, sim, err
	case "spi":
		var p spi.PortCloser
		if sim != nil {
			p = sim.SPI()
		} else if p, err = spireg.Open(c.Port); err != nil {
			return nil, nil, nil, err
		}
		dev, err := sevseg.NewSPI(p, opts)
		return dev, p, sim, err
	default:
		return nil, nil, nil, fmt.Errorf("unknown bus %q", c.Bus)
	}
}

// detach releases the slot, clears the display and closes its bus.
func (d *daemon) detach(s sevsegreg.Slot) error {
	a, ok := d.reg.Attachment(s)
	if !ok {
		return sevsegreg.ErrNotAttached
	}
	dev, err := d.reg.Detach(a)
	if err != nil {
		return err
	}
	d.mu.Lock()
	bus := d.buses[s]
	delete(d.buses, s)
	delete(d.sims, s)
	d.mu.Unlock()

	var errs []error
	if err := dev.Halt(); err != nil {
		errs = append(errs, err)
	}
	if bus != nil {
		if err := bus.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (d *daemon) detachAll() {
	for _, s := range d.reg.Slots() {
		if err := d.detach(s); err != nil {
			d.log.Warn().Err(err).Stringer("slot", s).Msg("detach failed")
		}
	}
}

// sim returns the emulated display in s, if any.
func (d *daemon) sim(s sevsegreg.Slot) *sevsegsim.Display {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sims[s]
}
