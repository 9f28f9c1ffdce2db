// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sevseg

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
)

const (
	// DefaultI2CAddress is the factory I²C address of the display.
	DefaultI2CAddress uint16 = 0x71

	// SPIClock is the clock the SPI bus is fixed to when a display is
	// attached. The firmware does not keep up with faster clocks.
	SPIClock = 250 * physic.KiloHertz
)

// BusKind identifies the transport variant of a display.
type BusKind int

const (
	BusI2C BusKind = iota
	BusSPI
)

func (b BusKind) String() string {
	switch b {
	case BusI2C:
		return "i2c"
	case BusSPI:
		return "spi"
	default:
		return fmt.Sprintf("BusKind(%d)", int(b))
	}
}

// Transport sends commands to one display.
//
// The only implementations are *I2CTransport and *SPITransport.
type Transport interface {
	// Send writes a one or two byte command in a single bus transaction. It
	// blocks for the duration of the transaction.
	Send(cmd []byte) error
	// Name returns the identity of the display. It does not change for the
	// lifetime of the transport.
	Name() string
	// Bus returns the transport variant.
	Bus() BusKind

	transport()
}

var errCommandLength = errors.New("sevseg: command must be 1 or 2 bytes")

// I2CTransport talks to a display on an I²C bus.
type I2CTransport struct {
	dev  i2c.Dev
	name string
}

// NewI2CTransport returns a transport for the display at addr. If name is
// empty the identity of the display is derived from the bus and address.
func NewI2CTransport(b i2c.Bus, addr uint16, name string) (*I2CTransport, error) {
	if b == nil {
		return nil, errors.New("sevseg: nil i2c bus")
	}
	if addr == 0 || addr > 0x7f {
		return nil, fmt.Errorf("sevseg: invalid i2c address %#x", addr)
	}
	t := &I2CTransport{dev: i2c.Dev{Bus: b, Addr: addr}, name: name}
	if t.name == "" {
		t.name = t.dev.String()
	}
	return t, nil
}

func (t *I2CTransport) Send(cmd []byte) error {
	if len(cmd) < 1 || len(cmd) > 2 {
		return errCommandLength
	}
	if err := t.dev.Tx(cmd, nil); err != nil {
		return &TransportError{Bus: BusI2C, Err: err}
	}
	return nil
}

func (t *I2CTransport) Name() string {
	return t.name
}

func (t *I2CTransport) Bus() BusKind {
	return BusI2C
}

func (t *I2CTransport) transport() {}

// SPITransport talks to a display on a SPI port.
type SPITransport struct {
	conn spi.Conn
	name string
}

// NewSPITransport connects to the port at SPIClock in mode 0 with 8 bit
// words. If name is empty the identity of the display is derived from the
// connection.
func NewSPITransport(p spi.Port, name string) (*SPITransport, error) {
	if p == nil {
		return nil, errors.New("sevseg: nil spi port")
	}
	c, err := p.Connect(SPIClock, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("sevseg: %w", err)
	}
	t := &SPITransport{conn: c, name: name}
	if t.name == "" {
		t.name = c.String()
	}
	return t, nil
}

func (t *SPITransport) Send(cmd []byte) error {
	if len(cmd) < 1 || len(cmd) > 2 {
		return errCommandLength
	}
	if err := t.conn.Tx(cmd, nil); err != nil {
		return &TransportError{Bus: BusSPI, Err: err}
	}
	return nil
}

func (t *SPITransport) Name() string {
	return t.name
}

func (t *SPITransport) Bus() BusKind {
	return BusSPI
}

func (t *SPITransport) transport() {}

var _ Transport = &I2CTransport{}
var _ Transport = &SPITransport{}
