// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/GermanBionicSystems/sevensegment/sevseg"
	"github.com/GermanBionicSystems/sevensegment/sevseg/sevsegreg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDaemon() *daemon {
	d := newDaemon(zerolog.Nop(), true)
	d.simOut = io.Discard
	return d
}

func TestDaemonAttachDetach(t *testing.T) {
	d := newTestDaemon()
	for i, c := range []DisplayConfig{{Bus: "i2c", Name: "a"}, {Bus: "spi"}, {Bus: "i2c", Addr: 0x30}} {
		a, err := d.attach(c)
		require.NoError(t, err)
		assert.Equal(t, sevsegreg.Slot(i), a.Slot)
	}
	_, err := d.attach(DisplayConfig{Bus: "i2c"})
	assert.ErrorIs(t, err, sevsegreg.ErrCapacity)

	dev, ok := d.reg.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, sevseg.BusSPI, dev.Bus())
	assert.Equal(t, sevseg.SPIClock, d.sim(1).Clock())

	_, err = d.reg.Write(0, "text", []byte("HI"))
	require.NoError(t, err)
	assert.Equal(t, "HI  ", d.sim(0).Snapshot().Text())

	require.NoError(t, d.detach(0))
	assert.Nil(t, d.sim(0))
	assert.ErrorIs(t, d.detach(0), sevsegreg.ErrNotAttached)

	a, err := d.attach(DisplayConfig{Bus: "i2c"})
	require.NoError(t, err)
	assert.Equal(t, sevsegreg.Slot(0), a.Slot)

	d.detachAll()
	assert.Empty(t, d.reg.Slots())
}

func TestDaemonAttachFailure(t *testing.T) {
	d := newTestDaemon()
	_, err := d.attach(DisplayConfig{Bus: "uart"})
	var aerr *sevsegreg.AllocationError
	require.ErrorAs(t, err, &aerr)
	assert.Empty(t, d.reg.Slots())

	// The emulated display answers on the configured address.
	_, err = d.attach(DisplayConfig{Bus: "i2c", Addr: 0x72})
	require.NoError(t, err)
	_, err = d.reg.Write(0, "brightness", []byte("10"))
	require.NoError(t, err)
}

func TestShell(t *testing.T) {
	d := newTestDaemon()
	run := func(line string) string {
		var buf bytes.Buffer
		assert.True(t, d.exec(&buf, line), line)
		return buf.String()
	}

	assert.Contains(t, run("help"), "Commands:")
	assert.Equal(t, "", run("   "))
	assert.Equal(t, "attached slot 0\n", run("attach i2c"))
	assert.Equal(t, "attached slot 1\n", run("attach spi"))
	assert.Contains(t, run("attach uart"), "bus must be i2c or spi")
	assert.Contains(t, run("ls"), "1  SparkFun 7-Segment Display - spi")
	assert.Contains(t, run("ls 0"), "rw  brightness")
	assert.Contains(t, run("ls 0"), "r   name")
	assert.Contains(t, run("ls 0"), "w   clear")
	assert.Contains(t, run("ls 2"), "no display attached")

	assert.Equal(t, "ok\n", run("write 0 brightness 42"))
	assert.Equal(t, "42\n", run("read 0 brightness"))
	assert.Contains(t, run("write 0 brightness 420"), "invalid brightness")
	assert.Equal(t, "42\n", run("read 0 brightness"))
	assert.Equal(t, "ok\n", run("write 1 text A B"))
	assert.Equal(t, "A B\n", run("read 1 text"))
	assert.Contains(t, run("read 1 clear"), "unknown control point")
	assert.Contains(t, run("read 1"), "usage")
	assert.Contains(t, run("read 9 text"), "invalid slot")
	assert.Contains(t, run("read"), "missing slot")
	assert.Contains(t, run("sim 1"), `text="A B `)

	assert.Equal(t, "detached slot 1\n", run("detach 1"))
	assert.Contains(t, run("detach 1"), "no display attached")
	assert.Contains(t, run("bogus"), "unknown command")
	assert.False(t, d.exec(io.Discard, "exit"))
}
