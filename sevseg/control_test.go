// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sevseg

import (
	"errors"
	"io"
	"strconv"
	"testing"

	"periph.io/x/conn/v3/i2c/i2ctest"
)

func newRecorded(t *testing.T) (*Dev, *i2ctest.Record) {
	t.Helper()
	record := &i2ctest.Record{}
	dev, err := NewI2C(record, &Opts{Name: "sev_segment"})
	if err != nil {
		t.Fatal(err)
	}
	return dev, record
}

func readAll(t *testing.T, dev *Dev, cp ControlPoint) string {
	t.Helper()
	var off int64
	var out []byte
	buf := make([]byte, 2)
	for {
		n, err := dev.ReadControl(cp, buf, &off)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("%s: %v", cp, err)
		}
	}
	if off != int64(len(out)) {
		t.Errorf("%s: offset %d after reading %d bytes", cp, off, len(out))
	}
	return string(out)
}

func TestParseControlPoint(t *testing.T) {
	for _, cp := range ControlPoints() {
		if got := ParseControlPoint(cp.String()); got != cp {
			t.Errorf("expected %s got %s", cp, got)
		}
	}
	for _, name := range []string{"", "decimal", "decimalsx", "brightness\n", "Text", "custom_digit5", "unknown", "custom_digit"} {
		if cp := ParseControlPoint(name); cp != Unknown {
			t.Errorf("%q resolved to %s", name, cp)
		}
	}
	if ControlPoint(99).String() != "unknown" {
		t.Error("out of range control point should format as unknown")
	}
}

func TestBrightnessRoundTrip(t *testing.T) {
	dev, record := newRecorded(t)
	for b := 0; b <= MaxBrightness; b++ {
		payload := []byte(strconv.Itoa(b) + "\n")
		n, err := dev.WriteControl(Brightness, payload)
		if err != nil {
			t.Fatal(err)
		}
		if n != len(payload) {
			t.Errorf("expected %d bytes written got %d", len(payload), n)
		}
		if got := readAll(t, dev, Brightness); got != strconv.Itoa(b) {
			t.Errorf("expected %d got %q", b, got)
		}
	}
	if len(record.Ops) != MaxBrightness+1 {
		t.Errorf("expected %d operations got %d", MaxBrightness+1, len(record.Ops))
	}
}

func TestWriteControlInvalid(t *testing.T) {
	dev, record := newRecorded(t)
	if _, err := dev.WriteControl(Brightness, []byte("40")); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.WriteControl(Decimals, []byte("5")); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.WriteControl(CustomDigit3, []byte("9")); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.WriteControl(Text, []byte("AB")); err != nil {
		t.Fatal(err)
	}
	record.Ops = nil

	tests := []struct {
		cp      ControlPoint
		payload string
	}{
		{Brightness, "101"},
		{Brightness, "-1"},
		{Brightness, "bright"},
		{Brightness, ""},
		{Brightness, "4 0"},
		{Decimals, "64"},
		{Decimals, "0x3f"},
		{CustomDigit3, "200"},
		{CustomDigit3, "128"},
		{CustomDigit1, "-5"},
		{Text, "ABCDE"},
		{Text, "ABCDE\n"},
	}
	for _, test := range tests {
		_, err := dev.WriteControl(test.cp, []byte(test.payload))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s %q: expected ValidationError got %v", test.cp, test.payload, err)
		}
	}
	if len(record.Ops) != 0 {
		t.Errorf("expected no bus traffic, got %#v", record.Ops)
	}
	expected := map[ControlPoint]string{Brightness: "40", Decimals: "5", CustomDigit3: "9", CustomDigit1: "0", Text: "AB"}
	for cp, want := range expected {
		if got := readAll(t, dev, cp); got != want {
			t.Errorf("%s: expected %q got %q", cp, want, got)
		}
	}
}

func TestWriteControlValues(t *testing.T) {
	dev, record := newRecorded(t)
	tests := []struct {
		cp      ControlPoint
		payload string
		read    string
		w       []byte
	}{
		{CustomDigit1, "1\n", "1", []byte{0x7b, 1}},
		{CustomDigit2, "127", "127", []byte{0x7c, 127}},
		{CustomDigit3, "42", "42", []byte{0x7d, 42}},
		{CustomDigit4, "+7", "7", []byte{0x7e, 7}},
		{Decimals, "63", "63", []byte{0x77, 63}},
		{Brightness, "0", "0", []byte{0x7a, 0}},
	}
	for _, test := range tests {
		record.Ops = nil
		if _, err := dev.WriteControl(test.cp, []byte(test.payload)); err != nil {
			t.Fatalf("%s: %v", test.cp, err)
		}
		if len(record.Ops) != 1 || string(record.Ops[0].W) != string(test.w) {
			t.Errorf("%s: expected %#v got %#v", test.cp, test.w, record.Ops)
		}
		if got := readAll(t, dev, test.cp); got != test.read {
			t.Errorf("%s: expected %q got %q", test.cp, test.read, got)
		}
	}
}

func TestTextControl(t *testing.T) {
	dev, record := newRecorded(t)
	if _, err := dev.WriteControl(Text, []byte("AB")); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, dev, Text); got != "AB" {
		t.Errorf("expected AB got %q", got)
	}
	if _, err := dev.WriteControl(Text, []byte("W0RD\n")); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, dev, Text); got != "W0RD" {
		t.Errorf("expected W0RD got %q", got)
	}
	if len(record.Ops) != 6 {
		t.Errorf("expected 6 single byte operations got %d", len(record.Ops))
	}
}

func TestClearAndReset(t *testing.T) {
	dev, record := newRecorded(t)
	if _, err := dev.WriteControl(Clear, []byte("anything")); err != nil {
		t.Fatal(err)
	}
	if _, err := dev.WriteControl(FactoryReset, nil); err != nil {
		t.Fatal(err)
	}
	if len(record.Ops) != 2 || record.Ops[0].W[0] != 0x76 || record.Ops[1].W[0] != 0x81 {
		t.Errorf("unexpected operations %#v", record.Ops)
	}
	var off int64
	if _, err := dev.ReadControl(Clear, make([]byte, 8), &off); !errors.Is(err, ErrUnknownControlPoint) {
		t.Errorf("expected ErrUnknownControlPoint got %v", err)
	}
	if _, err := dev.ReadControl(FactoryReset, make([]byte, 8), &off); !errors.Is(err, ErrUnknownControlPoint) {
		t.Errorf("expected ErrUnknownControlPoint got %v", err)
	}
}

func TestUnknownControl(t *testing.T) {
	dev, record := newRecorded(t)
	if _, err := dev.WriteControl(Unknown, []byte("1")); !errors.Is(err, ErrUnknownControlPoint) {
		t.Errorf("expected ErrUnknownControlPoint got %v", err)
	}
	if _, err := dev.WriteControl(Name, []byte("other")); !errors.Is(err, ErrUnknownControlPoint) {
		t.Errorf("expected ErrUnknownControlPoint got %v", err)
	}
	var off int64
	if _, err := dev.ReadControl(Unknown, make([]byte, 8), &off); !errors.Is(err, ErrUnknownControlPoint) {
		t.Errorf("expected ErrUnknownControlPoint got %v", err)
	}
	if len(record.Ops) != 0 {
		t.Errorf("expected no bus traffic, got %#v", record.Ops)
	}
}

func TestReadName(t *testing.T) {
	dev, _ := newRecorded(t)
	if got := readAll(t, dev, Name); got != "sev_segment" {
		t.Errorf("expected sev_segment got %q", got)
	}
}

func TestReadOffset(t *testing.T) {
	dev, _ := newRecorded(t)
	if _, err := dev.WriteControl(Brightness, []byte("100")); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 16)
	for _, cp := range []ControlPoint{Brightness, Decimals, CustomDigit1, CustomDigit2, CustomDigit3, CustomDigit4} {
		v, err := dev.Value(cp)
		if err != nil {
			t.Fatal(err)
		}
		for _, start := range []int64{int64(len(v)), int64(len(v)) + 1, 1000} {
			off := start
			n, err := dev.ReadControl(cp, buf, &off)
			if n != 0 || err != io.EOF {
				t.Errorf("%s at %d: expected 0, EOF got %d, %v", cp, start, n, err)
			}
			if off != start {
				t.Errorf("%s: offset moved from %d to %d", cp, start, off)
			}
		}
	}

	off := int64(1)
	n, err := dev.ReadControl(Brightness, buf, &off)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf[:n]) != "00" || off != 3 {
		t.Errorf("expected \"00\" at offset 3 got %q at %d", buf[:n], off)
	}
	off = -1
	if _, err := dev.ReadControl(Brightness, buf, &off); err == nil {
		t.Error("expected an error for a negative offset")
	}
}
