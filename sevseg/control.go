// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sevseg

import (
	"errors"
	"io"
	"strconv"
	"strings"
)

// ControlPoint is one named facet of a display that can be read or written
// independently.
type ControlPoint int

const (
	Unknown ControlPoint = iota
	Text
	Clear
	CustomDigit1
	CustomDigit2
	CustomDigit3
	CustomDigit4
	Decimals
	Brightness
	Name
	FactoryReset
)

var controlNames = [...]string{
	Unknown:      "unknown",
	Text:         "text",
	Clear:        "clear",
	CustomDigit1: "custom_digit1",
	CustomDigit2: "custom_digit2",
	CustomDigit3: "custom_digit3",
	CustomDigit4: "custom_digit4",
	Decimals:     "decimals",
	Brightness:   "brightness",
	Name:         "name",
	FactoryReset: "factory_reset",
}

// ParseControlPoint returns the control point named exactly s, or Unknown.
func ParseControlPoint(s string) ControlPoint {
	for cp := Text; cp <= FactoryReset; cp++ {
		if controlNames[cp] == s {
			return cp
		}
	}
	return Unknown
}

// ControlPoints returns every control point a display exposes.
func ControlPoints() []ControlPoint {
	return []ControlPoint{Text, Clear, Decimals, CustomDigit1, CustomDigit2, CustomDigit3, CustomDigit4, Brightness, Name, FactoryReset}
}

func (cp ControlPoint) String() string {
	if cp < 0 || int(cp) >= len(controlNames) {
		return controlNames[Unknown]
	}
	return controlNames[cp]
}

// Readable reports whether the control point has a value to read.
func (cp ControlPoint) Readable() bool {
	switch cp {
	case Text, CustomDigit1, CustomDigit2, CustomDigit3, CustomDigit4, Decimals, Brightness, Name:
		return true
	}
	return false
}

// Writable reports whether the control point accepts writes.
func (cp ControlPoint) Writable() bool {
	switch cp {
	case Text, Clear, CustomDigit1, CustomDigit2, CustomDigit3, CustomDigit4, Decimals, Brightness, FactoryReset:
		return true
	}
	return false
}

func (cp ControlPoint) digit() int {
	return int(cp-CustomDigit1) + 1
}

// WriteControl parses payload for the control point and sends the resulting
// command. It returns len(payload) on success.
//
// Numeric control points take a base 10 integer, optionally followed by a
// newline. Clear and FactoryReset ignore the payload.
func (d *Dev) WriteControl(cp ControlPoint, payload []byte) (int, error) {
	var err error
	switch cp {
	case Text:
		err = d.SetText(string(payload))
	case Clear:
		err = d.Clear()
	case FactoryReset:
		err = d.FactoryReset()
	case CustomDigit1, CustomDigit2, CustomDigit3, CustomDigit4:
		var v int
		if v, err = parseInt(cp, payload); err == nil {
			err = d.SetDigit(cp.digit(), v)
		}
	case Decimals:
		var v int
		if v, err = parseInt(cp, payload); err == nil {
			err = d.SetDecimals(v)
		}
	case Brightness:
		var v int
		if v, err = parseInt(cp, payload); err == nil {
			err = d.SetBrightness(v)
		}
	default:
		return 0, ErrUnknownControlPoint
	}
	if err != nil {
		return 0, err
	}
	return len(payload), nil
}

// Value returns the formatted value of a readable control point.
func (d *Dev) Value(cp ControlPoint) (string, error) {
	if cp == Name {
		return d.Name(), nil
	}
	s := d.State()
	switch cp {
	case Text:
		return s.Text, nil
	case CustomDigit1, CustomDigit2, CustomDigit3, CustomDigit4:
		return strconv.Itoa(s.Digits[cp.digit()-1]), nil
	case Decimals:
		return strconv.Itoa(s.Decimals), nil
	case Brightness:
		return strconv.Itoa(s.Brightness), nil
	}
	return "", ErrUnknownControlPoint
}

// ReadControl copies the formatted value of cp starting at *off into p and
// advances *off by the number of bytes copied. It returns 0, io.EOF once *off
// reaches the end of the value.
func (d *Dev) ReadControl(cp ControlPoint, p []byte, off *int64) (int, error) {
	if off == nil || *off < 0 {
		return 0, errors.New("sevseg: invalid read offset")
	}
	v, err := d.Value(cp)
	if err != nil {
		return 0, err
	}
	if *off >= int64(len(v)) {
		return 0, io.EOF
	}
	n := copy(p, v[*off:])
	*off += int64(n)
	return n, nil
}

func parseInt(cp ControlPoint, payload []byte) (int, error) {
	s := strings.TrimSuffix(string(payload), "\n")
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Field: cp.String(), Input: s, Reason: "not a base 10 integer"}
	}
	return v, nil
}
