// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sevseg

import (
	"errors"
	"fmt"
)

// ErrUnknownControlPoint is returned for a control point name that does not
// exist, or for an operation the control point does not support.
var ErrUnknownControlPoint = errors.New("sevseg: unknown control point")

// ValidationError is returned when an input is malformed or out of range.
// Nothing is sent to the display when it is returned.
type ValidationError struct {
	Field  string
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("sevseg: invalid %s %q: %s", e.Field, e.Input, e.Reason)
	}
	return fmt.Sprintf("sevseg: invalid %s: %s", e.Field, e.Reason)
}

// TransportError wraps the error reported by the bus.
type TransportError struct {
	Bus BusKind
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("sevseg: %s send failed: %v", e.Bus, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
