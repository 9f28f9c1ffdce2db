// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sevseg controls a SparkFun Serial 7-Segment Display over I²C or
// SPI.
//
// The display firmware takes single byte commands, optionally followed by
// one data byte. Any byte that is not a command is shown as a character at
// the cursor, which advances and wraps after the fourth digit.
//
// The driver keeps a cache of the last values it sent so they can be read
// back without talking to the display. The cache is only updated when the
// bus reports success, it is never verified against the hardware.
//
// Each value is also reachable through a named ControlPoint, parsed from and
// formatted to text, for use by file-like control surfaces.
//
// # Datasheet
//
// https://github.com/sparkfun/Serial7SegmentDisplay/wiki/Special-Commands
//
// # Product Page
//
// https://www.sparkfun.com/products/11441
package sevseg
