// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package sevseg

// Command bytes understood by the display firmware. Any byte that is not a
// command is displayed as a character at the current cursor position.
const (
	cmdClearScreen  byte = 0x76
	cmdDecimalCtrl  byte = 0x77
	cmdCursor       byte = 0x79
	cmdBrightness   byte = 0x7a
	cmdDigit1       byte = 0x7b
	cmdDigit2       byte = 0x7c
	cmdDigit3       byte = 0x7d
	cmdDigit4       byte = 0x7e
	cmdFactoryReset byte = 0x81
)

// Limits of the values accepted by the firmware.
const (
	// Digits is the number of digits on the display.
	Digits = 4
	// MaxTextLen is the maximum number of characters SetText accepts, not
	// counting an optional trailing terminator.
	MaxTextLen = Digits

	MaxBrightness = 100
	MaxDecimals   = 63
	MaxSegments   = 127
)

// ClearCommand returns the command blanking the display and moving the
// cursor to the first digit.
func ClearCommand() []byte {
	return []byte{cmdClearScreen}
}

// FactoryResetCommand returns the command restoring the firmware defaults.
func FactoryResetCommand() []byte {
	return []byte{cmdFactoryReset}
}

// DecimalsCommand returns the command setting the decimal point, colon and
// apostrophe mask. Bit 0 is the decimal point after digit 1, bit 5 the
// apostrophe.
func DecimalsCommand(mask int) ([]byte, error) {
	if mask < 0 || mask > MaxDecimals {
		return nil, &ValidationError{Field: "decimals", Reason: "must be between 0 and 63"}
	}
	return []byte{cmdDecimalCtrl, byte(mask)}, nil
}

// BrightnessCommand returns the command setting the brightness in percent.
func BrightnessCommand(percent int) ([]byte, error) {
	if percent < 0 || percent > MaxBrightness {
		return nil, &ValidationError{Field: "brightness", Reason: "must be between 0 and 100"}
	}
	return []byte{cmdBrightness, byte(percent)}, nil
}

// DigitCommand returns the command lighting the raw segments of digit 1 to 4.
// Bit 0 is segment A, bit 6 segment G.
func DigitCommand(digit, segments int) ([]byte, error) {
	if digit < 1 || digit > Digits {
		return nil, &ValidationError{Field: "digit", Reason: "must be between 1 and 4"}
	}
	if segments < 0 || segments > MaxSegments {
		return nil, &ValidationError{Field: digitField(digit), Reason: "must be between 0 and 127"}
	}
	return []byte{cmdDigit1 + byte(digit-1), byte(segments)}, nil
}

// CursorCommand returns the command moving the cursor to position 0 to 3.
func CursorCommand(pos int) ([]byte, error) {
	if pos < 0 || pos >= Digits {
		return nil, &ValidationError{Field: "cursor", Reason: "must be between 0 and 3"}
	}
	return []byte{cmdCursor, byte(pos)}, nil
}

// TextCommands returns one single byte command per character of text, in
// order. A single trailing newline or NUL terminator is dropped. The text
// without its terminator is returned alongside the commands.
func TextCommands(text string) ([][]byte, string, error) {
	text = trimTerminator(text)
	if len(text) > MaxTextLen {
		return nil, "", &ValidationError{Field: "text", Input: text, Reason: "at most 4 characters can be displayed"}
	}
	cmds := make([][]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < 0x20 || c > 0x7e {
			return nil, "", &ValidationError{Field: "text", Input: text, Reason: "only printable ASCII characters can be displayed"}
		}
		cmds = append(cmds, []byte{c})
	}
	return cmds, text, nil
}

func trimTerminator(s string) string {
	if n := len(s); n > 0 && (s[n-1] == '\n' || s[n-1] == 0) {
		return s[:n-1]
	}
	return s
}

func digitField(digit int) string {
	return "custom_digit" + string(rune('0'+digit))
}
