// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/GermanBionicSystems/sevensegment/sevseg/sevsegreg"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DisplayConfig describes one attached display.
type DisplayConfig struct {
	// Bus is "i2c" or "spi".
	Bus string `yaml:"bus"`
	// Port is the name of the I²C bus or SPI port, empty for the first one.
	Port string `yaml:"port"`
	// Addr is the I²C address, 0x71 when 0.
	Addr uint16 `yaml:"addr"`
	// Name overrides the identity of the display.
	Name string `yaml:"name"`
}

// Config holds the daemon configuration.
type Config struct {
	Listen   string          `yaml:"listen"`
	LogLevel string          `yaml:"log_level"`
	Simulate bool            `yaml:"simulate"`
	MDNS     bool            `yaml:"mdns"`
	Displays []DisplayConfig `yaml:"displays"`
}

// DefaultConfig drives a single display on the first I²C bus.
func DefaultConfig() Config {
	return Config{
		Listen:   ":8080",
		LogLevel: "info",
		Displays: []DisplayConfig{{Bus: "i2c"}},
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML configuration on top of DefaultConfig. Unknown
// keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	// An empty document leaves the defaults.
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: invalid log_level %q", c.LogLevel)
	}
	if len(c.Displays) > sevsegreg.MaxDisplays {
		return fmt.Errorf("config: at most %d displays can be attached, got %d", sevsegreg.MaxDisplays, len(c.Displays))
	}
	for i, d := range c.Displays {
		switch d.Bus {
		case "i2c":
			if d.Addr > 0x7f {
				return fmt.Errorf("config: display %d: invalid i2c address %#x", i, d.Addr)
			}
		case "spi":
			if d.Addr != 0 {
				return fmt.Errorf("config: display %d: addr is not used on spi", i)
			}
		default:
			return fmt.Errorf("config: display %d: bus must be i2c or spi, got %q", i, d.Bus)
		}
	}
	return nil
}
