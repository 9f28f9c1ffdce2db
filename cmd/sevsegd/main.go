// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// sevsegd drives up to three SparkFun serial 7-segment displays and exposes
// their control files over HTTP.
//
// Usage:
//
//	sevsegd [flags]
//
// Flags:
//
//	-config string     YAML configuration file
//	-listen string     HTTP listen address (default ":8080")
//	-log-level string  debug, info, warn or error (default "info")
//	-simulate          use emulated displays instead of the host buses
//	-interactive       start an interactive shell
//	-mdns              advertise the control surface over mDNS
//
// A configuration file looks like:
//
//	listen: ":8080"
//	displays:
//	  - bus: i2c
//	    addr: 0x71
//	    name: kitchen
//	  - bus: spi
//	    port: SPI0.0
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GermanBionicSystems/sevensegment/sevseg/sevseghttp"
	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"periph.io/x/host/v3"
)

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "sevsegd: %s.\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	configFile := flag.String("config", "", "YAML configuration file")
	listen := flag.String("listen", ":8080", "HTTP listen address")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	simulate := flag.Bool("simulate", false, "Use emulated displays instead of the host buses")
	interactive := flag.Bool("interactive", false, "Start an interactive shell")
	mdns := flag.Bool("mdns", false, "Advertise the control surface over mDNS")
	flag.Parse()
	if flag.NArg() != 0 {
		return errors.New("unexpected argument, try -help")
	}

	cfg := DefaultConfig()
	if *configFile != "" {
		var err error
		if cfg, err = LoadConfig(*configFile); err != nil {
			return err
		}
	}
	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Listen = *listen
		case "log-level":
			cfg.LogLevel = *logLevel
		case "simulate":
			cfg.Simulate = *simulate
		case "mdns":
			cfg.MDNS = *mdns
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := zerolog.New(zerolog.ConsoleWriter{Out: colorable.NewColorableStderr(), TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	if !cfg.Simulate {
		if _, err := host.Init(); err != nil {
			return err
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var sh *shell
	if *interactive {
		var err error
		if sh, err = newShell(); err != nil {
			return err
		}
		logger = logger.Output(zerolog.ConsoleWriter{Out: sh.Stderr(), TimeFormat: time.TimeOnly})
	}
	d := newDaemon(logger, cfg.Simulate)
	if sh != nil {
		// The shell "sim" command shows emulated displays instead.
		d.simOut = io.Discard
	}
	defer d.detachAll()

	for i, c := range cfg.Displays {
		if _, err := d.attach(c); err != nil {
			// A display that fails to attach does not prevent the others.
			logger.Error().Err(err).Int("display", i).Str("bus", c.Bus).Msg("attach failed")
		}
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           sevseghttp.New(d.reg, &sevseghttp.Opts{Logger: logger.With().Str("component", "http").Logger()}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Listen).Msg("serving control files")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	if cfg.MDNS {
		server, err := advertise(cfg.Listen)
		if err != nil {
			logger.Warn().Err(err).Msg("mdns disabled")
		} else {
			defer server.Shutdown()
		}
	}

	if sh != nil {
		sh.d = d
		go sh.run(ctx, cancel)
	}

	var err error
	select {
	case <-ctx.Done():
	case err = <-errc:
	}
	logger.Info().Msg("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	if serr := srv.Shutdown(shutdownCtx); serr != nil && err == nil {
		err = serr
	}
	return err
}
