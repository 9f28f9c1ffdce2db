// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/enbility/zeroconf/v3"
)

const (
	serviceType = "_sevseg._tcp"
	domain      = "local."
)

// advertise announces the HTTP control surface listening on addr over mDNS.
func advertise(addr string) (*zeroconf.Server, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("mdns: %w", err)
	}
	port, err := strconv.Atoi(p)
	if err != nil || port == 0 {
		return nil, fmt.Errorf("mdns: invalid port in %q", addr)
	}
	host, err := os.Hostname()
	if err != nil {
		host = "sevsegd"
	}
	txt := []string{"path=/", "version=1"}
	server, err := zeroconf.Register("sevsegd@"+host, serviceType, domain, port, txt, nil)
	if err != nil {
		return nil, fmt.Errorf("mdns: failed to register service: %w", err)
	}
	return server, nil
}
