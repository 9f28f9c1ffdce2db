// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sevseghttp exposes the displays of a registry as a tree of control
// files over HTTP.
//
//	GET  /                    occupied slots, one per line
//	GET  /{slot}/             control files of the display
//	GET  /{slot}/{file}       value of the file, from ?offset=N if given
//	PUT  /{slot}/{file}       writes the request body to the file
//
// POST is accepted as a synonym of PUT.
package sevseghttp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/GermanBionicSystems/sevensegment/sevseg"
	"github.com/GermanBionicSystems/sevensegment/sevseg/sevsegreg"
	"github.com/rs/zerolog"
)

// maxPayload bounds the size of a write. The longest valid payload is a few
// bytes.
const maxPayload = 256

// Opts holds the configuration of a Handler.
type Opts struct {
	Logger zerolog.Logger
}

// Handler serves the control files of the displays in a registry.
type Handler struct {
	reg *sevsegreg.Registry
	log zerolog.Logger
}

// New returns a handler for reg. opts may be nil.
func New(reg *sevsegreg.Registry, opts *Opts) *Handler {
	h := &Handler{reg: reg, log: zerolog.Nop()}
	if opts != nil {
		h.log = opts.Logger
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] == "":
		h.serveRoot(w, r)
	case len(parts) == 1:
		h.serveSlot(w, r, parts[0])
	case len(parts) == 2:
		h.serveFile(w, r, parts[0], parts[1])
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) serveRoot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, s := range h.reg.Slots() {
		fmt.Fprintln(w, s)
	}
}

func (h *Handler) serveSlot(w http.ResponseWriter, r *http.Request, name string) {
	if r.Method != http.MethodGet {
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}
	s, err := sevsegreg.ParseSlot(name)
	if err != nil {
		h.fail(w, err)
		return
	}
	if _, ok := h.reg.Lookup(s); !ok {
		h.fail(w, sevsegreg.ErrNotAttached)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, cp := range sevseg.ControlPoints() {
		fmt.Fprintln(w, cp)
	}
}

func (h *Handler) serveFile(w http.ResponseWriter, r *http.Request, slot, file string) {
	s, err := sevsegreg.ParseSlot(slot)
	if err != nil {
		h.fail(w, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		var off int64
		if v := r.URL.Query().Get("offset"); v != "" {
			if off, err = strconv.ParseInt(v, 10, 64); err != nil || off < 0 {
				http.Error(w, "invalid offset", http.StatusBadRequest)
				return
			}
		}
		buf := make([]byte, maxPayload)
		n, err := h.reg.Read(s, file, buf, &off)
		if err != nil && err != io.EOF {
			h.fail(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Length", strconv.Itoa(n))
		_, _ = w.Write(buf[:n])

	case http.MethodPut, http.MethodPost:
		payload, err := io.ReadAll(io.LimitReader(r.Body, maxPayload+1))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if len(payload) > maxPayload {
			http.Error(w, "payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		if _, err := h.reg.Write(s, file, payload); err != nil {
			h.fail(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		h.log.Warn().Err(err).Int("status", code).Msg("request failed")
	}
	http.Error(w, err.Error(), code)
}

func statusCode(err error) int {
	var verr *sevseg.ValidationError
	var terr *sevseg.TransportError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, sevseg.ErrUnknownControlPoint),
		errors.Is(err, sevsegreg.ErrNotAttached),
		errors.Is(err, sevsegreg.ErrInvalidSlot):
		return http.StatusNotFound
	case errors.As(err, &terr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
