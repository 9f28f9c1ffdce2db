// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sevsegreg multiplexes up to three attached 7-segment displays
// behind small stable slot numbers and dispatches control point reads and
// writes to them.
package sevsegreg

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/GermanBionicSystems/sevensegment/sevseg"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxDisplays is the number of displays that can be attached at once.
const MaxDisplays = 3

var (
	// ErrCapacity is returned by Attach when every slot is occupied.
	ErrCapacity = errors.New("sevsegreg: too many displays, at most 3 can be attached")
	// ErrNotAttached is returned for a slot that holds no display.
	ErrNotAttached = errors.New("sevsegreg: no display attached to slot")
	// ErrIdentityMismatch is returned by Detach when the slot is now held by
	// another attachment.
	ErrIdentityMismatch = errors.New("sevsegreg: slot is held by another attachment")
	// ErrInvalidSlot is returned for a slot number outside 0 to 2.
	ErrInvalidSlot = errors.New("sevsegreg: invalid slot")
)

// AllocationError is returned by Attach when the display handle could not
// be constructed. The slot is released.
type AllocationError struct {
	Slot Slot
	Err  error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("sevsegreg: attaching slot %d failed: %v", e.Slot, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// Slot identifies an attached display.
type Slot int

// ParseSlot parses a slot directory name, a single digit between 0 and 2.
func ParseSlot(s string) (Slot, error) {
	if len(s) != 1 || s[0] < '0' || s[0] >= '0'+MaxDisplays {
		return 0, fmt.Errorf("%w %q", ErrInvalidSlot, s)
	}
	return Slot(s[0] - '0'), nil
}

func (s Slot) String() string {
	return strconv.Itoa(int(s))
}

func (s Slot) valid() bool {
	return s >= 0 && s < MaxDisplays
}

// Opener opens a handle to a display.
//
// It is called by Attach once a slot is reserved.
type Opener func() (*sevseg.Dev, error)

// Attachment is returned by Attach and identifies one attach of a display.
// A slot reused by a later attach gets a new ID.
type Attachment struct {
	Slot Slot
	ID   uuid.UUID
}

// Opts holds the configuration of a Registry.
type Opts struct {
	Logger zerolog.Logger
}

type entry struct {
	dev      *sevseg.Dev
	id       uuid.UUID
	reserved bool
}

// Registry holds the attached displays.
//
// The slot table is guarded by a single lock. Operations on a display are
// serialized by the display handle itself and never hold the table lock.
type Registry struct {
	log zerolog.Logger

	mu    sync.Mutex
	slots [MaxDisplays]*entry
}

// New returns an empty registry. opts may be nil.
func New(opts *Opts) *Registry {
	r := &Registry{log: zerolog.Nop()}
	if opts != nil {
		r.log = opts.Logger
	}
	return r
}

// Attach reserves the lowest free slot and opens the display into it.
//
// It returns ErrCapacity without calling open when every slot is occupied,
// and an *AllocationError when open fails, in which case the slot is freed.
func (r *Registry) Attach(open Opener) (Attachment, error) {
	s, err := r.reserve()
	if err != nil {
		r.log.Warn().Err(err).Msg("attach rejected")
		return Attachment{}, err
	}
	dev, err := open()
	if err == nil && dev == nil {
		err = errors.New("opener returned no display")
	}
	var id uuid.UUID
	if err == nil {
		id, err = uuid.NewRandom()
	}
	if err != nil {
		r.mu.Lock()
		r.slots[s] = nil
		r.mu.Unlock()
		err = &AllocationError{Slot: s, Err: err}
		r.log.Error().Err(err).Stringer("slot", s).Msg("attach failed")
		return Attachment{}, err
	}

	r.mu.Lock()
	r.slots[s] = &entry{dev: dev, id: id}
	r.mu.Unlock()
	r.log.Info().Stringer("slot", s).Str("name", dev.Name()).Stringer("bus", dev.Bus()).Str("id", id.String()).Msg("display attached")
	return Attachment{Slot: s, ID: id}, nil
}

func (r *Registry) reserve() (Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slots {
		if r.slots[i] == nil {
			r.slots[i] = &entry{reserved: true}
			return Slot(i), nil
		}
	}
	return 0, ErrCapacity
}

// Detach releases the slot held by a and returns its display handle. The
// display itself is not touched.
func (r *Registry) Detach(a Attachment) (*sevseg.Dev, error) {
	dev, err := r.release(a)
	if err != nil {
		r.log.Warn().Err(err).Stringer("slot", a.Slot).Str("id", a.ID.String()).Msg("detach rejected")
		return nil, err
	}
	r.log.Info().Stringer("slot", a.Slot).Str("name", dev.Name()).Msg("display detached")
	return dev, nil
}

func (r *Registry) release(a Attachment) (*sevseg.Dev, error) {
	if !a.Slot.valid() {
		return nil, ErrInvalidSlot
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.slots[a.Slot]
	if e == nil || e.reserved {
		return nil, ErrNotAttached
	}
	if e.id != a.ID {
		return nil, ErrIdentityMismatch
	}
	r.slots[a.Slot] = nil
	return e.dev, nil
}

// Lookup returns the display attached to s.
func (r *Registry) Lookup(s Slot) (*sevseg.Dev, bool) {
	a, ok := r.lookup(s)
	return a.dev, ok
}

// Attachment returns the current attachment of s.
func (r *Registry) Attachment(s Slot) (Attachment, bool) {
	e, ok := r.lookup(s)
	return Attachment{Slot: s, ID: e.id}, ok
}

func (r *Registry) lookup(s Slot) (entry, bool) {
	if !s.valid() {
		return entry{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.slots[s]
	if e == nil || e.reserved {
		return entry{}, false
	}
	return *e, true
}

// Slots returns the occupied slots in ascending order.
func (r *Registry) Slots() []Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Slot
	for i, e := range r.slots {
		if e != nil && !e.reserved {
			out = append(out, Slot(i))
		}
	}
	return out
}

// Write sends payload to the control point name of the display in s.
func (r *Registry) Write(s Slot, name string, payload []byte) (int, error) {
	dev, ok := r.Lookup(s)
	if !ok {
		return 0, ErrNotAttached
	}
	n, err := dev.WriteControl(sevseg.ParseControlPoint(name), payload)
	if err != nil {
		r.log.Debug().Err(err).Stringer("slot", s).Str("control", name).Msg("write failed")
	}
	return n, err
}

// Read reads the control point name of the display in s at *off. See
// sevseg.Dev.ReadControl.
func (r *Registry) Read(s Slot, name string, p []byte, off *int64) (int, error) {
	dev, ok := r.Lookup(s)
	if !ok {
		return 0, ErrNotAttached
	}
	return dev.ReadControl(sevseg.ParseControlPoint(name), p, off)
}
