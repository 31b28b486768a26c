// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpio defines the digital pin contract used by host/gpio to expose
// the SoC's LED and switch register as ordinary GPIO pins.
//
// This SoC's GPIO block is a single read-write LED register and a single
// read-only switch register (see spec.md section 6); it has no PWM, no
// clock output, and no edge-triggered interrupt line, so this package
// carries only the subset of periph's conn/gpio contract that a pin with
// those capabilities can implement: level, pull (present only for
// interface symmetry with PinIn, always Float on this hardware), and
// plain level I/O.
package gpio

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/periph/conn/pin"
)

// INVALID implements PinIO and fails on all access.
var INVALID PinIO

// Level is the level of the pin: Low or High.
type Level bool

const (
	// Low represents 0v.
	Low Level = false
	// High represents Vin.
	High Level = true
)

func (l Level) String() string {
	if l == Low {
		return "Low"
	}
	return "High"
}

// Pull specifies the internal pull-up or pull-down for a pin set as input.
//
// This hardware exposes no pull resistor control; the type is kept only so
// PinIn satisfies the same shape as a periph pin with real pull support.
type Pull uint8

// Acceptable pull values.
const (
	Float        Pull = 0
	PullDown     Pull = 1
	PullUp       Pull = 2
	PullNoChange Pull = 3
)

const pullName = "FloatPullDownPullUpPullNoChange"

var pullIndex = [...]uint8{0, 5, 13, 19, 31}

func (i Pull) String() string {
	if i >= Pull(len(pullIndex)-1) {
		return fmt.Sprintf("Pull(%d)", i)
	}
	return pullName[pullIndex[i]:pullIndex[i+1]]
}

// Edge specifies if an input pin should have edge detection enabled.
//
// This hardware has no edge-detection interrupt; only NoEdge is meaningful.
// The type and the other values are retained so host/gpio's In() keeps the
// same signature as a periph pin that does support edges.
type Edge int

// Acceptable edge detection values.
const (
	NoEdge      Edge = 0
	RisingEdge  Edge = 1
	FallingEdge Edge = 2
	BothEdges   Edge = 3
)

const edgeName = "NoEdgeRisingEdgeFallingEdgeBothEdges"

var edgeIndex = [...]uint8{0, 6, 16, 27, 36}

func (i Edge) String() string {
	if i >= Edge(len(edgeIndex)-1) {
		return fmt.Sprintf("Edge(%d)", i)
	}
	return edgeName[edgeIndex[i]:edgeIndex[i+1]]
}

// PinIn is an input GPIO pin, such as the switch register bit.
type PinIn interface {
	pin.Pin
	In(pull Pull, edge Edge) error
	Read() Level
	WaitForEdge(timeout time.Duration) bool
	Pull() Pull
}

// PinOut is an output GPIO pin, such as an LED register bit.
type PinOut interface {
	pin.Pin
	Out(l Level) error
}

// PinIO is a GPIO pin that supports both input and output.
type PinIO interface {
	pin.Pin
	In(pull Pull, edge Edge) error
	Read() Level
	WaitForEdge(timeout time.Duration) bool
	Pull() Pull
	Out(l Level) error
}

// errInvalidPin is returned when trying to use INVALID.
var errInvalidPin = errors.New("gpio: invalid pin")

func init() {
	INVALID = invalidPin{}
}

// invalidPin implements PinIO for compatibility but fails on all access.
type invalidPin struct{}

func (invalidPin) Number() int             { return -1 }
func (invalidPin) Name() string            { return "INVALID" }
func (invalidPin) String() string          { return "INVALID" }
func (invalidPin) Function() string        { return "" }
func (invalidPin) In(Pull, Edge) error     { return errInvalidPin }
func (invalidPin) Read() Level             { return Low }
func (invalidPin) WaitForEdge(time.Duration) bool { return false }
func (invalidPin) Pull() Pull              { return PullNoChange }
func (invalidPin) Out(Level) error         { return errInvalidPin }

var _ PinIn = INVALID
var _ PinOut = INVALID
var _ PinIO = INVALID
