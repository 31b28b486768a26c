// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package gpio implements conn/gpio's PinIO contract over the board's
// single LED output word and single switch input word (spec.md section
// 6), the way host/bcm283x implements the same contract over BCM's
// per-pin function-select registers - but flattened to bit lanes of one
// shared register instead of one register per pin.
package gpio

import (
	"fmt"
	"time"

	hostgpio "github.com/Nyfeu/RISC-V/conn/gpio"
	"github.com/Nyfeu/RISC-V/conn/mmio"
	"github.com/Nyfeu/RISC-V/host/socmap"
)

// NumLEDs and NumSwitches bound the valid bit lanes in each register.
const (
	NumLEDs     = 32
	NumSwitches = 32
)

// Bank owns the LED and switch registers and hands out individual pins.
type Bank struct {
	win *mmio.Window
}

// NewBank wraps an already-mapped GPIO register window.
func NewBank(win *mmio.Window) *Bank {
	return &Bank{win: win}
}

// LED returns the output pin for LED bit lane n.
func (b *Bank) LED(n int) hostgpio.PinOut {
	if n < 0 || n >= NumLEDs {
		return hostgpio.INVALID
	}
	return &ledPin{bank: b, bit: uint32(n)}
}

// Switch returns the input pin for switch bit lane n.
func (b *Bank) Switch(n int) hostgpio.PinIn {
	if n < 0 || n >= NumSwitches {
		return hostgpio.INVALID
	}
	return &switchPin{bank: b, bit: uint32(n)}
}

type ledPin struct {
	bank *Bank
	bit  uint32
}

func (p *ledPin) Number() int      { return int(p.bit) }
func (p *ledPin) Name() string     { return fmt.Sprintf("LED%d", p.bit) }
func (p *ledPin) String() string   { return p.Name() }
func (p *ledPin) Function() string { return "OUT" }

func (p *ledPin) Out(l hostgpio.Level) error {
	reg := p.bank.win.Reg(socmap.GPIOLEDs)
	if l == hostgpio.High {
		reg.SetBits(1 << p.bit)
	} else {
		reg.ClearBits(1 << p.bit)
	}
	return nil
}

type switchPin struct {
	bank *Bank
	bit  uint32
}

func (p *switchPin) Number() int      { return int(p.bit) }
func (p *switchPin) Name() string     { return fmt.Sprintf("SW%d", p.bit) }
func (p *switchPin) String() string   { return p.Name() }
func (p *switchPin) Function() string { return "IN" }

// In records nothing: the switch register has no pull-resistor control and
// no edge detection, so only Float or PullNoChange with NoEdge is accepted;
// any other pull or edge returns an error.
func (p *switchPin) In(pull hostgpio.Pull, edge hostgpio.Edge) error {
	if pull != hostgpio.Float && pull != hostgpio.PullNoChange {
		return fmt.Errorf("gpio: %s has no pull resistor control", p.Name())
	}
	if edge != hostgpio.NoEdge {
		return fmt.Errorf("gpio: %s has no edge-detection interrupt", p.Name())
	}
	return nil
}

func (p *switchPin) Read() hostgpio.Level {
	return hostgpio.Level(p.bank.win.Reg(socmap.GPIOSwitches).Bit(1 << p.bit))
}

// WaitForEdge always returns false immediately: this hardware has no
// edge-triggered interrupt on the switch register.
func (p *switchPin) WaitForEdge(timeout time.Duration) bool { return false }

func (p *switchPin) Pull() hostgpio.Pull { return hostgpio.Float }

var _ hostgpio.PinOut = (*ledPin)(nil)
var _ hostgpio.PinIn = (*switchPin)(nil)
