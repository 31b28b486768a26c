// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package plic drives the platform-level interrupt controller: per-source
// priority, an enable bitmap, a global threshold, and the claim/complete
// handshake (spec.md section 4.3).
//
// Priority follows the small-enumerated-register-field idiom of
// conn/gpio.Pull: a narrow named integer type rather than a bare uint32.
// Unlike Pull it has no String method.
package plic

import (
	"github.com/Nyfeu/RISC-V/conn/mmio"
	"github.com/Nyfeu/RISC-V/host/socmap"
)

// MaxSources is the highest valid PLIC source id on this board (spec.md
// reserves ids 1..31; 0 means spurious).
const MaxSources = 31

// Priority is a PLIC source priority: 0 masks the source, 1..7 are
// increasing priority levels.
type Priority uint32

// Controller is the PLIC driver.
type Controller struct {
	win *mmio.Window
}

// New wraps an already-mapped PLIC register window.
func New(win *mmio.Window) *Controller {
	return &Controller{win: win}
}

// SetPriority sets source id's priority (1..7; 0 masks it).
func (c *Controller) SetPriority(id uint32, prio Priority) {
	if id == 0 || id > MaxSources {
		return
	}
	c.win.Reg(socmap.PLICPriorityBase + id*4).Store(uint32(prio))
}

// Enable sets source id's bit in the enable bitmap.
func (c *Controller) Enable(id uint32) {
	if id == 0 || id > MaxSources {
		return
	}
	c.win.Reg(socmap.PLICEnable).SetBits(1 << id)
}

// Disable clears source id's bit in the enable bitmap.
func (c *Controller) Disable(id uint32) {
	if id == 0 || id > MaxSources {
		return
	}
	c.win.Reg(socmap.PLICEnable).ClearBits(1 << id)
}

// SetThreshold sets the global priority floor: sources at or below
// threshold never claim.
func (c *Controller) SetThreshold(t uint32) {
	c.win.Reg(socmap.PLICThreshold).Store(t)
}

// Claim reads the claim/complete register, returning the highest-priority
// pending source id, or 0 if the interrupt was spurious.
func (c *Controller) Claim() uint32 {
	return c.win.Reg(socmap.PLICClaimComplete).Load()
}

// Complete signals the end of service for source id. Every non-zero Claim
// must be followed by exactly one Complete for the same id, even when no
// handler was registered for it (spec.md section 4.3).
func (c *Controller) Complete(id uint32) {
	c.win.Reg(socmap.PLICClaimComplete).Store(id)
}
