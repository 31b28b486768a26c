// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package clint drives the core-local interrupt controller's 64-bit
// free-running timer and its compare register, per spec.md section 4.1.
//
// The counter is exposed to software as two 32-bit halves; Driver applies
// the torn-read and glitch-free-arming protocols the hardware requires,
// mirroring host/bcm283x/clock.go's register-struct idiom for a PLL
// divider, adapted here to CLINT's MTIME/MTIMECMP pair.
package clint

import (
	"time"

	"github.com/Nyfeu/RISC-V/conn/mmio"
	"github.com/Nyfeu/RISC-V/host/socmap"
)

// Driver is the CLINT timer/compare driver.
type Driver struct {
	win *mmio.Window
}

// New wraps an already-mapped CLINT register window.
func New(win *mmio.Window) *Driver {
	return &Driver{win: win}
}

// Reset zeroes the 64-bit counter and disarms the compare register.
func (d *Driver) Reset() {
	d.win.Reg(socmap.CLINTMTimeHi).Store(0)
	d.win.Reg(socmap.CLINTMTimeLo).Store(0)
	d.Ack()
}

// Now returns the monotonic 64-bit cycle count, torn-read-safe: read hi,
// then lo, then hi again; retry if the two hi reads disagree. This is the
// only correct read order for a hardware counter whose halves can roll
// over between two separate 32-bit loads (spec.md section 4.1).
func (d *Driver) Now() uint64 {
	hiReg := d.win.Reg(socmap.CLINTMTimeHi)
	loReg := d.win.Reg(socmap.CLINTMTimeLo)
	for {
		hi1 := hiReg.Load()
		lo := loReg.Load()
		hi2 := hiReg.Load()
		if hi1 == hi2 {
			return uint64(hi1)<<32 | uint64(lo)
		}
	}
}

// NowDuration converts Now() to a time.Duration given the core clock rate
// in Hz, for human-readable benchmark reporting.
func (d *Driver) NowDuration(hz uint64) time.Duration {
	if hz == 0 {
		return 0
	}
	cycles := d.Now()
	return time.Duration(cycles) * time.Second / time.Duration(hz)
}

// ArmIn programs the compare register to fire delta cycles from now,
// without a spurious intermediate fire: write hi to all-ones, write lo,
// then write the true hi (spec.md section 4.1's arming protocol).
func (d *Driver) ArmIn(delta uint64) {
	target := d.Now() + delta
	d.armRaw(uint32(target>>32), uint32(target))
}

// Ack clears any pending compare by writing both halves to all-ones,
// which can never again match the free-running counter.
func (d *Driver) Ack() {
	d.armRaw(0xFFFF_FFFF, 0xFFFF_FFFF)
}

func (d *Driver) armRaw(hi, lo uint32) {
	hiReg := d.win.Reg(socmap.CLINTMTimeCmpHi)
	loReg := d.win.Reg(socmap.CLINTMTimeCmpLo)
	hiReg.Store(0xFFFF_FFFF)
	loReg.Store(lo)
	hiReg.Store(hi)
}
