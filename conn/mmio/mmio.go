// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package mmio provides the single register-access primitive every host
// driver in this tree is built on: a 32-bit memory-mapped register backed by
// an atomic word, and a mapped window of such registers.
//
// The hardware this firmware targets guarantees register ordering on its
// own bus; what Go's memory model does not guarantee is that the compiler
// leaves a plain field load/store where the programmer put it. Reg32 uses
// sync/atomic for that reason alone, not for any multi-goroutine concern -
// this tree has exactly one foreground thread of control and at most one
// active trap handler (see host/dispatch).
package mmio

import (
	"fmt"
	"sync/atomic"
)

// Reg32 is one memory-mapped 32-bit register.
type Reg32 struct {
	v atomic.Uint32
}

// Load reads the register.
func (r *Reg32) Load() uint32 { return r.v.Load() }

// Store writes the register.
func (r *Reg32) Store(val uint32) { r.v.Store(val) }

// SetBits ORs bits into the register and returns the new value.
func (r *Reg32) SetBits(bits uint32) uint32 {
	for {
		old := r.v.Load()
		n := old | bits
		if r.v.CompareAndSwap(old, n) {
			return n
		}
	}
}

// ClearBits ANDs the complement of bits into the register and returns the
// new value.
func (r *Reg32) ClearBits(bits uint32) uint32 {
	for {
		old := r.v.Load()
		n := old &^ bits
		if r.v.CompareAndSwap(old, n) {
			return n
		}
	}
}

// WriteOne performs a write-one-to-act command write: the bits named are
// asserted and, because the backing hardware self-clears write-one-to-act
// bits, the in-memory fake backing (used under test) clears them back to 0
// immediately so repeated calls behave like the real self-clearing CMD
// register described in spec.md section 4.4.
func (r *Reg32) WriteOne(bits uint32) {
	r.v.Store(bits)
	r.v.Store(0)
}

// Bit reports whether a given bit is set.
func (r *Reg32) Bit(mask uint32) bool { return r.v.Load()&mask != 0 }

// Window is a block of registers mapped at a physical base address.
//
// Reg accepts a byte offset from the window's base; offsets must be
// 4-byte aligned, matching every register table in host/socmap.
type Window struct {
	base uintptr
	regs []Reg32
}

// NewFake returns a Window backed by plain process memory, sized in bytes.
// This is what every host/* package uses under `go test`, the same role
// that a bare struct literal plays in host/bcm283x's *_test.go files.
func NewFake(sizeBytes int) *Window {
	if sizeBytes%4 != 0 {
		sizeBytes += 4 - sizeBytes%4
	}
	return &Window{regs: make([]Reg32, sizeBytes/4)}
}

// Reg returns the register at byte offset off from the window's base.
func (w *Window) Reg(off uint32) *Reg32 {
	idx := int(off / 4)
	if idx < 0 || idx >= len(w.regs) {
		panic(fmt.Sprintf("mmio: offset %#x out of range for %d-byte window", off, len(w.regs)*4))
	}
	return &w.regs[idx]
}

// Base returns the physical base address this window was mapped at, for
// diagnostics only; register access always goes through Reg.
func (w *Window) Base() uintptr { return w.base }
