// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dispatch is the interrupt vector table and trap dispatcher:
// decode mcause, route machine-software and machine-timer traps to their
// registered handler, route machine-external traps through the PLIC
// claim/handler-lookup/complete protocol, and advance past synchronous
// exceptions (spec.md section 4.3).
//
// The vector table is the one piece of dynamic dispatch this firmware
// needs (spec.md section 9): a fixed-length array of nullable handler
// references indexed by source id, no interfaces, no virtual tables. This
// mirrors how host/bcm283x keeps a single package-level *clockMap rather
// than a registry of clock objects - one process-wide table, mutated only
// outside interrupt context.
package dispatch

import (
	"sync"
	"sync/atomic"

	"github.com/Nyfeu/RISC-V/host/clint"
	"github.com/Nyfeu/RISC-V/host/plic"
	"github.com/Nyfeu/RISC-V/host/socmap"
)

// Handler services one external interrupt source. Handlers must be short
// and non-blocking: they run with interrupts globally disabled, per
// spec.md section 4.3's nested-interrupt policy.
type Handler func()

// Kind names an interrupt class for the MIE mask helpers.
type Kind int

// Interrupt classes that can be independently masked in mstatus.MIE.
const (
	Software Kind = iota
	Timer
	External
)

// Stats snapshots the dispatcher's counters, for asserting the
// claim/complete balance invariant (spec.md section 8, invariant 5) and
// the exception-advance invariant (invariant 10) directly in tests.
type Stats struct {
	Claims       uint64
	Completes    uint64
	Exceptions   uint64
	LastMCause   uint32
	LastMEPC     uint32
}

// Dispatcher owns the vector table, the PLIC, the timer, and the trap
// counters. It is the process-wide singleton spec.md section 9 calls for;
// callers construct exactly one per firmware image.
type Dispatcher struct {
	vectors [socmap.MaxSourcesPlusOne]Handler // index 0 unused
	timerH  Handler
	swH     Handler

	plic  *plic.Controller
	timer *clint.Driver

	mie uint32 // software view of the MIE bits this firmware controls

	mu sync.Mutex

	claims     atomic.Uint64
	completes  atomic.Uint64
	exceptions atomic.Uint64
	lastMCause atomic.Uint32
	lastMEPC   atomic.Uint32
}

// MIE bit positions for software/timer/external, matching spec.md
// section 6's cause codes (3 software, 7 timer, 11 external).
const (
	mieSoftware uint32 = 1 << 3
	mieTimer    uint32 = 1 << 7
	mieExternal uint32 = 1 << 11
	mieGlobal   uint32 = 1 << 3 // mstatus.MIE bit; kept distinct from mie* for clarity
)

// New creates a dispatcher bound to the given PLIC and timer drivers.
func New(p *plic.Controller, t *clint.Driver) *Dispatcher {
	return &Dispatcher{plic: p, timer: t}
}

// RegisterExternal installs the handler for an external (PLIC-routed)
// source id. Must precede the first plic.Controller.Enable call for that
// id.
func (d *Dispatcher) RegisterExternal(source uint32, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if source == 0 || int(source) >= len(d.vectors) {
		return
	}
	d.vectors[source] = h
}

// RegisterTimer installs the machine-timer trap handler.
func (d *Dispatcher) RegisterTimer(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timerH = h
}

// RegisterSoftware installs the machine-software trap handler.
func (d *Dispatcher) RegisterSoftware(h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.swH = h
}

// HandleTrap is the dispatch logic a trap entry stub would call after
// saving registers. It returns the mepc execution should resume at:
// mepc+4 for a synchronous exception (the trapping instruction is
// skipped, per spec.md section 4.3), or mepc unchanged for an interrupt
// (the interrupted instruction has not executed and must be retried or is
// simply where execution continues from once the interrupt returns).
func (d *Dispatcher) HandleTrap(mcause, mepc uint32) uint32 {
	switch mcause {
	case socmap.MCauseSoftware:
		if d.swH != nil {
			d.swH()
		}
		return mepc
	case socmap.MCauseTimer:
		d.timer.Ack()
		if d.timerH != nil {
			d.timerH()
		}
		return mepc
	case socmap.MCauseExternal:
		d.dispatchExternal()
		return mepc
	default:
		// Synchronous exception: illegal instruction, ecall, ebreak,
		// invalid CSR. Record the cause and skip the trapping instruction.
		d.exceptions.Add(1)
		d.lastMCause.Store(mcause)
		nextPC := mepc + 4
		d.lastMEPC.Store(nextPC)
		return nextPC
	}
}

// dispatchExternal implements the PLIC claim -> lookup -> handler ->
// complete protocol. A source with no registered handler is still
// completed, to avoid livelock (spec.md section 4.3).
func (d *Dispatcher) dispatchExternal() {
	id := d.plic.Claim()
	if id == 0 {
		// Spurious: no handler, and nothing to complete.
		return
	}
	d.claims.Add(1)
	if int(id) < len(d.vectors) {
		if h := d.vectors[id]; h != nil {
			h()
		}
	}
	d.plic.Complete(id)
	d.completes.Add(1)
}

// GlobalEnable sets mstatus.MIE. Modeled as a software-tracked bitmask
// since this package does not itself execute privileged instructions; a
// real trap-entry assembly stub reads this value to program the CSR.
func (d *Dispatcher) GlobalEnable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mie |= mieGlobal
}

// GlobalDisable clears mstatus.MIE.
func (d *Dispatcher) GlobalDisable() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.mie &^= mieGlobal
}

// MaskEnable sets the MIE bits for the given interrupt kinds.
func (d *Dispatcher) MaskEnable(kinds ...Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range kinds {
		d.mie |= mieBit(k)
	}
}

// MaskDisable clears the MIE bits for the given interrupt kinds.
func (d *Dispatcher) MaskDisable(kinds ...Kind) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, k := range kinds {
		d.mie &^= mieBit(k)
	}
}

// MIE returns the current software-tracked MIE bitmask, for tests and
// diagnostics.
func (d *Dispatcher) MIE() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mie
}

func mieBit(k Kind) uint32 {
	switch k {
	case Software:
		return mieSoftware
	case Timer:
		return mieTimer
	case External:
		return mieExternal
	default:
		return 0
	}
}

// Stats returns a snapshot of the dispatcher's counters.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Claims:     d.claims.Load(),
		Completes:  d.completes.Load(),
		Exceptions: d.exceptions.Load(),
		LastMCause: d.lastMCause.Load(),
		LastMEPC:   d.lastMEPC.Load(),
	}
}
