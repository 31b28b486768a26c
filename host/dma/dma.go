// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package dma drives the board's single-channel block-copy DMA engine:
// program SRC/DST/CNT, fire CTRL.START (optionally with FIXED_DST for a
// write into a FIFO port), and poll CTRL.BUSY to completion (spec.md
// section 4.2).
//
// The CTRL bit constants this driver uses (declared in host/socmap) follow
// other_examples/e8e2c9a5_google-periph__host-bcm283x-dma.go.go's
// dmaStatus/dmaTransferInfo constant style of one named bit per line;
// this engine has a single channel
// where bcm283x's has sixteen, so the "dedicated channel" bookkeeping of
// host/allwinner/junk.go's dmaDedicatedGroup collapses to a single mutex
// guarding the one channel's registers.
package dma

import (
	"sync"

	"github.com/Nyfeu/RISC-V/conn/mmio"
	"github.com/Nyfeu/RISC-V/host/socmap"
)

// Driver is the single-channel block-copy DMA engine.
type Driver struct {
	win *mmio.Window
	mu  sync.Mutex
}

// New wraps an already-mapped DMA register window.
func New(win *mmio.Window) *Driver {
	return &Driver{win: win}
}

func (d *Driver) ctrl() *mmio.Reg32 { return d.win.Reg(socmap.DMACtrl) }

func (d *Driver) spinWhileBusy() {
	ctrl := d.ctrl()
	for ctrl.Load()&socmap.DMACtrlBusy != 0 {
		// Three no-ops per poll is sufficient to avoid starving the DMA
		// engine's own bus cycles, per spec.md section 4.2.
		noop()
		noop()
		noop()
	}
}

//go:noinline
func noop() {}

// program writes SRC/DST/CNT/CTRL under the channel's mutex and returns
// once the transfer has been kicked off; it does not wait for completion.
func (d *Driver) program(src, dst, words uint32, dstFixed bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.spinWhileBusy()
	d.win.Reg(socmap.DMASrc).Store(src)
	d.win.Reg(socmap.DMADst).Store(dst)
	d.win.Reg(socmap.DMACnt).Store(words)
	ctrlBits := socmap.DMACtrlStart
	if dstFixed {
		ctrlBits |= socmap.DMACtrlFixedDst
	}
	d.ctrl().Store(ctrlBits)
}

// Memcpy performs a blocking block transfer of words 32-bit words from src
// to dst. dstFixed must be true when dst is a FIFO port address (NPU
// weight/input ports) and false for RAM-to-RAM copies (spec.md section
// 4.2). words == 0 is a no-op.
func (d *Driver) Memcpy(src, dst, words uint32, dstFixed bool) {
	if words == 0 {
		return
	}
	d.program(src, dst, words, dstFixed)
	d.spinWhileBusy()
}

// StartAsync programs the same transfer as Memcpy but returns immediately;
// completion is reported via the DMA PLIC source (socmap.IRQSourceDMA).
func (d *Driver) StartAsync(src, dst, words uint32, dstFixed bool) {
	if words == 0 {
		return
	}
	d.program(src, dst, words, dstFixed)
}

// Busy reports whether a transfer is currently in flight.
func (d *Driver) Busy() bool {
	return d.ctrl().Load()&socmap.DMACtrlBusy != 0
}
