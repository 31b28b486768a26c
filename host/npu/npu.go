// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package npu drives the on-die 4x4 systolic array: configuration, weight
// and input loading over PIO or DMA, start/accumulate commands, completion
// polling, and the quantization post-processing pipeline applied to the
// four drained output lanes.
//
// The register-struct-over-MMIO idiom matches host/clint and host/dma;
// what is new here is the two data-path strategies (load_weights /
// load_inputs choosing PIO word loops versus a single DMA burst), mirrored
// after host/bcm283x's dual hardware/software SPI backends picked by a
// runtime flag rather than a build tag.
package npu

import (
	"github.com/Nyfeu/RISC-V/conn/mmio"
	"github.com/Nyfeu/RISC-V/host/dma"
	"github.com/Nyfeu/RISC-V/host/socmap"
)

// QuantParams is the post-accumulation pipeline's configuration: multiply,
// shift, zero-point offset, and whether to clamp negative results to zero
// before saturating.
type QuantParams struct {
	Mult      uint32
	Shift     uint8 // 0..31
	ZeroPoint int8
	ReLU      bool
}

// RawAccumulation is the quantization configuration devices/tinyml uses
// while summing raw tile outputs in software: no scaling, no offset, no
// activation, so the four drained lanes are the unmodified 32-bit partial
// sums (spec.md section 4.5 step 1).
var RawAccumulation = QuantParams{Mult: 1, Shift: 0, ZeroPoint: 0, ReLU: false}

// Driver is the NPU register driver. It does not own the DMA engine; a
// caller that wants the DMA data path passes a *dma.Driver via
// SetDMAEnabled's companion constructor argument.
type Driver struct {
	win *mmio.Window
	dm  *dma.Driver

	dmaEnabled bool
	k          uint32
}

// New wraps an already-mapped NPU register window. dm may be nil if the
// caller never intends to enable the DMA data path.
func New(win *mmio.Window, dm *dma.Driver) *Driver {
	return &Driver{win: win, dm: dm}
}

// Init rewinds every read/write pointer in the array, the required
// first call before any configuration.
func (d *Driver) Init() {
	d.win.Reg(socmap.NPUCmd).WriteOne(socmap.NPUCmdRstPtrs)
}

// Configure programs the accumulation depth and the quantization pipeline
// for subsequent Start calls. K == 0 is refused per the driver's defensive
// contract (spec.md section 4.4); K above MaxKDim is clamped to MaxKDim.
func (d *Driver) Configure(k uint32, q QuantParams) {
	if k == 0 {
		return
	}
	if k > socmap.MaxKDim {
		k = socmap.MaxKDim
	}
	d.k = k
	d.win.Reg(socmap.NPUConfig).Store(k)
	d.win.Reg(socmap.NPUQuantMult).Store(q.Mult)
	cfg := uint32(q.Shift&0x1F) | uint32(uint8(q.ZeroPoint))<<8
	d.win.Reg(socmap.NPUQuantCfg).Store(cfg)
	var flags uint32
	if q.ReLU {
		flags |= socmap.NPUFlagsRelu
	}
	d.win.Reg(socmap.NPUFlags).Store(flags)
}

// SetBias writes the four per-row bias lanes.
func (d *Driver) SetBias(bias [4]int32) {
	for i, b := range bias {
		d.win.Reg(socmap.NPUBiasBase + uint32(i)*4).Store(uint32(b))
	}
}

// SetDMAEnabled toggles the data-path strategy used by LoadWeights and
// LoadInputs for subsequent calls.
func (d *Driver) SetDMAEnabled(enabled bool) {
	d.dmaEnabled = enabled
}

// LoadWeights pushes nWords 32-bit words into the weight FIFO port. When
// the DMA path is enabled, srcAddr names the bus address of the source
// buffer and a single burst is issued; buf is then ignored. Otherwise buf
// supplies the words directly for a PIO store loop and srcAddr is unused.
func (d *Driver) LoadWeights(srcAddr uint32, buf []uint32, nWords uint32) {
	d.load(socmap.NPUFIFOW, srcAddr, buf, nWords)
}

// LoadInputs pushes nWords 32-bit words into the input FIFO port; see
// LoadWeights for the srcAddr/buf contract.
func (d *Driver) LoadInputs(srcAddr uint32, buf []uint32, nWords uint32) {
	d.load(socmap.NPUFIFOIn, srcAddr, buf, nWords)
}

func (d *Driver) load(fifoOffset, srcAddr uint32, buf []uint32, nWords uint32) {
	if nWords == 0 {
		return
	}
	if d.dmaEnabled && d.dm != nil {
		d.dm.Memcpy(srcAddr, fifoAddr(fifoOffset), nWords, true)
		return
	}
	reg := d.win.Reg(fifoOffset)
	for i := uint32(0); i < nWords && int(i) < len(buf); i++ {
		reg.Store(buf[i])
	}
}

// fifoAddr translates a register offset into the bus address
// dma.Driver.Memcpy expects for a fixed-destination FIFO write.
func fifoAddr(offset uint32) uint32 {
	return uint32(socmap.NPUBase) + offset
}

// Start launches one array pass: rewind both read pointers, zero the
// accumulators, and begin. Must not be called while IsBusy.
func (d *Driver) Start() {
	d.win.Reg(socmap.NPUCmd).WriteOne(socmap.NPUCmdStart | socmap.NPUCmdRstWRd | socmap.NPUCmdRstIRd | socmap.NPUCmdAccClear)
}

// StartAccumulate launches a pass that adds into the existing
// accumulators instead of clearing them first, for summing tile partial
// products across a tiled layer.
func (d *Driver) StartAccumulate() {
	d.win.Reg(socmap.NPUCmd).WriteOne(socmap.NPUCmdStart | socmap.NPUCmdRstWRd | socmap.NPUCmdRstIRd)
}

// WaitDone spins until STATUS.DONE is set.
func (d *Driver) WaitDone() {
	status := d.win.Reg(socmap.NPUStatus)
	for !status.Bit(socmap.NPUStatusDone) {
	}
}

// IsBusy reports whether the array is still executing: the complement of
// STATUS.DONE, the same completion predicate WaitDone polls.
func (d *Driver) IsBusy() bool {
	return !d.win.Reg(socmap.NPUStatus).Bit(socmap.NPUStatusDone)
}

// ReadOutput drains nWords words from the OUT port. Callers must not
// invoke this before WaitDone returns; the driver does not itself guard
// against a premature read, per the NPU's documented undefined-data (not
// hang) failure model (spec.md section 4.4).
func (d *Driver) ReadOutput(buf []uint32, nWords uint32) {
	reg := d.win.Reg(socmap.NPUOut)
	for i := uint32(0); i < nWords && int(i) < len(buf); i++ {
		buf[i] = reg.Load()
	}
}

// Quantize applies the NPU's lane post-processing pipeline to one raw
// 32-bit accumulator: multiply by mult as an unsigned 64-bit widening
// (never cast mult to a signed 32-bit multiplier, which can overflow the
// product for mult values above 0x7FFF_FFFF), arithmetic shift, add the
// zero-point, optional ReLU clamp, then saturate to int8.
func Quantize(acc int32, q QuantParams) int8 {
	scaled := int64(acc) * int64(uint64(q.Mult))
	shifted := scaled >> q.Shift
	shifted += int64(q.ZeroPoint)
	if q.ReLU && shifted < 0 {
		shifted = 0
	}
	return saturateInt8(shifted)
}

func saturateInt8(v int64) int8 {
	switch {
	case v > 127:
		return 127
	case v < -128:
		return -128
	default:
		return int8(v)
	}
}

// PackLanes packs four saturated int8 lane results into a 32-bit word,
// lane 0 in byte 0, matching the array's native output packing.
func PackLanes(lanes [4]int8) uint32 {
	var w uint32
	for i, l := range lanes {
		w |= uint32(uint8(l)) << (8 * uint(i))
	}
	return w
}

// UnpackLanes is the inverse of PackLanes, used when draining a raw
// (unquantized) 32-bit accumulator word is not applicable - i.e. when the
// caller already has four independent quantized bytes to split back out.
func UnpackLanes(w uint32) [4]int8 {
	var lanes [4]int8
	for i := range lanes {
		lanes[i] = int8(byte(w >> (8 * uint(i))))
	}
	return lanes
}
