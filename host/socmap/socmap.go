// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package socmap is the frozen memory map of the board: base addresses and
// register offsets for every peripheral, plus the fixed interrupt source
// IDs and trap cause codes. Nothing here has behavior; every host/*
// driver imports this package instead of hard-coding its own addresses,
// the same role host/bcm283x's page-number-commented offset constants play
// for that chip.
package socmap

// Peripheral base addresses, per spec.md section 6.
const (
	UARTBase  uintptr = 0x1000_0000
	GPIOBase  uintptr = 0x2000_0000
	VGABase   uintptr = 0x3000_0000
	DMABase   uintptr = 0x4000_0000
	CLINTBase uintptr = 0x5000_0000
	PLICBase  uintptr = 0x6000_0000
	RAMBase   uintptr = 0x8000_0000
	NPUBase   uintptr = 0x9000_0000
)

// RAMUserProgramBase is the address the bootloader jumps to after loading
// the payload; recorded for completeness of the frozen map, no driver in
// this tree reads it, and the bootloader itself is out of scope (spec.md
// section 1).
const RAMUserProgramBase uintptr = 0x8000_0800

// VGAVsyncOffset and VGAVsyncBit locate the frame buffer's vsync flag; the
// VGA driver is out of scope but the offset is recorded for completeness
// of the frozen map (spec.md section 6).
const (
	VGAVsyncOffset uintptr = 0x1FFFF
	VGAVsyncBit    uint32  = 1 << 0
)

// UART register offsets and control/status bits.
const (
	UARTData uint32 = 0x00
	UARTCtrl uint32 = 0x04

	UARTStatusTXBusy  uint32 = 1 << 0
	UARTStatusRXValid uint32 = 1 << 1
	UARTCmdRXPop      uint32 = 1 << 0
	UARTCmdRXFlush    uint32 = 1 << 1
)

// GPIO register offsets: a single LED output word and a single switch
// input word (spec.md section 6); this SoC has no per-pin addressing.
const (
	GPIOLEDs     uint32 = 0x00
	GPIOSwitches uint32 = 0x04
)

// DMA register offsets and CTRL bits, per spec.md section 4.2.
const (
	DMASrc  uint32 = 0x00
	DMADst  uint32 = 0x04
	DMACnt  uint32 = 0x08
	DMACtrl uint32 = 0x0C

	DMACtrlStart    uint32 = 1 << 0
	DMACtrlFixedDst uint32 = 1 << 1
	DMACtrlBusy     uint32 = 1 << 0 // on read
)

// CLINT register offsets, per spec.md section 6.
const (
	CLINTMSIP       uint32 = 0x00
	CLINTMTimeCmpLo uint32 = 0x08
	CLINTMTimeCmpHi uint32 = 0x0C
	CLINTMTimeLo    uint32 = 0x10
	CLINTMTimeHi    uint32 = 0x14
)

// PLIC register layout, per spec.md section 6. Priority is indexed by
// source id (4 bytes per source); pending/enable are bitmaps.
const (
	PLICPriorityBase  uint32 = 0x0000
	PLICPending       uint32 = 0x1000
	PLICEnable        uint32 = 0x2000
	PLICThreshold     uint32 = 0x20_0000
	PLICClaimComplete uint32 = 0x20_0004
)

// NPU register offsets, CMD bits, and FLAGS bits, per spec.md section 4.4.
const (
	NPUStatus    uint32 = 0x00
	NPUCmd       uint32 = 0x04
	NPUConfig    uint32 = 0x08
	NPUFIFOW     uint32 = 0x10
	NPUFIFOIn    uint32 = 0x14
	NPUOut       uint32 = 0x18
	NPUQuantCfg  uint32 = 0x40
	NPUQuantMult uint32 = 0x44
	NPUFlags     uint32 = 0x48
	NPUBiasBase  uint32 = 0x80 // BIAS[0..3] at 0x80, 0x84, 0x88, 0x8C

	NPUStatusBusy      uint32 = 1 << 0
	NPUStatusDone      uint32 = 1 << 1
	NPUStatusOutValid  uint32 = 1 << 3
	NPUCmdRstPtrs      uint32 = 1 << 0
	NPUCmdStart        uint32 = 1 << 1
	NPUCmdAccClear     uint32 = 1 << 2
	NPUCmdAccNoDrain   uint32 = 1 << 3
	NPUCmdRstWRd       uint32 = 1 << 4
	NPUCmdRstIRd       uint32 = 1 << 5
	NPUCmdRstWrW       uint32 = 1 << 6
	NPUCmdRstWrI       uint32 = 1 << 7
	NPUFlagsRelu       uint32 = 1 << 0
)

// PLIC interrupt source IDs, per spec.md section 6.
const (
	IRQSourceUART uint32 = 1
	IRQSourceGPIO uint32 = 2
	IRQSourceDMA  uint32 = 3
	IRQSourceNPU  uint32 = 4
)

// CLINT/mcause trap cause codes, per spec.md section 4.3 and section 6.
const (
	MCauseSoftware uint32 = 0x8000_0003
	MCauseTimer    uint32 = 0x8000_0007
	MCauseExternal uint32 = 0x8000_000B
)

// MaxSourcesPlusOne sizes a PLIC vector table indexed directly by source
// id (1..31); index 0 is reserved for "spurious".
const MaxSourcesPlusOne = 32

// NPU array geometry.
const (
	SystolicRows = 4
	SystolicCols = 4
	MaxKDim      = 2048
)
