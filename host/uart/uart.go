// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package uart drives the board's blocking byte-oriented serial port: poll
// TX_BUSY before a write, poll RX_VALID before a read, pop the byte with
// RX_POP, flush the FIFO with RX_FLUSH (spec.md section 2 and section 6).
//
// This is the MMIO-register analogue of experimental/host/sysfs.UART,
// which opened a /dev/ttyS* file descriptor for the same role on a Linux
// host; here the "file descriptor" is a pair of memory-mapped registers,
// and RX/TX/RTS/CTS are exposed the same way that stub exposed them, as
// gpio.INVALID pins, because this UART has no flow-control lines.
package uart

import (
	"github.com/Nyfeu/RISC-V/conn/mmio"
	"github.com/Nyfeu/RISC-V/host/socmap"
	"periph.io/x/periph/conn/gpio"
)

// Driver is a blocking byte-oriented UART.
type Driver struct {
	win *mmio.Window
}

// New wraps an already-mapped UART register window.
func New(win *mmio.Window) *Driver {
	return &Driver{win: win}
}

// ReadByte blocks until a byte is available, then consumes it.
//
// The consume step is a separate register write (RX_POP) from the data
// read, matching the hardware's explicit RX-consume handshake: reading
// DATA alone does not drain the FIFO.
func (d *Driver) ReadByte() byte {
	ctrl := d.win.Reg(socmap.UARTCtrl)
	for ctrl.Load()&socmap.UARTStatusRXValid == 0 {
	}
	b := byte(d.win.Reg(socmap.UARTData).Load())
	ctrl.WriteOne(socmap.UARTCmdRXPop)
	return b
}

// WriteByte blocks until the transmitter is free, then writes one byte.
func (d *Driver) WriteByte(b byte) {
	ctrl := d.win.Reg(socmap.UARTCtrl)
	for ctrl.Load()&socmap.UARTStatusTXBusy != 0 {
	}
	d.win.Reg(socmap.UARTData).Store(uint32(b))
}

// Write implements io.Writer by calling WriteByte for each byte.
func (d *Driver) Write(p []byte) (int, error) {
	for _, b := range p {
		d.WriteByte(b)
	}
	return len(p), nil
}

// WriteUint32LE writes a little-endian u32, the wire format every
// multi-byte command-server field uses (spec.md section 4.6).
func (d *Driver) WriteUint32LE(v uint32) {
	d.WriteByte(byte(v))
	d.WriteByte(byte(v >> 8))
	d.WriteByte(byte(v >> 16))
	d.WriteByte(byte(v >> 24))
}

// WriteUint64LE writes a little-endian u64, used by the 'R' command's
// cycle-count report.
func (d *Driver) WriteUint64LE(v uint64) {
	d.WriteUint32LE(uint32(v))
	d.WriteUint32LE(uint32(v >> 32))
}

// ReadUint32LE reads a little-endian u32.
func (d *Driver) ReadUint32LE() uint32 {
	b0 := uint32(d.ReadByte())
	b1 := uint32(d.ReadByte())
	b2 := uint32(d.ReadByte())
	b3 := uint32(d.ReadByte())
	return b0 | b1<<8 | b2<<16 | b3<<24
}

// ReadBytes fills dest with len(dest) bytes.
func (d *Driver) ReadBytes(dest []byte) {
	for i := range dest {
		dest[i] = d.ReadByte()
	}
}

// Flush drains the RX FIFO without consuming any byte through ReadByte.
func (d *Driver) Flush() {
	d.win.Reg(socmap.UARTCtrl).WriteOne(socmap.UARTCmdRXFlush)
}

// RX, TX, RTS and CTS satisfy a pins-style contract for symmetry with
// periph's uart.Pins; this UART exposes no discrete flow-control lines.
func (d *Driver) RX() gpio.PinIn   { return gpio.INVALID }
func (d *Driver) TX() gpio.PinOut  { return gpio.INVALID }
func (d *Driver) RTS() gpio.PinIO  { return gpio.INVALID }
func (d *Driver) CTS() gpio.PinIO  { return gpio.INVALID }
