// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package cmdserver is the boundary of the byte-framed request/reply
// protocol that drives the inference engine over UART: command tags,
// little-endian multi-byte field framing, and a thin dispatcher that
// sequences reads into the weight/bias/input stores and NPU runs.
//
// Per spec.md section 4.6 this interface is specified only at its
// boundary - "protocol framing is the external contract; its parsing is
// the collaborator's concern" - so Dispatch does the minimum sequencing
// to exercise host/uart, devices/tinyml and host/clint together; a real
// deployment's console loop lives outside this tree.
package cmdserver

import (
	"fmt"

	"github.com/Nyfeu/RISC-V/devices/tinyml"
	"github.com/Nyfeu/RISC-V/host/clint"
)

// Command is one protocol request tag.
type Command byte

// Protocol tags, per spec.md section 4.6. This spec mandates the
// multi-layer ('L'/'B'/'I'/'T'/'R') variant as normative; the legacy
// single-layer 'W'/'I'/'R' server is not implemented here.
const (
	CmdPing        Command = 'P'
	CmdConfigure   Command = 'C'
	CmdLoadWeights Command = 'L'
	CmdLoadBias    Command = 'B'
	CmdLoadInput   Command = 'I'
	CmdTile        Command = 'T'
	CmdRun         Command = 'R'
)

// ackByte, pingOKByte and pingBadByte are the single-byte replies the
// server sends outside of the 'R' report (spec.md section 7: "always
// responds to valid commands with K, always responds to pings with P/O").
// Dispatch answers a ping with pingOKByte and an unrecognized tag with
// pingBadByte.
const (
	ackByte     = 'K'
	pingOKByte  = 'P'
	pingBadByte = 'O'
)

// Port is the subset of *host/uart.Driver the dispatcher needs.
type Port interface {
	ReadByte() byte
	ReadUint32LE() uint32
	ReadBytes(dest []byte)
	WriteByte(b byte)
	WriteUint32LE(v uint32)
	WriteUint64LE(v uint64)
}

// ConfigureRequest is the 'C' command's payload.
type ConfigureRequest struct {
	Mult  uint32
	Shift uint32
	ReLU  bool
}

// TilingRequest is the 'T' command's payload. NumTiles, KDim and stride
// describe how a caller intends to walk the stores for the run that
// follows; this server does not itself validate them against the layer
// headers of a subsequent 'R', matching the boundary-only contract.
type TilingRequest struct {
	NumTiles uint32
	KDim     uint32
	Stride   uint32
}

// LayerHeader is one per-layer record inside an 'R' command's payload.
type LayerHeader struct {
	NInWords uint32
	NOut     uint32
	WOff     uint32
	BOff     uint32
	Mult     uint32
	Shift    uint32
	Zero     uint32
	ReLU     uint32
}

// RunReport is the 'R' command's trailing response payload: a cycle count
// followed by the final layer's int8 outputs, each zero-extended from its
// byte to one word.
type RunReport struct {
	Cycles uint64
	Values []uint32
}

// Server bundles the stores and engine a Dispatch call operates on.
type Server struct {
	Stores *tinyml.Stores
	Engine tinyml.Engine
	Timer  *clint.Driver

	quant ConfigureRequest
}

// NewServer builds a dispatcher bound to the given stores, NPU engine and
// timer.
func NewServer(stores *tinyml.Stores, engine tinyml.Engine, timer *clint.Driver) *Server {
	return &Server{Stores: stores, Engine: engine, Timer: timer}
}

// ReadConfigureRequest decodes a 'C' command's payload from port.
func ReadConfigureRequest(port Port) ConfigureRequest {
	mult := port.ReadUint32LE()
	shift := port.ReadUint32LE()
	relu := port.ReadUint32LE()
	return ConfigureRequest{Mult: mult, Shift: shift, ReLU: relu != 0}
}

// ReadTilingRequest decodes a 'T' command's payload from port.
func ReadTilingRequest(port Port) TilingRequest {
	return TilingRequest{
		NumTiles: port.ReadUint32LE(),
		KDim:     port.ReadUint32LE(),
		Stride:   port.ReadUint32LE(),
	}
}

// ReadLayerHeader decodes one per-layer record of an 'R' command's
// payload from port.
func ReadLayerHeader(port Port) LayerHeader {
	return LayerHeader{
		NInWords: port.ReadUint32LE(),
		NOut:     port.ReadUint32LE(),
		WOff:     port.ReadUint32LE(),
		BOff:     port.ReadUint32LE(),
		Mult:     port.ReadUint32LE(),
		Shift:    port.ReadUint32LE(),
		Zero:     port.ReadUint32LE(),
		ReLU:     port.ReadUint32LE(),
	}
}

// Dispatch reads exactly one command tag from port and services it,
// writing the tag's documented response. It returns an error only for an
// unrecognized tag; every recognized command always completes and always
// writes a reply, per the core's fail-silent-and-keep-running policy
// (spec.md section 7).
func (s *Server) Dispatch(port Port) error {
	tag := Command(port.ReadByte())
	switch tag {
	case CmdPing:
		port.WriteByte(pingOKByte)
	case CmdConfigure:
		s.quant = ReadConfigureRequest(port)
		port.WriteByte(ackByte)
	case CmdLoadWeights:
		total := port.ReadUint32LE()
		port.ReadBytes(sizedView(s.Stores.Weights, total))
		port.WriteByte(ackByte)
	case CmdLoadBias:
		total := port.ReadUint32LE()
		port.ReadBytes(sizedView(s.Stores.Bias, total))
		port.WriteByte(ackByte)
	case CmdLoadInput:
		total := port.ReadUint32LE()
		port.ReadBytes(sizedView(s.Stores.CurrentInput(), total))
		port.WriteByte(ackByte)
	case CmdTile:
		_ = ReadTilingRequest(port)
		port.WriteByte(ackByte)
	case CmdRun:
		s.dispatchRun(port)
	default:
		port.WriteByte(pingBadByte)
		return fmt.Errorf("cmdserver: unrecognized command tag %q", byte(tag))
	}
	return nil
}

// dispatchRun services the 'R' command: run each described layer in
// sequence, ping-ponging the input/output buffers, writing one '.'
// progress byte per output neuron as each layer completes (spec.md
// section 7: "per-neuron progress bytes, then !"), then report total
// cycles and the final layer's int8 outputs, each zero-extended from its
// byte to one word.
func (s *Server) dispatchRun(port Port) {
	numLayers := port.ReadUint32LE()
	start := s.Timer.Now()

	var out []int8
	for i := uint32(0); i < numLayers; i++ {
		hdr := ReadLayerHeader(port)
		inFeatures := uint16(hdr.NInWords)
		outNeurons := uint16(hdr.NOut)

		layer, err := s.Stores.LayerAt(int(hdr.WOff), int(hdr.BOff), inFeatures, outNeurons, hdr.Mult, uint8(hdr.Shift), hdr.ReLU != 0)
		if err != nil {
			port.WriteByte('!')
			port.WriteUint64LE(0)
			port.WriteUint32LE(0)
			return
		}

		input := s.Stores.CurrentInput()
		out = make([]int8, outNeurons)
		if err := tinyml.RunLayer(s.Engine, layer, int8View(input), out); err != nil {
			port.WriteByte('!')
			port.WriteUint64LE(0)
			port.WriteUint32LE(0)
			return
		}

		copy(s.Stores.OtherInput(), byteView(out))
		s.Stores.Swap()
		for range out {
			port.WriteByte('.')
		}
	}

	cycles := s.Timer.Now() - start
	port.WriteByte('!')
	port.WriteUint64LE(cycles)
	values := make([]uint32, len(out))
	for i, v := range out {
		values[i] = uint32(uint8(v))
	}
	port.WriteUint32LE(uint32(len(values)))
	for _, v := range values {
		port.WriteUint32LE(v)
	}
}

// sizedView clamps total to the backing store's capacity, matching the
// core's documented clamp-and-keep-running policy rather than desyncing
// the wire protocol on an oversized payload (spec.md section 7).
func sizedView(buf []byte, total uint32) []byte {
	n := int(total)
	if n > len(buf) {
		n = len(buf)
	}
	return buf[:n]
}

func int8View(b []byte) []int8 {
	out := make([]int8, len(b))
	for i, v := range b {
		out[i] = int8(v)
	}
	return out
}

func byteView(b []int8) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = byte(v)
	}
	return out
}
