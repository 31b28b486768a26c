// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package cmdserver

import (
	"testing"

	"github.com/Nyfeu/RISC-V/conn/mmio"
	"github.com/Nyfeu/RISC-V/devices/tinyml"
	"github.com/Nyfeu/RISC-V/host/clint"
	"github.com/Nyfeu/RISC-V/host/npu"
)

// fakePort is an in-memory stand-in for *host/uart.Driver: a read queue
// and a write log, so Dispatch can be tested without real MMIO polling.
type fakePort struct {
	in  []byte
	out []byte
}

func (p *fakePort) ReadByte() byte {
	b := p.in[0]
	p.in = p.in[1:]
	return b
}

func (p *fakePort) ReadUint32LE() uint32 {
	b0, b1, b2, b3 := p.ReadByte(), p.ReadByte(), p.ReadByte(), p.ReadByte()
	return uint32(b0) | uint32(b1)<<8 | uint32(b2)<<16 | uint32(b3)<<24
}

func (p *fakePort) ReadBytes(dest []byte) {
	for i := range dest {
		dest[i] = p.ReadByte()
	}
}

func (p *fakePort) WriteByte(b byte) { p.out = append(p.out, b) }

func (p *fakePort) WriteUint32LE(v uint32) {
	p.WriteByte(byte(v))
	p.WriteByte(byte(v >> 8))
	p.WriteByte(byte(v >> 16))
	p.WriteByte(byte(v >> 24))
}

func (p *fakePort) WriteUint64LE(v uint64) {
	p.WriteUint32LE(uint32(v))
	p.WriteUint32LE(uint32(v >> 32))
}

func le32(v uint32) []byte { return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)} }

// modelEngine lets these tests run RunLayer's actual arithmetic by
// modeling the array the same way devices/tinyml's fakeEngine does: a
// minimal software matrix-vector product driven off the loaded words.
type modelEngine struct {
	weightRows [tinyml.TileDim]uint32
	inputWord  uint32
	out        [tinyml.TileDim]uint32
}

func (m *modelEngine) Configure(k uint32, q npu.QuantParams) {}
func (m *modelEngine) LoadWeights(words []uint32)            { copy(m.weightRows[:], words) }
func (m *modelEngine) LoadInputs(words []uint32) {
	if len(words) > 0 {
		m.inputWord = words[0]
	}
}
func (m *modelEngine) Start() {
	in := npu.UnpackLanes(m.inputWord)
	for col := 0; col < tinyml.TileDim; col++ {
		var sum int32
		for row := 0; row < tinyml.TileDim; row++ {
			w := npu.UnpackLanes(m.weightRows[row])
			sum += int32(in[row]) * int32(w[col])
		}
		m.out[col] = uint32(sum)
	}
}
func (m *modelEngine) WaitDone() {}
func (m *modelEngine) ReadOutput(buf []uint32, n uint32) {
	for i := uint32(0); i < n && int(i) < len(buf); i++ {
		buf[i] = m.out[i]
	}
}

func newServer() *Server {
	stores := tinyml.NewStores(64, 64, 64)
	timer := clint.New(mmio.NewFake(0x20))
	return NewServer(stores, &modelEngine{}, timer)
}

func TestPingRespondsP(t *testing.T) {
	t.Parallel()
	s := newServer()
	p := &fakePort{in: []byte{byte(CmdPing)}}
	if err := s.Dispatch(p); err != nil {
		t.Fatal(err)
	}
	if len(p.out) != 1 || p.out[0] != 'P' {
		t.Fatalf("ping response = %v, want [P]", p.out)
	}
}

func TestUnknownTagRespondsOAndErrors(t *testing.T) {
	t.Parallel()
	s := newServer()
	p := &fakePort{in: []byte{'Z'}}
	if err := s.Dispatch(p); err == nil {
		t.Fatal("expected an error for an unrecognized tag")
	}
	if len(p.out) != 1 || p.out[0] != 'O' {
		t.Fatalf("unknown tag response = %v, want [O]", p.out)
	}
}

func TestConfigureAcks(t *testing.T) {
	t.Parallel()
	s := newServer()
	in := append([]byte{byte(CmdConfigure)}, le32(3)...)
	in = append(in, le32(4)...)
	in = append(in, le32(1)...)
	p := &fakePort{in: in}
	if err := s.Dispatch(p); err != nil {
		t.Fatal(err)
	}
	if s.quant.Mult != 3 || s.quant.Shift != 4 || !s.quant.ReLU {
		t.Fatalf("quant = %+v", s.quant)
	}
	if len(p.out) != 1 || p.out[0] != 'K' {
		t.Fatalf("configure response = %v, want [K]", p.out)
	}
}

func TestLoadWeightsCopiesIntoStore(t *testing.T) {
	t.Parallel()
	s := newServer()
	payload := []byte{1, 2, 3, 4}
	in := append([]byte{byte(CmdLoadWeights)}, le32(4)...)
	in = append(in, payload...)
	p := &fakePort{in: in}
	if err := s.Dispatch(p); err != nil {
		t.Fatal(err)
	}
	for i, b := range payload {
		if s.Stores.Weights[i] != b {
			t.Fatalf("weights[%d] = %d, want %d", i, s.Stores.Weights[i], b)
		}
	}
	if len(p.out) != 1 || p.out[0] != 'K' {
		t.Fatalf("load response = %v, want [K]", p.out)
	}
}

func TestRunSingleIdentityLayerReportsValues(t *testing.T) {
	t.Parallel()
	s := newServer()

	// identity 4x4, bias 0, mult=1 shift=0 no relu.
	copy(s.Stores.Weights, []byte{
		byte(int8(1)), 0, 0, 0,
		0, byte(int8(1)), 0, 0,
		0, 0, byte(int8(1)), 0,
		0, 0, 0, byte(int8(1)),
	})
	copy(s.Stores.CurrentInput(), []byte{5, 6, 7, 8})

	in := []byte{byte(CmdRun)}
	in = append(in, le32(1)...) // num_layers
	in = append(in, le32(4)...) // n_in_words
	in = append(in, le32(4)...) // n_out
	in = append(in, le32(0)...) // w_off
	in = append(in, le32(0)...) // b_off
	in = append(in, le32(1)...) // mult
	in = append(in, le32(0)...) // shift
	in = append(in, le32(0)...) // zero
	in = append(in, le32(0)...) // relu

	p := &fakePort{in: in}
	if err := s.Dispatch(p); err != nil {
		t.Fatal(err)
	}

	const outNeurons = 4
	for i := 0; i < outNeurons; i++ {
		if p.out[i] != '.' {
			t.Fatalf("expected a per-neuron progress byte at index %d, got %q", i, p.out[i])
		}
	}
	if p.out[outNeurons] != '!' {
		t.Fatalf("expected the '!' terminator after progress bytes, got %q", p.out[outNeurons])
	}
	rest := p.out[outNeurons+1:]
	// The fake CLINT window holds a constant counter, so the two timer
	// reads around the run are equal and the reported count is exactly 0.
	cyclesLo := uint32(rest[0]) | uint32(rest[1])<<8 | uint32(rest[2])<<16 | uint32(rest[3])<<24
	if cyclesLo != 0 {
		t.Fatalf("cycle count = %d, want 0 from a fake timer that never advances", cyclesLo)
	}
	lenOff := 8
	length := uint32(rest[lenOff]) | uint32(rest[lenOff+1])<<8 | uint32(rest[lenOff+2])<<16 | uint32(rest[lenOff+3])<<24
	if length != 4 {
		t.Fatalf("reported length = %d, want 4", length)
	}
	valOff := lenOff + 4
	for i := 0; i < 4; i++ {
		off := valOff + i*4
		v := uint32(rest[off]) | uint32(rest[off+1])<<8 | uint32(rest[off+2])<<16 | uint32(rest[off+3])<<24
		want := uint32(5 + i)
		if v != want {
			t.Fatalf("value[%d] = %d, want %d", i, v, want)
		}
	}
}
