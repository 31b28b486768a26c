// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tinyml

import "fmt"

// Stores holds the three statically-reserved byte regions the
// command-server protocol populates before a run: the weight store, the
// bias store, and a pair of ping-pong activation buffers. The four regions
// are allocated once by NewStores and never grow; LayerAt allocates fresh
// slices for each descriptor it builds.
type Stores struct {
	Weights []byte
	Bias    []byte
	bufA    []byte
	bufB    []byte
	active  int // 0 selects bufA as the current input, 1 selects bufB
}

// NewStores allocates the three backing regions once, sized for the
// caller's largest expected model.
func NewStores(weightsCap, biasCap, bufCap int) *Stores {
	return &Stores{
		Weights: make([]byte, weightsCap),
		Bias:    make([]byte, biasCap),
		bufA:    make([]byte, bufCap),
		bufB:    make([]byte, bufCap),
	}
}

// CurrentInput returns the ping-pong buffer currently selected as the
// layer chain's input.
func (s *Stores) CurrentInput() []byte {
	if s.active == 0 {
		return s.bufA
	}
	return s.bufB
}

// OtherInput returns the buffer not currently selected, the natural
// destination for the next layer's output in a ping-pong chain.
func (s *Stores) OtherInput() []byte {
	if s.active == 0 {
		return s.bufB
	}
	return s.bufA
}

// Swap flips which buffer CurrentInput reports, after a layer has written
// its output into OtherInput.
func (s *Stores) Swap() {
	s.active ^= 1
}

// LayerAt builds a LayerDescriptor from the shared stores at the given
// byte offsets, per the `R` command's per-layer header (spec.md section
// 4.6). The weight bytes and the little-endian bias words are copied into
// newly allocated slices; the descriptor does not alias the stores.
func (s *Stores) LayerAt(wOff, bOff int, inFeatures, outNeurons uint16, mult uint32, shift uint8, relu bool) (LayerDescriptor, error) {
	nWeights := int(inFeatures) * int(outNeurons)
	if wOff < 0 || wOff+nWeights > len(s.Weights) {
		return LayerDescriptor{}, fmt.Errorf("tinyml: weight offset %d+%d out of range for a %d-byte store", wOff, nWeights, len(s.Weights))
	}
	if bOff < 0 || bOff+int(outNeurons)*4 > len(s.Bias) {
		return LayerDescriptor{}, fmt.Errorf("tinyml: bias offset %d+%d out of range for a %d-byte store", bOff, int(outNeurons)*4, len(s.Bias))
	}
	return LayerDescriptor{
		Weights:    bytesToInt8(s.Weights[wOff : wOff+nWeights]),
		Bias:       bytesToInt32LE(s.Bias[bOff : bOff+int(outNeurons)*4]),
		InFeatures: inFeatures,
		OutNeurons: outNeurons,
		Shift:      shift,
		Mult:       mult,
		UseReLU:    relu,
	}, nil
}

func bytesToInt8(b []byte) []int8 {
	out := make([]int8, len(b))
	for i, v := range b {
		out[i] = int8(v)
	}
	return out
}

func bytesToInt32LE(b []byte) []int32 {
	out := make([]int32, len(b)/4)
	for i := range out {
		off := i * 4
		out[i] = int32(uint32(b[off]) | uint32(b[off+1])<<8 | uint32(b[off+2])<<16 | uint32(b[off+3])<<24)
	}
	return out
}
