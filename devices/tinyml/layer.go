// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package tinyml decomposes a dense quantized layer into 4x4 weight tiles
// and 4-wide input tiles, drives the NPU per tile, and accumulates partial
// products in software before quantizing each neuron's result.
//
// This is the one package in the tree with no periph ancestor: nothing in
// the example corpus tiles a matrix over a fixed-size systolic array. It
// borrows host/npu's register-driver idiom for RunLayer's NPU
// choreography; the tiling algorithm itself is grounded directly in
// spec.md section 4.5, the only source for it.
package tinyml

import (
	"fmt"

	"github.com/Nyfeu/RISC-V/host/npu"
)

// TileDim is the systolic array's fixed geometry: 4x4 weights, 4-wide
// input and output lanes.
const TileDim = 4

// LayerDescriptor is one fully-connected i8 layer: row-major weights
// (OutNeurons x InFeatures), per-neuron bias, and the quantization
// parameters applied after accumulation.
type LayerDescriptor struct {
	Weights    []int8 // row-major, len == InFeatures*OutNeurons
	Bias       []int32
	InFeatures uint16
	OutNeurons uint16
	Shift      uint8
	Mult       uint32
	UseReLU    bool
}

// Validate checks the slice-length invariants spec.md section 3 states for
// a layer descriptor.
func (l LayerDescriptor) Validate() error {
	want := int(l.InFeatures) * int(l.OutNeurons)
	if len(l.Weights) != want {
		return fmt.Errorf("tinyml: weights length %d, want %d (in_features*out_neurons)", len(l.Weights), want)
	}
	if len(l.Bias) != int(l.OutNeurons) {
		return fmt.Errorf("tinyml: bias length %d, want %d (out_neurons)", len(l.Bias), int(l.OutNeurons))
	}
	return nil
}

func (l LayerDescriptor) quant() npu.QuantParams {
	return npu.QuantParams{Mult: l.Mult, Shift: l.Shift, ZeroPoint: 0, ReLU: l.UseReLU}
}

// weightAt returns weights[row, col] in the layer's row-major layout, or 0
// if either index is a padding index beyond the real dimensions.
func (l LayerDescriptor) weightAt(outNeuron, inFeature int) int8 {
	if outNeuron < 0 || outNeuron >= int(l.OutNeurons) || inFeature < 0 || inFeature >= int(l.InFeatures) {
		return 0
	}
	return l.Weights[outNeuron*int(l.InFeatures)+inFeature]
}

func (l LayerDescriptor) biasAt(outNeuron int) int32 {
	if outNeuron < 0 || outNeuron >= int(l.OutNeurons) {
		return 0
	}
	return l.Bias[outNeuron]
}

func inputAt(input []int8, i int) int8 {
	if i < 0 || i >= len(input) {
		return 0
	}
	return input[i]
}

// ceilGroups returns the number of TileDim-wide groups needed to cover n.
func ceilGroups(n int) int {
	return (n + TileDim - 1) / TileDim
}
