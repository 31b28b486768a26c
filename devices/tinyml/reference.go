// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tinyml

import "github.com/Nyfeu/RISC-V/host/npu"

// ReferenceLayer computes a layer with plain scalar arithmetic, with no
// tiling and no NPU involvement: out[j] = sat_i8(relu?((bias[j] + sum_i
// in[i]*w[j,i]) * mult >> shift)). RunLayer must produce bit-identical
// results to this function for any layer shape (spec.md section 8,
// invariant 7); it exists for tests and for hosts that would rather not
// drive the accelerator at all.
func ReferenceLayer(layer LayerDescriptor, input []int8) ([]int8, error) {
	if err := layer.Validate(); err != nil {
		return nil, err
	}
	q := layer.quant()
	out := make([]int8, layer.OutNeurons)
	for j := 0; j < int(layer.OutNeurons); j++ {
		acc := layer.biasAt(j)
		for i := 0; i < int(layer.InFeatures); i++ {
			acc += int32(inputAt(input, i)) * int32(layer.weightAt(j, i))
		}
		out[j] = npu.Quantize(acc, q)
	}
	return out, nil
}
