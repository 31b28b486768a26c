// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tinyml

import "github.com/Nyfeu/RISC-V/host/npu"

// fakeEngine models the systolic array's arithmetic directly in Go: the
// four weight rows and the one input word loaded via LoadWeights/
// LoadInputs are combined into a 4x4 times 4x1 matrix-vector product on
// Start, exactly as the real array's K=4 accumulation would. This is the
// NPU-level analogue of host/dma/dma_test.go's goroutine hardware model,
// needed because no real array is available to run these tests against.
type fakeEngine struct {
	weightRows [TileDim]uint32
	inputWord  uint32
	out        [TileDim]uint32
}

func (f *fakeEngine) Configure(k uint32, q npu.QuantParams) {}

func (f *fakeEngine) LoadWeights(words []uint32) {
	copy(f.weightRows[:], words)
}

func (f *fakeEngine) LoadInputs(words []uint32) {
	if len(words) > 0 {
		f.inputWord = words[0]
	}
}

func (f *fakeEngine) Start() {
	in := npu.UnpackLanes(f.inputWord)
	for col := 0; col < TileDim; col++ {
		var sum int32
		for row := 0; row < TileDim; row++ {
			w := npu.UnpackLanes(f.weightRows[row])
			sum += int32(in[row]) * int32(w[col])
		}
		f.out[col] = uint32(sum)
	}
}

func (f *fakeEngine) WaitDone() {}

func (f *fakeEngine) ReadOutput(buf []uint32, n uint32) {
	for i := uint32(0); i < n && int(i) < len(buf); i++ {
		buf[i] = f.out[i]
	}
}
