// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tinyml

import (
	"fmt"

	"github.com/Nyfeu/RISC-V/host/npu"
)

// Engine is the subset of the NPU driver's contract RunLayer drives.
// Production code wraps a *npu.Driver with NewEngine; tests substitute a
// software model of the array's arithmetic, since no goroutine-based fake
// can stand in for an actual systolic multiply the way host/dma's fake
// hardware model stands in for a copy engine.
type Engine interface {
	Configure(k uint32, q npu.QuantParams)
	LoadWeights(words []uint32)
	LoadInputs(words []uint32)
	Start()
	WaitDone()
	ReadOutput(buf []uint32, nWords uint32)
}

// npuEngine adapts *npu.Driver to Engine over the PIO data path.
type npuEngine struct{ d *npu.Driver }

// NewEngine wraps an NPU driver for use by RunLayer.
func NewEngine(d *npu.Driver) Engine { return npuEngine{d: d} }

func (e npuEngine) Configure(k uint32, q npu.QuantParams) { e.d.Configure(k, q) }
func (e npuEngine) LoadWeights(words []uint32)            { e.d.LoadWeights(0, words, uint32(len(words))) }
func (e npuEngine) LoadInputs(words []uint32)             { e.d.LoadInputs(0, words, uint32(len(words))) }
func (e npuEngine) Start()                                { e.d.Start() }
func (e npuEngine) WaitDone()                              { e.d.WaitDone() }
func (e npuEngine) ReadOutput(buf []uint32, nWords uint32) { e.d.ReadOutput(buf, nWords) }

// RunLayer evaluates one fully-connected i8 layer on the given engine,
// producing i8 outputs, per spec.md section 4.5: tile the layer into 4x4
// weight blocks and 4-wide input groups, run one NPU invocation per tile
// pair, accumulate the four raw lane outputs into software accumulators
// seeded from bias, and quantize each accumulator once all tiles covering
// its output group have been summed.
func RunLayer(engine Engine, layer LayerDescriptor, input []int8, output []int8) error {
	if err := layer.Validate(); err != nil {
		return err
	}
	if len(output) < int(layer.OutNeurons) {
		return fmt.Errorf("tinyml: output buffer length %d, want at least %d", len(output), layer.OutNeurons)
	}

	engine.Configure(TileDim, npu.RawAccumulation)

	ogGroups := ceilGroups(int(layer.OutNeurons))
	igGroups := ceilGroups(int(layer.InFeatures))

	for og := 0; og < ogGroups; og++ {
		base := og * TileDim
		var acc [TileDim]int32
		for k := 0; k < TileDim; k++ {
			acc[k] = layer.biasAt(base + k)
		}

		for ig := 0; ig < igGroups; ig++ {
			igBase := ig * TileDim

			var weightWords [TileDim]uint32
			for row := 0; row < TileDim; row++ {
				var line [TileDim]int8
				for col := 0; col < TileDim; col++ {
					line[col] = layer.weightAt(base+col, igBase+row)
				}
				weightWords[row] = npu.PackLanes(line)
			}

			var vec [TileDim]int8
			for r := 0; r < TileDim; r++ {
				vec[r] = inputAt(input, igBase+r)
			}
			inputWord := npu.PackLanes(vec)

			engine.LoadWeights(weightWords[:])
			engine.LoadInputs([]uint32{inputWord})
			engine.Start()
			engine.WaitDone()

			var raw [TileDim]uint32
			engine.ReadOutput(raw[:], TileDim)
			for k := 0; k < TileDim; k++ {
				acc[k] += int32(raw[k])
			}
		}

		q := layer.quant()
		for k := 0; k < TileDim; k++ {
			idx := base + k
			if idx >= int(layer.OutNeurons) {
				continue
			}
			output[idx] = npu.Quantize(acc[k], q)
		}
	}
	return nil
}
