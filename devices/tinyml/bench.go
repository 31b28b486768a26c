// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tinyml

import "github.com/Nyfeu/RISC-V/host/npu"

// CycleSource is the subset of the timer driver RunFilterBank needs to
// report elapsed cycles; satisfied by *host/clint.Driver.
type CycleSource interface {
	Now() uint64
}

// BankResult is one filter's four raw lane outputs plus the cycle count
// observed for that single invocation.
type BankResult struct {
	Lanes  [TileDim]int32
	Cycles uint64
}

// RunFilterBank runs a bank of single-tile filters against one fixed input
// vector and reports per-invocation cycle counts via timer.
//
// stationary selects the input-stationary idiom from spec.md section 4.4:
// load the input vector once before the bank, instead of reissuing
// LoadInputs for every filter. Both orders compute identical results; the
// idiom is a performance-locality decision, not a correctness one, and
// this function exists so a caller can measure the difference on real
// hardware where FIFO reloads cost cycles the in-process fake does not
// model.
func RunFilterBank(engine Engine, timer CycleSource, input [TileDim]int8, filters [][TileDim][TileDim]int8, stationary bool) []BankResult {
	results := make([]BankResult, len(filters))
	engine.Configure(TileDim, npu.RawAccumulation)

	inputWord := npu.PackLanes(input)
	if stationary {
		engine.LoadInputs([]uint32{inputWord})
	}

	for i, filter := range filters {
		start := timer.Now()

		if !stationary {
			engine.LoadInputs([]uint32{inputWord})
		}
		var weightWords [TileDim]uint32
		for row := 0; row < TileDim; row++ {
			weightWords[row] = npu.PackLanes(filter[row])
		}
		engine.LoadWeights(weightWords[:])

		engine.Start()
		engine.WaitDone()

		var raw [TileDim]uint32
		engine.ReadOutput(raw[:], TileDim)
		var lanes [TileDim]int32
		for k := range lanes {
			lanes[k] = int32(raw[k])
		}
		results[i] = BankResult{Lanes: lanes, Cycles: timer.Now() - start}
	}
	return results
}
