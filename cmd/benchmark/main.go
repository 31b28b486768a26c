// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// benchmark drives devices/tinyml.RunFilterBank over a small filter bank
// and reports per-invocation cycle counts for both reuse idioms
// documented in spec.md section 4.4, input-stationary against naive
// per-filter reloads. It replaces gpio-write's PWM/bit-stream-to-a-pin
// role: this board has no PWM or bit-stream pin, and its one interesting
// throughput question is tile reuse, not waveform generation.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kr/pretty"

	"github.com/Nyfeu/RISC-V/conn/mmio"
	"github.com/Nyfeu/RISC-V/devices/tinyml"
	"github.com/Nyfeu/RISC-V/host/clint"
	"github.com/Nyfeu/RISC-V/host/npu"
)

func mainImpl() error {
	count := flag.Int("filters", 4, "number of filters in the synthetic bank")
	flag.Parse()

	win := mmio.NewFake(0x90)
	timer := clint.New(mmio.NewFake(0x20))
	engine := tinyml.NewEngine(npu.New(win, nil))

	input := [tinyml.TileDim]int8{1, 2, 3, 4}
	filters := make([][tinyml.TileDim][tinyml.TileDim]int8, *count)
	for i := range filters {
		for r := 0; r < tinyml.TileDim; r++ {
			filters[i][r][r] = int8(i + 1)
		}
	}

	stationary := tinyml.RunFilterBank(engine, timer, input, filters, true)
	naive := tinyml.RunFilterBank(engine, timer, input, filters, false)

	fmt.Println("input-stationary:")
	pretty.Println(stationary)
	fmt.Println("naive reload:")
	pretty.Println(naive)
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "benchmark: %s.\n", err)
		os.Exit(1)
	}
}
