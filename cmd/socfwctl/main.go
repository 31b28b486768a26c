// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// socfwctl dumps the board's live register state and, interactively,
// toggles LED bits from the keyboard. It replaces gpio-read/gpio-write's
// role from the Linux-host GPIO tree: those tools resolved pins through
// periph's gpioreg registry and host.Init() driver discovery, neither of
// which applies to a single frozen MMIO map with no pluggable backends.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kr/pretty"
	"golang.org/x/term"

	"github.com/Nyfeu/RISC-V/conn/mmio"
	hostgpio "github.com/Nyfeu/RISC-V/conn/gpio"
	"github.com/Nyfeu/RISC-V/host/clint"
	"github.com/Nyfeu/RISC-V/host/dma"
	"github.com/Nyfeu/RISC-V/host/gpio"
	"github.com/Nyfeu/RISC-V/host/npu"
	"github.com/Nyfeu/RISC-V/host/plic"
	"github.com/Nyfeu/RISC-V/host/socmap"
	"github.com/Nyfeu/RISC-V/host/uart"
)

// board bundles every driver socfwctl can report on. It is assembled over
// the in-process fake backing by default; building with the socreal or
// socreal_devmem tags and wiring real mmio.Map/MapDevMem calls here is
// the production path (see conn/mmio/real_pmem.go and real_unix.go).
type board struct {
	gpio  *gpio.Bank
	timer *clint.Driver
	plic  *plic.Controller
	uart  *uart.Driver
	dma   *dma.Driver
	npu   *npu.Driver
}

func newFakeBoard() *board {
	return &board{
		gpio:  gpio.NewBank(mmio.NewFake(0x08)),
		timer: clint.New(mmio.NewFake(0x20)),
		plic:  plic.New(mmio.NewFake(0x20_0010)),
		uart:  uart.New(mmio.NewFake(0x08)),
		dma:   dma.New(mmio.NewFake(0x10)),
		npu:   npu.New(mmio.NewFake(0x90), nil),
	}
}

type status struct {
	Cycles     uint64
	SwitchBits [4]bool
}

func (b *board) snapshot() status {
	var s status
	s.Cycles = b.timer.Now()
	for i := 0; i < 4; i++ {
		s.SwitchBits[i] = b.gpio.Switch(i).Read() == hostgpio.High
	}
	return s
}

func mainImpl() error {
	interactive := flag.Bool("i", false, "toggle LED0 interactively from the keyboard")
	led := flag.Int("led", -1, "set this LED bit high once and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	if !*verbose {
		log.SetOutput(os.Stderr)
		log.SetFlags(0)
	}

	b := newFakeBoard()

	if *led >= 0 {
		if err := b.gpio.LED(*led).Out(hostgpio.High); err != nil {
			return err
		}
	}

	if *interactive {
		return runInteractive(b)
	}

	fmt.Printf("socfwctl: UART base %#x, NPU base %#x\n", socmap.UARTBase, socmap.NPUBase)
	pretty.Println(b.snapshot())
	return nil
}

// runInteractive reads raw keystrokes and toggles LED0 on each 't',
// quitting on 'q'. It is the one place this tree needs a real terminal.
func runInteractive(b *board) error {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("socfwctl: stdin is not a terminal: %w", err)
	}
	defer term.Restore(fd, old)

	led := b.gpio.LED(0)
	state := hostgpio.Low
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return err
		}
		switch buf[0] {
		case 'q':
			return nil
		case 't':
			if state == hostgpio.Low {
				state = hostgpio.High
			} else {
				state = hostgpio.Low
			}
			if err := led.Out(state); err != nil {
				return err
			}
		}
	}
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "socfwctl: %s.\n", err)
		os.Exit(1)
	}
}
