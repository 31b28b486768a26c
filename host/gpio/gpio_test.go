// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package gpio

import (
	"testing"

	hostgpio "github.com/Nyfeu/RISC-V/conn/gpio"
	"github.com/Nyfeu/RISC-V/conn/mmio"
	"github.com/Nyfeu/RISC-V/host/socmap"
)

func newFake() (*Bank, *mmio.Window) {
	win := mmio.NewFake(0x08)
	return NewBank(win), win
}

func TestLEDOutSetsAndClearsBit(t *testing.T) {
	t.Parallel()
	b, win := newFake()
	led := b.LED(3)
	if err := led.Out(hostgpio.High); err != nil {
		t.Fatal(err)
	}
	if win.Reg(socmap.GPIOLEDs).Load() != 1<<3 {
		t.Fatalf("LED3 high did not set bit 3")
	}
	if err := led.Out(hostgpio.Low); err != nil {
		t.Fatal(err)
	}
	if win.Reg(socmap.GPIOLEDs).Load() != 0 {
		t.Fatal("LED3 low did not clear bit 3")
	}
}

func TestLEDDoesNotTouchOtherBits(t *testing.T) {
	t.Parallel()
	b, win := newFake()
	b.LED(0).Out(hostgpio.High)
	b.LED(1).Out(hostgpio.High)
	if win.Reg(socmap.GPIOLEDs).Load() != 0b11 {
		t.Fatalf("got %#b, want bits 0 and 1", win.Reg(socmap.GPIOLEDs).Load())
	}
	b.LED(0).Out(hostgpio.Low)
	if win.Reg(socmap.GPIOLEDs).Load() != 0b10 {
		t.Fatalf("clearing LED0 should not affect LED1, got %#b", win.Reg(socmap.GPIOLEDs).Load())
	}
}

func TestSwitchReadReflectsRegister(t *testing.T) {
	t.Parallel()
	b, win := newFake()
	win.Reg(socmap.GPIOSwitches).Store(1 << 5)
	sw := b.Switch(5)
	if sw.Read() != hostgpio.High {
		t.Fatal("switch 5 should read High")
	}
	if b.Switch(6).Read() != hostgpio.Low {
		t.Fatal("switch 6 should read Low")
	}
}

func TestSwitchInRejectsPullAndEdge(t *testing.T) {
	t.Parallel()
	b, _ := newFake()
	sw := b.Switch(0)
	if err := sw.In(hostgpio.Float, hostgpio.NoEdge); err != nil {
		t.Fatalf("Float/NoEdge should be accepted: %v", err)
	}
	if err := sw.In(hostgpio.PullUp, hostgpio.NoEdge); err == nil {
		t.Fatal("PullUp should be rejected, no pull resistor on this hardware")
	}
	if err := sw.In(hostgpio.Float, hostgpio.RisingEdge); err == nil {
		t.Fatal("RisingEdge should be rejected, no edge interrupt on this hardware")
	}
}

func TestOutOfRangeBitReturnsInvalid(t *testing.T) {
	t.Parallel()
	b, _ := newFake()
	if b.LED(32) != hostgpio.INVALID {
		t.Fatal("LED(32) should be INVALID")
	}
	if b.Switch(-1) != hostgpio.INVALID {
		t.Fatal("Switch(-1) should be INVALID")
	}
}
