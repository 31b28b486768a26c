// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

//go:build socreal_devmem

package mmio

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// MapDevMem backs a Window by mmap-ing /dev/mem directly at the given
// physical base address, for hosts that expose the SoC's register space
// through the conventional Linux /dev/mem path rather than through
// periph's pmem allocator. Selected by the `socreal_devmem` build tag as
// an alternative to Map (see real_pmem.go); grounded on the golang.org/x/sys
// dependency carried by the pack's other bare-metal and emulator repos.
func MapDevMem(base uintptr, sizeBytes int) (*Window, error) {
	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("mmio: open /dev/mem: %w", err)
	}
	defer f.Close()

	pageSize := os.Getpagesize()
	aligned := int(base) &^ (pageSize - 1)
	delta := int(base) - aligned
	length := sizeBytes + delta
	if length%pageSize != 0 {
		length += pageSize - length%pageSize
	}

	data, err := unix.Mmap(int(f.Fd()), int64(aligned), length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmio: mmap %#x: %w", base, err)
	}

	w := &Window{base: base}
	b := data[delta : delta+sizeBytes]
	w.regs = unsafe.Slice((*Reg32)(unsafe.Pointer(&b[0])), sizeBytes/4)
	return w, nil
}
