// Copyright 2016 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package tinyml

import "testing"

func TestSwapFlipsCurrentAndOther(t *testing.T) {
	t.Parallel()
	s := NewStores(16, 16, 8)
	first := s.CurrentInput()
	other := s.OtherInput()
	s.Swap()
	if &s.CurrentInput()[0] != &other[0] {
		t.Fatal("Swap should make the previous OtherInput the new CurrentInput")
	}
	if &s.OtherInput()[0] != &first[0] {
		t.Fatal("Swap should make the previous CurrentInput the new OtherInput")
	}
}

func TestLayerAtBuildsDescriptorFromStores(t *testing.T) {
	t.Parallel()
	s := NewStores(16, 16, 8)
	copy(s.Weights, []byte{1, 2, 3, 4})
	// bias: two little-endian int32 values, 10 and -1.
	copy(s.Bias, []byte{10, 0, 0, 0, 0xFF, 0xFF, 0xFF, 0xFF})

	layer, err := s.LayerAt(0, 0, 2, 2, 1, 0, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(layer.Weights) != 4 || layer.Weights[0] != 1 || layer.Weights[3] != 4 {
		t.Fatalf("weights view = %v", layer.Weights)
	}
	if len(layer.Bias) != 2 || layer.Bias[0] != 10 || layer.Bias[1] != -1 {
		t.Fatalf("bias view = %v", layer.Bias)
	}
}

func TestLayerAtRejectsOutOfRangeOffset(t *testing.T) {
	t.Parallel()
	s := NewStores(4, 4, 4)
	if _, err := s.LayerAt(2, 0, 2, 2, 1, 0, false); err == nil {
		t.Fatal("expected an error when weights offset+length exceeds the store")
	}
	if _, err := s.LayerAt(0, 1, 2, 2, 1, 0, false); err == nil {
		t.Fatal("expected an error when bias offset+length exceeds the store")
	}
}
