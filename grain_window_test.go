// grain_window_test.go - Hann window table and interpolated lookup tests

package main

import (
	"testing"
)

func TestHannTable_BoundariesExactlyZero(t *testing.T) {
	if hannTable[0] != 0 {
		t.Errorf("hannTable[0] = %d, want exactly 0", hannTable[0])
	}
	if hannTable[HANN_TABLE_SIZE-1] != 0 {
		t.Errorf("hannTable[%d] = %d, want exactly 0", HANN_TABLE_SIZE-1, hannTable[HANN_TABLE_SIZE-1])
	}
}

func TestHannTable_PeakAndRange(t *testing.T) {
	var peak int32
	for i, v := range hannTable {
		if v < 0 || v > Q12_ONE {
			t.Fatalf("hannTable[%d] = %d, outside 0..%d", i, v, Q12_ONE)
		}
		if v > peak {
			peak = v
		}
	}
	if peak < 4000 {
		t.Errorf("window peak = %d, want near %d", peak, Q12_ONE)
	}
	t.Logf("window peak weight: %d/%d", peak, Q12_ONE)
}

func TestHannTable_RisesThenFalls(t *testing.T) {
	// First half must be non-decreasing, second half non-increasing.
	half := HANN_TABLE_SIZE / 2
	for i := 1; i < half; i++ {
		if hannTable[i] < hannTable[i-1] {
			t.Errorf("window dips at index %d: %d -> %d", i, hannTable[i-1], hannTable[i])
		}
	}
	for i := half + 1; i < HANN_TABLE_SIZE; i++ {
		if hannTable[i] > hannTable[i-1] {
			t.Errorf("window rises at index %d: %d -> %d", i, hannTable[i-1], hannTable[i])
		}
	}
}

func TestHannWeight_EndpointsZero(t *testing.T) {
	if w := hannWeight(0); w != 0 {
		t.Errorf("hannWeight(0) = %d, want 0", w)
	}
	if w := hannWeight(Q12_MASK); w != 0 {
		t.Errorf("hannWeight(%d) = %d, want 0", int32(Q12_MASK), w)
	}
}

func TestHannWeight_Interpolation(t *testing.T) {
	tests := []struct {
		name string
		pos  int32
	}{
		{"quarter", 1024},
		{"center", 2048},
		{"three quarters", 3072},
		{"between table entries", 33},
	}

	for _, tt := range tests {
		w := hannWeight(tt.pos)
		if w < 0 || w > Q12_ONE {
			t.Errorf("%s: hannWeight(%d) = %d, outside 0..%d", tt.name, tt.pos, w, Q12_ONE)
		}
		t.Logf("%s: progress %d -> weight %d", tt.name, tt.pos, w)
	}

	// Center of the window must be at or near full weight.
	if w := hannWeight(2048); w < 4000 {
		t.Errorf("center weight = %d, want near %d", w, Q12_ONE)
	}

	// Symmetry within interpolation rounding.
	for _, p := range []int32{100, 500, 1000, 1500} {
		a := hannWeight(p)
		b := hannWeight(Q12_MASK - p)
		if d := cabs32(a - b); d > 32 {
			t.Errorf("asymmetric window: weight(%d)=%d vs weight(%d)=%d", p, a, Q12_MASK-p, b)
		}
	}
}

func TestHannWeight_OutOfRangeClamps(t *testing.T) {
	if w := hannWeight(-500); w != 0 {
		t.Errorf("hannWeight(-500) = %d, want 0", w)
	}
	if w := hannWeight(9000); w != 0 {
		t.Errorf("hannWeight(9000) = %d, want 0", w)
	}
}
