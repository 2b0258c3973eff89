// grain_window.go - Precomputed Hann window lookup table

package main

import "math"

// Window table size. 256 entries interpolated linearly is transparent for
// grain envelopes at 24kHz.
const (
	HANN_TABLE_SIZE = 256
)

// hannTable holds the raised-cosine grain envelope in Q12.
// Index mapping: grain progress 0..4095 scaled by (HANN_TABLE_SIZE-1)>>12.
// The first and last entries are forced to exactly zero so a windowed
// grain can never click at its boundaries, whatever rounding does.
var hannTable [HANN_TABLE_SIZE]int32

func init() {
	for i := 0; i < HANN_TABLE_SIZE; i++ {
		pos := float64(i) / float64(HANN_TABLE_SIZE-1)
		angle := 2.0 * math.Pi * pos
		w := 0.5 * (1.0 - math.Cos(angle))

		v := int32(w*float64(Q12_ONE) + 0.5)
		if i == 0 || i == HANN_TABLE_SIZE-1 {
			v = 0
		}
		if v < 0 {
			v = 0
		}
		if v > Q12_ONE {
			v = Q12_ONE
		}
		hannTable[i] = v
	}
}

// hannWeight returns the Q12 envelope weight for a Q12 grain progress
// (0..4095) using linear interpolation between adjacent table entries.
func hannWeight(posQ12 int32) int32 {
	if posQ12 < 0 {
		posQ12 = 0
	}
	if posQ12 > Q12_MASK {
		posQ12 = Q12_MASK
	}

	scaled := posQ12 * (HANN_TABLE_SIZE - 1)
	idx := scaled >> Q12_SHIFT
	frac := scaled & Q12_MASK

	if idx >= HANN_TABLE_SIZE-1 {
		return hannTable[HANN_TABLE_SIZE-1]
	}

	w0 := hannTable[idx]
	w1 := hannTable[idx+1]
	w := w0 + (((w1 - w0) * frac) >> Q12_SHIFT)
	if w < 0 {
		w = 0
	}
	return w
}
