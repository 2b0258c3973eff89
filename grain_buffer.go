// grain_buffer.go - Packed stereo circular capture buffer

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █      ▄████  ██▀███    ▄▄▄        ██▓ ███▄    █   ██████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █     ██▒ ▀█▒▓██ ▒ ██▒ ▒████▄     ▓██▒ ██ ▀█   █ ▒██    ▒
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒██░▄▄▄░▓██ ░▄█ ▒ ▒██  ▀█▄   ▒██▒▓██  ▀█ ██▒░ ▓██▄
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ░▓█  ██▓▒██▀▀█▄   ░██▄▄▄▄██  ░██░▓██▒  ▐▌██▒  ▒   ██▒
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒▓███▀▒░██▓ ▒██▒  ▓█   ▓██▒ ░██░▒██░   ▓██░▒██████▒▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒     ░▒   ▒ ░ ▒▓ ░▒▓░  ▒▒   ▓▒█░ ░▓  ░ ▒░   ▒ ▒ ▒ ▒▓▒ ▒ ░
▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░     ░   ░    ░▒ ░ ▒░   ▒   ▒▒ ░ ▒ ░░ ░░   ░ ▒░ ░ ░▒  ░ ░
▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░      ░   ░    ░░   ░    ░   ▒    ▒ ░   ░   ░ ░ ░░  ░  ░
░           ░             ░      ░            ░      ░ ░           ░          ░     ░            ░  ░ ░           ░        ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionGrains
License: GPLv3 or later
*/

package main

// AudioFormat selects the capture storage density.
type AudioFormat int

const (
	// FORMAT_HIFI stores two 12-bit samples per uint32 slot (2.6s buffer).
	FORMAT_HIFI AudioFormat = iota
	// FORMAT_LOFI stores two noise-shaped 8-bit samples per uint16 slot,
	// doubling capture time (5.2s buffer) at the cost of depth.
	FORMAT_LOFI
)

// RingBuffer is the continuously-written circular capture store shared by
// the recording head and every grain. Writer and readers run on the same
// tick, so consistency is purely positional: while recording, readers are
// clamped to stay SAFETY_MARGIN_SAMPLES behind the write head. While the
// buffer is frozen nothing is written and any position is safe.
type RingBuffer struct {
	format AudioFormat
	length int32

	slots32 []uint32 // HiFi storage
	slots16 []uint16 // LoFi storage

	writeHead int32

	rng *randLCG // dither source for the LoFi quantizer

	// LoFi error-diffusion and noise-shaping state, per channel
	ditherErrL   int32
	ditherErrR   int32
	filteredErrL int32
	filteredErrR int32
}

// NewRingBuffer allocates a zeroed capture buffer in the given format.
// The RNG feeds triangular dither in LoFi mode; HiFi ignores it.
func NewRingBuffer(format AudioFormat, rng *randLCG) *RingBuffer {
	rb := &RingBuffer{format: format, rng: rng}
	switch format {
	case FORMAT_LOFI:
		rb.length = BUFF_LENGTH_LOFI
		rb.slots16 = make([]uint16, BUFF_LENGTH_LOFI)
	default:
		rb.length = BUFF_LENGTH_HIFI
		rb.slots32 = make([]uint32, BUFF_LENGTH_HIFI)
		// Samples are stored offset-2048, so encoded silence is not the
		// zero value. Untouched regions must read back as silence.
		silence := packHiFi(0, 0)
		for i := range rb.slots32 {
			rb.slots32[i] = silence
		}
	}
	return rb
}

func (rb *RingBuffer) Length() int32    { return rb.length }
func (rb *RingBuffer) WriteHead() int32 { return rb.writeHead }

// Capture stores one stereo pair at the write head when record is true,
// then advances the head unconditionally. The head must keep moving while
// frozen so the phase ramp CV output stays continuous.
func (rb *RingBuffer) Capture(left, right int16, record bool) {
	if record {
		if rb.format == FORMAT_LOFI {
			rb.slots16[rb.writeHead] = rb.packLoFi(left, right)
		} else {
			rb.slots32[rb.writeHead] = packHiFi(left, right)
		}
	}

	rb.writeHead++
	if rb.writeHead >= rb.length {
		rb.writeHead = 0
	}
}

// ReadInterpolated returns the sample at pos+frac (frac in Q12) for the
// given channel (0=left, 1=right), linearly interpolated between adjacent
// slots with wraparound, clamped to the 12-bit range.
func (rb *RingBuffer) ReadInterpolated(pos, frac int32, channel int) int16 {
	p1 := rb.Wrap(pos)
	p2 := p1 + 1
	if p2 >= rb.length {
		p2 = 0
	}

	s1 := rb.unpack(p1, channel)
	s2 := rb.unpack(p2, channel)

	interp := int32(s1) + ((int32(s2)-int32(s1))*frac)>>Q12_SHIFT
	return clipAudio(interp)
}

// Wrap brings an arbitrary position into [0, length).
func (rb *RingBuffer) Wrap(pos int32) int32 {
	for pos >= rb.length {
		pos -= rb.length
	}
	for pos < 0 {
		pos += rb.length
	}
	return pos
}

// DistanceToWrite returns how far behind the write head a position sits,
// measured forward around the ring.
func (rb *RingBuffer) DistanceToWrite(pos int32) int32 {
	d := rb.writeHead - pos
	if d < 0 {
		d += rb.length
	}
	return d
}

// ClampBehindWrite pulls a read position back to the nearest safe slot
// when it has come within the safety margin of the write head. Callers
// skip this entirely while the buffer is frozen.
func (rb *RingBuffer) ClampBehindWrite(pos int32) (int32, bool) {
	if rb.DistanceToWrite(pos) >= SAFETY_MARGIN_SAMPLES {
		return pos, false
	}
	safe := rb.writeHead - SAFETY_MARGIN_SAMPLES
	if safe < 0 {
		safe += rb.length
	}
	return safe, true
}

func (rb *RingBuffer) unpack(pos int32, channel int) int16 {
	if rb.format == FORMAT_LOFI {
		return unpackLoFi(rb.slots16[pos], channel)
	}
	return unpackHiFi(rb.slots32[pos], channel)
}

// packHiFi packs two 12-bit signed samples into the low 24 bits of a slot.
func packHiFi(left, right int16) uint32 {
	l := uint32(int32(left)+AUDIO_RANGE) & 0xFFF
	r := uint32(int32(right)+AUDIO_RANGE) & 0xFFF
	return (l << 12) | r
}

func unpackHiFi(slot uint32, channel int) int16 {
	if channel == 0 {
		return int16(int32((slot>>12)&0xFFF) - AUDIO_RANGE)
	}
	return int16(int32(slot&0xFFF) - AUDIO_RANGE)
}

// packLoFi quantizes both channels to 8 bits with triangular dither,
// error diffusion and noise shaping, then packs them into one uint16.
func (rb *RingBuffer) packLoFi(left, right int16) uint16 {
	l8 := rb.quantizeToEightBit(int32(left), &rb.ditherErrL, &rb.filteredErrL)
	r8 := rb.quantizeToEightBit(int32(right), &rb.ditherErrR, &rb.filteredErrR)
	return (uint16(uint8(l8)) << 8) | uint16(uint8(r8))
}

func unpackLoFi(slot uint16, channel int) int16 {
	if channel == 0 {
		return int16(int8(slot>>8)) << 4
	}
	return int16(int8(slot&0xFF)) << 4
}

// quantizeToEightBit drops a 12-bit sample to 8 bits. Triangular dither
// decorrelates the quantization error, error diffusion carries it to the
// next sample, and a one-pole high-pass in the feedback path pushes the
// residue above ~2kHz where it is least audible.
func (rb *RingBuffer) quantizeToEightBit(sample12 int32, errState, filteredErrState *int32) int8 {
	sample12 += *errState

	dither := rb.triangularDither()
	sample12 += dither

	q := sample12 >> 4
	if q > 127 {
		q = 127
	}
	if q < -128 {
		q = -128
	}

	reconstructed := q << 4
	rawErr := (sample12 - dither) - reconstructed

	// y[n] = x[n] - 0.75*x[n] + 0.75*y[n-1]
	filtered := rawErr - ((rawErr * 3072) >> Q12_SHIFT) + ((*filteredErrState * 3072) >> Q12_SHIFT)
	*filteredErrState = filtered

	// 7/8 retention keeps the feedback loop from accumulating
	*errState = (filtered * 7) >> 3

	return int8(q)
}

// triangularDither returns ±31 with a triangular PDF: the difference of
// two uniform draws has better spectral behaviour than a single draw.
func (rb *RingBuffer) triangularDither() int32 {
	r1 := int32(rb.rng.next12() & 0x1F)
	r2 := int32(rb.rng.next12() & 0x1F)
	return r1 - r2
}

// notchFilter is a narrow biquad notch at a quarter of the sample rate
// (Q=100) that removes the multiplexer bleed from the audio inputs
// before capture.
type notchFilter struct {
	x1, x2 int32
	y1, y2 int32
}

func (nf *notchFilter) Process(in int16) int16 {
	out := (NOTCH_OOA0*(int32(in)+nf.x2) - NOTCH_A2OA0*nf.y2) >> 14
	nf.x2 = nf.x1
	nf.x1 = int32(in)
	nf.y2 = nf.y1
	nf.y1 = out
	return clipAudio(out)
}

// clipAudio clamps a working value to the 12-bit signed sample range.
func clipAudio(sample int32) int16 {
	if sample > AUDIO_RANGE-1 {
		sample = AUDIO_RANGE - 1
	}
	if sample < -AUDIO_RANGE {
		sample = -AUDIO_RANGE
	}
	return int16(sample)
}

func cabs32(a int32) int32 {
	if a < 0 {
		return -a
	}
	return a
}
