// grain_outputs.go - Auxiliary CV, pulse and LED outputs

package main

// randLCG is the deterministic noise source. The hardware stirs in a
// card-unique ID so every unit sounds subtly different; here the seed is
// a constructor input so renders and tests are exactly reproducible.
type randLCG struct {
	state uint32
}

func newRandLCG(seed uint32) *randLCG {
	if seed == 0 {
		seed = 1
	}
	return &randLCG{state: seed}
}

// next12 steps the generator and returns the top 12 bits.
func (r *randLCG) next12() uint32 {
	r.state = LCG_MUL*r.state + LCG_ADD
	return r.state >> 20
}

// OutputState drives everything on the panel that is not the audio pair:
// the noise CV tap, the buffer phase ramp, the grain near-complete pulse,
// the stochastic clock, and the LED levels.
type OutputState struct {
	pulse1Counter int32
	pulse2Counter int32

	stochasticCounter int32
	stochasticPeriod  int32

	cvNoise int16
	cvPhase int16

	lastOutL int16
	lastOutR int16
}

func NewOutputState() *OutputState {
	return &OutputState{stochasticPeriod: 2400}
}

// rollNoise re-rolls the CV1 noise tap. Called on every grain trigger.
func (os *OutputState) rollNoise(rng *randLCG) {
	os.cvNoise = int16(int32(rng.next12()&Q12_MASK) - AUDIO_RANGE)
}

// firePulse1 starts the near-complete pulse unless one is still running;
// an in-flight pulse keeps its full width rather than retriggering.
func (os *OutputState) firePulse1() {
	if os.pulse1Counter <= 0 {
		os.pulse1Counter = GRAIN_END_PULSE_DURATION
	}
}

// updateStochasticClock runs the probabilistic Pulse2 source. The period
// shrinks as the Y knob (grain size) grows smaller, and each period end
// fires only when a fresh random draw lands under the X knob value.
func (os *OutputState) updateStochasticClock(rng *randLCG, xKnob, yKnob int32) {
	os.stochasticPeriod = STOCHASTIC_PERIOD_MAX -
		((yKnob * (STOCHASTIC_PERIOD_MAX - STOCHASTIC_PERIOD_MIN)) / KNOB_MAX)

	os.stochasticCounter++
	if os.stochasticCounter < os.stochasticPeriod {
		return
	}
	os.stochasticCounter = 0

	if int32(rng.next12()&Q12_MASK) < xKnob && os.pulse2Counter <= 0 {
		os.pulse2Counter = GRAIN_END_PULSE_DURATION
	}
}

// tickPulses counts down both pulse outputs and writes their levels.
func (os *OutputState) tickPulses(out *PanelOutputs) {
	if os.pulse1Counter > 0 {
		os.pulse1Counter--
		out.Pulse1 = true
	} else {
		out.Pulse1 = false
	}

	if os.pulse2Counter > 0 {
		os.pulse2Counter--
		out.Pulse2 = true
	} else {
		out.Pulse2 = false
	}
}

// updateCV writes the noise tap and the write-head phase ramp. The ramp
// keeps moving while frozen because the write head keeps advancing.
func (os *OutputState) updateCV(ring *RingBuffer, out *PanelOutputs) {
	phase := (ring.WriteHead() * (AUDIO_RANGE - 1)) / (ring.Length() - 1)
	if phase > AUDIO_RANGE-1 {
		phase = AUDIO_RANGE - 1
	}
	os.cvPhase = int16(phase)

	out.CV1 = os.cvNoise
	out.CV2 = os.cvPhase
}

// updateLEDs refreshes the cosmetic levels: audio amplitude on 0/1, CV
// magnitude on 2/3, pulse states on 4/5. Runs at the control rate.
func (os *OutputState) updateLEDs(out *PanelOutputs) {
	out.LED[0] = uint16((cabs32(int32(os.lastOutL)) * KNOB_MAX) / AUDIO_RANGE)
	out.LED[1] = uint16((cabs32(int32(os.lastOutR)) * KNOB_MAX) / AUDIO_RANGE)

	out.LED[2] = uint16((cabs32(int32(os.cvNoise)) * KNOB_MAX) / AUDIO_RANGE)
	out.LED[3] = uint16((int32(os.cvPhase) * KNOB_MAX) / (AUDIO_RANGE - 1))

	out.LED[4] = ledLevel(os.pulse1Counter > 0)
	out.LED[5] = ledLevel(os.pulse2Counter > 0)
}

func ledLevel(on bool) uint16 {
	if on {
		return KNOB_MAX
	}
	return 0
}
