// grain_params.go - Control conditioning and parameter mapping

package main

// ControlState caches the noisy analog controls at the 1kHz control rate
// and holds every parameter derived from them. Decoupling this from the
// audio tick keeps variable-cost mapping math off the hard-real-time path
// and stops raw knob jitter from feeding straight into audio arithmetic.
type ControlState struct {
	mainKnob int32
	xKnob    int32
	yKnob    int32

	stretchRatio int32
	grainSize    int32

	playbackSpeed     int32 // Q12 signed, applied to newly triggered grains
	prevPlaybackSpeed int32 // hysteresis tracker for direct pitch mode
	prevLoopingSpeed  int32 // separate tracker for loop-mode nudging

	delayDistance int32
	spreadAmount  int32
}

// NewControlState starts every speed tracker at 1x so the first hysteresis
// comparison has a sane reference.
func NewControlState() *ControlState {
	return &ControlState{
		stretchRatio:      Q12_ONE,
		grainSize:         1024,
		playbackSpeed:     Q12_ONE,
		prevPlaybackSpeed: Q12_ONE,
		prevLoopingSpeed:  Q12_ONE,
		delayDistance:     8000,
	}
}

// refreshKnobs samples the panel knobs into the control-rate cache.
func (cs *ControlState) refreshKnobs(in *PanelInputs) {
	cs.mainKnob = in.MainKnob
	cs.xKnob = in.XKnob
	cs.yKnob = in.YKnob
}

// updatePositionControls maps the X knob's dual role. With nothing in the
// CV1 jack, the left half sweeps delay distance and the right half sweeps
// random spread around a fixed distance. With CV1 patched, X becomes the
// position attenuverter and the distance pins to the default.
func (cs *ControlState) updatePositionControls(in *PanelInputs) {
	if in.CV1Connected {
		cs.delayDistance = DEFAULT_DELAY_DISTANCE
		cs.spreadAmount = 0
		return
	}

	if cs.xKnob <= KNOB_CENTER-1 {
		cs.delayDistance = MIN_DELAY_DISTANCE +
			((cs.xKnob * (MAX_DELAY_DISTANCE - MIN_DELAY_DISTANCE)) / (KNOB_CENTER - 1))
		cs.spreadAmount = 0
	} else {
		cs.delayDistance = DEFAULT_DELAY_DISTANCE
		cs.spreadAmount = ((cs.xKnob - KNOB_CENTER) * KNOB_MAX) / (KNOB_CENTER - 1)
	}
}

// pitchControlValue computes the current Q12 speed request: either CV2
// through the Main-knob attenuverter, or the Main knob directly through
// its musical detents mapped onto ±2x.
func (cs *ControlState) pitchControlValue(in *PanelInputs) int32 {
	if in.CV2Connected {
		return applyPitchAttenuverter(in.CV2, virtualDetentedKnob(cs.mainKnob))
	}

	knob := pitchDetentedKnob(cs.mainKnob)
	if knob <= KNOB_CENTER {
		return -MAX_SAFE_GRAIN_SPEED + ((knob * MAX_SAFE_GRAIN_SPEED) >> 11)
	}
	return ((knob - KNOB_CENTER) * MAX_SAFE_GRAIN_SPEED) >> 11
}

// updatePlaybackSpeed recomputes the speed snapshotted into new grains.
// Direct knob control gets hysteresis so analog noise cannot scratch the
// pitch; CV control applies immediately for responsive tracking.
func (cs *ControlState) updatePlaybackSpeed(in *PanelInputs) {
	newSpeed := cs.pitchControlValue(in)

	if !in.CV2Connected {
		if cabs32(newSpeed-cs.prevPlaybackSpeed) <= SPEED_HYSTERESIS_THRESHOLD {
			newSpeed = cs.prevPlaybackSpeed
		}
	}

	newSpeed = clampSpeed(newSpeed)
	cs.playbackSpeed = newSpeed
	cs.prevPlaybackSpeed = newSpeed
}

// loopingGrainSpeed derives a looping grain's effective speed: the
// snapshot speed nudged by the travel of the pitch control since loop
// entry. Relative nudging means entering loop mode never jumps the pitch.
func (cs *ControlState) loopingGrainSpeed(in *PanelInputs, originalSpeed, baseline int32) int32 {
	current := cs.pitchControlValue(in)
	offset := current - baseline

	scaled := int32((int64(originalSpeed) * int64(offset)) >> Q12_SHIFT)
	finalSpeed := originalSpeed + scaled

	if !in.CV2Connected {
		if cabs32(finalSpeed-cs.prevLoopingSpeed) <= SPEED_HYSTERESIS_THRESHOLD {
			finalSpeed = cs.prevLoopingSpeed
		} else {
			cs.prevLoopingSpeed = finalSpeed
		}
	}

	return clampSpeed(finalSpeed)
}

// updateGrainSize maps the Y knob through the stretch ratio onto the
// 32..24000 sample grain length range. Only edge detents apply here; a
// center detent would put a dead zone in the middle of the sweep.
func (cs *ControlState) updateGrainSize() {
	y := cs.yKnob
	if y > KNOB_MAX-5 {
		y = KNOB_MAX
	} else if y < 5 {
		y = 0
	}

	if y <= KNOB_CENTER {
		cs.stretchRatio = 1024 + ((y * 3072) >> 11)
	} else {
		cs.stretchRatio = Q12_ONE + (((y - KNOB_CENTER) * 12288) >> 11)
	}

	normalized := ((cs.stretchRatio - 1024) * Q12_ONE) / 15360
	if normalized < 0 {
		normalized = 0
	}
	if normalized > KNOB_MAX {
		normalized = KNOB_MAX
	}

	size := MIN_GRAIN_SIZE + ((normalized * (MAX_GRAIN_SIZE - MIN_GRAIN_SIZE)) / KNOB_MAX)
	if size < MIN_GRAIN_SIZE {
		size = MIN_GRAIN_SIZE
	}
	if size > MAX_GRAIN_SIZE {
		size = MAX_GRAIN_SIZE
	}
	cs.grainSize = size
}

// unclockedTriggerThreshold maps Y onto the self-chain completion
// threshold: small grains at 90% chain with little overlap, large grains
// at 10% stack up heavily.
func (cs *ControlState) unclockedTriggerThreshold() int32 {
	t := int32(90) - ((cs.yKnob * 80) / KNOB_MAX)
	if t < 10 {
		t = 10
	}
	if t > 90 {
		t = 90
	}
	return t
}

// virtualDetentedKnob snaps a knob to its edges and to center.
func virtualDetentedKnob(val int32) int32 {
	if val > KNOB_MAX-5 {
		val = KNOB_MAX
	} else if val < 5 {
		val = 0
	}
	if cabs32(val-KNOB_CENTER) < VIRTUAL_DETENT_THRESHOLD {
		val = KNOB_CENTER
	}
	return val
}

// pitchDetentedKnob adds detents at the musically useful speeds: 0x
// (center pause), ±0.5x and ±1x. Only used when the knob drives pitch
// directly; the detent threshold is wider so the stops are easy to find.
func pitchDetentedKnob(val int32) int32 {
	if val > KNOB_MAX-5 {
		val = KNOB_MAX
	} else if val < 5 {
		val = 0
	}

	switch {
	case cabs32(val-KNOB_CENTER) < PITCH_DETENT_THRESHOLD:
		val = KNOB_CENTER // 0x
	case cabs32(val-3584) < PITCH_DETENT_THRESHOLD:
		val = 3584 // +1x
	case cabs32(val-3072) < PITCH_DETENT_THRESHOLD:
		val = 3072 // +0.5x
	case cabs32(val-1024) < PITCH_DETENT_THRESHOLD:
		val = 1024 // -0.5x
	case cabs32(val-512) < PITCH_DETENT_THRESHOLD:
		val = 512 // -1x
	}

	return val
}

// applyPitchAttenuverter applies the Main knob as a ±1x attenuverter to
// the CV2 pitch input, centered on 1x speed: knob left inverts the CV,
// center mutes it (exact 1x), right passes it through.
func applyPitchAttenuverter(cv2, mainKnob int32) int32 {
	var gain int32
	switch {
	case mainKnob == KNOB_CENTER:
		gain = 0
	case mainKnob < KNOB_CENTER:
		gain = -Q12_ONE + ((mainKnob * Q12_ONE) >> 11)
	default:
		gain = ((mainKnob - KNOB_CENTER) * Q12_ONE) >> 11
	}

	attenuated := (cv2 * gain) >> Q12_SHIFT

	// ±2048 CV spans ±2x speed
	result := Q12_ONE + attenuated*4

	if result > 3*Q12_ONE {
		result = 3 * Q12_ONE
	}
	if result < -Q12_ONE {
		result = -Q12_ONE
	}
	return result
}

func clampSpeed(speed int32) int32 {
	if speed > MAX_SAFE_GRAIN_SPEED {
		return MAX_SAFE_GRAIN_SPEED
	}
	if speed < -MAX_SAFE_GRAIN_SPEED {
		return -MAX_SAFE_GRAIN_SPEED
	}
	return speed
}
