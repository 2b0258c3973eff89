// grain_scheduler.go - Grain admission and start-position computation

package main

// triggerGateOpen reports whether the Pulse2 gate permits a trigger: an
// unpatched gate always permits, a patched one must be high.
func triggerGateOpen(in *PanelInputs) bool {
	return !in.Pulse2Connected || in.Pulse2
}

// triggerNewGrain attempts to admit one grain. Saturation refuses
// silently; there is no queueing and no retry. On admission the current
// global parameters are snapshotted into the voice, the noise CV re-rolls,
// and the start position is computed from delay/spread or CV1.
func (e *GrainEngine) triggerNewGrain(in *PanelInputs) {
	handle := e.pool.Allocate()
	if handle < 0 {
		return
	}

	g := e.pool.Grain(handle)
	g.looping = false
	g.nearCompleteFired = false
	g.delayDistance = e.controls.delayDistance
	g.spreadAmount = e.controls.spreadAmount
	g.size = e.controls.grainSize
	g.speed = e.controls.playbackSpeed
	g.baselineControl = Q12_ONE

	e.outputs.rollNoise(e.rng)

	pos := e.computeStartPosition(in, g)

	// Spawn-time safety clamp. Skipped while frozen (the whole buffer is
	// static) and when CV1 places the grain explicitly.
	if !e.modes.Frozen() && !in.CV1Connected {
		pos, _ = e.ring.ClampBehindWrite(pos)
	}

	g.readPos = pos
	g.readFrac = 0
	g.startPos = pos
	g.elapsed = 0
}

// computeStartPosition picks where in the capture buffer a new grain
// begins reading: by default the write head minus the snapshot delay,
// optionally perturbed by bounded random spread; with CV1 patched, the CV
// supplies the position directly through the X-knob attenuverter.
func (e *GrainEngine) computeStartPosition(in *PanelInputs, g *Grain) int32 {
	if in.CV1Connected {
		return e.cvStartPosition(in)
	}

	pos := e.ring.Wrap(e.ring.WriteHead() - g.delayDistance)
	if g.spreadAmount == 0 {
		return pos
	}

	// Random offset scaled by the spread amount and hard-limited to an
	// eighth of the buffer, so a perturbed grain cannot itself land
	// inside the safety margin's reach.
	randomOffset := int32(e.rng.next12()&Q12_MASK) - 2047
	maxSafeOffset := e.ring.Length() >> 3

	t := (int64(randomOffset) * int64(maxSafeOffset)) >> 11
	if t > int64(maxSafeOffset) {
		t = int64(maxSafeOffset)
	}
	if t < int64(-maxSafeOffset) {
		t = int64(-maxSafeOffset)
	}

	t = (t * int64(g.spreadAmount)) >> Q12_SHIFT
	if t > int64(maxSafeOffset) {
		t = int64(maxSafeOffset)
	}
	if t < int64(-maxSafeOffset) {
		t = int64(-maxSafeOffset)
	}

	return e.ring.Wrap(pos + int32(t))
}

// cvStartPosition maps CV1 through the X-knob attenuverter onto a buffer
// position. 0..+5V spans the whole position range and negative voltages
// wrap in from the end, so an LFO sweeps the buffer seamlessly. While
// frozen this scrubs the full static buffer.
func (e *GrainEngine) cvStartPosition(in *PanelInputs) int32 {
	var raw int32
	if in.CV1 >= 0 {
		raw = (in.CV1 * KNOB_MAX) / CV_MAX
	} else {
		raw = KNOB_MAX + in.CV1
	}
	if raw < 0 {
		raw = 0
	}
	if raw > KNOB_MAX {
		raw = KNOB_MAX
	}

	// X knob as attenuverter: full left inverts, center mutes, full
	// right passes through.
	x := e.controls.xKnob
	var gain int32
	if x <= KNOB_CENTER {
		gain = -Q12_ONE + ((x * Q12_ONE) / KNOB_CENTER)
	} else {
		gain = ((x - KNOB_CENTER) * Q12_ONE) / (KNOB_CENTER - 1)
	}

	cvOffset := raw - KNOB_CENTER
	position := KNOB_CENTER + ((cvOffset * gain) / Q12_ONE)
	if position < 0 {
		position = 0
	}
	if position > KNOB_MAX {
		position = KNOB_MAX
	}

	pos := (position * (e.ring.Length() - 1)) / KNOB_MAX
	if pos >= e.ring.Length() {
		pos = e.ring.Length() - 1
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

// maybeBootstrapChain force-admits a single grain when free-running with
// an empty pool. The self-sustaining stream needs one grain to exist
// before near-complete events can chain the next.
func (e *GrainEngine) maybeBootstrapChain(in *PanelInputs) {
	if in.Pulse1Connected {
		return
	}
	if e.pool.ActiveCount() != 0 {
		return
	}
	if !triggerGateOpen(in) {
		return
	}
	e.triggerNewGrain(in)
}
