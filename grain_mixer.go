// grain_mixer.go - Windowed overlap-add mixing and normalization

package main

// grainWeight returns the Q12 amplitude weight for one voice. Looping
// grains bypass the window entirely for the deliberate glitch character,
// and a solitary grain plays at full weight for clarity; only overlapping
// normal grains get the Hann envelope.
func (e *GrainEngine) grainWeight(g *Grain) int32 {
	if g.looping {
		return Q12_ONE
	}
	if g.size <= 0 {
		return Q12_ONE
	}
	if e.pool.ActiveCount() <= 1 {
		return Q12_ONE
	}
	return hannWeight(g.progressQ12())
}

// mixChannel sums every active grain's interpolated, weighted sample and
// divides by the summed weight. Normalizing by weight rather than voice
// count is load-bearing: output amplitude must not depend on how many
// grains happen to be overlapping.
func (e *GrainEngine) mixChannel(channel int) int16 {
	var mixed, totalWeight int32

	for i := range e.pool.grains {
		g := &e.pool.grains[i]
		if !g.active {
			continue
		}
		sample := e.ring.ReadInterpolated(g.readPos, g.readFrac, channel)
		weight := e.grainWeight(g)

		mixed += (int32(sample) * weight) >> Q12_SHIFT
		totalWeight += weight
	}

	if totalWeight <= 0 {
		return 0
	}

	return clipAudio((mixed << Q12_SHIFT) / totalWeight)
}
