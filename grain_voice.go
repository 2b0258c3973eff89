// grain_voice.go - Grain playback voices and the fixed-capacity pool

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

// Grain is one playback voice reading from the shared capture buffer.
// Everything a grain needs for its whole lifetime is snapshotted at
// trigger time, so control changes after the trigger never retroactively
// alter a voice already in flight.
type Grain struct {
	readPos  int32
	readFrac int32 // Q12 fractional sample position
	elapsed  int32 // ticks since trigger; advances 1/tick regardless of speed
	startPos int32

	active            bool
	looping           bool
	nearCompleteFired bool

	// Snapshot taken when the grain was admitted
	delayDistance int32
	spreadAmount  int32
	size          int32
	speed         int32 // Q12 signed, ±2x

	// Pitch-control value captured at the moment loop mode was entered;
	// loop-mode speed is nudged relative to this, never absolutely.
	baselineControl int32
}

// progressQ12 maps elapsed onto 0..4095 for window lookup. The divisor is
// size-1 so the grain's first and last samples land exactly on the zeroed
// table endpoints.
func (g *Grain) progressQ12() int32 {
	if g.size <= 1 {
		return 0
	}
	p := (g.elapsed * Q12_MASK) / (g.size - 1)
	if p < 0 {
		p = 0
	}
	if p > Q12_MASK {
		p = Q12_MASK
	}
	return p
}

// carryFrac folds whole-sample steps out of the Q12 accumulator into the
// integer read position. The iteration cap keeps a pathological speed
// value from turning one tick into an unbounded loop; on cap exhaustion
// the remainder clamps to a valid fraction instead of staying out of range.
func (g *Grain) carryFrac(ring *RingBuffer) {
	iterations := 0
	for g.readFrac >= Q12_ONE && iterations < MAX_FRACTIONAL_ITERATIONS {
		g.readPos++
		g.readFrac -= Q12_ONE
		iterations++
		if g.readPos >= ring.Length() {
			g.readPos -= ring.Length()
		}
	}
	if g.readFrac >= Q12_ONE {
		g.readFrac = Q12_ONE - 1
	}

	iterations = 0
	for g.readFrac < 0 && iterations < MAX_FRACTIONAL_ITERATIONS {
		g.readPos--
		g.readFrac += Q12_ONE
		iterations++
		if g.readPos < 0 {
			g.readPos += ring.Length()
		}
	}
	if g.readFrac < 0 {
		g.readFrac = 0
	}
}

// advanceNormal moves a non-looping grain one tick. The elapsed counter
// always advances by exactly one, so grain duration is independent of
// playback speed and direction. Returns true when the grain has run its
// configured size and should be released.
func (g *Grain) advanceNormal(ring *RingBuffer, frozen bool) bool {
	g.elapsed++

	g.readFrac += g.speed
	g.carryFrac(ring)

	if !frozen {
		if pos, clamped := ring.ClampBehindWrite(g.readPos); clamped {
			g.readPos = pos
			g.readFrac = 0
		}
	}

	return g.elapsed >= g.size
}

// advanceLooping moves a looping grain one tick at the given effective
// speed. A zero speed pauses the grain entirely, counter included. On
// reaching its size the grain rewinds to its start instead of completing,
// and keeps doing so until the mode changes.
func (g *Grain) advanceLooping(ring *RingBuffer, speed int32) {
	if speed == 0 {
		return
	}

	g.elapsed++
	g.readFrac += speed
	g.carryFrac(ring)

	if g.elapsed >= g.size {
		g.readPos = g.startPos
		g.readFrac = 0
		g.elapsed = 0
		g.nearCompleteFired = false
	}

	g.readPos = ring.Wrap(g.readPos)
}

// nearCompleteCrossed reports, exactly once per grain lifetime, that the
// grain's progress has crossed the given completion threshold percentage.
func (g *Grain) nearCompleteCrossed(thresholdPercent int32) bool {
	if g.size <= 0 || g.nearCompleteFired {
		return false
	}
	thresholdSamples := (g.size * thresholdPercent) / 100
	if g.elapsed < thresholdSamples {
		return false
	}
	g.nearCompleteFired = true
	return true
}

// enterLoop converts the grain to its looping sub-mode in place: position,
// fraction and counter are untouched so the transition cannot click.
func (g *Grain) enterLoop(baseline int32) {
	g.looping = true
	g.baselineControl = baseline
}

// exitLoop reverts to ordinary progression from the current position.
func (g *Grain) exitLoop() {
	g.looping = false
}

// GrainPool is the fixed arena of voices. Slots are addressed by integer
// handle; allocation is a linear scan for an inactive slot, refused
// silently once the configured ceiling of concurrent voices is reached.
type GrainPool struct {
	grains  [MAX_GRAINS]Grain
	ceiling int32
	active  int32 // cached count, maintained on allocate/release
}

// NewGrainPool returns a pool with the ceiling at full capacity.
func NewGrainPool() *GrainPool {
	p := &GrainPool{ceiling: MAX_GRAINS}
	return p
}

// SetCeiling bounds concurrent voices to 1..MAX_GRAINS. The ceiling is a
// throttle, not a resize: slots above it simply never get allocated.
func (p *GrainPool) SetCeiling(n int32) {
	if n < 1 {
		n = 1
	}
	if n > MAX_GRAINS {
		n = MAX_GRAINS
	}
	p.ceiling = n
}

func (p *GrainPool) Ceiling() int32     { return p.ceiling }
func (p *GrainPool) ActiveCount() int32 { return p.active }

// Grain returns the voice for a handle. Handles are stable for the life
// of the pool; callers must check active before trusting the contents.
func (p *GrainPool) Grain(handle int) *Grain {
	return &p.grains[handle]
}

// Allocate finds a free slot, marks it active and returns its handle, or
// -1 when the pool is saturated. Saturation is not an error: a dropped
// trigger just means fewer simultaneous grains.
func (p *GrainPool) Allocate() int {
	if p.active >= p.ceiling {
		return -1
	}
	for i := range p.grains {
		if !p.grains[i].active {
			p.grains[i].active = true
			p.active++
			return i
		}
	}
	return -1
}

// Release returns a voice to the pool.
func (p *GrainPool) Release(handle int) {
	if p.grains[handle].active {
		p.grains[handle].active = false
		p.active--
	}
}

// Reset deactivates every voice.
func (p *GrainPool) Reset() {
	for i := range p.grains {
		p.grains[i] = Grain{}
	}
	p.active = 0
}
