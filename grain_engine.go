// grain_engine.go - The granular capture-and-playback engine core

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

// GrainEngine is the whole card behind one explicit object: the capture
// ring, the voice pool, the control mapper, the mode state machine and
// the auxiliary outputs. One instance is constructed per card and driven
// by ProcessSample once per audio tick.
//
// The tick path allocates nothing, blocks on nothing and locks nothing.
// Writer and grain readers share the ring on the same tick, so the only
// consistency mechanism needed is the positional safety margin.
type GrainEngine struct {
	ring     *RingBuffer
	pool     *GrainPool
	controls *ControlState
	modes    ModeController
	outputs  *OutputState
	rng      *randLCG

	notchL notchFilter
	notchR notchFilter

	updateCounter int32
	sampleCounter int32
	prevPulse1    bool
}

// NewGrainEngine builds an engine for the given capture format. The seed
// drives every random decision (spread offsets, noise CV, stochastic
// clock, LoFi dither); equal seeds give sample-exact runs.
func NewGrainEngine(format AudioFormat, seed uint32) *GrainEngine {
	rng := newRandLCG(seed)
	return &GrainEngine{
		ring:          NewRingBuffer(format, rng),
		pool:          NewGrainPool(),
		controls:      NewControlState(),
		outputs:       NewOutputState(),
		rng:           rng,
		updateCounter: UPDATE_RATE_DIVIDER - 1,
	}
}

// SetMaxActiveGrains throttles concurrent voices below pool capacity.
func (e *GrainEngine) SetMaxActiveGrains(n int32) {
	e.pool.SetCeiling(n)
}

func (e *GrainEngine) Mode() EngineMode    { return e.modes.Mode() }
func (e *GrainEngine) ActiveGrains() int32 { return e.pool.ActiveCount() }

// Reset returns the engine to power-on state without reallocating the
// capture buffer.
func (e *GrainEngine) Reset() {
	e.pool.Reset()
	e.modes = ModeController{}
	e.controls = NewControlState()
	e.outputs = NewOutputState()
	e.notchL = notchFilter{}
	e.notchR = notchFilter{}
	e.updateCounter = UPDATE_RATE_DIVIDER - 1
	e.sampleCounter = 0
	e.prevPulse1 = false
}

// ProcessSample runs one audio tick: capture, trigger decisions, the
// overlap-add mix, grain advancement and the auxiliary outputs. Control
// mapping runs on a 1kHz subdivision of the tick.
func (e *GrainEngine) ProcessSample(in *PanelInputs, out *PanelOutputs) {
	e.sampleCounter++

	e.modes.Apply(in.Switch, e, in)

	// Capture. The notch scrubs mux bleed before anything is stored;
	// the write head advances even when frozen so the phase ramp output
	// stays continuous.
	record := !e.modes.Frozen()
	if record {
		l := e.notchL.Process(clipAudio(int32(in.AudioInL)))
		r := e.notchR.Process(clipAudio(int32(in.AudioInR)))
		e.ring.Capture(l, r, true)
	} else {
		e.ring.Capture(0, 0, false)
	}

	e.controls.updatePositionControls(in)

	// External trigger on the rising edge, gated by Pulse2 when patched.
	// Ignored while looping: the glitch loop owns the whole pool, and a
	// clock pulse must not spawn windowed grains over it.
	rising := in.Pulse1 && !e.prevPulse1
	e.prevPulse1 = in.Pulse1
	if rising && !e.modes.Looping() && triggerGateOpen(in) {
		e.triggerNewGrain(in)
	}

	outL := e.mixChannel(0)
	outR := e.mixChannel(1)
	e.outputs.lastOutL = outL
	e.outputs.lastOutR = outR
	out.AudioOutL = outL
	out.AudioOutR = outR

	e.advanceGrains(in)
	e.maybeBootstrapChain(in)

	e.outputs.updateCV(e.ring, out)
	e.outputs.updateStochasticClock(e.rng, e.controls.xKnob, e.controls.yKnob)
	e.outputs.tickPulses(out)

	e.updateCounter++
	if e.updateCounter >= UPDATE_RATE_DIVIDER {
		e.updateCounter = 0
		e.controls.refreshKnobs(in)
		e.controls.updatePlaybackSpeed(in)
		e.controls.updateGrainSize()
		e.outputs.updateLEDs(out)
	}
}

// advanceGrains moves every active voice one tick and handles the
// near-complete events that drive the pulse output and, when
// free-running, chain the next grain.
func (e *GrainEngine) advanceGrains(in *PanelInputs) {
	frozen := e.modes.Frozen()

	var threshold int32
	if in.Pulse1Connected {
		threshold = GRAIN_COMPLETION_THRESHOLD_PERCENT
	} else {
		threshold = e.controls.unclockedTriggerThreshold()
	}

	for i := range e.pool.grains {
		g := &e.pool.grains[i]
		if !g.active {
			continue
		}

		if g.looping {
			speed := e.controls.loopingGrainSpeed(in, g.speed, g.baselineControl)
			g.advanceLooping(e.ring, speed)
			continue
		}

		done := g.advanceNormal(e.ring, frozen)

		if g.nearCompleteCrossed(threshold) {
			e.outputs.firePulse1()
			if !in.Pulse1Connected && triggerGateOpen(in) {
				e.triggerNewGrain(in)
			}
		}

		if done {
			e.pool.Release(i)
		}
	}
}

// enterLoopMode converts every active grain to its looping sub-mode,
// capturing the current pitch control as the baseline for relative speed
// nudging. With an empty pool one grain is force-triggered first so there
// is always something to loop. Positions are never touched.
func (e *GrainEngine) enterLoopMode(in *PanelInputs) {
	baseline := e.controls.pitchControlValue(in)

	converted := false
	for i := range e.pool.grains {
		g := &e.pool.grains[i]
		if g.active {
			g.enterLoop(baseline)
			converted = true
		}
	}
	if converted {
		return
	}

	e.triggerNewGrain(in)
	for i := range e.pool.grains {
		g := &e.pool.grains[i]
		if g.active && !g.looping {
			g.enterLoop(baseline)
			break
		}
	}
}

// exitLoopMode reverts every looping grain to ordinary progression from
// its current position and counter.
func (e *GrainEngine) exitLoopMode() {
	for i := range e.pool.grains {
		g := &e.pool.grains[i]
		if g.active && g.looping {
			g.exitLoop()
		}
	}
}
