// card_runner.go - Live host that drives the engine from a shared panel

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

import "sync"

// CardRunner stands in for the card's hardware layer when running on a
// desktop: it owns the engine, a mutex-protected copy of the panel state
// that the UI thread edits, and an optional audio-in stream. The audio
// backend calls RenderFrame once per output frame.
type CardRunner struct {
	engine *GrainEngine

	mu    sync.Mutex
	panel PanelInputs

	input *wavStream // nil means silent inputs

	outputs PanelOutputs
}

func NewCardRunner(engine *GrainEngine, input *wavStream) *CardRunner {
	cr := &CardRunner{engine: engine, input: input}
	cr.panel = defaultPanel()
	return cr
}

// defaultPanel is a sensible idle state: 1x forward speed, medium delay,
// medium grains, free-running.
func defaultPanel() PanelInputs {
	return PanelInputs{
		MainKnob: 3584, // +1x pitch detent
		XKnob:    1024,
		YKnob:    2048,
		Switch:   SWITCH_MIDDLE,
	}
}

// UpdatePanel lets the UI thread mutate the panel under the lock.
func (cr *CardRunner) UpdatePanel(fn func(*PanelInputs)) {
	cr.mu.Lock()
	fn(&cr.panel)
	cr.mu.Unlock()
}

// Panel returns a snapshot of the current panel state.
func (cr *CardRunner) Panel() PanelInputs {
	cr.mu.Lock()
	p := cr.panel
	cr.mu.Unlock()
	return p
}

// Outputs returns the most recent tick's panel outputs.
func (cr *CardRunner) Outputs() PanelOutputs {
	return cr.outputs
}

// RenderFrame runs one engine tick and returns the stereo output as
// float32 in ±1. A momentary trigger latched by the UI is cleared after
// one frame so the engine sees a clean rising edge.
func (cr *CardRunner) RenderFrame() (float32, float32) {
	cr.mu.Lock()
	in := cr.panel
	cr.panel.Pulse1 = false // consume the latched trigger edge
	cr.mu.Unlock()

	if cr.input != nil {
		in.AudioInL, in.AudioInR = cr.input.Next()
	}

	cr.engine.ProcessSample(&in, &cr.outputs)

	l := float32(cr.outputs.AudioOutL) / float32(AUDIO_RANGE)
	r := float32(cr.outputs.AudioOutR) / float32(AUDIO_RANGE)
	return l, r
}
