// hardware_io.go - Panel I/O frames and the audio backend seam

package main

// SwitchPos is the 3-position mode selector on the card's front panel.
type SwitchPos int

const (
	SWITCH_UP     SwitchPos = iota // Freeze buffer
	SWITCH_MIDDLE                  // Normal granular delay
	SWITCH_DOWN                    // Loop/glitch mode
)

// PanelInputs is one tick's worth of front-panel state as delivered by the
// hardware layer: pre-quantized knobs (0..4095), bipolar CV (±2048), the
// mode switch, pulse inputs with edge state left to the engine, and
// per-jack connection sensing.
type PanelInputs struct {
	MainKnob int32
	XKnob    int32
	YKnob    int32

	Switch SwitchPos

	CV1 int32
	CV2 int32

	Pulse1 bool
	Pulse2 bool

	AudioInL int16
	AudioInR int16

	CV1Connected    bool
	CV2Connected    bool
	Pulse1Connected bool
	Pulse2Connected bool
}

// PanelOutputs is everything the engine drives back out through the
// hardware layer each tick.
type PanelOutputs struct {
	AudioOutL int16
	AudioOutR int16

	CV1 int16 // noise tap, re-rolled on grain triggers
	CV2 int16 // capture buffer phase ramp

	Pulse1 bool // grain near-complete pulse
	Pulse2 bool // stochastic clock

	LED [6]uint16 // brightness 0..4095, cosmetic
}

// AudioOutput is implemented by playback backends (oto, headless).
type AudioOutput interface {
	Start()
	Stop()
	Close()
	IsStarted() bool
}
