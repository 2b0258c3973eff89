// offline_render.go - Deterministic headless rendering

package main

import "github.com/pkg/errors"

// renderOffline pushes a WAV stream (or silence) through the engine for
// the given duration and returns the granulated frames. The optional Lua
// script is evaluated at the control rate; with a fixed engine seed the
// output is sample-exact across runs.
func renderOffline(engine *GrainEngine, src *wavStream, script *ControlScript, seconds float64) ([][2]int16, error) {
	totalTicks := int(seconds * SAMPLE_RATE)
	if totalTicks <= 0 {
		if src == nil {
			return nil, errors.New("render needs an input file or a duration")
		}
		totalTicks = src.Len()
	}

	in := defaultPanel()
	var out PanelOutputs

	frames := make([][2]int16, totalTicks)

	for tick := 0; tick < totalTicks; tick++ {
		if script != nil && tick%UPDATE_RATE_DIVIDER == 0 {
			t := float64(tick) / float64(SAMPLE_RATE)
			if err := script.Apply(t, &in); err != nil {
				return nil, err
			}
		}

		if src != nil {
			in.AudioInL, in.AudioInR = src.Next()
		}

		engine.ProcessSample(&in, &out)
		frames[tick] = [2]int16{out.AudioOutL, out.AudioOutR}
	}

	return frames, nil
}
