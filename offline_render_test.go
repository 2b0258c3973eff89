// offline_render_test.go - Headless render tests

package main

import "testing"

func TestRenderOffline_DurationSetsLength(t *testing.T) {
	engine := NewGrainEngine(FORMAT_HIFI, 1)
	frames, err := renderOffline(engine, nil, nil, 0.5)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := SAMPLE_RATE / 2
	if len(frames) != want {
		t.Errorf("rendered %d frames, want %d", len(frames), want)
	}
}

func TestRenderOffline_InputLengthUsedWhenNoDuration(t *testing.T) {
	src := &wavStream{frames: make([][2]int16, 3000), rate: SAMPLE_RATE}
	engine := NewGrainEngine(FORMAT_HIFI, 1)
	frames, err := renderOffline(engine, src, nil, 0)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(frames) != 3000 {
		t.Errorf("rendered %d frames, want 3000", len(frames))
	}
}

func TestRenderOffline_NoSourceNoDurationFails(t *testing.T) {
	engine := NewGrainEngine(FORMAT_HIFI, 1)
	if _, err := renderOffline(engine, nil, nil, 0); err == nil {
		t.Error("render with nothing to do accepted")
	}
}

func TestRenderOffline_DeterministicWithFixedSeed(t *testing.T) {
	src := &wavStream{frames: make([][2]int16, 6000), rate: SAMPLE_RATE, loop: true}
	for i := range src.frames {
		v := int16(i%3000 - 1500)
		src.frames[i] = [2]int16{v, v}
	}

	render := func() [][2]int16 {
		s := *src
		s.pos = 0
		frames, err := renderOffline(NewGrainEngine(FORMAT_HIFI, 42), &s, nil, 1.0)
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		return frames
	}

	a := render()
	b := render()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("frame %d diverged: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRenderOffline_ScriptDrivesThePanel(t *testing.T) {
	// The script freezes the buffer immediately; captured silence plus a
	// frozen empty buffer keeps the whole render silent even though the
	// free-running scheduler fires grains throughout.
	cs, err := LoadControlScriptString(`
		function automate(t)
			return { switch = "freeze", main = 3072 }
		end
	`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer cs.Close()

	engine := NewGrainEngine(FORMAT_HIFI, 7)
	frames, err := renderOffline(engine, nil, cs, 0.25)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for i, f := range frames {
		if f[0] != 0 || f[1] != 0 {
			t.Fatalf("frame %d not silent: %v", i, f)
		}
	}
	if !engine.modes.Frozen() {
		t.Errorf("mode %v after scripted freeze, want frozen", engine.modes.Mode())
	}
}

func TestRenderOffline_ScriptErrorAborts(t *testing.T) {
	cs, err := LoadControlScriptString(`
		function automate(t)
			return { switch = "diagonal" }
		end
	`)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer cs.Close()

	engine := NewGrainEngine(FORMAT_HIFI, 1)
	if _, err := renderOffline(engine, nil, cs, 0.1); err == nil {
		t.Error("render with a failing script reported success")
	}
}
