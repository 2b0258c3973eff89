// card_runner_test.go - Desktop host harness tests

package main

import (
	"sync"
	"testing"
)

func TestCardRunner_DefaultPanel(t *testing.T) {
	p := defaultPanel()
	if p.MainKnob != 3584 {
		t.Errorf("main knob %d, want 3584", p.MainKnob)
	}
	if p.Switch != SWITCH_MIDDLE {
		t.Errorf("switch %d, want SWITCH_MIDDLE", p.Switch)
	}
	if p.Pulse1Connected || p.CV1Connected {
		t.Error("default panel has jacks patched")
	}
}

func TestCardRunner_TriggerLatchConsumedAfterOneFrame(t *testing.T) {
	cr := NewCardRunner(NewGrainEngine(FORMAT_HIFI, 1), nil)

	cr.UpdatePanel(func(p *PanelInputs) {
		p.Pulse1Connected = true
		p.Pulse1 = true
	})
	cr.RenderFrame()

	if cr.Panel().Pulse1 {
		t.Error("latched trigger survived a frame")
	}
	if !cr.Panel().Pulse1Connected {
		t.Error("consuming the latch unpatched the jack")
	}
}

func TestCardRunner_OutputScaling(t *testing.T) {
	cr := NewCardRunner(NewGrainEngine(FORMAT_HIFI, 1), nil)
	for i := 0; i < 100; i++ {
		l, r := cr.RenderFrame()
		if l < -1 || l > 1 || r < -1 || r > 1 {
			t.Fatalf("frame %d out of ±1: %f/%f", i, l, r)
		}
	}
}

func TestCardRunner_InputStreamFeedsEngine(t *testing.T) {
	src := &wavStream{frames: make([][2]int16, 48000), rate: SAMPLE_RATE, loop: true}
	for i := range src.frames {
		src.frames[i] = [2]int16{1200, 1200}
	}
	cr := NewCardRunner(NewGrainEngine(FORMAT_HIFI, 1), src)
	cr.UpdatePanel(func(p *PanelInputs) {
		p.XKnob = 0 // shortest delay, so grains reach written audio quickly
	})

	// By the end of the warmup the free-running scheduler is granulating
	// captured DC, so output must be non-silent.
	heard := false
	for i := 0; i < 24000; i++ {
		l, _ := cr.RenderFrame()
		if l > 0.3 {
			heard = true
		}
	}
	if !heard {
		t.Error("never heard the input stream come back out")
	}
}

// TestCardRunner_ConcurrentPanelEdits hammers UpdatePanel and Panel from
// UI-side goroutines while the audio side renders. The test itself has no
// assertions - the race detector is the oracle.
func TestCardRunner_ConcurrentPanelEdits(t *testing.T) {
	cr := NewCardRunner(NewGrainEngine(FORMAT_HIFI, 1), nil)

	stop := make(chan struct{})
	rendered := make(chan struct{})
	go func() {
		defer close(rendered)
		for {
			select {
			case <-stop:
				return
			default:
				cr.RenderFrame()
			}
		}
	}()

	var writers sync.WaitGroup
	for g := 0; g < 4; g++ {
		writers.Add(1)
		go func() {
			defer writers.Done()
			for i := 0; i < 2000; i++ {
				cr.UpdatePanel(func(p *PanelInputs) {
					p.MainKnob = int32((i * 7) % (KNOB_MAX + 1))
					p.XKnob = int32((i * 13) % (KNOB_MAX + 1))
					p.Pulse1 = i%5 == 0
					p.Pulse1Connected = true
				})
				_ = cr.Panel()
			}
		}()
	}

	writers.Wait()
	close(stop)
	<-rendered
}
