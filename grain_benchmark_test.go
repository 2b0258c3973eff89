// grain_benchmark_test.go - Hot path benchmarks

package main

import "testing"

func BenchmarkProcessSample(b *testing.B) {
	engine := NewGrainEngine(FORMAT_HIFI, 1)
	in := defaultPanel()
	in.XKnob = 0
	in.AudioInL = 1000
	in.AudioInR = -1000
	var out PanelOutputs

	// Warm up until the free-running scheduler has a full voice chain
	for i := 0; i < SAMPLE_RATE; i++ {
		engine.ProcessSample(&in, &out)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.ProcessSample(&in, &out)
	}
}

func BenchmarkProcessSampleLoFi(b *testing.B) {
	engine := NewGrainEngine(FORMAT_LOFI, 1)
	in := defaultPanel()
	in.XKnob = 0
	in.AudioInL = 1000
	in.AudioInR = -1000
	var out PanelOutputs

	for i := 0; i < SAMPLE_RATE; i++ {
		engine.ProcessSample(&in, &out)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.ProcessSample(&in, &out)
	}
}

func BenchmarkMixChannelFullPool(b *testing.B) {
	engine := NewGrainEngine(FORMAT_HIFI, 1)
	for i := int32(0); i < 20000; i++ {
		engine.ring.Capture(1000, 1000, true)
	}
	for i := 0; i < MAX_GRAINS; i++ {
		idx := engine.pool.Allocate()
		if idx < 0 {
			b.Fatal("pool refused a voice")
		}
		g := &engine.pool.grains[idx]
		g.readPos = int32(1000 + i*500)
		g.size = 4800
		g.elapsed = int32(i * 300)
		g.speed = Q12_ONE
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		engine.mixChannel(0)
	}
}

func BenchmarkHannWeight(b *testing.B) {
	var acc int32
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		acc += hannWeight(int32(i & Q12_MASK))
	}
	_ = acc
}

func BenchmarkLoFiQuantize(b *testing.B) {
	rb := NewRingBuffer(FORMAT_LOFI, newRandLCG(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rb.Capture(int16(i&4095-2048), int16(-(i&4095)+2047), true)
	}
}
