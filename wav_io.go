// wav_io.go - WAV streaming in and out of the engine's 12-bit domain

package main

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// wavStream feeds a decoded WAV file into the engine's audio inputs,
// looping when it runs out so live granulation never starves.
type wavStream struct {
	frames [][2]int16 // 12-bit range samples
	rate   int
	pos    int
	loop   bool
}

func (ws *wavStream) SampleRate() int { return ws.rate }
func (ws *wavStream) Len() int        { return len(ws.frames) }

// Next returns the next stereo frame. Past the end it either wraps or
// goes silent depending on loop.
func (ws *wavStream) Next() (int16, int16) {
	if len(ws.frames) == 0 {
		return 0, 0
	}
	if ws.pos >= len(ws.frames) {
		if !ws.loop {
			return 0, 0
		}
		ws.pos = 0
	}
	f := ws.frames[ws.pos]
	ws.pos++
	return f[0], f[1]
}

// loadWAV decodes a WAV file into 12-bit stereo frames. Mono files are
// duplicated to both channels; bit depth is rescaled to ±2048. The file's
// own sample rate is reported but not converted — the engine granulates
// whatever it is fed, and rate mismatch only shifts pitch.
func loadWAV(path string, loop bool) (*wavStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.Errorf("%s is not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}

	bits := int(dec.BitDepth)
	if buf.SourceBitDepth != 0 {
		bits = buf.SourceBitDepth
	}
	shift := uint(0)
	if bits > 12 {
		shift = uint(bits - 12)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, errors.Errorf("%s has no channels", path)
	}

	numFrames := len(buf.Data) / channels
	ws := &wavStream{
		frames: make([][2]int16, numFrames),
		rate:   buf.Format.SampleRate,
		loop:   loop,
	}

	for i := 0; i < numFrames; i++ {
		l := clipAudio(int32(buf.Data[i*channels] >> shift))
		r := l
		if channels > 1 {
			r = clipAudio(int32(buf.Data[i*channels+1] >> shift))
		}
		ws.frames[i] = [2]int16{l, r}
	}

	return ws, nil
}

// saveWAV writes 12-bit stereo frames as a 16-bit PCM WAV file.
func saveWAV(path string, frames [][2]int16, sampleRate int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 16, 2, 1)

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: sampleRate},
		SourceBitDepth: 16,
		Data:           make([]int, len(frames)*2),
	}
	for i, fr := range frames {
		buf.Data[i*2] = int(fr[0]) << 4
		buf.Data[i*2+1] = int(fr[1]) << 4
	}

	if err := enc.Write(buf); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	if err := enc.Close(); err != nil {
		return errors.Wrapf(err, "finalize %s", path)
	}
	return nil
}
