//go:build headless

// audio_backend_headless.go - No-op audio output for CI and offline renders

package main

var _ AudioOutput = (*OtoPlayer)(nil)

type OtoPlayer struct {
	started bool
	runner  *CardRunner
}

func NewOtoPlayer(sampleRate int) (*OtoPlayer, error) {
	return &OtoPlayer{}, nil
}

func (op *OtoPlayer) SetupPlayer(runner *CardRunner) {
	op.runner = runner
}

func (op *OtoPlayer) Read(p []byte) (n int, err error) {
	return len(p), nil
}

func (op *OtoPlayer) Start() {
	op.started = true
}

func (op *OtoPlayer) Stop() {
	op.started = false
}

func (op *OtoPlayer) Close() {
	op.started = false
}

func (op *OtoPlayer) IsStarted() bool {
	return op.started
}
