// terminal_panel.go - Raw-mode terminal front panel for live play

package main

import (
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"
)

// TerminalPanel turns raw stdin into knob, switch and trigger gestures on
// a CardRunner. Only instantiated in main.go for interactive use — never
// in tests.
//
// Keys: q/a Main knob, w/s X knob, e/d Y knob, 1/2/3 switch position,
// space patches and fires the trigger, 0 unpatches it, ESC quits.
type TerminalPanel struct {
	runner       *CardRunner
	quit         chan struct{}
	done         chan struct{}
	stopped      sync.Once
	fd           int
	nonblockSet  bool
	oldTermState *term.State
}

const knobStep = 128

func NewTerminalPanel(runner *CardRunner) *TerminalPanel {
	return &TerminalPanel{
		runner: runner,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start sets stdin to raw non-blocking mode and begins reading keys in a
// goroutine. Call Stop() to restore the terminal.
func (tp *TerminalPanel) Start() {
	tp.fd = int(os.Stdin.Fd())

	oldState, err := term.MakeRaw(tp.fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal_panel: failed to set raw mode: %v\n", err)
		close(tp.done)
		return
	}
	tp.oldTermState = oldState

	if err := syscall.SetNonblock(tp.fd, true); err != nil {
		fmt.Fprintf(os.Stderr, "terminal_panel: failed to set nonblocking stdin: %v\n", err)
		_ = term.Restore(tp.fd, tp.oldTermState)
		tp.oldTermState = nil
		close(tp.done)
		return
	}
	tp.nonblockSet = true

	go tp.readLoop()
}

// Quit is closed when the user asks to leave.
func (tp *TerminalPanel) Quit() <-chan struct{} {
	return tp.quit
}

// Stop restores the terminal state.
func (tp *TerminalPanel) Stop() {
	tp.stopped.Do(func() {
		if tp.nonblockSet {
			_ = syscall.SetNonblock(tp.fd, false)
		}
		if tp.oldTermState != nil {
			_ = term.Restore(tp.fd, tp.oldTermState)
		}
	})
}

func (tp *TerminalPanel) readLoop() {
	defer close(tp.done)

	buf := make([]byte, 16)
	for {
		select {
		case <-tp.quit:
			return
		default:
		}

		n, err := os.Stdin.Read(buf)
		if err != nil || n == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}

		for _, b := range buf[:n] {
			if !tp.handleKey(b) {
				close(tp.quit)
				return
			}
		}
	}
}

func (tp *TerminalPanel) handleKey(b byte) bool {
	switch b {
	case 0x1B, 0x03: // ESC, ctrl-c
		return false
	case 'q':
		tp.nudgeKnob(func(p *PanelInputs) *int32 { return &p.MainKnob }, knobStep)
	case 'a':
		tp.nudgeKnob(func(p *PanelInputs) *int32 { return &p.MainKnob }, -knobStep)
	case 'w':
		tp.nudgeKnob(func(p *PanelInputs) *int32 { return &p.XKnob }, knobStep)
	case 's':
		tp.nudgeKnob(func(p *PanelInputs) *int32 { return &p.XKnob }, -knobStep)
	case 'e':
		tp.nudgeKnob(func(p *PanelInputs) *int32 { return &p.YKnob }, knobStep)
	case 'd':
		tp.nudgeKnob(func(p *PanelInputs) *int32 { return &p.YKnob }, -knobStep)
	case '1':
		tp.runner.UpdatePanel(func(p *PanelInputs) { p.Switch = SWITCH_UP })
		tp.status("freeze")
	case '2':
		tp.runner.UpdatePanel(func(p *PanelInputs) { p.Switch = SWITCH_MIDDLE })
		tp.status("normal")
	case '3':
		tp.runner.UpdatePanel(func(p *PanelInputs) { p.Switch = SWITCH_DOWN })
		tp.status("loop")
	case ' ':
		// First press patches the trigger jack, taking the scheduler out
		// of free-running mode
		tp.runner.UpdatePanel(func(p *PanelInputs) {
			p.Pulse1Connected = true
			p.Pulse1 = true
		})
	case '0':
		tp.runner.UpdatePanel(func(p *PanelInputs) { p.Pulse1Connected = false })
		tp.status("free-running")
	}
	return true
}

func (tp *TerminalPanel) nudgeKnob(sel func(*PanelInputs) *int32, delta int32) {
	var val int32
	tp.runner.UpdatePanel(func(p *PanelInputs) {
		k := sel(p)
		*k += delta
		if *k < 0 {
			*k = 0
		}
		if *k > KNOB_MAX {
			*k = KNOB_MAX
		}
		val = *k
	})
	tp.status(fmt.Sprintf("knob %d", val))
}

func (tp *TerminalPanel) status(msg string) {
	// Raw mode needs explicit carriage returns
	fmt.Printf("\r\033[K%s", msg)
}
