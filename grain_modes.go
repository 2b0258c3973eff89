// grain_modes.go - Operating mode state machine

package main

// EngineMode is the engine's operating state, driven only by the panel's
// 3-position switch.
type EngineMode int

const (
	MODE_NORMAL EngineMode = iota
	MODE_FREEZE
	MODE_LOOP
)

func (m EngineMode) String() string {
	switch m {
	case MODE_FREEZE:
		return "freeze"
	case MODE_LOOP:
		return "loop"
	default:
		return "normal"
	}
}

func modeForSwitch(sw SwitchPos) EngineMode {
	switch sw {
	case SWITCH_UP:
		return MODE_FREEZE
	case SWITCH_DOWN:
		return MODE_LOOP
	default:
		return MODE_NORMAL
	}
}

// ModeController owns the Normal/Freeze/Loop state machine. Transition
// side effects live in dedicated enter/exit handlers on the engine rather
// than as conditionals scattered through the tick:
//
//   - entering Freeze only flips the flag; recording and margin checks
//     consult Frozen() and simply stop applying
//   - entering Loop converts every active grain in place (force-triggering
//     one first if none is active) and captures the pitch baseline
//   - leaving Loop reverts every looping grain to ordinary progression
//     from wherever it currently is, so the transition never clicks
type ModeController struct {
	mode EngineMode
}

func (mc *ModeController) Mode() EngineMode { return mc.mode }
func (mc *ModeController) Frozen() bool     { return mc.mode == MODE_FREEZE }
func (mc *ModeController) Looping() bool    { return mc.mode == MODE_LOOP }

// Apply moves the state machine toward the switch position, running exit
// and enter handlers on a change. Called every tick; no-op when settled.
func (mc *ModeController) Apply(sw SwitchPos, e *GrainEngine, in *PanelInputs) {
	next := modeForSwitch(sw)
	if next == mc.mode {
		return
	}

	if mc.mode == MODE_LOOP {
		e.exitLoopMode()
	}

	mc.mode = next

	if next == MODE_LOOP {
		e.enterLoopMode(in)
	}
}
