// control_script.go - Lua control automation for offline renders

package main

import (
	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"
)

// ControlScript evaluates a Lua `automate(t)` function at the control
// rate during offline renders, standing in for hands on the panel. The
// function receives elapsed time in seconds and returns a table of panel
// fields; setting a CV or pulse field implies that jack is patched.
//
//	function automate(t)
//	    return {
//	        main = 3584,          -- knobs 0..4095
//	        x = 1024,
//	        y = 2048,
//	        switch = "loop",      -- "normal" | "freeze" | "loop"
//	        cv1 = 500,            -- CV ±2048, implies CV1 patched
//	        pulse1 = (t % 0.5) < 0.01,
//	    }
//	end
type ControlScript struct {
	ls *lua.LState
	fn lua.LValue
}

// LoadControlScript compiles a script file and resolves its automate().
func LoadControlScript(path string) (*ControlScript, error) {
	ls := lua.NewState()
	if err := ls.DoFile(path); err != nil {
		ls.Close()
		return nil, errors.Wrapf(err, "load script %s", path)
	}
	return resolveAutomate(ls)
}

// LoadControlScriptString compiles a script from source.
func LoadControlScriptString(src string) (*ControlScript, error) {
	ls := lua.NewState()
	if err := ls.DoString(src); err != nil {
		ls.Close()
		return nil, errors.Wrap(err, "load script")
	}
	return resolveAutomate(ls)
}

func resolveAutomate(ls *lua.LState) (*ControlScript, error) {
	fn := ls.GetGlobal("automate")
	if fn.Type() != lua.LTFunction {
		ls.Close()
		return nil, errors.New("script must define a function automate(t)")
	}
	return &ControlScript{ls: ls, fn: fn}, nil
}

func (cs *ControlScript) Close() {
	cs.ls.Close()
}

// Apply calls automate(t) and folds the returned table into the panel.
// Absent fields leave the panel untouched, so scripts only write what
// they mean to move.
func (cs *ControlScript) Apply(t float64, in *PanelInputs) error {
	if err := cs.ls.CallByParam(lua.P{
		Fn:      cs.fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(t)); err != nil {
		return errors.Wrap(err, "automate()")
	}

	ret := cs.ls.Get(-1)
	cs.ls.Pop(1)

	tbl, ok := ret.(*lua.LTable)
	if !ok {
		if ret == lua.LNil {
			return nil
		}
		return errors.New("automate() must return a table or nil")
	}

	if v, ok := tableKnob(tbl, "main"); ok {
		in.MainKnob = v
	}
	if v, ok := tableKnob(tbl, "x"); ok {
		in.XKnob = v
	}
	if v, ok := tableKnob(tbl, "y"); ok {
		in.YKnob = v
	}

	if v, ok := tableCV(tbl, "cv1"); ok {
		in.CV1 = v
		in.CV1Connected = true
	}
	if v, ok := tableCV(tbl, "cv2"); ok {
		in.CV2 = v
		in.CV2Connected = true
	}

	if v, ok := tableBool(tbl, "pulse1"); ok {
		in.Pulse1 = v
		in.Pulse1Connected = true
	}
	if v, ok := tableBool(tbl, "pulse2"); ok {
		in.Pulse2 = v
		in.Pulse2Connected = true
	}

	if s, ok := tableString(tbl, "switch"); ok {
		switch s {
		case "freeze":
			in.Switch = SWITCH_UP
		case "loop":
			in.Switch = SWITCH_DOWN
		case "normal":
			in.Switch = SWITCH_MIDDLE
		default:
			return errors.Errorf("unknown switch position %q", s)
		}
	}

	return nil
}

func tableKnob(tbl *lua.LTable, key string) (int32, bool) {
	n, ok := tbl.RawGetString(key).(lua.LNumber)
	if !ok {
		return 0, false
	}
	v := int32(n)
	if v < 0 {
		v = 0
	}
	if v > KNOB_MAX {
		v = KNOB_MAX
	}
	return v, true
}

func tableCV(tbl *lua.LTable, key string) (int32, bool) {
	n, ok := tbl.RawGetString(key).(lua.LNumber)
	if !ok {
		return 0, false
	}
	v := int32(n)
	if v < CV_MIN {
		v = CV_MIN
	}
	if v > CV_MAX {
		v = CV_MAX
	}
	return v, true
}

func tableBool(tbl *lua.LTable, key string) (bool, bool) {
	b, ok := tbl.RawGetString(key).(lua.LBool)
	if !ok {
		return false, false
	}
	return bool(b), true
}

func tableString(tbl *lua.LTable, key string) (string, bool) {
	s, ok := tbl.RawGetString(key).(lua.LString)
	if !ok {
		return "", false
	}
	return string(s), true
}
