// grain_constants.go - Fixed-point formats, buffer geometry and tuning constants

package main

// The whole engine runs at the card's native rate in integer Q12 fixed
// point: 4096 represents 1.0. Speeds, window weights, attenuverter gains
// and interpolation fractions all share this format.
const (
	SAMPLE_RATE = 24000
	Q12_ONE     = 4096
	Q12_SHIFT   = 12
	Q12_MASK    = 0xFFF
)

// Capture buffer geometry. HiFi packs two 12-bit samples per uint32 slot,
// LoFi packs two dithered 8-bit samples per uint16 slot and trades depth
// for twice the capture time.
const (
	BUFF_LENGTH_HIFI = 62500  // 2.6 seconds at 24kHz
	BUFF_LENGTH_LOFI = 125000 // 5.2 seconds at 24kHz

	AUDIO_RANGE = 2048 // 12-bit signed audio, ±2048
)

// Grain system limits
const (
	MAX_GRAINS     = 14
	MIN_GRAIN_SIZE = 32    // 1.33ms at 24kHz
	MAX_GRAIN_SIZE = 24000 // 1 second at 24kHz
)

// Timing constants
const (
	SAFETY_MARGIN_SAMPLES    = 120 // 5ms gap kept behind the write head
	GRAIN_END_PULSE_DURATION = 100 // 4.2ms pulse width
	UPDATE_RATE_DIVIDER      = 24  // 1kHz control updates at 24kHz audio
)

// Safety limits for the per-tick phase carry loop. Four whole-sample
// steps cover the full ±2x speed range; anything past that clamps.
const (
	MAX_FRACTIONAL_ITERATIONS = 4
	MAX_SAFE_GRAIN_SPEED      = 8192 // ±2x in Q12
)

// Knob conditioning. The analog reads are noisy, so knobs snap to edges,
// to center, and (in direct pitch mode) to musically useful speeds.
const (
	KNOB_MAX                   = 4095
	KNOB_CENTER                = 2048
	VIRTUAL_DETENT_THRESHOLD   = 12
	PITCH_DETENT_THRESHOLD     = 20
	SPEED_HYSTERESIS_THRESHOLD = 32
)

// Grain completion threshold used for the pulse output when externally
// clocked. When free-running the threshold comes from the Y knob instead.
const GRAIN_COMPLETION_THRESHOLD_PERCENT = 90

// Delay distance range covered by the left half of the X knob, and the
// fixed distance used when spread or CV position control is active.
const (
	MIN_DELAY_DISTANCE     = 1200
	MAX_DELAY_DISTANCE     = 80000
	DEFAULT_DELAY_DISTANCE = 20000
)

// Stochastic clock period range, inverse in the Y knob.
const (
	STOCHASTIC_PERIOD_MIN = 240  // 10ms at 24kHz
	STOCHASTIC_PERIOD_MAX = 4800 // 200ms at 24kHz
)

// LCG parameters (Numerical Recipes constants). The top 12 bits are the
// usable output; the low bits of an LCG are far too correlated.
const (
	LCG_MUL = 1664525
	LCG_ADD = 1013904223
)

// Quarter-rate notch coefficients, Q=100. The hardware multiplexer bleeds
// a tone into the audio inputs; the notch removes it before capture.
const (
	NOTCH_OOA0  = 16302 // 1/a0 in Q14
	NOTCH_A2OA0 = 16221 // a2/a0 in Q14
)

// CV input range, ±6V mapped to signed 12 bits.
const (
	CV_MIN = -2048
	CV_MAX = 2047
)
