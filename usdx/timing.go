package usdx

import (
	"fmt"
	"math"
)

// TicksPerBeat is the fixed resolution of every written MIDI file
const TicksPerBeat = 4

const maxTempo = 0xFFFFFF // tempo meta events carry 24 bits

// TempoFromBPM returns the tempo in microseconds per beat, rounded to the
// nearest integer (ties to even)
func TempoFromBPM(bpm float64) (uint32, error) {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) || bpm <= 0 {
		return 0, fmt.Errorf("%w: %v bpm", ErrInvalidTempo, bpm)
	}

	tempo := math.RoundToEven(60_000_000 / bpm)
	if tempo < 1 || tempo > maxTempo {
		return 0, fmt.Errorf("%w: %v bpm does not fit a tempo event", ErrInvalidTempo, bpm)
	}

	return uint32(tempo), nil
}

// secondsToTicks converts wall time to ticks at TicksPerBeat under the given
// tempo. Without a usable tempo every duration collapses to zero ticks.
func secondsToTicks(seconds, bpm float64) int {
	tempo, err := TempoFromBPM(bpm)
	if err != nil {
		return 0
	}

	scale := float64(tempo) * 1e-6 / TicksPerBeat
	ticks := math.RoundToEven(seconds / scale)
	// clamped so an absurd gap is caught by the encoder's range check
	// instead of overflowing
	if ticks > math.MaxInt32 {
		return math.MaxInt32
	}
	if ticks < math.MinInt32 || math.IsNaN(ticks) {
		return math.MinInt32
	}
	return int(ticks)
}
