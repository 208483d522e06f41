package usdx

import "golang.org/x/exp/constraints"

const octave = 12

// Normalize shifts every pitch by the same whole number of octaves so the
// lowest pitch lands in [0, 12). The input slice is left untouched.
func Normalize(notes []Note) []Note {
	normalized := make([]Note, len(notes))
	copy(normalized, notes)

	if len(notes) == 0 {
		return normalized
	}

	lowest := notes[0].Pitch
	for _, note := range notes[1:] {
		lowest = min(lowest, note.Pitch)
	}

	offset := floorDiv(lowest, octave) * octave
	for i := range normalized {
		normalized[i].Pitch -= offset
	}

	return normalized
}

// floorDiv divides rounding toward negative infinity
func floorDiv[T constraints.Signed](a, b T) T {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
