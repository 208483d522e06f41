package usdx

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is matched by every *DecodeError
	ErrDecode = errors.New("chart could not be decoded")
	// ErrParse is matched by every *ParseError
	ErrParse = errors.New("chart could not be parsed")
	// ErrNegativeOnset is matched by every *NegativeOnsetError
	ErrNegativeOnset = errors.New("negative note onset")
	// ErrPitchRange is matched by every *PitchRangeError
	ErrPitchRange = errors.New("note key outside MIDI range")
	// ErrTickRange is matched by every *TickRangeError
	ErrTickRange = errors.New("note time outside MIDI range")
	// ErrInvalidTempo is returned when the chart has no usable #BPM
	ErrInvalidTempo = errors.New("invalid tempo")
)

// DecodeError means the chart bytes could not be turned into text under the
// guessed encoding (or no encoding could be guessed at all).
type DecodeError struct {
	Path    string
	Charset string
	Err     error
}

func (e *DecodeError) Error() string {
	msg := "error decoding"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Charset != "" {
		msg += " as " + e.Charset
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *DecodeError) Unwrap() []error { return []error{ErrDecode, e.Err} }

// ParseError names the chart line that could not be parsed
type ParseError struct {
	Path string
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error parsing line %d '%s' in %s: %v", e.Line, e.Text, e.Path, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

// NegativeOnsetError is raised by the encoder when a note starts before the
// end of the previous one. Index is the note's position in the chart.
type NegativeOnsetError struct {
	Index    int
	Start    int
	Position int
	Onset    int
}

func (e *NegativeOnsetError) Error() string {
	return fmt.Sprintf("invalid midi note time for note %d: %d (start time: %d, current position: %d)",
		e.Index, e.Onset, e.Start, e.Position)
}

func (e *NegativeOnsetError) Is(target error) bool { return target == ErrNegativeOnset }

// PitchRangeError is raised when 60 + pitch does not fit a MIDI key
type PitchRangeError struct {
	Index int
	Key   int
}

func (e *PitchRangeError) Error() string {
	return fmt.Sprintf("note %d has key %d outside 0-127", e.Index, e.Key)
}

func (e *PitchRangeError) Is(target error) bool { return target == ErrPitchRange }

// TickRangeError is raised when a note start, length or onset does not fit a
// MIDI delta time
type TickRangeError struct {
	Index int
	Ticks int
}

func (e *TickRangeError) Error() string {
	return fmt.Sprintf("note %d has time %d ticks, beyond the MIDI limit of %d", e.Index, e.Ticks, MaxTicks)
}

func (e *TickRangeError) Is(target error) bool { return target == ErrTickRange }
