package usdx

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// EventKind tags an Event
type EventKind uint8

const (
	ProgramChange EventKind = iota
	TempoMeta
	NoteOn
	NoteOff
	Lyric
)

func (k EventKind) String() string {
	switch k {
	case ProgramChange:
		return "ProgramChange"
	case TempoMeta:
		return "TempoMeta"
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	case Lyric:
		return "Lyric"
	}
	return fmt.Sprintf("EventKind(%d)", uint8(k))
}

// Event is one entry of the encoded track. Delta is the number of ticks
// since the previous event, which is how it lands in the file.
type Event struct {
	Kind                EventKind
	Delta               uint32
	Program             uint8  // ProgramChange
	MicrosecondsPerBeat uint32 // TempoMeta
	Key                 uint8  // NoteOn, NoteOff
	Velocity            uint8  // NoteOn, NoteOff
	Text                string // Lyric
}

// all notes go out on the first channel
const channel uint8 = 0

// Message converts the event into its SMF message
func (e Event) Message() smf.Message {
	switch e.Kind {
	case ProgramChange:
		return smf.Message(midi.ProgramChange(channel, e.Program))
	case TempoMeta:
		return tempoMessage(e.MicrosecondsPerBeat)
	case NoteOn:
		return smf.Message(midi.NoteOn(channel, e.Key, e.Velocity))
	case NoteOff:
		return smf.Message(midi.NoteOffVelocity(channel, e.Key, e.Velocity))
	case Lyric:
		return smf.Message(smf.MetaLyric(e.Text))
	}
	return nil
}

// tempoMessage builds the set-tempo meta event from an exact microsecond
// value instead of going back through a float bpm
func tempoMessage(microseconds uint32) smf.Message {
	return smf.Message{
		0xFF, 0x51, 0x03,
		byte(microseconds >> 16), byte(microseconds >> 8), byte(microseconds),
	}
}
