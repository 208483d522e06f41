package usdx

const (
	// Program sent before any note
	Program uint8 = 1
	// Velocity used for every note on and note off
	Velocity uint8 = 127
	// middleC is the absolute key of pitch 0
	middleC = 60
	// MaxTicks is the largest delta time a MIDI variable length quantity holds
	MaxTicks = 0x0FFFFFFF
)

// Timeline is everything the encoder needs from a parsed chart
type Timeline struct {
	BPM         float64
	StartOffset int
	Notes       []Note
}

// TimelineFor pairs a document's timing with a (normally already
// normalized) set of notes
func TimelineFor(doc *Document, notes []Note) Timeline {
	return Timeline{
		BPM:         doc.BPM,
		StartOffset: doc.StartOffset,
		Notes:       notes,
	}
}

// EncodeOptions tweak the encoded stream
type EncodeOptions struct {
	// Lyrics emits each note's syllable as a lyric meta event right before
	// its note on. The note on then carries a zero delta.
	Lyrics bool
}

// Encode walks the notes in order and turns their absolute chart positions
// into delta times. The stream starts with a program change and the tempo,
// then a note on/note off pair per note.
//
// Only the first note is shifted by the start offset; every later onset is
// measured from the end of the previous note and must not be negative.
func Encode(timeline Timeline, opts EncodeOptions) ([]Event, error) {
	tempo, err := TempoFromBPM(timeline.BPM)
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, 2+2*len(timeline.Notes))
	events = append(events,
		Event{Kind: ProgramChange, Program: Program},
		Event{Kind: TempoMeta, MicrosecondsPerBeat: tempo},
	)

	currentPosition := 0
	firstNote := true

	for i, note := range timeline.Notes {
		key := middleC + note.Pitch
		if key < 0 || key > 127 {
			return nil, &PitchRangeError{Index: i, Key: key}
		}

		if note.Start > MaxTicks || note.Start < -MaxTicks {
			return nil, &TickRangeError{Index: i, Ticks: note.Start}
		}
		if note.Length > MaxTicks {
			return nil, &TickRangeError{Index: i, Ticks: note.Length}
		}

		var onset int
		if firstNote {
			if timeline.StartOffset > MaxTicks || timeline.StartOffset < -MaxTicks {
				return nil, &TickRangeError{Index: i, Ticks: timeline.StartOffset}
			}
			onset = note.Start + timeline.StartOffset
			firstNote = false
		} else {
			onset = note.Start - currentPosition
		}

		if onset < 0 {
			return nil, &NegativeOnsetError{
				Index:    i,
				Start:    note.Start,
				Position: currentPosition,
				Onset:    onset,
			}
		}
		if onset > MaxTicks {
			return nil, &TickRangeError{Index: i, Ticks: onset}
		}

		noteOnDelta := uint32(onset)
		if opts.Lyrics && note.Lyric != "" {
			events = append(events, Event{Kind: Lyric, Delta: noteOnDelta, Text: note.Lyric})
			noteOnDelta = 0
		}

		events = append(events,
			Event{Kind: NoteOn, Delta: noteOnDelta, Key: uint8(key), Velocity: Velocity},
			// deltas are relative, so the note off sits exactly one length later
			Event{Kind: NoteOff, Delta: uint32(note.Length), Key: uint8(key), Velocity: Velocity},
		)

		currentPosition = note.Start + note.Length
	}

	return events, nil
}
