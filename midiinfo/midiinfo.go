// Package midiinfo reads MIDI files back and summarises what is in them.
package midiinfo

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/leafo/usdxmidi/usdx"
	"gitlab.com/gomidi/midi/v2/smf"
)

// NoteSpan is a note reconstructed from a note on/note off pair, in
// absolute ticks
type NoteSpan struct {
	Start    uint32 `json:"start"`
	Length   uint32 `json:"length"`
	Key      uint8  `json:"key"`
	Velocity uint8  `json:"velocity"`
}

// TrackInfo summarises one track
type TrackInfo struct {
	Name          string           `json:"name,omitempty"`
	Events        int              `json:"events"`
	DurationTicks uint32           `json:"durationTicks"`
	Tempos        []float64        `json:"tempos,omitempty"`
	Instruments   map[uint8]string `json:"instruments,omitempty"` // by channel
	Channels      []uint8          `json:"channels,omitempty"`
	Notes         []NoteSpan       `json:"notes,omitempty"`
	Lyrics        string           `json:"lyrics,omitempty"`
}

// Info summarises a MIDI file
type Info struct {
	Filename     string      `json:"filename,omitempty"`
	Format       uint16      `json:"format"`
	TicksPerBeat uint16      `json:"ticksPerBeat,omitempty"`
	Tracks       []TrackInfo `json:"tracks"`
}

// ReadFile reads and summarises the MIDI file at path
func ReadFile(path string) (info *Info, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading midi file: %w", err)
	}

	// the smf reader can panic on truncated input
	defer func() {
		if r := recover(); r != nil {
			info = nil
			err = fmt.Errorf("error parsing midi file: %v", r)
		}
	}()

	midiFile, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing midi file: %w", err)
	}

	info = Summarize(midiFile)
	info.Filename = path
	return info, nil
}

// Summarize collects per track statistics from a parsed MIDI file
func Summarize(midiFile *smf.SMF) *Info {
	info := &Info{
		Format: midiFile.Format(),
	}

	if tf, ok := midiFile.TimeFormat.(smf.MetricTicks); ok {
		info.TicksPerBeat = uint16(tf)
	}

	for _, track := range midiFile.Tracks {
		info.Tracks = append(info.Tracks, summarizeTrack(track))
	}

	return info
}

func summarizeTrack(track smf.Track) TrackInfo {
	result := TrackInfo{
		Events:      len(track),
		Instruments: make(map[uint8]string),
	}

	channels := make(map[uint8]bool)
	noteOns := make(map[uint8]NoteSpan) // open notes by key
	var syllables []string
	var currentTime uint32
	named := false

	for _, event := range track {
		currentTime += event.Delta
		msg := event.Message

		var ch, key, vel uint8
		var bpm float64
		var lyric, text string

		switch {
		case msg.GetNoteOn(&ch, &key, &vel) && vel > 0:
			channels[ch] = true
			noteOns[key] = NoteSpan{Start: currentTime, Key: key, Velocity: vel}
		case msg.GetNoteOff(&ch, &key, &vel), msg.GetNoteOn(&ch, &key, &vel):
			// note off, or note on with velocity 0
			channels[ch] = true
			if open, exists := noteOns[key]; exists {
				open.Length = currentTime - open.Start
				result.Notes = append(result.Notes, open)
				delete(noteOns, key)
			}
		case msg.GetProgramChange(&ch, &key):
			channels[ch] = true
			result.Instruments[ch] = InstrumentName(key)
		case msg.GetMetaTempo(&bpm):
			result.Tempos = append(result.Tempos, bpm)
		case msg.GetMetaLyric(&lyric):
			syllables = append(syllables, lyric)
		case msg.GetMetaTrackName(&text):
			// the first track name wins over any text event
			if !named {
				result.Name = text
				named = true
			}
		case msg.GetMetaText(&text):
			if result.Name == "" {
				result.Name = text
			}
		}
	}

	result.DurationTicks = currentTime
	result.Lyrics = usdx.JoinLyrics(syllables)

	for ch := range channels {
		result.Channels = append(result.Channels, ch)
	}
	sort.Slice(result.Channels, func(i, j int) bool { return result.Channels[i] < result.Channels[j] })

	sort.SliceStable(result.Notes, func(i, j int) bool { return result.Notes[i].Start < result.Notes[j].Start })

	return result
}

// NoteCount is the number of completed notes across all tracks
func (info *Info) NoteCount() int {
	count := 0
	for _, track := range info.Tracks {
		count += len(track.Notes)
	}
	return count
}
