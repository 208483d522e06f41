package usdx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gitlab.com/gomidi/midi/v2/smf"
)

// NewSMF builds a single track MIDI file at TicksPerBeat from encoded events.
// Events keep the order they were encoded in.
func NewSMF(events []Event) (*smf.SMF, error) {
	if len(events) == 0 {
		return nil, fmt.Errorf("no events to export")
	}

	track := smf.Track{}
	for _, event := range events {
		msg := event.Message()
		if msg == nil {
			return nil, fmt.Errorf("unknown event kind %v", event.Kind)
		}
		track = append(track, smf.Event{Delta: event.Delta, Message: msg})
	}

	// Always end with End of Track
	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})

	midiFile := smf.NewSMF1()
	midiFile.TimeFormat = smf.MetricTicks(TicksPerBeat)
	if err := midiFile.Add(track); err != nil {
		return nil, fmt.Errorf("error adding track: %w", err)
	}

	return midiFile, nil
}

// WriteTo serialises the events as a MIDI file to writer
func WriteTo(writer io.Writer, events []Event) error {
	midiFile, err := NewSMF(events)
	if err != nil {
		return err
	}

	if _, err := midiFile.WriteTo(writer); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}

	return nil
}

// WriteMidi writes the events to path, creating parent directories and
// replacing any existing file. The file only appears once it is complete.
func WriteMidi(path string, events []Event) error {
	midiFile, err := NewSMF(events)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("error creating MIDI file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op once renamed

	if _, err := midiFile.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing MIDI file: %w", err)
	}

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing MIDI file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("error moving MIDI file into place: %w", err)
	}

	return nil
}
