package midiinfo

import (
	"fmt"
	"io"
	"sort"
)

// WriteText prints a human readable report of the file
func (info *Info) WriteText(w io.Writer) {
	fmt.Fprintf(w, "MIDI File: %s\n", info.Filename)
	fmt.Fprintf(w, "Format: %d\n", info.Format)
	if info.TicksPerBeat > 0 {
		fmt.Fprintf(w, "Ticks per quarter note: %d\n", info.TicksPerBeat)
	}
	fmt.Fprintf(w, "Number of tracks: %d\n", len(info.Tracks))
	fmt.Fprintln(w)

	for i, track := range info.Tracks {
		if track.Name != "" {
			fmt.Fprintf(w, "Track %d: %s\n", i, track.Name)
		} else {
			fmt.Fprintf(w, "Track %d:\n", i)
		}
		fmt.Fprintf(w, "  Number of events: %d\n", track.Events)

		if track.Events == 0 {
			fmt.Fprintln(w, "  (empty track)")
			continue
		}

		fmt.Fprintf(w, "  Duration: %d ticks\n", track.DurationTicks)
		for _, bpm := range track.Tempos {
			fmt.Fprintf(w, "  Tempo: %.2f BPM\n", bpm)
		}
		fmt.Fprintf(w, "  Notes: %d\n", len(track.Notes))
		if len(track.Notes) > 0 {
			low, high := track.Notes[0].Key, track.Notes[0].Key
			for _, note := range track.Notes {
				low = min(low, note.Key)
				high = max(high, note.Key)
			}
			fmt.Fprintf(w, "  Key range: %d-%d\n", low, high)
		}
		if track.Lyrics != "" {
			fmt.Fprintf(w, "  Lyrics: %s\n", track.Lyrics)
		}

		if len(track.Channels) > 0 {
			fmt.Fprintf(w, "  Channels used: ")
			for j, ch := range track.Channels {
				if j > 0 {
					fmt.Fprintf(w, ", ")
				}
				fmt.Fprintf(w, "%d", ch)
			}
			fmt.Fprintln(w)
		}

		if len(track.Instruments) > 0 {
			fmt.Fprintln(w, "  Instruments:")
			channels := make([]int, 0, len(track.Instruments))
			for ch := range track.Instruments {
				channels = append(channels, int(ch))
			}
			sort.Ints(channels)
			for _, ch := range channels {
				fmt.Fprintf(w, "    Channel %d: %s\n", ch, track.Instruments[uint8(ch)])
			}
		}

		fmt.Fprintln(w)
	}
}
