// Package usdx converts UltraStar Deluxe karaoke charts into single track
// MIDI files.
//
// Basic Usage:
//
//	conv := usdx.NewConverter("data/prepared")
//	outcome, err := conv.Convert("songs/Artist - Title/Artist - Title.txt")
//	if err != nil {
//		log.Fatal(err)
//	}
//	if !outcome.Verdict.Accepted {
//		fmt.Println("skipped:", outcome.Verdict.Reason)
//	}
//
// Chart Format:
//
// Charts are line oriented text in UTF-8 or a legacy encoding. The lines that
// matter here are:
//   - #BPM:<decimal> and #GAP:<decimal milliseconds>, with "," or "." as separator
//   - ": <start> <length> <pitch> <syllable>" for notes ("*" marks golden notes)
//   - "F ..." freestyle notes, "P1" duet markers and #RELATIVE:YES, all of which
//     get a chart rejected
//
// Conversion runs in fixed stages: decode, validity check, parse, octave
// normalisation, delta encoding, and finally writing the file. Nothing touches
// the output path until every earlier stage has succeeded.
package usdx
