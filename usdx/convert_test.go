package usdx

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2/smf"
)

const twoNoteChart = `#TITLE:Two Notes
#BPM:120
#GAP:1000
: 0 4 5 one
: 8 4 7 two
E
`

const duetChart = `#TITLE:Duet
#BPM:120
P1
: 0 4 5 one
P2
: 8 4 7 two
E
`

const unorderedChart = `#BPM:120
: 8 4 5 one
: 0 4 7 two
E
`

func mustParse(t *testing.T, chart string) *Document {
	t.Helper()
	doc, err := ParseReader(strings.NewReader(chart))
	require.NoError(t, err)
	return doc
}

func newTestConverter(t *testing.T) (*Converter, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	conv := NewConverter(t.TempDir())
	conv.Logger = logger
	return conv, hook
}

func readMidi(t *testing.T, path string) *smf.SMF {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	midiFile, err := smf.ReadFrom(bytes.NewReader(data))
	require.NoError(t, err)
	return midiFile
}

func TestConvertTwoNotes(t *testing.T) {
	conv, _ := newTestConverter(t)
	chartPath := writeChart(t, twoNoteChart)
	midiPath := filepath.Join(t.TempDir(), "nested", "dir", "out.mid")

	outcome, err := conv.ConvertTo(chartPath, midiPath)
	require.NoError(t, err)
	assert.True(t, outcome.Verdict.Accepted)
	assert.Equal(t, midiPath, outcome.MidiPath)
	assert.Equal(t, "Two Notes", outcome.Document.Title())

	midiFile := readMidi(t, midiPath)
	assert.Equal(t, smf.MetricTicks(4), midiFile.TimeFormat)
	require.Len(t, midiFile.Tracks, 1)

	track := midiFile.Tracks[0]
	require.GreaterOrEqual(t, len(track), 6)

	var ch, program, key, vel uint8
	var bpm float64

	assert.True(t, track[0].Message.GetProgramChange(&ch, &program))
	assert.Equal(t, uint8(1), program)
	assert.Equal(t, uint32(0), track[0].Delta)

	assert.True(t, track[1].Message.GetMetaTempo(&bpm))
	assert.InDelta(t, 120.0, bpm, 1e-6)
	assert.Equal(t, uint32(0), track[1].Delta)

	// normalised pitches are 5 and 7, so keys 65 and 67
	assert.True(t, track[2].Message.GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(65), key)
	assert.Equal(t, uint8(127), vel)
	assert.Equal(t, uint32(8), track[2].Delta)

	assert.True(t, track[3].Message.GetNoteOff(&ch, &key, &vel))
	assert.Equal(t, uint8(65), key)
	assert.Equal(t, uint32(4), track[3].Delta)

	assert.True(t, track[4].Message.GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(67), key)
	assert.Equal(t, uint32(4), track[4].Delta)

	assert.True(t, track[5].Message.GetNoteOff(&ch, &key, &vel))
	assert.Equal(t, uint32(4), track[5].Delta)
}

func TestConvertReconstructsNoteTimes(t *testing.T) {
	conv, _ := newTestConverter(t)
	chartPath := writeChart(t, simpleChart)

	outcome, err := conv.Convert(chartPath)
	require.NoError(t, err)

	doc := outcome.Document
	track := readMidi(t, outcome.MidiPath).Tracks[0]

	var absolute uint32
	var starts, ends []int
	for _, event := range track {
		absolute += event.Delta
		var ch, key, vel uint8
		if event.Message.GetNoteOn(&ch, &key, &vel) {
			starts = append(starts, int(absolute)-doc.StartOffset)
		} else if event.Message.GetNoteOff(&ch, &key, &vel) {
			ends = append(ends, int(absolute)-doc.StartOffset)
		}
	}

	require.Len(t, starts, len(doc.Notes))
	require.Len(t, ends, len(doc.Notes))
	for i, note := range doc.Notes {
		assert.Equal(t, note.Start, starts[i])
		assert.Equal(t, note.Length, ends[i]-starts[i])
	}
}

func TestConvertOutputPath(t *testing.T) {
	conv := NewConverter("data/prepared")
	assert.Equal(t,
		filepath.Join("data/prepared", "Artist - Title", "Artist - Title.mid"),
		conv.OutputPath("songs/Artist - Title/Artist - Title.txt"))
}

func TestConvertRejectedDuet(t *testing.T) {
	conv, hook := newTestConverter(t)
	chartPath := writeChart(t, duetChart)

	outcome, err := conv.Convert(chartPath)
	require.NoError(t, err)

	assert.Equal(t, Verdict{Accepted: false, Reason: ReasonDuet}, outcome.Verdict)
	assert.Nil(t, outcome.Document, "rejected charts are never parsed")
	assert.Empty(t, outcome.MidiPath)
	assert.NoFileExists(t, conv.OutputPath(chartPath))

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, ReasonDuet, hook.LastEntry().Data["reason"])
}

func TestConvertRejectedBeforeParsing(t *testing.T) {
	conv, _ := newTestConverter(t)
	// unparsable note after the freestyle marker never reaches the parser
	chartPath := writeChart(t, "#BPM:120\nF 0 1 2 rap\n: x y z broken\n")

	outcome, err := conv.Convert(chartPath)
	require.NoError(t, err)
	assert.Equal(t, ReasonRapNotes, outcome.Verdict.Reason)
}

func TestConvertUnorderedNotesWritesNothing(t *testing.T) {
	conv, _ := newTestConverter(t)
	chartPath := writeChart(t, unorderedChart)
	midiPath := filepath.Join(t.TempDir(), "out", "song.mid")

	_, err := conv.ConvertTo(chartPath, midiPath)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeOnset)
	assert.NoFileExists(t, midiPath)

	entries, err := os.ReadDir(filepath.Dir(filepath.Dir(midiPath)))
	require.NoError(t, err)
	assert.Empty(t, entries, "no directories or temp files are left behind")
}

func TestConvertNoteBeyondMidiRange(t *testing.T) {
	conv, _ := newTestConverter(t)
	midiPath := filepath.Join(t.TempDir(), "song.mid")

	_, err := conv.ConvertTo(writeChart(t, "#BPM:120\n: 268435456 4 5 la\nE\n"), midiPath)
	assert.ErrorIs(t, err, ErrTickRange)
	assert.NoFileExists(t, midiPath)
}

func TestConvertKeepsExistingFileOnFailure(t *testing.T) {
	conv, _ := newTestConverter(t)
	midiPath := filepath.Join(t.TempDir(), "song.mid")
	require.NoError(t, os.WriteFile(midiPath, []byte("old"), 0o644))

	_, err := conv.ConvertTo(writeChart(t, "#BPM:120\n: 0 1 bad\n"), midiPath)
	assert.ErrorIs(t, err, ErrParse)

	data, err := os.ReadFile(midiPath)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}

func TestConvertOverwritesExistingFile(t *testing.T) {
	conv, _ := newTestConverter(t)
	midiPath := filepath.Join(t.TempDir(), "song.mid")
	require.NoError(t, os.WriteFile(midiPath, []byte("old"), 0o644))

	_, err := conv.ConvertTo(writeChart(t, twoNoteChart), midiPath)
	require.NoError(t, err)

	readMidi(t, midiPath)
}

func TestConvertMissingTempo(t *testing.T) {
	conv, _ := newTestConverter(t)
	_, err := conv.Convert(writeChart(t, ": 0 4 5 la\n"))
	assert.ErrorIs(t, err, ErrInvalidTempo)
}

func TestConvertWithLyrics(t *testing.T) {
	conv, _ := newTestConverter(t)
	conv.Lyrics = true

	outcome, err := conv.Convert(writeChart(t, simpleChart))
	require.NoError(t, err)

	var lyrics []string
	for _, event := range readMidi(t, outcome.MidiPath).Tracks[0] {
		var lyric string
		if event.Message.GetMetaLyric(&lyric) {
			lyrics = append(lyrics, lyric)
		}
	}
	assert.Equal(t, []string{"Hel", "lo", " world"}, lyrics)
}

func TestConvertChartToMidi(t *testing.T) {
	midiPath := filepath.Join(t.TempDir(), "song.mid")
	outcome, err := ConvertChartToMidi(writeChart(t, twoNoteChart), midiPath)
	require.NoError(t, err)
	assert.Equal(t, midiPath, outcome.MidiPath)
	assert.FileExists(t, midiPath)
}
