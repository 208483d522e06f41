package usdx

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Outcome is the result of one conversion that did not fail. A rejected
// chart has Verdict.Accepted == false and no MidiPath.
type Outcome struct {
	Verdict  Verdict
	MidiPath string
	Document *Document
}

// Converter turns chart files into MIDI files. A Converter holds no mutable
// state, so one value can serve any number of goroutines as long as each
// conversion writes to its own path.
type Converter struct {
	// OutputDir is where Convert places <stem>/<stem>.mid
	OutputDir string
	// Lyrics adds lyric meta events to the output
	Lyrics bool
	Logger logrus.FieldLogger
}

// NewConverter creates a converter writing below outputDir
func NewConverter(outputDir string) *Converter {
	return &Converter{
		OutputDir: outputDir,
		Logger:    logrus.StandardLogger(),
	}
}

// OutputPath is where Convert writes the MIDI file for chartPath
func (c *Converter) OutputPath(chartPath string) string {
	base := filepath.Base(chartPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(c.OutputDir, stem, stem+".mid")
}

// Convert converts chartPath to the MIDI file at OutputPath(chartPath)
func (c *Converter) Convert(chartPath string) (Outcome, error) {
	return c.ConvertTo(chartPath, c.OutputPath(chartPath))
}

// ConvertTo converts chartPath to the MIDI file at midiPath.
//
// Rejected charts are not errors: the verdict is returned and nothing is
// parsed or written. Every error leaves midiPath untouched.
func (c *Converter) ConvertTo(chartPath, midiPath string) (Outcome, error) {
	log := c.logger().WithField("chart", chartPath)

	text, err := readChart(chartPath)
	if err != nil {
		return Outcome{}, err
	}

	verdict, err := CheckLines(strings.NewReader(text))
	if err != nil {
		return Outcome{}, err
	}

	if !verdict.Accepted {
		log.WithField("reason", verdict.Reason).Info("chart rejected")
		return Outcome{Verdict: verdict}, nil
	}

	doc, err := parseText(chartPath, text)
	if err != nil {
		return Outcome{}, err
	}

	notes := Normalize(doc.Notes)

	events, err := Encode(TimelineFor(doc, notes), EncodeOptions{Lyrics: c.Lyrics})
	if err != nil {
		return Outcome{}, fmt.Errorf("error encoding %s: %w", chartPath, err)
	}

	if err := WriteMidi(midiPath, events); err != nil {
		return Outcome{}, err
	}

	log.WithFields(logrus.Fields{
		"midi":  midiPath,
		"notes": len(notes),
	}).Debug("chart converted")

	return Outcome{Verdict: verdict, MidiPath: midiPath, Document: doc}, nil
}

func (c *Converter) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}

// ConvertChartToMidi converts one chart with a default converter
func ConvertChartToMidi(chartPath, midiPath string) (Outcome, error) {
	return NewConverter(filepath.Dir(midiPath)).ConvertTo(chartPath, midiPath)
}
