package usdx

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Note is a single sung note as read from the chart, in chart ticks
type Note struct {
	Start  int    `json:"start"`
	Length int    `json:"length"`
	Pitch  int    `json:"pitch"`
	Lyric  string `json:"lyric,omitempty"`
}

// Document is the parsed form of one chart
type Document struct {
	BPM         float64           `json:"bpm"`
	Gap         float64           `json:"gap"` // milliseconds of silence before the first note
	StartOffset int               `json:"startOffset"`
	Notes       []Note            `json:"notes"`
	Headers     map[string]string `json:"headers,omitempty"`
	Filename    string            `json:"filename"`
}

// Title returns the #TITLE header, if any
func (d *Document) Title() string {
	return d.Headers["TITLE"]
}

// Artist returns the #ARTIST header, if any
func (d *Document) Artist() string {
	return d.Headers["ARTIST"]
}

// Parse decodes and parses the chart at path
func Parse(path string) (*Document, error) {
	text, err := readChart(path)
	if err != nil {
		return nil, err
	}
	return parseText(path, text)
}

func parseText(path, text string) (*Document, error) {
	doc, err := ParseReader(strings.NewReader(text))
	if err != nil {
		if pe, ok := err.(*ParseError); ok {
			pe.Path = path
		}
		return nil, err
	}

	doc.Filename = path
	return doc, nil
}

// ParseReader parses already decoded chart text. Lines are handled in file
// order, so a #GAP line computes its start offset against whatever #BPM has
// been seen before it (none means an offset of zero).
func ParseReader(reader io.Reader) (*Document, error) {
	doc := &Document{
		Headers: make(map[string]string),
	}

	scanner := newLineScanner(reader)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		if err := parseLine(doc, line); err != nil {
			return nil, &ParseError{Line: lineNumber, Text: line, Err: err}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading chart file: %w", err)
	}

	return doc, nil
}

func parseLine(doc *Document, line string) error {
	switch {
	case strings.HasPrefix(line, "#BPM:"):
		bpm, err := parseDecimal(headerValue(line))
		if err != nil {
			return fmt.Errorf("invalid bpm: %w", err)
		}
		doc.BPM = bpm
	case strings.HasPrefix(line, "#GAP:"):
		gap, err := parseDecimal(headerValue(line))
		if err != nil {
			return fmt.Errorf("invalid gap: %w", err)
		}
		doc.Gap = gap
		doc.StartOffset = secondsToTicks(gap/1000.0, doc.BPM)
	case strings.HasPrefix(line, ":"), strings.HasPrefix(line, "*"):
		note, err := parseNoteLine(line)
		if err != nil {
			return err
		}
		doc.Notes = append(doc.Notes, note)
	case strings.HasPrefix(line, "#"):
		// other headers are informational only
		if key, value, ok := strings.Cut(line[1:], ":"); ok {
			doc.Headers[strings.ToUpper(strings.TrimSpace(key))] = strings.TrimSpace(value)
		}
	}

	return nil
}

// headerValue returns the text between the first and second colon
func headerValue(line string) string {
	parts := strings.Split(line, ":")
	return strings.TrimSpace(parts[1])
}

// parseDecimal accepts both "." and "," as the decimal separator
func parseDecimal(value string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
}

// parseNoteLine reads "<tag> <start> <length> <pitch> <lyric>"
func parseNoteLine(line string) (Note, error) {
	parts := strings.Fields(line)
	if len(parts) < 4 {
		return Note{}, fmt.Errorf("note line needs start, length and pitch, got %d fields", len(parts)-1)
	}

	start, err := strconv.Atoi(parts[1])
	if err != nil {
		return Note{}, fmt.Errorf("invalid start tick '%s': %w", parts[1], err)
	}

	length, err := strconv.Atoi(parts[2])
	if err != nil {
		return Note{}, fmt.Errorf("invalid length '%s': %w", parts[2], err)
	}
	if length < 0 {
		return Note{}, fmt.Errorf("negative length %d", length)
	}

	pitch, err := strconv.Atoi(parts[3])
	if err != nil {
		return Note{}, fmt.Errorf("invalid pitch '%s': %w", parts[3], err)
	}

	return Note{
		Start:  start,
		Length: length,
		Pitch:  pitch,
		Lyric:  lyricAfterFields(line, 4),
	}, nil
}

// lyricAfterFields returns whatever follows the first n whitespace separated
// fields, minus the single separator. Syllables keep their own leading space
// since that is how charts mark word boundaries.
func lyricAfterFields(line string, n int) string {
	rest := line
	for i := 0; i < n; i++ {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return ""
		}
		rest = rest[end:]
	}

	_, size := utf8.DecodeRuneInString(rest)
	return rest[size:]
}
