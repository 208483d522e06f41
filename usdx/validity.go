package usdx

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RejectionReason says why a chart is unsuitable for conversion
type RejectionReason string

const (
	ReasonNone           RejectionReason = "NONE"
	ReasonRapNotes       RejectionReason = "RAP_NOTES"
	ReasonDuet           RejectionReason = "DUET"
	ReasonRelativeTiming RejectionReason = "RELATIVE_TIMING"
)

// Verdict is the outcome of the validity filter
type Verdict struct {
	Accepted bool            `json:"accepted"`
	Reason   RejectionReason `json:"reason"`
}

var accepted = Verdict{Accepted: true, Reason: ReasonNone}

func rejected(reason RejectionReason) Verdict {
	return Verdict{Accepted: false, Reason: reason}
}

// CheckValidity decodes the chart at path and runs the validity filter over it
func CheckValidity(path string) (Verdict, error) {
	text, err := readChart(path)
	if err != nil {
		return Verdict{}, err
	}
	return CheckLines(strings.NewReader(text))
}

// CheckLines scans decoded chart lines and stops at the first one that
// disqualifies the chart:
//   - freestyle/rap notes ("F" or "f")
//   - a duet player marker ("P1" or "p1")
//   - relative timing mode ("#RELATIVE:YES")
func CheckLines(reader io.Reader) (Verdict, error) {
	scanner := newLineScanner(reader)

	for scanner.Scan() {
		if reason := lineRejection(scanner.Text()); reason != ReasonNone {
			return rejected(reason), nil
		}
	}

	if err := scanner.Err(); err != nil {
		return Verdict{}, fmt.Errorf("error reading chart file: %w", err)
	}

	return accepted, nil
}

func lineRejection(line string) RejectionReason {
	switch {
	case strings.HasPrefix(line, "f"), strings.HasPrefix(line, "F"):
		return ReasonRapNotes
	case strings.HasPrefix(line, "P1"), strings.HasPrefix(line, "p1"):
		return ReasonDuet
	case strings.HasPrefix(line, "#RELATIVE:YES"):
		return ReasonRelativeTiming
	}
	return ReasonNone
}

// newLineScanner returns a line scanner with room for long lyric lines
func newLineScanner(reader io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}
