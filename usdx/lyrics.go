package usdx

import "strings"

// JoinLyrics turns per-note syllables back into readable text.
//
// Formatting rules handled:
//   - Word boundaries: a syllable starting with a space begins a new word,
//     anything else is glued to the previous syllable: "Hel" "lo" " world" → "Hello world"
//   - Held notes: "~" repeats the previous vowel and is dropped, "~lo" → "lo"
//   - Runs of whitespace collapse to one space
func JoinLyrics(syllables []string) string {
	var sb strings.Builder

	for _, syllable := range syllables {
		if syllable == "" {
			continue
		}

		leadingSpace := strings.HasPrefix(syllable, " ")
		cleaned := strings.TrimSpace(syllable)
		cleaned = strings.TrimPrefix(cleaned, "~")

		if cleaned == "" {
			continue
		}

		if leadingSpace {
			sb.WriteByte(' ')
		}
		sb.WriteString(cleaned)
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// Lyrics returns the chart's sung text
func (d *Document) Lyrics() string {
	syllables := make([]string, 0, len(d.Notes))
	for _, note := range d.Notes {
		syllables = append(syllables, note.Lyric)
	}
	return JoinLyrics(syllables)
}
