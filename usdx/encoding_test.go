package usdx

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

const frenchChart = `#TITLE:Déjà vu à côté du café
#ARTIST:Élodie et les garçons
#LANGUAGE:Français
#BPM:180
#GAP:2500
: 0 4 5 Dé
: 4 4 5 jà
: 8 4 7  vu
: 12 2 7  à
: 16 2 9  cô
: 20 2 9 té
: 24 4 5  du
: 28 6 4  ca
: 36 4 2 fé
- 42
: 44 4 5  Les
: 48 4 5  élèves
: 52 4 7  étaient
: 56 4 9  très
: 60 4 9  pressés
E
`

func TestDetectEncodingUTF8(t *testing.T) {
	name, err := DetectEncoding([]byte(frenchChart))
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", name)

	name, err = DetectEncoding([]byte("#BPM:120\n"))
	require.NoError(t, err)
	assert.Equal(t, "UTF-8", name)
}

func TestDecodeLatin1Chart(t *testing.T) {
	raw, err := charmap.Windows1252.NewEncoder().Bytes([]byte(frenchChart))
	require.NoError(t, err)

	name, err := DetectEncoding(raw)
	require.NoError(t, err)
	assert.NotEqual(t, "UTF-8", name)

	text, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, frenchChart, text)
}

func TestDecodeUTF16WithBOM(t *testing.T) {
	raw, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(simpleChart))
	require.NoError(t, err)

	text, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, simpleChart, text)
}

func TestDecodeUTF32WithBOM(t *testing.T) {
	for _, endianness := range []utf32.Endianness{utf32.LittleEndian, utf32.BigEndian} {
		raw, err := utf32.UTF32(endianness, utf32.UseBOM).NewEncoder().Bytes([]byte(simpleChart))
		require.NoError(t, err)

		text, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, simpleChart, text)
	}
}

func TestDecodeStripsUTF8BOM(t *testing.T) {
	text, err := Decode([]byte("\ufeff#BPM:120\n"))
	require.NoError(t, err)
	assert.Equal(t, "#BPM:120\n", text)
}

func TestParseLegacyEncodedFile(t *testing.T) {
	raw, err := charmap.Windows1252.NewEncoder().Bytes([]byte(frenchChart))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "latin1.txt")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	doc, err := Parse(path)
	require.NoError(t, err)
	assert.Equal(t, "Déjà vu à côté du café", doc.Title())
	assert.Len(t, doc.Notes, 14)
}

// iso2022KRChart carries enough ISO-2022-KR designator escapes to be
// detected as such, and one stray high byte so it is not valid UTF-8
func iso2022KRChart() []byte {
	raw := []byte(strings.Repeat("\x1b$)C", 5))
	raw = append(raw, simpleChart...)
	return append(raw, 0xFF)
}

func TestDecodeUnsupportedCharset(t *testing.T) {
	raw := iso2022KRChart()

	name, err := DetectEncoding(raw)
	require.NoError(t, err)
	assert.Equal(t, "ISO-2022-KR", name)

	_, err = Decode(raw)
	assert.ErrorIs(t, err, ErrDecode)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "ISO-2022-KR", decodeErr.Charset)
	assert.Empty(t, decodeErr.Path)
	assert.Equal(t, "error decoding as ISO-2022-KR: unsupported charset", err.Error())
}

func TestConvertUndecodableChart(t *testing.T) {
	conv, _ := newTestConverter(t)
	chartPath := filepath.Join(t.TempDir(), "iso2022.txt")
	require.NoError(t, os.WriteFile(chartPath, iso2022KRChart(), 0o644))
	midiPath := filepath.Join(t.TempDir(), "iso2022.mid")

	_, err := conv.ConvertTo(chartPath, midiPath)
	assert.ErrorIs(t, err, ErrDecode)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, chartPath, decodeErr.Path)
	assert.Contains(t, err.Error(), "error decoding "+chartPath+" as ISO-2022-KR")
	assert.NoFileExists(t, midiPath)

	_, err = Parse(chartPath)
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecodeErrorMessage(t *testing.T) {
	err := error(&DecodeError{Err: assert.AnError})
	assert.ErrorIs(t, err, ErrDecode)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "error decoding: "+assert.AnError.Error(), err.Error())

	err = &DecodeError{Path: "a.txt", Charset: "IBM424_rtl", Err: assert.AnError}
	assert.Equal(t, "error decoding a.txt as IBM424_rtl: "+assert.AnError.Error(), err.Error())
}
