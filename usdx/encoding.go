package usdx

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// chardet names that the WHATWG label table spells differently
var charsetAliases = map[string]string{
	"GB-18030":     "gb18030",
	"ISO-8859-8-I": "iso-8859-8-i",
}

// encodings chardet can report that the WHATWG table leaves out
var extraEncodings = map[string]encoding.Encoding{
	"UTF-32LE": utf32.UTF32(utf32.LittleEndian, utf32.UseBOM),
	"UTF-32BE": utf32.UTF32(utf32.BigEndian, utf32.UseBOM),
}

// DetectEncoding returns a best guess of the text encoding of raw. Valid
// UTF-8 (which includes plain ASCII) is always reported as UTF-8, anything
// else is handed to the statistical detector.
func DetectEncoding(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return "UTF-8", nil
	}

	result, err := chardet.NewTextDetector().DetectBest(raw)
	if err != nil {
		return "", fmt.Errorf("no charset detected: %w", err)
	}
	if result.Charset == "" {
		return "", fmt.Errorf("no charset detected")
	}

	return result.Charset, nil
}

// Decode converts raw chart bytes to text using the detected encoding. A
// leading byte order mark is dropped.
func Decode(raw []byte) (string, error) {
	name, err := DetectEncoding(raw)
	if err != nil {
		return "", &DecodeError{Err: err}
	}

	enc := lookupEncoding(name)
	if enc == nil {
		return "", &DecodeError{Charset: name, Err: fmt.Errorf("unsupported charset")}
	}

	text, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", &DecodeError{Charset: name, Err: err}
	}

	return strings.TrimPrefix(string(text), "\ufeff"), nil
}

// lookupEncoding maps a detector name to a decoder, nil when there is none.
// Labels the WHATWG table maps to its "replacement" encoding (ISO-2022-KR,
// ISO-2022-CN) are unsupported: that encoding decodes everything to U+FFFD.
func lookupEncoding(name string) encoding.Encoding {
	if enc, ok := extraEncodings[name]; ok {
		return enc
	}

	label := name
	if alias, ok := charsetAliases[name]; ok {
		label = alias
	}

	enc, canonical := charset.Lookup(label)
	if enc == nil || canonical == "replacement" {
		return nil
	}
	return enc
}

// readChart loads and decodes a chart file
func readChart(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error opening chart file: %w", err)
	}

	text, err := Decode(raw)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.Path = path
		}
		return "", err
	}

	return text, nil
}
