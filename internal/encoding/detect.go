// Package encoding turns bank exports of unknown charset into UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// sniffSize is how much of the input is inspected before choosing a decoder.
const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Fallback decodes single-byte input no heuristic could place. Windows-1254
// agrees with ISO-8859-9 on every printable Turkish letter and with
// Windows-1252 everywhere else, so Latin-1 exports survive it too.
var Fallback encoding.Encoding = charmap.Windows1254

// NewUTF8Reader detects the charset of r and returns a reader yielding UTF-8.
//
// Detection order:
//  1. Byte order mark (UTF-8 is stripped, UTF-16 LE/BE is decoded)
//  2. Content that is already valid UTF-8 is passed through
//  3. chardet, trusted only for UTF-16 and ISO-8859-9 verdicts
//  4. Fallback (Windows-1254)
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decode(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decode(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)), nil
	}

	if validUTF8Prefix(buf) {
		return br, nil
	}

	return decode(br, Detect(buf)), nil
}

// Detect guesses the charset of a BOM-less sample that is not UTF-8.
func Detect(sample []byte) encoding.Encoding {
	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return Fallback
	}

	switch result.Charset {
	case "UTF-16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "UTF-16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "ISO-8859-9":
		return charmap.ISO8859_9
	}

	return Fallback
}

func decode(r io.Reader, e encoding.Encoding) io.Reader {
	return transform.NewReader(r, e.NewDecoder())
}

// validUTF8Prefix reports whether buf is UTF-8, tolerating a multi-byte rune
// cut off by the sniff window.
func validUTF8Prefix(buf []byte) bool {
	if utf8.Valid(buf) {
		return true
	}

	if len(buf) < sniffSize {
		return false
	}

	for cut := 1; cut < utf8.UTFMax && cut < len(buf); cut++ {
		if utf8.Valid(buf[:len(buf)-cut]) {
			return true
		}
	}

	return false
}
