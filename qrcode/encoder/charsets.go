package encoder

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// isoCharmaps holds the ISO-8859 charsets by zero-based index; index j is
// ISO-8859-(j+1). ISO-8859-11 and ISO-8859-12 have no charmap.
var isoCharmaps = [15]*charmap.Charmap{
	charmap.ISO8859_1, charmap.ISO8859_2, charmap.ISO8859_3, charmap.ISO8859_4,
	charmap.ISO8859_5, charmap.ISO8859_6, charmap.ISO8859_7, charmap.ISO8859_8,
	charmap.ISO8859_9, charmap.ISO8859_10, nil, nil,
	charmap.ISO8859_13, charmap.ISO8859_14, charmap.ISO8859_15,
}

// eciByName maps charset names to their ECI assignment numbers. All of
// them fit in the 8-bit assignment field.
var eciByName = map[string]int{
	"ISO-8859-1":  1,
	"ISO-8859-2":  4,
	"ISO-8859-3":  5,
	"ISO-8859-4":  6,
	"ISO-8859-5":  7,
	"ISO-8859-6":  8,
	"ISO-8859-7":  9,
	"ISO-8859-8":  10,
	"ISO-8859-9":  11,
	"ISO-8859-10": 12,
	"ISO-8859-11": 13,
	"ISO-8859-13": 15,
	"ISO-8859-14": 16,
	"ISO-8859-15": 17,
	"ISO-8859-16": 18,
	"Shift_JIS":   20,
	"UTF-16BE":    25,
	"UTF-8":       26,
}

var utf16be = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)

// CharsetEncoder encodes text in one output character set.
type CharsetEncoder struct {
	name string
	cm   *charmap.Charmap // nil for the Unicode encoders
	wide bool             // UTF-16BE when set
}

// newISOEncoder returns the encoder for ISO-8859-(j+1), or nil when that
// charset does not exist.
func newISOEncoder(j int) *CharsetEncoder {
	cm := isoCharmaps[j]
	if cm == nil {
		return nil
	}
	return &CharsetEncoder{name: fmt.Sprintf("ISO-8859-%d", j+1), cm: cm}
}

func newUTF8Encoder() *CharsetEncoder {
	return &CharsetEncoder{name: "UTF-8"}
}

func newUTF16BEEncoder() *CharsetEncoder {
	return &CharsetEncoder{name: "UTF-16BE", wide: true}
}

// Name returns the canonical charset name.
func (e *CharsetEncoder) Name() string {
	return e.name
}

// ECI returns the ECI assignment number of the charset, if it has one.
func (e *CharsetEncoder) ECI() (int, bool) {
	eci, ok := eciByName[e.name]
	return eci, ok
}

// CanEncode reports whether the charset can represent r. The Unicode
// encoders can represent any scalar value.
func (e *CharsetEncoder) CanEncode(r rune) bool {
	if e.cm == nil {
		return true
	}
	_, ok := e.cm.EncodeRune(r)
	return ok
}

// Encode converts s to the charset's byte encoding.
func (e *CharsetEncoder) Encode(s string) ([]byte, error) {
	switch {
	case e.cm != nil:
		return e.cm.NewEncoder().Bytes([]byte(s))
	case e.wide:
		return utf16be.NewEncoder().Bytes([]byte(s))
	default:
		return []byte(s), nil
	}
}

// EncodedLength returns the number of bytes Encode would produce for s.
func (e *CharsetEncoder) EncodedLength(s string) int {
	switch {
	case e.cm != nil:
		return utf8.RuneCountInString(s)
	case e.wide:
		n := 0
		for _, r := range s {
			if r > 0xFFFF {
				n += 4
			} else {
				n += 2
			}
		}
		return n
	default:
		return len(s)
	}
}
