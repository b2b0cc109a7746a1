// Package encoder implements minimal QR code segment encoding.
package encoder

import (
	"golang.org/x/text/encoding/japanese"

	"github.com/symbolgo/symbolgo/qrcode/decoder"
)

// alphanumericTable maps ASCII values to alphanumeric codes.
var alphanumericTable = [128]int{
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	36, -1, -1, -1, 37, 38, -1, -1, -1, -1, 39, 40, -1, 41, 42, 43,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 44, -1, -1, -1, -1, -1,
	-1, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21, 22, 23, 24,
	25, 26, 27, 28, 29, 30, 31, 32, 33, 34, 35, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
	-1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1, -1,
}

// GetAlphanumericCode returns the alphanumeric code for a character, or -1
// if the character is not in the alphanumeric set.
func GetAlphanumericCode(code int) int {
	if code >= 0 && code < 128 {
		return alphanumericTable[code]
	}
	return -1
}

// WillFit reports whether numInputBits fits within the data capacity of the
// given version at the given error correction level.
func WillFit(numInputBits int, version *decoder.Version, ecLevel decoder.ErrorCorrectionLevel) bool {
	// In the following comparison we can safely ignore the terminator, as
	// it is at most 4 bits and the capacity is always a whole byte count.
	ecBlocks := version.ECBlocksForLevel(ecLevel)
	numDataBytes := version.TotalCodewords - ecBlocks.TotalECCodewords()
	totalInputBytes := (numInputBits + 7) / 8
	return numDataBytes >= totalInputBytes
}

// IsOnlyDoubleByteKanji reports whether content encodes in Shift JIS
// entirely as double-byte characters with kanji lead bytes.
func IsOnlyDoubleByteKanji(content string) bool {
	encoded, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(content))
	if err != nil {
		return false
	}
	length := len(encoded)
	if length%2 != 0 {
		return false
	}
	for i := 0; i < length; i += 2 {
		b1 := encoded[i]
		if (b1 < 0x81 || b1 > 0x9F) && (b1 < 0xE0 || b1 > 0xEB) {
			return false
		}
	}
	return true
}
