package encoder

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	symbolgo "github.com/symbolgo/symbolgo"
	"github.com/symbolgo/symbolgo/qrcode/decoder"
)

func encodeMinimally(t *testing.T, input, priorityCharset string, isGS1 bool) *ResultList {
	t.Helper()
	result, err := Encode(input, nil, priorityCharset, isGS1, decoder.ECLevelL)
	require.NoError(t, err)
	return result
}

func segmentModes(rl *ResultList) []decoder.Mode {
	modes := make([]decoder.Mode, 0, len(rl.Segments()))
	for _, s := range rl.Segments() {
		modes = append(modes, s.Mode)
	}
	return modes
}

func TestEncodeAlphanumeric(t *testing.T) {
	result := encodeMinimally(t, "ABCDE", "", false)

	assert.Equal(t, []decoder.Mode{decoder.ModeAlphanumeric, decoder.ModeTerminator}, segmentModes(result))
	assert.Equal(t, 5, result.Segments()[0].CharacterLength)
	// 4 mode bits + 9 count bits + 2*11+6 payload bits, plus a 4 bit terminator;
	// strictly smaller than the 4+8+40+4 of a byte encoding
	assert.Equal(t, 45, result.Size())
	assert.Equal(t, 1, result.Version().Number)
	assert.Equal(t, "ALPHANUMERIC(ABCDE),TERMINATOR()", result.String())
}

func TestEncodeSingleLatinByte(t *testing.T) {
	result := encodeMinimally(t, "é", "", false)

	// ISO-8859-1 is the default charset, so no ECI segment is emitted.
	assert.Equal(t, []decoder.Mode{decoder.ModeByte, decoder.ModeTerminator}, segmentModes(result))
	assert.Equal(t, "ISO-8859-1", result.CharsetName(result.Segments()[0]))
	assert.Equal(t, 24, result.Size())
}

func TestEncodeMultiLanguageSingleECI(t *testing.T) {
	// Arabic aleph followed by Hebrew aleph: one UTF-8 byte run beats
	// switching between ISO-8859-6 and ISO-8859-8.
	result := encodeMinimally(t, "إא", "", false)

	require.Equal(t, []decoder.Mode{decoder.ModeECI, decoder.ModeByte, decoder.ModeTerminator}, segmentModes(result))
	assert.Equal(t, "UTF-8", result.CharsetName(result.Segments()[1]))
	assert.Equal(t, 2, result.Segments()[1].CharacterLength)
	// both characters encode as two UTF-8 bytes
	assert.Equal(t, 4, result.CharacterCountIndicator(result.Segments()[1]))
	// 68 bits would be needed for ECI(ISO-8859-6),BYTE(1),ECI(ISO-8859-8),BYTE(1)
	assert.Equal(t, 60, result.Size())
}

func TestEncodeMultiLanguageTwoECIs(t *testing.T) {
	// With two Arabic characters the two-ECI representation wins.
	result := encodeMinimally(t, "إإא", "", false)

	require.Equal(t, []decoder.Mode{
		decoder.ModeECI, decoder.ModeByte,
		decoder.ModeECI, decoder.ModeByte,
		decoder.ModeTerminator,
	}, segmentModes(result))

	segments := result.Segments()
	assert.Equal(t, "ISO-8859-6", result.CharsetName(segments[0]))
	assert.Equal(t, 2, segments[1].CharacterLength)
	assert.Equal(t, "ISO-8859-8", result.CharsetName(segments[2]))
	assert.Equal(t, 1, segments[3].CharacterLength)
	assert.Equal(t, 76, result.Size())
}

func TestEncodeGS1Numeric(t *testing.T) {
	result := encodeMinimally(t, "1234", "", true)

	require.Equal(t, []decoder.Mode{
		decoder.ModeFNC1FirstPosition, decoder.ModeNumeric, decoder.ModeTerminator,
	}, segmentModes(result))
	assert.Equal(t, 4, result.Segments()[1].CharacterLength)
	// FNC1 4 + (4 mode + 10 count + 14 payload) + terminator 4
	assert.Equal(t, 36, result.Size())
	assert.Equal(t, 1, result.Version().Number)
}

func TestEncodeGS1AfterECI(t *testing.T) {
	result := encodeMinimally(t, "ab", "UTF-8", true)

	assert.Equal(t, []decoder.Mode{
		decoder.ModeECI, decoder.ModeFNC1FirstPosition, decoder.ModeByte, decoder.ModeTerminator,
	}, segmentModes(result))
}

func TestEncodePriorityCharset(t *testing.T) {
	result := encodeMinimally(t, "ab", "UTF-8", false)

	require.Equal(t, []decoder.Mode{decoder.ModeECI, decoder.ModeByte, decoder.ModeTerminator}, segmentModes(result))
	assert.Equal(t, "UTF-8", result.CharsetName(result.Segments()[1]))
	assert.Equal(t, 44, result.Size())
}

func TestEncodeKanji(t *testing.T) {
	result := encodeMinimally(t, "点", "", false)

	require.Equal(t, []decoder.Mode{decoder.ModeKanji, decoder.ModeTerminator}, segmentModes(result))
	// 4 mode + 8 count + 13 payload bits beats ECI plus a multi byte run
	assert.Equal(t, 29, result.Size())
}

func TestEncodeVersionSizing(t *testing.T) {
	result := encodeMinimally(t, strings.Repeat("1", 200), "", false)

	version := result.Version()
	assert.Equal(t, 5, version.Number)
	assert.True(t, WillFit(result.Size(), version, decoder.ECLevelL))

	smaller, err := decoder.GetVersionForNumber(version.Number - 1)
	require.NoError(t, err)
	assert.False(t, WillFit(result.Size(), smaller, decoder.ECLevelL))
}

func TestEncodeDataTooBig(t *testing.T) {
	_, err := Encode(strings.Repeat("1", 8000), nil, "", false, decoder.ECLevelL)
	assert.ErrorIs(t, err, symbolgo.ErrDataTooBig)
}

func TestEncodeSpecificVersionTooSmall(t *testing.T) {
	version, err := decoder.GetVersionForNumber(1)
	require.NoError(t, err)

	_, err = Encode(strings.Repeat("A", 500), version, "", false, decoder.ECLevelL)
	assert.ErrorIs(t, err, symbolgo.ErrDataTooBig)
}

func TestEncodeSpecificVersionResized(t *testing.T) {
	version, err := decoder.GetVersionForNumber(7)
	require.NoError(t, err)

	result, err := Encode("ABCDE", version, "", false, decoder.ECLevelL)
	require.NoError(t, err)
	// sizing shrinks within the version class
	assert.Equal(t, 1, result.Version().Number)
}

func TestEncodeEmptyInput(t *testing.T) {
	_, err := Encode("", nil, "", false, decoder.ECLevelL)
	assert.ErrorIs(t, err, symbolgo.ErrWriter)
}
