package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbolgo/symbolgo/qrcode/decoder"
)

func TestGetAlphanumericCode(t *testing.T) {
	assert.Equal(t, 0, GetAlphanumericCode('0'))
	assert.Equal(t, 10, GetAlphanumericCode('A'))
	assert.Equal(t, 36, GetAlphanumericCode(' '))
	assert.Equal(t, -1, GetAlphanumericCode('a'))
	assert.Equal(t, -1, GetAlphanumericCode(0x2603))
}

func TestWillFitBoundary(t *testing.T) {
	v1, err := decoder.GetVersionForNumber(1)
	require.NoError(t, err)

	// version 1 at level L carries 19 data codewords
	assert.True(t, WillFit(19*8, v1, decoder.ECLevelL))
	assert.False(t, WillFit(19*8+1, v1, decoder.ECLevelL))
	assert.True(t, WillFit(9*8, v1, decoder.ECLevelH))
	assert.False(t, WillFit(9*8+1, v1, decoder.ECLevelH))
}

func TestIsOnlyDoubleByteKanji(t *testing.T) {
	assert.True(t, IsOnlyDoubleByteKanji("点"))
	assert.True(t, IsOnlyDoubleByteKanji("点茶"))
	assert.False(t, IsOnlyDoubleByteKanji("A"))
	assert.False(t, IsOnlyDoubleByteKanji("点A"))
	assert.False(t, IsOnlyDoubleByteKanji("א"))
}

func TestCharsetEncoders(t *testing.T) {
	arabic := newISOEncoder(5)
	require.NotNil(t, arabic)
	assert.Equal(t, "ISO-8859-6", arabic.Name())
	assert.True(t, arabic.CanEncode('إ'))
	assert.False(t, arabic.CanEncode('א'))

	encoded, err := arabic.Encode("إ")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xC5}, encoded)
	assert.Equal(t, 1, arabic.EncodedLength("إ"))

	eci, ok := arabic.ECI()
	require.True(t, ok)
	assert.Equal(t, 8, eci)

	// ISO-8859-11 and -12 do not exist
	assert.Nil(t, newISOEncoder(10))
	assert.Nil(t, newISOEncoder(11))

	utf8enc := newUTF8Encoder()
	assert.True(t, utf8enc.CanEncode('\U0001F600'))
	assert.Equal(t, 4, utf8enc.EncodedLength("\U0001F600"))

	utf16enc := newUTF16BEEncoder()
	encoded, err = utf16enc.Encode("A")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x41}, encoded)
	assert.Equal(t, 4, utf16enc.EncodedLength("\U0001F600"))
	assert.Equal(t, 2, utf16enc.EncodedLength("点"))
}
