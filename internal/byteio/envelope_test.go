package byteio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("hello, engine"),
		make([]byte, 10000), // large, compressible
	}

	for _, want := range cases {
		got, err := DecodeEnvelope(EncodeEnvelope(want))
		require.NoError(t, err)
		if len(want) == 0 {
			assert.Empty(t, got)
		} else {
			assert.Equal(t, want, got)
		}
	}
}

func TestEncodeEmptyIsFourZeroBytes(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0}, EncodeEnvelope(nil))
}

func TestDecodeMalformedPayload(t *testing.T) {
	// Declares 100 bytes uncompressed but carries garbage.
	buf := []byte{0, 0, 0, 100, 0xFF, 0xFF, 0xFF}
	_, err := DecodeEnvelope(buf)
	require.Error(t, err)
}

func TestCursorRoundTrip(t *testing.T) {
	c := NewCursor(32)
	c.PutDoubleBE(44100)
	c.PutInt64LE(123456789)
	c.PutUint8(7)
	c.PutInt32LE(-5)

	r := NewReader(c.Bytes())
	assert.Equal(t, float64(44100), r.DoubleBE())
	assert.Equal(t, int64(123456789), r.Int64LE())
	assert.Equal(t, uint8(7), r.Uint8())
	assert.Equal(t, int32(-5), r.Int32LE())
	assert.Equal(t, 0, r.Remaining())
}
