package wireasn1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLength_ShortForm(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 127} {
		enc := EncodeLength(n)
		assert.Len(t, enc, 1)

		got, consumed, err := DecodeLength(enc)
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, 1, consumed)
	}
}

func TestLength_LongForm(t *testing.T) {
	t.Parallel()

	for _, n := range []int{128, 255, 256, 65535, 1 << 20} {
		enc := EncodeLength(n)
		assert.Equal(t, byte(0x80|len(enc)-1), enc[0])

		got, consumed, err := DecodeLength(enc)
		require.NoError(t, err)
		assert.Equal(t, n, got)
		assert.Equal(t, len(enc), consumed)
	}
}

func TestLength_Truncated(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeLength(nil)
	assert.ErrorIs(t, err, ErrTruncated)

	_, _, err = DecodeLength([]byte{0x82, 0x01})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestOIDSubIdentifier_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, v := range []uint64{0, 1, 127, 128, 840, 113549, 1 << 30} {
		enc := EncodeOIDSubIdentifier(v)

		got, consumed, err := DecodeOIDSubIdentifier(enc)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Equal(t, len(enc), consumed)
	}
}

func TestOIDSubIdentifier_Truncated(t *testing.T) {
	t.Parallel()

	_, _, err := DecodeOIDSubIdentifier([]byte{0x80, 0x80})
	assert.ErrorIs(t, err, ErrTruncated)
}
