package fdbwire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPackUnpack_RoundTrip(t *testing.T) {
	t.Parallel()

	cases := []KeySelector{
		FirstGreaterOrEqual([]byte("alpha")),
		FirstGreaterThan([]byte("beta")),
		LastLessOrEqual([]byte("gamma")),
		LastLessThan([]byte("delta")),
		{Key: []byte{0x00, 0xFF, 0x00}, OrEqual: true, Offset: 42},
		{Key: []byte{}, OrEqual: false, Offset: -7},
	}

	for _, ks := range cases {
		b, err := Pack(ks)
		require.NoError(t, err)

		got, err := Unpack(b)
		require.NoError(t, err)
		assert.Equal(t, ks.OrEqual, got.OrEqual)
		assert.Equal(t, ks.Offset, got.Offset)
		assert.Equal(t, len(ks.Key), len(got.Key))
		assert.Equal(t, []byte(ks.Key), []byte(got.Key))
	}
}

func TestUnpack_GarbageFails(t *testing.T) {
	t.Parallel()

	_, err := Unpack([]byte{0xFF})
	require.Error(t, err)
}

func TestConstructors_CopyTheKey(t *testing.T) {
	t.Parallel()

	key := []byte("mutable")
	ks := FirstGreaterOrEqual(key)
	key[0] = 'x'
	assert.Equal(t, []byte("mutable"), ks.Key)
}

func TestConstructors_ConventionalOffsets(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int32(0), FirstGreaterOrEqual(nil).Offset)
	assert.True(t, FirstGreaterOrEqual(nil).OrEqual)

	assert.Equal(t, int32(0), FirstGreaterThan(nil).Offset)
	assert.False(t, FirstGreaterThan(nil).OrEqual)

	assert.Equal(t, int32(-1), LastLessOrEqual(nil).Offset)
	assert.True(t, LastLessOrEqual(nil).OrEqual)

	assert.Equal(t, int32(-1), LastLessThan(nil).Offset)
	assert.False(t, LastLessThan(nil).OrEqual)
}
