package fdbuuid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUuid128_ParseAndWireBytes(t *testing.T) {
	t.Parallel()

	u, err := ParseUuid128("00112233-4455-6677-8899-aabbccddeeff")
	require.NoError(t, err)

	expected := []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}
	assert.Equal(t, expected, u.ToWireBytes())
}

func TestUuid128_FormRoundTrip(t *testing.T) {
	t.Parallel()

	u := NewUuid128()
	for _, form := range []string{"D", "N", "B", "X"} {
		s := u.Format(form)
		parsed, err := ParseUuid128(s)
		require.NoError(t, err, "form %s", form)
		assert.Equal(t, u, parsed, "form %s", form)
	}
}

func TestUuid128_HostGUIDRoundTrip(t *testing.T) {
	t.Parallel()

	u := NewUuid128()
	g := u.ToHostGUID()
	back := FromHostGUID(g)
	assert.Equal(t, u, back)
}

func TestUuid64_Format(t *testing.T) {
	t.Parallel()

	u := Uuid64(0x0123456789ABCDEF)
	assert.Equal(t, "01234567-89ABCDEF", u.Format("D"))
}

func TestUuid64_Base62RoundTrip(t *testing.T) {
	t.Parallel()

	values := []Uuid64{0, 1, 61, 62, 12345, 0xFFFFFFFFFFFFFFFF, Uuid64(0x0123456789ABCDEF)}
	for _, v := range values {
		padded := v.EncodeBase62(true)
		assert.Len(t, padded, base62PaddedWidth)

		decoded, err := DecodeBase62(padded)
		require.NoError(t, err)
		assert.Equal(t, v, decoded)

		compact := v.EncodeBase62(false)
		decoded, err = DecodeBase62(compact)
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
	}
}

func TestUuid64_Base62PaddedOrderMatchesNumericOrder(t *testing.T) {
	t.Parallel()

	a, b := Uuid64(5), Uuid64(70)
	require.Less(t, uint64(a), uint64(b))
	assert.Less(t, a.EncodeBase62(true), b.EncodeBase62(true))
}

func TestUuid64_WireBytesRoundTrip(t *testing.T) {
	t.Parallel()

	u := Uuid64(0x0123456789ABCDEF)
	back, err := FromWireBytes64(u.ToWireBytes())
	require.NoError(t, err)
	assert.Equal(t, u, back)
}
