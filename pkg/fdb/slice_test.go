package fdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Slice State Tests
// ============================================================================

func TestSlice_States(t *testing.T) {
	t.Parallel()

	t.Run("NilSliceIsNull", func(t *testing.T) {
		assert.True(t, NilSlice.IsNull())
		assert.True(t, NilSlice.IsEmpty())
	})

	t.Run("EmptySliceIsNotNull", func(t *testing.T) {
		assert.False(t, EmptySlice.IsNull())
		assert.True(t, EmptySlice.IsEmpty())
	})

	t.Run("PresentSlice", func(t *testing.T) {
		s := FromBytes([]byte{1, 2, 3})
		assert.False(t, s.IsNull())
		assert.False(t, s.IsEmpty())
		assert.Equal(t, 3, s.Len())
	})

	t.Run("NilAndEmptyCompareEqual", func(t *testing.T) {
		assert.Equal(t, 0, NilSlice.Compare(EmptySlice))
		assert.True(t, NilSlice.Equal(EmptySlice))
	})
}

// ============================================================================
// Ordering Tests
// ============================================================================

func TestSlice_Compare(t *testing.T) {
	t.Parallel()

	a := FromBytes([]byte{0x01, 0x02})
	b := FromBytes([]byte{0x01, 0x03})
	c := FromBytes([]byte{0x01, 0x02})

	assert.Negative(t, a.Compare(b))
	assert.Positive(t, b.Compare(a))
	assert.Equal(t, 0, a.Compare(c))
}

func TestSlice_CopyDoesNotShareStorage(t *testing.T) {
	t.Parallel()

	backing := []byte{1, 2, 3}
	s := FromBytes(backing)
	cp := s.Copy()

	backing[0] = 99
	assert.Equal(t, byte(99), s.Bytes()[0])
	assert.Equal(t, byte(1), cp.Bytes()[0])
}

// ============================================================================
// Fixed-width Integer Tests
// ============================================================================

func TestFixedWidthIntegers(t *testing.T) {
	t.Parallel()

	t.Run("U32LittleEndian", func(t *testing.T) {
		s := FromFixedU32LE(0xDEADBEEF)
		assert.Equal(t, []byte{0xEF, 0xBE, 0xAD, 0xDE}, s.Bytes())
		assert.Equal(t, 4, s.Len())

		v, err := ToFixedU32LE(s)
		require.NoError(t, err)
		assert.Equal(t, uint32(0xDEADBEEF), v)
	})

	t.Run("U32BigEndian", func(t *testing.T) {
		s := FromFixedU32BE(0xDEADBEEF)
		assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, s.Bytes())

		v, err := ToFixedU32BE(s)
		require.NoError(t, err)
		assert.Equal(t, uint32(0xDEADBEEF), v)
	})

	t.Run("U64RoundTrip", func(t *testing.T) {
		for _, v := range []uint64{0, 1, 0xFFFFFFFFFFFFFFFF, 0x0102030405060708} {
			be := FromFixedU64BE(v)
			assert.Equal(t, 8, be.Len())
			got, err := ToFixedU64BE(be)
			require.NoError(t, err)
			assert.Equal(t, v, got)

			le := FromFixedU64LE(v)
			got, err = ToFixedU64LE(le)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})

	t.Run("WrongLengthFailsDecode", func(t *testing.T) {
		_, err := ToFixedU32BE(FromBytes([]byte{1, 2, 3}))
		require.Error(t, err)
		assert.True(t, IsFatal(err))
	})
}

// ============================================================================
// Variable-width Integer Tests
// ============================================================================

func TestVariableWidthIntegers(t *testing.T) {
	t.Parallel()

	cases := []int64{0, 1, -1, 127, -127, 128, -128, 255, -255, 256, -256,
		1 << 20, -(1 << 20), 1<<62 - 1, -(1 << 62), 9223372036854775807, -9223372036854775808}

	for _, v := range cases {
		s := FromInt64(v)
		got, err := ToInt64(s)
		require.NoError(t, err)
		assert.Equal(t, v, got, "round-trip for %d", v)
	}
}

func TestFromInt64_MinimalEncoding(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, FromInt64(0).Len())
	assert.Equal(t, 1, FromInt64(1).Len())
	assert.Equal(t, 1, FromInt64(-1).Len())
	assert.Equal(t, 2, FromInt64(200).Len())
}

// ============================================================================
// Float/Double Tests
// ============================================================================

func TestFloatEncoders(t *testing.T) {
	t.Parallel()

	values := []float64{0, -0, 1.5, -1.5, 3.14159265358979}

	for _, v := range values {
		le := FromFloat64LE(v)
		got, err := ToFloat64LE(le)
		require.NoError(t, err)
		assert.Equal(t, v, got)

		be := FromFloat64BE(v)
		got, err = ToFloat64BE(be)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}

	f32 := float32(2.71828)
	s := FromFloat32LE(f32)
	got, err := ToFloat32LE(s)
	require.NoError(t, err)
	assert.Equal(t, f32, got)
}

func TestDecimal_RoundTrip(t *testing.T) {
	t.Parallel()

	values := []Decimal{
		{},
		{Lo: 1},                                      // 1
		{Lo: 12345, Flags: 2 << 16},                  // 123.45
		{Lo: 12345, Flags: 0x80000000 | 2<<16},       // -123.45
		{Lo: 0xFFFFFFFF, Mid: 0xFFFFFFFF, Hi: 0xFFFFFFFF}, // max mantissa
	}

	for _, d := range values {
		le := FromDecimalLE(d)
		require.Equal(t, 16, le.Len())
		got, err := ToDecimalLE(le)
		require.NoError(t, err)
		assert.Equal(t, d, got)

		be := FromDecimalBE(d)
		require.Equal(t, 16, be.Len())
		got, err = ToDecimalBE(be)
		require.NoError(t, err)
		assert.Equal(t, d, got)
	}

	neg := Decimal{Lo: 12345, Flags: 0x80000000 | 2<<16}
	assert.True(t, neg.IsNegative())
	assert.Equal(t, 2, neg.Scale())
}

func TestDecimal_WrongLengthFails(t *testing.T) {
	t.Parallel()

	_, err := ToDecimalLE(FromBytes(make([]byte, 15)))
	require.Error(t, err)

	var fdbErr *Error
	require.ErrorAs(t, err, &fdbErr)
	assert.Equal(t, ErrBufferTooSmall, fdbErr.Code)
}

func TestBase64_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, b := range [][]byte{
		{},
		{0x00},
		{0xDE, 0xAD, 0xBE, 0xEF},
		[]byte("hello world"),
	} {
		text := FromBytes(b).ToBase64()
		back, err := FromBase64(text)
		require.NoError(t, err)
		assert.Equal(t, b, back.Bytes())
	}
}

func TestBase64_MalformedInputFails(t *testing.T) {
	t.Parallel()

	_, err := FromBase64("not!!valid@@base64")
	require.Error(t, err)

	var fdbErr *Error
	require.ErrorAs(t, err, &fdbErr)
	assert.Equal(t, ErrInvalidFormat, fdbErr.Code)
}
