package fdb

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"math"
)

// Slice is a length-annotated view over a shared byte buffer: the universal
// currency for keys and values throughout the client. It distinguishes
// three states: Nil (no backing array), Empty (count == 0, array present),
// and Present (count > 0). A Slice never owns its backing array exclusively
// — callers that need to retain bytes past the lifetime of the value that
// produced the Slice must copy them first.
type Slice struct {
	array  []byte
	offset int
	count  int
}

// NilSlice is the zero-value Slice: no backing array.
var NilSlice = Slice{}

// EmptySlice is a Slice over a present, zero-length array.
var EmptySlice = Slice{array: []byte{}}

// FromBytes returns a Slice viewing b in its entirety. b is not copied; the
// caller must not mutate b while the Slice (or anything derived from it) is
// in use.
func FromBytes(b []byte) Slice {
	if b == nil {
		return NilSlice
	}
	return Slice{array: b, offset: 0, count: len(b)}
}

// FromString returns a Slice viewing the UTF-8 bytes of s.
func FromString(s string) Slice {
	return FromBytes([]byte(s))
}

// IsNull reports whether the Slice has no backing array. A Nil Slice
// compares equal to an Empty Slice under Compare/Equal, but IsNull
// distinguishes them.
func (s Slice) IsNull() bool {
	return s.array == nil
}

// IsEmpty reports whether the Slice has zero length, whether or not an
// array is present.
func (s Slice) IsEmpty() bool {
	return s.count == 0
}

// Len returns the number of bytes in the view.
func (s Slice) Len() int {
	return s.count
}

// Bytes returns the backing bytes viewed by s. The returned slice shares
// storage with s and, transitively, with whatever produced s (a
// Transaction snapshot, a Future result, ...); it must be copied before
// being retained past that owner's lifetime.
func (s Slice) Bytes() []byte {
	if s.array == nil {
		return nil
	}
	return s.array[s.offset : s.offset+s.count]
}

// Copy returns a Slice over a freshly allocated array containing the same
// bytes as s.
func (s Slice) Copy() Slice {
	if s.array == nil {
		return NilSlice
	}
	out := make([]byte, s.count)
	copy(out, s.Bytes())
	return FromBytes(out)
}

// Sub returns a Slice over the sub-range [from, to) of s, sharing the
// backing array.
func (s Slice) Sub(from, to int) Slice {
	if from < 0 || to < from || to > s.count {
		panic("fdb: Slice.Sub out of range")
	}
	return Slice{array: s.array, offset: s.offset + from, count: to - from}
}

// Equal reports whether s and o have identical byte content. Nil and Empty
// are equal to each other.
func (s Slice) Equal(o Slice) bool {
	return bytes.Equal(s.Bytes(), o.Bytes())
}

// Compare returns -1, 0, or 1 according to the lexicographic ordering of
// the byte content of s and o. This ordering is load-bearing: the store
// uses it for range scans, so Compare must agree byte-for-byte with the
// native layer's own key ordering.
func (s Slice) Compare(o Slice) int {
	return bytes.Compare(s.Bytes(), o.Bytes())
}

// String returns the bytes of s interpreted as UTF-8, for debugging and
// logging. Use Bytes for anything that round-trips through the wire.
func (s Slice) String() string {
	return string(s.Bytes())
}

// ToBase64 renders the bytes of s with the standard RFC 4648 alphabet,
// the text form used wherever an opaque Slice has to travel through a
// string-typed surface (logs, CLI flags, JSON).
func (s Slice) ToBase64() string {
	return base64.StdEncoding.EncodeToString(s.Bytes())
}

// FromBase64 decodes an RFC 4648 standard-alphabet string into a fresh
// Slice. Malformed input fails with InvalidFormat.
func FromBase64(text string) (Slice, error) {
	b, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return NilSlice, NewInvalidFormatError("FromBase64: " + err.Error())
	}
	return FromBytes(b), nil
}

// --- Fixed-width integer encoders ---

// FromFixedU32BE returns the 4-byte big-endian encoding of v.
func FromFixedU32BE(v uint32) Slice {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return FromBytes(b)
}

// FromFixedU32LE returns the 4-byte little-endian encoding of v.
func FromFixedU32LE(v uint32) Slice {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, v)
	return FromBytes(b)
}

// FromFixedU64BE returns the 8-byte big-endian encoding of v.
func FromFixedU64BE(v uint64) Slice {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return FromBytes(b)
}

// FromFixedU64LE returns the 8-byte little-endian encoding of v.
func FromFixedU64LE(v uint64) Slice {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, v)
	return FromBytes(b)
}

// ToFixedU32BE decodes a 4-byte big-endian unsigned integer. s must have
// exactly 4 bytes.
func ToFixedU32BE(s Slice) (uint32, error) {
	if s.Len() != 4 {
		return 0, NewBufferTooSmallError("ToFixedU32BE: expected 4 bytes")
	}
	return binary.BigEndian.Uint32(s.Bytes()), nil
}

// ToFixedU32LE decodes a 4-byte little-endian unsigned integer. s must have
// exactly 4 bytes.
func ToFixedU32LE(s Slice) (uint32, error) {
	if s.Len() != 4 {
		return 0, NewBufferTooSmallError("ToFixedU32LE: expected 4 bytes")
	}
	return binary.LittleEndian.Uint32(s.Bytes()), nil
}

// ToFixedU64BE decodes an 8-byte big-endian unsigned integer. s must have
// exactly 8 bytes.
func ToFixedU64BE(s Slice) (uint64, error) {
	if s.Len() != 8 {
		return 0, NewBufferTooSmallError("ToFixedU64BE: expected 8 bytes")
	}
	return binary.BigEndian.Uint64(s.Bytes()), nil
}

// ToFixedU64LE decodes an 8-byte little-endian unsigned integer. s must
// have exactly 8 bytes.
func ToFixedU64LE(s Slice) (uint64, error) {
	if s.Len() != 8 {
		return 0, NewBufferTooSmallError("ToFixedU64LE: expected 8 bytes")
	}
	return binary.LittleEndian.Uint64(s.Bytes()), nil
}

// --- Variable-width integer encoders ---

// FromInt64 encodes v in the minimum number of bytes, big-endian, with a
// leading sign-extension byte for negative values so that the two's
// complement sign is preserved without fixing the width at 8 bytes.
func FromInt64(v int64) Slice {
	return fromVarInt(v)
}

// FromInt32 encodes v the same way as FromInt64, over the 32-bit range.
func FromInt32(v int32) Slice {
	return fromVarInt(int64(v))
}

func fromVarInt(v int64) Slice {
	if v == 0 {
		return FromBytes([]byte{0})
	}

	full := make([]byte, 8)
	binary.BigEndian.PutUint64(full, uint64(v))

	// Strip leading bytes that are redundant under sign extension: a
	// leading 0x00 is redundant while the next byte's high bit is clear
	// (positive), a leading 0xFF is redundant while the next byte's high
	// bit is set (negative).
	n := 8
	for n > 1 {
		lead := full[8-n]
		next := full[8-n+1]
		if lead == 0x00 && next&0x80 == 0 {
			n--
		} else if lead == 0xFF && next&0x80 != 0 {
			n--
		} else {
			break
		}
	}
	return FromBytes(full[8-n:])
}

// ToInt64 decodes a minimal-byte-count, sign-extended big-endian integer
// produced by FromInt64/FromInt32.
func ToInt64(s Slice) (int64, error) {
	b := s.Bytes()
	if len(b) == 0 {
		return 0, nil
	}
	if len(b) > 8 {
		return 0, NewInvalidFormatError("ToInt64: encoding too long")
	}
	pad := byte(0x00)
	if b[0]&0x80 != 0 {
		pad = 0xFF
	}

	full := make([]byte, 8)
	for i := range full {
		full[i] = pad
	}
	copy(full[8-len(b):], b)

	return int64(binary.BigEndian.Uint64(full)), nil
}

// --- Float / double encoders ---

// FromFloat32LE returns the little-endian IEEE-754 bit pattern of v.
func FromFloat32LE(v float32) Slice {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
	return FromBytes(b)
}

// FromFloat32BE returns the big-endian IEEE-754 bit pattern of v.
func FromFloat32BE(v float32) Slice {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, math.Float32bits(v))
	return FromBytes(b)
}

// FromFloat64LE returns the little-endian IEEE-754 bit pattern of v.
func FromFloat64LE(v float64) Slice {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
	return FromBytes(b)
}

// FromFloat64BE returns the big-endian IEEE-754 bit pattern of v.
func FromFloat64BE(v float64) Slice {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return FromBytes(b)
}

// Decimal is a 128-bit scaled decimal: a 96-bit unsigned mantissa
// (Lo|Mid<<32|Hi<<64) plus a Flags word carrying the sign bit (bit 31)
// and the base-10 scale (bits 16-23, 0-28). Encoding round-trips the four
// words bit-exactly; no arithmetic or normalization is applied.
type Decimal struct {
	Lo    uint32
	Mid   uint32
	Hi    uint32
	Flags uint32
}

// Scale returns the base-10 scale encoded in Flags.
func (d Decimal) Scale() int {
	return int(d.Flags >> 16 & 0xFF)
}

// IsNegative reports whether the sign bit of Flags is set.
func (d Decimal) IsNegative() bool {
	return d.Flags&0x80000000 != 0
}

// FromDecimalLE returns the 16-byte little-endian encoding of d: each of
// the four 32-bit words in order Lo, Mid, Hi, Flags.
func FromDecimalLE(d Decimal) Slice {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint32(b[0:4], d.Lo)
	binary.LittleEndian.PutUint32(b[4:8], d.Mid)
	binary.LittleEndian.PutUint32(b[8:12], d.Hi)
	binary.LittleEndian.PutUint32(b[12:16], d.Flags)
	return FromBytes(b)
}

// FromDecimalBE returns the big-endian variant: words in order Flags, Hi,
// Mid, Lo, each big-endian.
func FromDecimalBE(d Decimal) Slice {
	b := make([]byte, 16)
	binary.BigEndian.PutUint32(b[0:4], d.Flags)
	binary.BigEndian.PutUint32(b[4:8], d.Hi)
	binary.BigEndian.PutUint32(b[8:12], d.Mid)
	binary.BigEndian.PutUint32(b[12:16], d.Lo)
	return FromBytes(b)
}

// ToDecimalLE decodes a 16-byte little-endian Decimal. s must have exactly
// 16 bytes.
func ToDecimalLE(s Slice) (Decimal, error) {
	if s.Len() != 16 {
		return Decimal{}, NewBufferTooSmallError("ToDecimalLE: expected 16 bytes")
	}
	b := s.Bytes()
	return Decimal{
		Lo:    binary.LittleEndian.Uint32(b[0:4]),
		Mid:   binary.LittleEndian.Uint32(b[4:8]),
		Hi:    binary.LittleEndian.Uint32(b[8:12]),
		Flags: binary.LittleEndian.Uint32(b[12:16]),
	}, nil
}

// ToDecimalBE decodes the big-endian variant produced by FromDecimalBE.
func ToDecimalBE(s Slice) (Decimal, error) {
	if s.Len() != 16 {
		return Decimal{}, NewBufferTooSmallError("ToDecimalBE: expected 16 bytes")
	}
	b := s.Bytes()
	return Decimal{
		Flags: binary.BigEndian.Uint32(b[0:4]),
		Hi:    binary.BigEndian.Uint32(b[4:8]),
		Mid:   binary.BigEndian.Uint32(b[8:12]),
		Lo:    binary.BigEndian.Uint32(b[12:16]),
	}, nil
}

// ToFloat32LE decodes a little-endian IEEE-754 float32. s must have
// exactly 4 bytes.
func ToFloat32LE(s Slice) (float32, error) {
	u, err := ToFixedU32LE(s)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// ToFloat32BE decodes a big-endian IEEE-754 float32. s must have exactly 4
// bytes.
func ToFloat32BE(s Slice) (float32, error) {
	u, err := ToFixedU32BE(s)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(u), nil
}

// ToFloat64LE decodes a little-endian IEEE-754 float64. s must have
// exactly 8 bytes.
func ToFloat64LE(s Slice) (float64, error) {
	u, err := ToFixedU64LE(s)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}

// ToFloat64BE decodes a big-endian IEEE-754 float64. s must have exactly 8
// bytes.
func ToFloat64BE(s Slice) (float64, error) {
	u, err := ToFixedU64BE(s)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(u), nil
}
