// Package tuple implements the order-preserving composite key encoding
// used throughout the client: a Tuple is an ordered list of typed
// elements, and the byte encoding of two tuples compares the same way as
// comparing the tuples element-by-element.
package tuple

import (
	"fmt"
	"math"

	"github.com/marmos91/fdb-go/pkg/fdb/fdbuuid"
)

// Type tags, one per element kind. Values are chosen so that the tag
// itself sorts in the same relative order as the element kinds when they
// appear at the top level of mixed-type tuples (nil < bytes < string <
// nested tuple < int < float < bool < uuid < versionstamp).
const (
	tagNil byte = 0x00
	tagBytes byte = 0x01
	tagString byte = 0x02
	tagNested byte = 0x03
	tagIntZero byte = 0x14 // 20: the "zero" anchor; negative/positive ints are offset from here
	tagFloat32 byte = 0x20
	tagFloat64 byte = 0x21
	tagFalse byte = 0x26
	tagTrue byte = 0x27
	tagUUID128 byte = 0x30
	tagUUID64 byte = 0x31
	tagVersionstamp byte = 0x33

	escapedNull byte = 0xFF
)

// Versionstamp is a 12-byte value assigned by the store at commit time: a
// 10-byte transaction version followed by a 2-byte user version. An
// incomplete Versionstamp (TxVersion all 0xFF) is a placeholder filled in
// by the store when used as the last element of a key passed to
// SetVersionstampedKey/Value.
type Versionstamp struct {
	TxVersion   [10]byte
	UserVersion uint16
}

// IncompleteVersionstamp returns a placeholder Versionstamp with the
// given user version and an all-0xFF transaction version, to be resolved
// by the store at commit time.
func IncompleteVersionstamp(userVersion uint16) Versionstamp {
	var v Versionstamp
	for i := range v.TxVersion {
		v.TxVersion[i] = 0xFF
	}
	v.UserVersion = userVersion
	return v
}

// IsIncomplete reports whether v is still a placeholder.
func (v Versionstamp) IsIncomplete() bool {
	for _, b := range v.TxVersion {
		if b != 0xFF {
			return false
		}
	}
	return true
}

// Tuple is an ordered list of typed elements. Supported element Go types:
// nil, []byte, string, int64 (and the smaller int kinds), float32,
// float64, bool, fdbuuid.Uuid128, fdbuuid.Uuid64, Tuple (nested), and
// Versionstamp.
type Tuple []any

// Writer is a mutable binary builder tracking nesting depth so that
// nested tuples can escape embedded null bytes correctly.
type Writer struct {
	buf            []byte
	depth          int
	versionstampAt int // offset of an encoded incomplete Versionstamp's trailing position field, or -1
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{versionstampAt: -1}
}

// Bytes returns the encoded output built so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Pack encodes t into a fresh byte slice.
func Pack(t Tuple) ([]byte, error) {
	w := NewWriter()
	if err := w.writeTuple(t, false); err != nil {
		return nil, err
	}
	return w.buf, nil
}

// PackWithVersionstamp encodes t the same way as Pack but additionally
// appends the 2-byte little-endian offset of the incomplete Versionstamp
// required by SetVersionstampedKey. t must contain exactly one
// incomplete Versionstamp.
func PackWithVersionstamp(t Tuple) ([]byte, error) {
	w := NewWriter()
	if err := w.writeTuple(t, true); err != nil {
		return nil, err
	}
	if w.versionstampAt < 0 {
		return nil, fmt.Errorf("tuple: PackWithVersionstamp requires exactly one incomplete Versionstamp")
	}
	out := append([]byte{}, w.buf...)
	var pos [2]byte
	pos[0] = byte(w.versionstampAt)
	pos[1] = byte(w.versionstampAt >> 8)
	return append(out, pos[0], pos[1]), nil
}

func (w *Writer) writeTuple(t Tuple, trackVersionstamp bool) error {
	w.depth++
	defer func() { w.depth-- }()

	for _, el := range t {
		if err := w.writeElement(el, trackVersionstamp); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeElement(el any, trackVersionstamp bool) error {
	switch v := el.(type) {
	case nil:
		w.writeNil()
	case []byte:
		w.writeBytes(v)
	case string:
		w.writeString(v)
	case Tuple:
		w.writeNestedTuple(v, trackVersionstamp)
	case bool:
		w.writeBool(v)
	case int:
		w.writeInt(int64(v))
	case int32:
		w.writeInt(int64(v))
	case int64:
		w.writeInt(v)
	case float32:
		w.writeFloat32(v)
	case float64:
		w.writeFloat64(v)
	case fdbuuid.Uuid128:
		w.writeUUID128(v)
	case fdbuuid.Uuid64:
		w.writeUUID64(v)
	case Versionstamp:
		w.writeVersionstamp(v, trackVersionstamp)
	default:
		return fmt.Errorf("tuple: unsupported element type %T", el)
	}
	return nil
}

func (w *Writer) writeNil() {
	w.buf = append(w.buf, tagNil)
	if w.depth > 1 {
		// Inside a nested tuple, a nil element is escaped as 0x00 0xFF so
		// the parent's terminating 0x00 remains unambiguous.
		w.buf = append(w.buf, escapedNull)
	}
}

// escapeNulls returns a copy of b with every embedded 0x00 byte written as
// 0x00 0xFF, so the unescaped 0x00 that terminates a bytes or string
// element stays unambiguous.
func escapeNulls(b []byte) []byte {
	out := make([]byte, 0, len(b))
	for _, c := range b {
		out = append(out, c)
		if c == 0x00 {
			out = append(out, escapedNull)
		}
	}
	return out
}

func (w *Writer) writeBytes(b []byte) {
	w.buf = append(w.buf, tagBytes)
	w.buf = append(w.buf, escapeNulls(b)...)
	w.buf = append(w.buf, 0x00)
}

func (w *Writer) writeString(s string) {
	w.buf = append(w.buf, tagString)
	w.buf = append(w.buf, escapeNulls([]byte(s))...)
	w.buf = append(w.buf, 0x00)
}

func (w *Writer) writeNestedTuple(t Tuple, trackVersionstamp bool) {
	w.buf = append(w.buf, tagNested)
	_ = w.writeTuple(t, trackVersionstamp)
	w.buf = append(w.buf, 0x00)
}

func (w *Writer) writeBool(b bool) {
	if b {
		w.buf = append(w.buf, tagTrue)
	} else {
		w.buf = append(w.buf, tagFalse)
	}
}

// writeInt encodes v using the minimal big-endian magnitude, tagged
// relative to tagIntZero so that tags themselves sort in numeric order:
// tagIntZero+n for an n-byte positive value, tagIntZero-n for an n-byte
// negative value, with the magnitude bytes complemented for negatives so
// unsigned byte comparison matches signed numeric comparison.
func (w *Writer) writeInt(v int64) {
	if v == 0 {
		w.buf = append(w.buf, tagIntZero)
		return
	}

	neg := v < 0
	mag := uint64(v)
	if neg {
		mag = uint64(-v)
	}

	var tmp [8]byte
	n := 0
	for mag > 0 {
		tmp[n] = byte(mag)
		mag >>= 8
		n++
	}
	be := make([]byte, n)
	for i := 0; i < n; i++ {
		be[i] = tmp[n-1-i]
	}

	if neg {
		for i := range be {
			be[i] = ^be[i]
		}
		w.buf = append(w.buf, tagIntZero-byte(n))
	} else {
		w.buf = append(w.buf, tagIntZero+byte(n))
	}
	w.buf = append(w.buf, be...)
}

// writeFloat32 applies the order-preserving IEEE-754 transform: flip the
// sign bit for non-negative values, invert all bits for negative values.
func (w *Writer) writeFloat32(f float32) {
	bits := math.Float32bits(f)
	if bits&0x80000000 != 0 {
		bits = ^bits
	} else {
		bits |= 0x80000000
	}
	w.buf = append(w.buf, tagFloat32, byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits))
}

func (w *Writer) writeFloat64(f float64) {
	bits := math.Float64bits(f)
	if bits&0x8000000000000000 != 0 {
		bits = ^bits
	} else {
		bits |= 0x8000000000000000
	}
	w.buf = append(w.buf, tagFloat64)
	for i := 7; i >= 0; i-- {
		w.buf = append(w.buf, byte(bits>>(uint(i)*8)))
	}
}

func (w *Writer) writeUUID128(u fdbuuid.Uuid128) {
	w.buf = append(w.buf, tagUUID128)
	w.buf = append(w.buf, u.ToWireBytes()...)
}

func (w *Writer) writeUUID64(u fdbuuid.Uuid64) {
	w.buf = append(w.buf, tagUUID64)
	w.buf = append(w.buf, u.ToWireBytes()...)
}

func (w *Writer) writeVersionstamp(v Versionstamp, trackVersionstamp bool) {
	w.buf = append(w.buf, tagVersionstamp)
	if trackVersionstamp && v.IsIncomplete() {
		w.versionstampAt = len(w.buf)
	}
	w.buf = append(w.buf, v.TxVersion[:]...)
	w.buf = append(w.buf, byte(v.UserVersion>>8), byte(v.UserVersion))
}
