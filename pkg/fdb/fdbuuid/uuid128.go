// Package fdbuuid implements the two fixed-width identifier types used as
// tuple elements and key components: Uuid128 (RFC 4122 compatible) and
// Uuid64 (a 64-bit ordered identifier with a base62 string form).
package fdbuuid

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Uuid128 is a 16-byte identifier stored on the wire in RFC 4122
// big-endian order: time_low(4) | time_mid(2) | time_hi_and_version(2) |
// clk_seq_hi_res(1) | clk_seq_low(1) | node(6).
type Uuid128 [16]byte

// NewUuid128 generates a random (version 4) Uuid128.
func NewUuid128() Uuid128 {
	return Uuid128(uuid.New())
}

// FromWireBytes interprets b (already in RFC 4122 order) as a Uuid128. b
// must be exactly 16 bytes.
func FromWireBytes(b []byte) (Uuid128, error) {
	var u Uuid128
	if len(b) != 16 {
		return u, fmt.Errorf("fdbuuid: Uuid128 requires 16 bytes, got %d", len(b))
	}
	copy(u[:], b)
	return u, nil
}

// ToWireBytes returns the 16-byte RFC 4122 big-endian wire representation.
func (u Uuid128) ToWireBytes() []byte {
	out := make([]byte, 16)
	copy(out, u[:])
	return out
}

// ParseUuid128 parses any of the "D" (dashed), "N" (no dashes), "B"
// (braced), or "X" (0x-prefixed groups) string forms.
func ParseUuid128(s string) (Uuid128, error) {
	cleaned := s
	cleaned = strings.TrimPrefix(cleaned, "{")
	cleaned = strings.TrimSuffix(cleaned, "}")
	if strings.HasPrefix(cleaned, "0x") || strings.Contains(cleaned, ",0x") {
		cleaned = strings.NewReplacer("0x", "", "{", "", "}", "", ",", "", " ", "").Replace(cleaned)
	}
	parsed, err := uuid.Parse(cleaned)
	if err != nil {
		return Uuid128{}, fmt.Errorf("fdbuuid: invalid Uuid128 %q: %w", s, err)
	}
	return Uuid128(parsed), nil
}

// Format renders u in the requested form: "D" dashed, "N" no-dash, "B"
// braced, "X" 0x-prefixed groups.
func (u Uuid128) Format(form string) string {
	g := uuid.UUID(u)
	switch form {
	case "D", "":
		return g.String()
	case "N":
		return strings.ReplaceAll(g.String(), "-", "")
	case "B":
		return "{" + g.String() + "}"
	case "X":
		b := g[:]
		return fmt.Sprintf("{0x%02x%02x%02x%02x,0x%02x%02x,0x%02x%02x,{0x%02x,0x%02x,0x%02x,0x%02x,0x%02x,0x%02x,0x%02x,0x%02x}}",
			b[0], b[1], b[2], b[3], b[4], b[5], b[6], b[7],
			b[8], b[9], b[10], b[11], b[12], b[13], b[14], b[15])
	default:
		return g.String()
	}
}

// String implements fmt.Stringer using the "D" form.
func (u Uuid128) String() string {
	return u.Format("D")
}

// TimeLow, TimeMid, TimeHiAndVersion, ClkSeqHiRes, ClkSeqLow, and Node
// decompose the wire layout described in the package doc.
func (u Uuid128) TimeLow() uint32         { return binary.BigEndian.Uint32(u[0:4]) }
func (u Uuid128) TimeMid() uint16         { return binary.BigEndian.Uint16(u[4:6]) }
func (u Uuid128) TimeHiAndVersion() uint16 { return binary.BigEndian.Uint16(u[6:8]) }
func (u Uuid128) ClkSeqHiRes() byte       { return u[8] }
func (u Uuid128) ClkSeqLow() byte         { return u[9] }
func (u Uuid128) Node() [6]byte {
	var n [6]byte
	copy(n[:], u[10:16])
	return n
}

// Version returns the UUID version, the high 4 bits of TimeHiAndVersion.
func (u Uuid128) Version() int {
	return int(u[6] >> 4)
}

// ClockSequence returns the 14-bit clock sequence
// (ClkSeqHiRes<<8 | ClkSeqLow) with the two reserved high bits masked off.
func (u Uuid128) ClockSequence() uint16 {
	return uint16(u[8]&0x3F)<<8 | uint16(u[9])
}

// ToHostGUID returns the field-swapped little-endian representation used
// by host GUID types on little-endian machines: the first three fields
// are stored little-endian while the trailing clock-sequence/node bytes
// stay in wire order.
func (u Uuid128) ToHostGUID() [16]byte {
	var out [16]byte
	binary.LittleEndian.PutUint32(out[0:4], u.TimeLow())
	binary.LittleEndian.PutUint16(out[4:6], u.TimeMid())
	binary.LittleEndian.PutUint16(out[6:8], u.TimeHiAndVersion())
	out[8] = u[8]
	out[9] = u[9]
	copy(out[10:16], u[10:16])
	return out
}

// FromHostGUID reverses ToHostGUID, producing the RFC 4122 big-endian wire
// form from a little-endian host GUID byte layout.
func FromHostGUID(g [16]byte) Uuid128 {
	var out Uuid128
	binary.BigEndian.PutUint32(out[0:4], binary.LittleEndian.Uint32(g[0:4]))
	binary.BigEndian.PutUint16(out[4:6], binary.LittleEndian.Uint16(g[4:6]))
	binary.BigEndian.PutUint16(out[6:8], binary.LittleEndian.Uint16(g[6:8]))
	out[8] = g[8]
	out[9] = g[9]
	copy(out[10:16], g[10:16])
	return out
}
