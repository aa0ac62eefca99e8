package fdbuuid

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

// Uuid64 is a 64-bit identifier, serialized big-endian so that its wire
// byte order sorts identically to its numeric value.
type Uuid64 uint64

// base62Digits uses ordering 0-9 A-Z a-z (not the more common a-z A-Z 0-9)
// precisely so that lexicographic string comparison of the padded form
// agrees with numeric comparison.
const base62Digits = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const base62PaddedWidth = 11

// base62Index maps an input byte to its digit value, or -1. Built once, on
// first decode.
var base62Index = sync.OnceValue(func() [256]int8 {
	var table [256]int8
	for i := range table {
		table[i] = -1
	}
	for i := 0; i < len(base62Digits); i++ {
		table[base62Digits[i]] = int8(i)
	}
	return table
})

// ToWireBytes returns the 8-byte big-endian encoding.
func (u Uuid64) ToWireBytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(u))
	return b
}

// FromWireBytes64 decodes an 8-byte big-endian Uuid64.
func FromWireBytes64(b []byte) (Uuid64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("fdbuuid: Uuid64 requires 8 bytes, got %d", len(b))
	}
	return Uuid64(binary.BigEndian.Uint64(b)), nil
}

// EncodeBase62 renders u in base62 using base62Digits. When padded is
// true the result is always base62PaddedWidth characters, left-padded
// with the zero digit, so that comparing two padded strings lexically
// agrees with comparing the underlying uint64 values.
func (u Uuid64) EncodeBase62(padded bool) string {
	if u == 0 {
		if padded {
			return strings.Repeat(string(base62Digits[0]), base62PaddedWidth)
		}
		return string(base62Digits[0])
	}

	var buf [base62PaddedWidth]byte
	i := len(buf)
	v := uint64(u)
	for v > 0 {
		i--
		buf[i] = base62Digits[v%62]
		v /= 62
	}

	if padded {
		for j := 0; j < i; j++ {
			buf[j] = base62Digits[0]
		}
		return string(buf[:])
	}
	return string(buf[i:])
}

// DecodeBase62 parses a base62 string (padded or compact) produced by
// EncodeBase62 back into a Uuid64.
func DecodeBase62(s string) (Uuid64, error) {
	if s == "" {
		return 0, fmt.Errorf("fdbuuid: empty base62 string")
	}
	table := base62Index()
	var v uint64
	for i := 0; i < len(s); i++ {
		idx := table[s[i]]
		if idx < 0 {
			return 0, fmt.Errorf("fdbuuid: invalid base62 character %q", s[i])
		}
		v = v*62 + uint64(idx)
	}
	return Uuid64(v), nil
}

// Format renders u in the requested string form:
//
//	D/d  - dashed eight-eight hex, upper/lower case
//	N    - no-dash hex
//	B/b  - braced hex, upper/lower case
//	C/c  - compact base62 (no padding), upper/lower digit casing preserved
//	Z/z  - padded base62 (11 chars)
//	R/r  - decimal
//	V/v  - eight hex pairs, dash-separated
//	M/m  - eight hex pairs, colon-separated
func (u Uuid64) Format(form string) string {
	hex16 := fmt.Sprintf("%016X", uint64(u))
	switch form {
	case "D":
		return hex16[:8] + "-" + hex16[8:]
	case "d":
		return strings.ToLower(hex16[:8] + "-" + hex16[8:])
	case "N":
		return hex16
	case "B":
		return "{" + hex16 + "}"
	case "b":
		return "{" + strings.ToLower(hex16) + "}"
	case "C":
		return u.EncodeBase62(false)
	case "c":
		return u.EncodeBase62(false)
	case "Z":
		return u.EncodeBase62(true)
	case "z":
		return u.EncodeBase62(true)
	case "R":
		return strconv.FormatUint(uint64(u), 10)
	case "r":
		return strconv.FormatUint(uint64(u), 10)
	case "V":
		return hexPairs(hex16, "-")
	case "v":
		return strings.ToLower(hexPairs(hex16, "-"))
	case "M":
		return hexPairs(hex16, ":")
	case "m":
		return strings.ToLower(hexPairs(hex16, ":"))
	default:
		return hex16
	}
}

func hexPairs(hex16, sep string) string {
	pairs := make([]string, 0, 8)
	for i := 0; i < len(hex16); i += 2 {
		pairs = append(pairs, hex16[i:i+2])
	}
	return strings.Join(pairs, sep)
}

// String implements fmt.Stringer using the "D" form.
func (u Uuid64) String() string {
	return u.Format("D")
}
