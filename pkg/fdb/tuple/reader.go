package tuple

import (
	"fmt"
	"math"

	"github.com/marmos91/fdb-go/pkg/fdb/fdbuuid"
)

// Unpack decodes b into a Tuple. It is the inverse of Pack.
func Unpack(b []byte) (Tuple, error) {
	r := &reader{buf: b}
	t, err := r.readTuple(false)
	if err != nil {
		return nil, err
	}
	if r.pos != len(r.buf) {
		return nil, fmt.Errorf("tuple: trailing bytes after top-level tuple")
	}
	return t, nil
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) readTuple(nested bool) (Tuple, error) {
	var out Tuple
	for r.pos < len(r.buf) {
		if nested && r.buf[r.pos] == 0x00 {
			// 0x00 0xFF is an escaped nil element; a bare 0x00 terminates
			// the nested tuple.
			if r.pos+1 < len(r.buf) && r.buf[r.pos+1] == escapedNull {
				r.pos += 2
				out = append(out, nil)
				continue
			}
			r.pos++
			return out, nil
		}
		el, err := r.readElement()
		if err != nil {
			return nil, err
		}
		out = append(out, el)
	}
	if nested {
		return nil, fmt.Errorf("tuple: unterminated nested tuple")
	}
	return out, nil
}

func (r *reader) readElement() (any, error) {
	if r.pos >= len(r.buf) {
		return nil, fmt.Errorf("tuple: unexpected end of buffer")
	}
	tag := r.buf[r.pos]
	switch {
	case tag == tagNil:
		r.pos++
		if r.pos < len(r.buf) && r.buf[r.pos] == escapedNull {
			r.pos++
		}
		return nil, nil
	case tag == tagBytes:
		r.pos++
		return r.readDelimited()
	case tag == tagString:
		r.pos++
		b, err := r.readDelimited()
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case tag == tagNested:
		r.pos++
		return r.readTuple(true)
	case tag == tagFalse:
		r.pos++
		return false, nil
	case tag == tagTrue:
		r.pos++
		return true, nil
	case tag == tagFloat32:
		r.pos++
		return r.readFloat32()
	case tag == tagFloat64:
		r.pos++
		return r.readFloat64()
	case tag == tagUUID128:
		r.pos++
		return r.readUUID128()
	case tag == tagUUID64:
		r.pos++
		return r.readUUID64()
	case tag == tagVersionstamp:
		r.pos++
		return r.readVersionstamp()
	case tag >= tagIntZero-8 && tag <= tagIntZero+8:
		r.pos++
		return r.readInt(tag)
	default:
		return nil, fmt.Errorf("tuple: unknown tag byte 0x%02x", tag)
	}
}

// readDelimited reads bytes up to an unescaped 0x00, un-escaping 0x00 0xFF
// sequences back to a single 0x00.
func (r *reader) readDelimited() ([]byte, error) {
	var out []byte
	for {
		if r.pos >= len(r.buf) {
			return nil, fmt.Errorf("tuple: unterminated byte/string element")
		}
		c := r.buf[r.pos]
		if c == 0x00 {
			if r.pos+1 < len(r.buf) && r.buf[r.pos+1] == escapedNull {
				out = append(out, 0x00)
				r.pos += 2
				continue
			}
			r.pos++
			return out, nil
		}
		out = append(out, c)
		r.pos++
	}
}

func (r *reader) readInt(tag byte) (int64, error) {
	if tag == tagIntZero {
		return 0, nil
	}

	neg := tag < tagIntZero
	var n int
	if neg {
		n = int(tagIntZero - tag)
	} else {
		n = int(tag - tagIntZero)
	}

	if r.pos+n > len(r.buf) {
		return 0, fmt.Errorf("tuple: truncated integer element")
	}
	be := r.buf[r.pos : r.pos+n]
	r.pos += n

	var mag uint64
	for _, c := range be {
		b := c
		if neg {
			b = ^b
		}
		mag = mag<<8 | uint64(b)
	}
	if neg {
		return -int64(mag), nil
	}
	return int64(mag), nil
}

func (r *reader) readFloat32() (float32, error) {
	if r.pos+4 > len(r.buf) {
		return 0, fmt.Errorf("tuple: truncated float32 element")
	}
	b := r.buf[r.pos : r.pos+4]
	r.pos += 4

	bits := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	if bits&0x80000000 != 0 {
		bits &^= 0x80000000
	} else {
		bits = ^bits
	}
	return math.Float32frombits(bits), nil
}

func (r *reader) readFloat64() (float64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, fmt.Errorf("tuple: truncated float64 element")
	}
	b := r.buf[r.pos : r.pos+8]
	r.pos += 8

	var bits uint64
	for _, c := range b {
		bits = bits<<8 | uint64(c)
	}
	if bits&0x8000000000000000 != 0 {
		bits &^= 0x8000000000000000
	} else {
		bits = ^bits
	}
	return math.Float64frombits(bits), nil
}

func (r *reader) readUUID128() (fdbuuid.Uuid128, error) {
	if r.pos+16 > len(r.buf) {
		return fdbuuid.Uuid128{}, fmt.Errorf("tuple: truncated Uuid128 element")
	}
	b := r.buf[r.pos : r.pos+16]
	r.pos += 16
	return fdbuuid.FromWireBytes(b)
}

func (r *reader) readUUID64() (fdbuuid.Uuid64, error) {
	if r.pos+8 > len(r.buf) {
		return 0, fmt.Errorf("tuple: truncated Uuid64 element")
	}
	b := r.buf[r.pos : r.pos+8]
	r.pos += 8
	return fdbuuid.FromWireBytes64(b)
}

func (r *reader) readVersionstamp() (Versionstamp, error) {
	if r.pos+12 > len(r.buf) {
		return Versionstamp{}, fmt.Errorf("tuple: truncated Versionstamp element")
	}
	var v Versionstamp
	copy(v.TxVersion[:], r.buf[r.pos:r.pos+10])
	v.UserVersion = uint16(r.buf[r.pos+10])<<8 | uint16(r.buf[r.pos+11])
	r.pos += 12
	return v, nil
}
