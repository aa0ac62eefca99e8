package mockhandler

import (
	"bytes"

	"github.com/marmos91/fdb-go/internal/fdbnative"
)

// applyAtomicOp computes the new value to store for key given its current
// value (nil if absent) and the mutation's parameter, mirroring the wire
// semantics of each AtomicOpKind. A nil return means "delete the key".
func applyAtomicOp(kind fdbnative.AtomicOpKind, current, param []byte) ([]byte, error) {
	switch kind {
	case fdbnative.AtomicAdd:
		return addLittleEndian(current, param), nil

	case fdbnative.AtomicBitAnd:
		return bitwise(current, param, func(a, b byte) byte { return a & b }), nil

	case fdbnative.AtomicBitOr:
		return bitwise(current, param, func(a, b byte) byte { return a | b }), nil

	case fdbnative.AtomicBitXor:
		return bitwise(current, param, func(a, b byte) byte { return a ^ b }), nil

	case fdbnative.AtomicMax:
		if current == nil || compareLittleEndian(littleEndianPadded(current, len(param)), param) < 0 {
			return param, nil
		}
		return current, nil

	case fdbnative.AtomicMin:
		if current == nil || compareLittleEndian(littleEndianPadded(current, len(param)), param) > 0 {
			return param, nil
		}
		return current, nil

	case fdbnative.AtomicByteMin:
		if current == nil || bytes.Compare(current, param) > 0 {
			return param, nil
		}
		return current, nil

	case fdbnative.AtomicByteMax:
		if current == nil || bytes.Compare(current, param) < 0 {
			return param, nil
		}
		return current, nil

	case fdbnative.AtomicCompareAndClear:
		if bytes.Equal(current, param) {
			return nil, nil
		}
		return current, nil

	case fdbnative.AtomicSetVersionstampedKey, fdbnative.AtomicSetVersionstampedValue:
		// Neither Transaction.Commit nor this mock resolves a versionstamp
		// placeholder: param is stored as given, so this behaves like a
		// plain set.
		return param, nil

	default:
		return nil, &fdbnative.NativeError{Code: fdbnative.NativeCodeInvalidArgument, Message: "unsupported atomic op"}
	}
}

func littleEndianPadded(b []byte, width int) []byte {
	if len(b) >= width {
		return b
	}
	out := make([]byte, width)
	copy(out, b)
	return out
}

// compareLittleEndian compares the first len(b) bytes of a with b as
// unsigned little-endian integers, most significant byte first.
func compareLittleEndian(a, b []byte) int {
	for i := len(b) - 1; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func addLittleEndian(current, param []byte) []byte {
	width := len(param)
	a := littleEndianPadded(current, width)

	out := make([]byte, width)
	var carry uint16
	for i := 0; i < width; i++ {
		sum := uint16(a[i]) + uint16(param[i]) + carry
		out[i] = byte(sum)
		carry = sum >> 8
	}
	return out
}

func bitwise(current, param []byte, op func(a, b byte) byte) []byte {
	width := len(param)
	a := littleEndianPadded(current, width)

	out := make([]byte, width)
	for i := 0; i < width; i++ {
		out[i] = op(a[i], param[i])
	}
	return out
}
