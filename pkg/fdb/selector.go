package fdb

import (
	"bytes"
	"context"

	"github.com/marmos91/fdb-go/internal/fdbnative"
	"github.com/marmos91/fdb-go/internal/fdbwire"
)

// KeySelector names a key position relative to an anchor key. For
// Offset >= 0 it is the Offset-th key counting forward from the first key
// greater than (or, if OrEqual, greater than or equal to) Key, which is
// offset 0; for Offset < 0 it counts backward from the last key less than
// (or, if OrEqual, less than or equal to) Key, which is offset -1.
// It packs to the same wire shape the store's native key-selector option
// uses (internal/fdbwire).
type KeySelector = fdbwire.KeySelector

// FirstGreaterOrEqual, FirstGreaterThan, LastLessOrEqual, and LastLessThan
// build the four conventional key selectors.
var (
	FirstGreaterOrEqual = fdbwire.FirstGreaterOrEqual
	FirstGreaterThan    = fdbwire.FirstGreaterThan
	LastLessOrEqual     = fdbwire.LastLessOrEqual
	LastLessThan        = fdbwire.LastLessThan
)

// MinKey and MaxKey bound the entire keyspace for selector resolution and
// full-range scans; MaxKey is a sentinel, not a key any caller would ever
// write (256 0xFF bytes comfortably exceeds the store's maximum key size).
var (
	MinKey = []byte{}
	MaxKey = bytes.Repeat([]byte{0xFF}, 256)
)

// ResolveKeySelector returns the single key ks names, by asking the
// handler for just enough of the range on the appropriate side of ks.Key
// to count out to Offset. It fails with InvalidArgument if ks resolves
// outside the keys currently visible to this transaction.
func (t *Transaction) ResolveKeySelector(ctx context.Context, ks KeySelector) ([]byte, error) {
	if err := t.enterExecuting(); err != nil {
		return nil, err
	}

	var begin, end []byte
	var reverse bool
	var skip int

	if ks.Offset >= 0 {
		reverse = false
		skip = int(ks.Offset)
		if ks.OrEqual {
			begin = ks.Key
		} else {
			begin = append(append([]byte{}, ks.Key...), 0x00)
		}
		end = MaxKey
	} else {
		reverse = true
		skip = int(-ks.Offset) - 1
		begin = MinKey
		if ks.OrEqual {
			end = append(append([]byte{}, ks.Key...), 0x00)
		} else {
			end = ks.Key
		}
	}

	fut, err := t.db.handler.GetRange(t.handle, begin, end, skip+1, reverse, t.readOnly)
	if err != nil {
		return nil, t.translateError(err)
	}
	v, err := fut.Await(ctx)
	if err != nil {
		return nil, t.translateError(err)
	}

	result := v.(*fdbnative.RangeResult)
	if skip >= len(result.Pairs) {
		return nil, NewInvalidArgumentError("key selector resolves outside the visible range")
	}
	return append([]byte{}, result.Pairs[skip].Key...), nil
}
