// Package fdbwire provides small XDR-flavored wire helpers shared by two
// otherwise unrelated corners of the client: the store's key-selector wire
// format and the ASN.1 length fragments in pkg/fdb/wireasn1. Both shapes
// boil down to "a length-prefixed, padded byte run followed by a couple of
// fixed-width fields", which is exactly what the reflection-based XDR codec
// already does for dittofs's NFS mount handlers, so this package reuses it
// rather than hand-rolling another binary.Write call site.
package fdbwire

import (
	"bytes"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// KeySelector names a key position relative to an anchor key, the same way
// the store's native key-selector wire format does. For Offset >= 0 it is
// the Offset-th key counting forward from the first key that is
// greater-than (or, if OrEqual, greater-than-or-equal-to) Key, which is
// offset 0. For Offset < 0 it counts backward from the last key that is
// less-than (or, if OrEqual, less-than-or-equal-to) Key, which is offset -1.
type KeySelector struct {
	Key     []byte
	OrEqual bool
	Offset  int32
}

// FirstGreaterOrEqual builds the selector naming key itself, if present,
// or the first key after it otherwise.
func FirstGreaterOrEqual(key []byte) KeySelector {
	return KeySelector{Key: append([]byte{}, key...), OrEqual: true, Offset: 0}
}

// FirstGreaterThan builds the selector naming the first key strictly
// after key.
func FirstGreaterThan(key []byte) KeySelector {
	return KeySelector{Key: append([]byte{}, key...), OrEqual: false, Offset: 0}
}

// LastLessOrEqual builds the selector naming key itself, if present, or
// the last key before it otherwise.
func LastLessOrEqual(key []byte) KeySelector {
	return KeySelector{Key: append([]byte{}, key...), OrEqual: true, Offset: -1}
}

// LastLessThan builds the selector naming the last key strictly before
// key.
func LastLessThan(key []byte) KeySelector {
	return KeySelector{Key: append([]byte{}, key...), OrEqual: false, Offset: -1}
}

// wireKeySelector is the on-the-wire shape of a KeySelector: the XDR codec
// encodes the []byte field as length-prefixed, zero-padded opaque data,
// then the two fixed-width fields that follow it, matching the general
// "length + padded bytes [+ trailer]" shape this package exists to share.
type wireKeySelector struct {
	Key     []byte
	OrEqual bool
	Offset  int32
}

// Pack encodes ks in the store's key-selector wire format.
func Pack(ks KeySelector) ([]byte, error) {
	var buf bytes.Buffer
	w := wireKeySelector{Key: ks.Key, OrEqual: ks.OrEqual, Offset: ks.Offset}
	if _, err := xdr.Marshal(&buf, &w); err != nil {
		return nil, fmt.Errorf("fdbwire: marshal key selector: %w", err)
	}
	return buf.Bytes(), nil
}

// Unpack decodes a key-selector previously produced by Pack.
func Unpack(b []byte) (KeySelector, error) {
	var w wireKeySelector
	if _, err := xdr.Unmarshal(bytes.NewReader(b), &w); err != nil {
		return KeySelector{}, fmt.Errorf("fdbwire: unmarshal key selector: %w", err)
	}
	key := w.Key
	if key == nil {
		// A zero-length key decodes as an empty, non-nil slice.
		key = []byte{}
	}
	return KeySelector{Key: key, OrEqual: w.OrEqual, Offset: w.Offset}, nil
}
