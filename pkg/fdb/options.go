package fdb

import "github.com/marmos91/fdb-go/internal/fdbnative"

// TextOption builds a text-shaped native option value (UTF-8, not
// null-terminated).
func TextOption(s string) fdbnative.OptionValue {
	return fdbnative.OptionValue{Kind: fdbnative.OptionValueText, Text: s}
}

// BytesOption builds a raw-bytes-shaped native option value.
func BytesOption(b []byte) fdbnative.OptionValue {
	return fdbnative.OptionValue{Kind: fdbnative.OptionValueBytes, Bytes: b}
}

// Int64Option builds an 8-byte little-endian signed native option value.
func Int64Option(v int64) fdbnative.OptionValue {
	return fdbnative.OptionValue{Kind: fdbnative.OptionValueInt64, Int64: v}
}

// NoneOption builds a value-less native option.
func NoneOption() fdbnative.OptionValue {
	return fdbnative.OptionValue{Kind: fdbnative.OptionValueNone}
}
