package fdblog

import "log/slog"

// Standard field keys for structured logging across the client runtime.
const (
	KeyCluster       = "cluster"
	KeyTenant        = "tenant"
	KeyTransactionID = "txn_id"
	KeyAttempt       = "attempt"
	KeyMaxRetries    = "max_retries"
	KeyErrorCode     = "error_code"
	KeyRetriable     = "retriable"
	KeyDurationMs    = "duration_ms"
	KeyKey           = "key"
	KeyRangeBegin    = "range_begin"
	KeyRangeEnd      = "range_end"
	KeyOutcome       = "outcome"
	KeyNativeCall    = "native_call"
)

// Cluster returns a slog.Attr for the cluster identifier.
func Cluster(name string) slog.Attr { return slog.String(KeyCluster, name) }

// Tenant returns a slog.Attr for the tenant name.
func Tenant(name string) slog.Attr { return slog.String(KeyTenant, name) }

// TransactionID returns a slog.Attr for the transaction id.
func TransactionID(id uint64) slog.Attr { return slog.Uint64(KeyTransactionID, id) }

// Attempt returns a slog.Attr for the retry attempt number.
func Attempt(n int) slog.Attr { return slog.Int(KeyAttempt, n) }

// MaxRetries returns a slog.Attr for the configured retry limit.
func MaxRetries(n int) slog.Attr { return slog.Int(KeyMaxRetries, n) }

// ErrorCode returns a slog.Attr for a numeric native error code.
func ErrorCode(code int) slog.Attr { return slog.Int(KeyErrorCode, code) }

// Retriable returns a slog.Attr marking whether an error was retriable.
func Retriable(v bool) slog.Attr { return slog.Bool(KeyRetriable, v) }

// DurationMs returns a slog.Attr for an operation duration in milliseconds.
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }

// Key returns a slog.Attr for a key, rendered as hex.
func Key(k []byte) slog.Attr { return slog.String(KeyKey, hexString(k)) }

// RangeBegin returns a slog.Attr for a range read's inclusive lower bound.
func RangeBegin(k []byte) slog.Attr { return slog.String(KeyRangeBegin, hexString(k)) }

// RangeEnd returns a slog.Attr for a range read's exclusive upper bound.
func RangeEnd(k []byte) slog.Attr { return slog.String(KeyRangeEnd, hexString(k)) }

// Outcome returns a slog.Attr for a retry-loop outcome (commit, cancelled,
// fatal, success).
func Outcome(s string) slog.Attr { return slog.String(KeyOutcome, s) }

// NativeCall returns a slog.Attr naming the native handler call being made.
func NativeCall(name string) slog.Attr { return slog.String(KeyNativeCall, name) }

// Err returns a slog.Attr for an error, or a zero Attr if err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("error", err.Error())
}

func hexString(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xf]
	}
	return string(out)
}
