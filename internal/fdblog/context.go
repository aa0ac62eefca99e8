package fdblog

import "context"

type contextKey struct{}

var logContextKey = contextKey{}

// LogContext holds operation-scoped logging fields: which cluster and
// tenant an attempt belongs to, which transaction id it produced, and which
// retry attempt this is. The retry loop in pkg/fdb (retryContext) refreshes
// Attempt and TransactionID on every iteration.
type LogContext struct {
	Cluster       string
	Tenant        string
	TransactionID uint64
	Attempt       int
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if absent.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// Clone returns a copy of lc.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithAttempt returns a copy of lc with Attempt set.
func (lc *LogContext) WithAttempt(attempt int) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Attempt = attempt
	}
	return clone
}

// WithTransactionID returns a copy of lc with TransactionID set.
func (lc *LogContext) WithTransactionID(id uint64) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TransactionID = id
	}
	return clone
}
