package fdb

import (
	"context"

	"github.com/marmos91/fdb-go/internal/fdbfuture"
	"github.com/marmos91/fdb-go/internal/fdbnative"
)

// Watch observes a single key for a change from its value as of the
// commit that produced it.
type Watch struct {
	fut fdbnative.FutureHandle
	key Slice
}

func newWatch(fut fdbnative.FutureHandle, key []byte) *Watch {
	return &Watch{fut: fut, key: FromBytes(key).Copy()}
}

// Key returns the key this Watch observes.
func (w *Watch) Key() Slice {
	return w.key
}

// IsAlive reports whether the watch is still pending.
func (w *Watch) IsAlive() bool {
	return w.fut.IsAlive()
}

// HasChanged reports whether the watched key's value has already changed:
// true exactly when the underlying Future has completed successfully.
// Unlike Await, it never blocks.
func (w *Watch) HasChanged() bool {
	return w.fut.State() == fdbfuture.StateCompleted
}

// Await blocks until the watched key's value changes, the watch is
// cancelled, or ctx is done.
func (w *Watch) Await(ctx context.Context) error {
	_, err := w.fut.Await(ctx)
	if err != nil {
		return translateFutureError(err)
	}
	return nil
}

// Cancel aborts the watch; a subsequent Await resolves as cancelled.
func (w *Watch) Cancel() {
	w.fut.Cancel()
}

// Dispose releases the watch's resources. Awaiting a disposed watch fails
// with ObjectDisposed.
func (w *Watch) Dispose() {
	w.fut.Dispose()
}

func translateFutureError(err error) error {
	if err == nil {
		return nil
	}
	if fdbErr, ok := err.(*Error); ok {
		return fdbErr
	}
	if fdbfuture.IsDisposed(err) {
		return NewObjectDisposedError()
	}
	if fdbfuture.IsCancelled(err) || err == context.Canceled || err == context.DeadlineExceeded {
		return ErrCancelled
	}
	return ErrCancelled
}
