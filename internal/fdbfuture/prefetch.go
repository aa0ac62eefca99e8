package fdbfuture

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// PrefetchNext starts fetch in the background while the caller is still
// processing the current batch, returning a function that blocks until
// the background fetch completes. Used by Transaction.GetRangeAll to
// overlap network latency for the next range batch with processing of
// the current one.
func PrefetchNext[T any](ctx context.Context, fetch func(context.Context) (T, error)) func() (T, error) {
	g, gctx := errgroup.WithContext(ctx)
	var out T
	g.Go(func() error {
		v, err := fetch(gctx)
		out = v
		return err
	})
	return func() (T, error) {
		err := g.Wait()
		return out, err
	}
}
