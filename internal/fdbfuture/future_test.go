package fdbfuture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_CompleteThenAwait(t *testing.T) {
	t.Parallel()

	f := New[int](nil)
	f.Complete(42)

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestFuture_FailThenAwait(t *testing.T) {
	t.Parallel()

	f := New[int](nil)
	wantErr := errors.New("boom")
	f.Fail(wantErr)

	_, err := f.Await(context.Background())
	assert.Equal(t, wantErr, err)
}

func TestFuture_CompleteFromGoroutine(t *testing.T) {
	t.Parallel()

	f := New[string](nil)
	go func() {
		time.Sleep(10 * time.Millisecond)
		f.Complete("done")
	}()

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", v)
}

func TestFuture_CancelResolvesPending(t *testing.T) {
	t.Parallel()

	cancelled := false
	f := New[int](func() { cancelled = true })
	f.Cancel()

	_, err := f.Await(context.Background())
	require.Error(t, err)
	assert.True(t, cancelled)
	assert.False(t, f.IsAlive())
}

func TestFuture_ContextCancellation(t *testing.T) {
	t.Parallel()

	f := New[int](nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFuture_DisposeThenAwaitFails(t *testing.T) {
	t.Parallel()

	f := New[int](nil)
	f.Dispose()

	_, err := f.Await(context.Background())
	require.Error(t, err)
}

func TestFuture_CompleteIsOneShot(t *testing.T) {
	t.Parallel()

	f := New[int](nil)
	f.Complete(1)
	f.Complete(2) // no-op, first completion wins

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}
