package fdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/fdb-go/internal/fdbconfig"
	"github.com/marmos91/fdb-go/pkg/fdb"
)

func testConfig() fdbconfig.Config {
	return fdbconfig.Config{
		Mock:              true,
		Timeout:           5 * time.Second,
		RetryLimit:        10,
		InitialRetryDelay: time.Millisecond,
		MaxRetryDelay:     10 * time.Millisecond,
	}
}

func openTestDatabase(t *testing.T) *fdb.Database {
	t.Helper()
	db, err := fdb.Open(context.Background(), testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDatabase_WriteThenRead(t *testing.T) {
	t.Parallel()

	db := openTestDatabase(t)

	_, err := db.Write(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return nil, txn.Set([]byte("hello"), []byte("world"))
	})
	require.NoError(t, err)

	v, err := db.Read(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return txn.Get(ctx, []byte("hello"))
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("world"), v)
}

func TestDatabase_ReadAbsentKeyReturnsNil(t *testing.T) {
	t.Parallel()

	db := openTestDatabase(t)

	v, err := db.Read(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return txn.Get(ctx, []byte("nope"))
	})
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestDatabase_RangeScan(t *testing.T) {
	t.Parallel()

	db := openTestDatabase(t)

	_, err := db.Write(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		for _, k := range []string{"a", "b", "c"} {
			if err := txn.Set([]byte(k), []byte(k+k)); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	require.NoError(t, err)

	got, err := db.Read(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		it, err := txn.GetRange([]byte("a"), []byte("z"), false)
		if err != nil {
			return nil, err
		}
		var keys []string
		for {
			kv, ok := it.Next(ctx)
			if !ok {
				break
			}
			keys = append(keys, string(kv.Key))
		}
		return keys, it.Err()
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}

func TestDatabase_WriteRetriesOnConflictThenSucceeds(t *testing.T) {
	t.Parallel()

	db := openTestDatabase(t)

	_, err := db.Write(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return nil, txn.Set([]byte("counter"), []byte{0})
	})
	require.NoError(t, err)

	var attempts int
	_, err = db.Write(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		attempts++
		// Force a conflict on the first attempt by having a concurrent
		// writer land in between this read and this attempt's commit.
		if attempts == 1 {
			_, err := db.Write(context.Background(), func(ctx context.Context, inner *fdb.Transaction) (any, error) {
				return nil, inner.Set([]byte("counter"), []byte{1})
			})
			if err != nil {
				return nil, err
			}
		}
		v, err := txn.Get(ctx, []byte("counter"))
		if err != nil {
			return nil, err
		}
		_ = v
		return nil, txn.Set([]byte("counter"), []byte{2})
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, attempts, 1)
}

func TestDatabase_TenantScopedReadWrite(t *testing.T) {
	t.Parallel()

	db := openTestDatabase(t)

	tenant, err := db.OpenTenant([]byte("acme"))
	require.NoError(t, err)

	_, err = tenant.Write(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return nil, txn.Set([]byte("k"), []byte("tenant-value"))
	})
	require.NoError(t, err)

	v, err := tenant.Read(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return txn.Get(ctx, []byte("k"))
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("tenant-value"), v)

	globalV, err := db.Read(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return txn.Get(ctx, []byte("k"))
	})
	require.NoError(t, err)
	assert.Nil(t, globalV)
}

func TestDatabase_WatchAcrossTransactions(t *testing.T) {
	t.Parallel()

	db := openTestDatabase(t)

	var watch *fdb.Watch
	_, err := db.Write(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		w, err := txn.Watch([]byte("watched"))
		watch = w
		return nil, err
	})
	require.NoError(t, err)

	_, err = db.Write(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return nil, txn.Set([]byte("watched"), []byte("changed"))
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, watch.Await(ctx))
}

func TestDatabase_CloseIsIdempotentAndDisposesReuse(t *testing.T) {
	t.Parallel()

	db, err := fdb.Open(context.Background(), testConfig())
	require.NoError(t, err)

	require.NoError(t, db.Close())
	require.NoError(t, db.Close())

	_, err = db.OpenTenant([]byte("late"))
	require.Error(t, err)

	var fdbErr *fdb.Error
	require.ErrorAs(t, err, &fdbErr)
	assert.Equal(t, fdb.ErrObjectDisposed, fdbErr.Code)

	_, err = db.Write(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		return nil, nil
	})
	require.Error(t, err)
}

func TestDatabase_FatalErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	db := openTestDatabase(t)

	var attempts int
	_, err := db.Write(context.Background(), func(ctx context.Context, txn *fdb.Transaction) (any, error) {
		attempts++
		return nil, fdb.NewInvalidArgumentError("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, fdb.IsFatal(err))
}
