// Package logging wraps any fdbnative.Handler with structured logging of
// each call and its Future's eventual outcome, mirroring the teacher's
// layered storage-decorator pattern.
package logging

import (
	"context"
	"time"

	"github.com/marmos91/fdb-go/internal/fdbfuture"
	"github.com/marmos91/fdb-go/internal/fdblog"
	"github.com/marmos91/fdb-go/internal/fdbnative"
)

// Decorator logs every call made against an underlying Handler, plus the
// resolution of the FutureHandle it returns when the call is asynchronous.
type Decorator struct {
	inner fdbnative.Handler
}

// Wrap returns a Handler that logs around every call to inner.
func Wrap(inner fdbnative.Handler) *Decorator {
	return &Decorator{inner: inner}
}

var _ fdbnative.Handler = (*Decorator)(nil)

func (d *Decorator) logFuture(call string, fut fdbnative.FutureHandle) fdbnative.FutureHandle {
	if fut == nil {
		return fut
	}

	out := fdbfuture.New[any](nil)
	start := time.Now()

	go func() {
		v, err := fut.Await(context.Background())
		elapsed := time.Since(start)
		if err != nil {
			fdblog.Debug("native call failed",
				fdblog.NativeCall(call), fdblog.DurationMs(float64(elapsed.Milliseconds())), fdblog.Err(err))
			out.Fail(err)
			return
		}
		fdblog.Debug("native call completed",
			fdblog.NativeCall(call), fdblog.DurationMs(float64(elapsed.Milliseconds())))
		out.Complete(v)
	}()

	return out
}

func (d *Decorator) CreateDatabase(ctx context.Context, clusterFilePath, connectionString string, apiVersion int) (fdbnative.DatabaseHandle, error) {
	fdblog.Debug("native call", fdblog.NativeCall("create_database"), fdblog.Cluster(clusterFilePath))
	return d.inner.CreateDatabase(ctx, clusterFilePath, connectionString, apiVersion)
}

func (d *Decorator) CloseDatabase(db fdbnative.DatabaseHandle) error {
	fdblog.Debug("native call", fdblog.NativeCall("close_database"))
	return d.inner.CloseDatabase(db)
}

func (d *Decorator) CreateTransaction(db fdbnative.DatabaseHandle) (fdbnative.TransactionHandle, error) {
	fdblog.Debug("native call", fdblog.NativeCall("create_transaction"))
	return d.inner.CreateTransaction(db)
}

func (d *Decorator) OpenTenant(db fdbnative.DatabaseHandle, name []byte) (fdbnative.TenantHandle, error) {
	fdblog.Debug("native call", fdblog.NativeCall("open_tenant"), fdblog.Tenant(string(name)))
	return d.inner.OpenTenant(db, name)
}

func (d *Decorator) CreateTenantTransaction(tenant fdbnative.TenantHandle) (fdbnative.TransactionHandle, error) {
	fdblog.Debug("native call", fdblog.NativeCall("create_tenant_transaction"))
	return d.inner.CreateTenantTransaction(tenant)
}

func (d *Decorator) Get(txn fdbnative.TransactionHandle, key []byte, snapshot bool) (fdbnative.FutureHandle, error) {
	fdblog.Debug("native call", fdblog.NativeCall("get"), fdblog.Key(key))
	fut, err := d.inner.Get(txn, key, snapshot)
	if err != nil {
		return nil, err
	}
	return d.logFuture("get", fut), nil
}

func (d *Decorator) GetRange(txn fdbnative.TransactionHandle, begin, end []byte, limit int, reverse, snapshot bool) (fdbnative.FutureHandle, error) {
	fdblog.Debug("native call", fdblog.NativeCall("get_range"), fdblog.RangeBegin(begin), fdblog.RangeEnd(end))
	fut, err := d.inner.GetRange(txn, begin, end, limit, reverse, snapshot)
	if err != nil {
		return nil, err
	}
	return d.logFuture("get_range", fut), nil
}

func (d *Decorator) Set(txn fdbnative.TransactionHandle, key, value []byte) error {
	fdblog.Debug("native call", fdblog.NativeCall("set"), fdblog.Key(key))
	return d.inner.Set(txn, key, value)
}

func (d *Decorator) Clear(txn fdbnative.TransactionHandle, key []byte) error {
	fdblog.Debug("native call", fdblog.NativeCall("clear"), fdblog.Key(key))
	return d.inner.Clear(txn, key)
}

func (d *Decorator) ClearRange(txn fdbnative.TransactionHandle, begin, end []byte) error {
	fdblog.Debug("native call", fdblog.NativeCall("clear_range"), fdblog.RangeBegin(begin), fdblog.RangeEnd(end))
	return d.inner.ClearRange(txn, begin, end)
}

func (d *Decorator) AtomicOp(txn fdbnative.TransactionHandle, kind fdbnative.AtomicOpKind, key, param []byte) error {
	fdblog.Debug("native call", fdblog.NativeCall("atomic_op"), fdblog.Key(key))
	return d.inner.AtomicOp(txn, kind, key, param)
}

func (d *Decorator) Watch(txn fdbnative.TransactionHandle, key []byte) (fdbnative.FutureHandle, error) {
	fdblog.Debug("native call", fdblog.NativeCall("watch"), fdblog.Key(key))
	fut, err := d.inner.Watch(txn, key)
	if err != nil {
		return nil, err
	}
	return d.logFuture("watch", fut), nil
}

func (d *Decorator) Commit(txn fdbnative.TransactionHandle) (fdbnative.FutureHandle, error) {
	fdblog.Debug("native call", fdblog.NativeCall("commit"))
	fut, err := d.inner.Commit(txn)
	if err != nil {
		return nil, err
	}
	return d.logFuture("commit", fut), nil
}

func (d *Decorator) OnError(txn fdbnative.TransactionHandle, code int) (fdbnative.FutureHandle, error) {
	fdblog.Debug("native call", fdblog.NativeCall("on_error"), fdblog.ErrorCode(code))
	fut, err := d.inner.OnError(txn, code)
	if err != nil {
		return nil, err
	}
	return d.logFuture("on_error", fut), nil
}

func (d *Decorator) Cancel(txn fdbnative.TransactionHandle) error {
	fdblog.Debug("native call", fdblog.NativeCall("cancel"))
	return d.inner.Cancel(txn)
}

func (d *Decorator) DisposeTransaction(txn fdbnative.TransactionHandle) error {
	fdblog.Debug("native call", fdblog.NativeCall("dispose_transaction"))
	return d.inner.DisposeTransaction(txn)
}

func (d *Decorator) SetReadVersion(txn fdbnative.TransactionHandle, version int64) error {
	fdblog.Debug("native call", fdblog.NativeCall("set_read_version"))
	return d.inner.SetReadVersion(txn, version)
}

func (d *Decorator) GetReadVersion(txn fdbnative.TransactionHandle) (fdbnative.FutureHandle, error) {
	fdblog.Debug("native call", fdblog.NativeCall("get_read_version"))
	fut, err := d.inner.GetReadVersion(txn)
	if err != nil {
		return nil, err
	}
	return d.logFuture("get_read_version", fut), nil
}

func (d *Decorator) GetCommittedVersion(txn fdbnative.TransactionHandle) (int64, error) {
	return d.inner.GetCommittedVersion(txn)
}

func (d *Decorator) SetOption(db fdbnative.DatabaseHandle, option int, value fdbnative.OptionValue) error {
	fdblog.Debug("native call", fdblog.NativeCall("set_option"))
	return d.inner.SetOption(db, option, value)
}

func (d *Decorator) SetTransactionOption(txn fdbnative.TransactionHandle, option int, value fdbnative.OptionValue) error {
	fdblog.Debug("native call", fdblog.NativeCall("set_transaction_option"))
	return d.inner.SetTransactionOption(txn, option, value)
}
