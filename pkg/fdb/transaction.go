package fdb

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/marmos91/fdb-go/internal/fdblog"
	"github.com/marmos91/fdb-go/internal/fdbfuture"
	"github.com/marmos91/fdb-go/internal/fdbnative"
)

// TransactionState is the transaction's lifecycle position.
type TransactionState int32

const (
	TransactionInit TransactionState = iota
	TransactionReady
	TransactionExecuting
	TransactionCommitted
	TransactionRolledback
	TransactionFailed
	TransactionDisposed
)

func (s TransactionState) String() string {
	switch s {
	case TransactionInit:
		return "Init"
	case TransactionReady:
		return "Ready"
	case TransactionExecuting:
		return "Executing"
	case TransactionCommitted:
		return "Committed"
	case TransactionRolledback:
		return "Rolledback"
	case TransactionFailed:
		return "Failed"
	case TransactionDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// KeyValue is a single (key, value) pair read from the store.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// RangeIterator yields (key, value) pairs in the order the store returned
// them; Next returns (nil, false) once the range is exhausted or an error
// has occurred (see Err).
type RangeIterator struct {
	txn     *Transaction
	begin   []byte
	end     []byte
	reverse bool
	pairs   []fdbnative.KeyValue
	idx     int
	more    bool
	err     error
	done    bool
}

// Next advances the iterator, fetching the next batch from the store when
// the current one is exhausted.
func (it *RangeIterator) Next(ctx context.Context) (KeyValue, bool) {
	if it.done || it.err != nil {
		return KeyValue{}, false
	}

	if it.idx >= len(it.pairs) {
		if !it.more {
			it.done = true
			return KeyValue{}, false
		}
		if err := it.fetch(ctx); err != nil {
			it.err = err
			return KeyValue{}, false
		}
		if len(it.pairs) == 0 {
			it.done = true
			return KeyValue{}, false
		}
	}

	kv := it.pairs[it.idx]
	it.idx++

	if it.reverse {
		it.end = kv.Key
	} else {
		it.begin = append(append([]byte{}, kv.Key...), 0x00)
	}

	return KeyValue{Key: kv.Key, Value: kv.Value}, true
}

func (it *RangeIterator) fetch(ctx context.Context) error {
	fut, err := it.txn.db.handler.GetRange(it.txn.handle, it.begin, it.end, 0, it.reverse, it.txn.readOnly)
	if err != nil {
		return err
	}
	v, err := fut.Await(ctx)
	if err != nil {
		return it.txn.translateError(err)
	}
	result := v.(*fdbnative.RangeResult)
	it.pairs = result.Pairs
	it.idx = 0
	it.more = result.More
	return nil
}

// Err returns the error, if any, that stopped iteration early.
func (it *RangeIterator) Err() error {
	return it.err
}

// nextTransactionID is the process-wide, monotonically increasing source of
// Transaction ids; the Database/Tenant registries index their live
// transactions by this id rather than by the pointer itself.
var nextTransactionID atomic.Uint64

// Transaction is a single attempt at a read or read-write operation against
// a Database. Transactions are created and disposed by the retry loop
// (retryContext); application code that retains one past its owning attempt
// observes TransactionDisposed on the next call.
type Transaction struct {
	mu       sync.Mutex
	id       uint64
	db       *Database
	handle   fdbnative.TransactionHandle
	state    atomic.Int32
	readOnly bool

	// deregister removes this transaction from its owning Database's or
	// Tenant's transactionId -> Transaction registry; set by whichever
	// created the transaction, invoked once from Dispose.
	deregister func()
}

func newTransaction(db *Database, handle fdbnative.TransactionHandle, readOnly bool) *Transaction {
	t := &Transaction{id: nextTransactionID.Add(1), db: db, handle: handle, readOnly: readOnly}
	t.state.Store(int32(TransactionReady))
	return t
}

// ID returns the transaction's process-unique, monotonically increasing
// identifier, the key under which it is registered with its owning
// Database or Tenant.
func (t *Transaction) ID() uint64 {
	return t.id
}

// State returns the transaction's current lifecycle state.
func (t *Transaction) State() TransactionState {
	return TransactionState(t.state.Load())
}

func (t *Transaction) enterExecuting() error {
	for {
		cur := TransactionState(t.state.Load())
		switch cur {
		case TransactionDisposed:
			return NewTransactionDisposedError()
		case TransactionFailed, TransactionCommitted, TransactionRolledback:
			return NewUsedDuringCommitError()
		case TransactionReady:
			if t.state.CompareAndSwap(int32(TransactionReady), int32(TransactionExecuting)) {
				return nil
			}
		case TransactionExecuting:
			return nil
		}
	}
}

// Get returns the value stored at key, or nil if the key is absent.
func (t *Transaction) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := t.enterExecuting(); err != nil {
		return nil, err
	}

	fut, err := t.db.handler.Get(t.handle, key, t.readOnly)
	if err != nil {
		return nil, t.translateError(err)
	}
	v, err := fut.Await(ctx)
	if err != nil {
		return nil, t.translateError(err)
	}
	if v == nil {
		return nil, nil
	}
	return v.([]byte), nil
}

// GetRange returns an iterator over [begin, end) in ascending or
// descending key order.
func (t *Transaction) GetRange(begin, end []byte, reverse bool) (*RangeIterator, error) {
	if err := t.enterExecuting(); err != nil {
		return nil, err
	}
	return &RangeIterator{txn: t, begin: begin, end: end, reverse: reverse, more: true}, nil
}

// rangeBatchSize bounds how many pairs a single GetRangeAll batch
// requests from the handler.
const rangeBatchSize = 256

// GetRangeAll reads the whole of [begin, end) into memory, overlapping
// each batch's processing with a background fetch of the next batch.
// Callers that want streaming access should use GetRange instead.
func (t *Transaction) GetRangeAll(ctx context.Context, begin, end []byte, reverse bool) ([]KeyValue, error) {
	if err := t.enterExecuting(); err != nil {
		return nil, err
	}

	fetch := func(b, e []byte) func(context.Context) (*fdbnative.RangeResult, error) {
		return func(fctx context.Context) (*fdbnative.RangeResult, error) {
			fut, err := t.db.handler.GetRange(t.handle, b, e, rangeBatchSize, reverse, t.readOnly)
			if err != nil {
				return nil, err
			}
			v, err := fut.Await(fctx)
			if err != nil {
				return nil, err
			}
			return v.(*fdbnative.RangeResult), nil
		}
	}

	var out []KeyValue
	wait := fdbfuture.PrefetchNext(ctx, fetch(begin, end))
	for {
		result, err := wait()
		if err != nil {
			return nil, t.translateError(err)
		}

		wait = nil
		if result.More && len(result.Pairs) > 0 {
			last := result.Pairs[len(result.Pairs)-1].Key
			nextBegin, nextEnd := begin, end
			if reverse {
				nextEnd = append([]byte{}, last...)
			} else {
				nextBegin = append(append([]byte{}, last...), 0x00)
			}
			wait = fdbfuture.PrefetchNext(ctx, fetch(nextBegin, nextEnd))
		}

		for _, kv := range result.Pairs {
			out = append(out, KeyValue{Key: kv.Key, Value: kv.Value})
		}
		if wait == nil {
			return out, nil
		}
	}
}

// Set stages key=value, visible to later reads in this transaction.
func (t *Transaction) Set(key, value []byte) error {
	if t.readOnly {
		return NewInvalidArgumentError("cannot Set on a read-only transaction")
	}
	if err := t.enterExecuting(); err != nil {
		return err
	}
	return t.translateError(t.db.handler.Set(t.handle, key, value))
}

// Clear stages removal of key.
func (t *Transaction) Clear(key []byte) error {
	if t.readOnly {
		return NewInvalidArgumentError("cannot Clear on a read-only transaction")
	}
	if err := t.enterExecuting(); err != nil {
		return err
	}
	return t.translateError(t.db.handler.Clear(t.handle, key))
}

// ClearRange stages removal of every key in [begin, end).
func (t *Transaction) ClearRange(begin, end []byte) error {
	if t.readOnly {
		return NewInvalidArgumentError("cannot ClearRange on a read-only transaction")
	}
	if err := t.enterExecuting(); err != nil {
		return err
	}
	return t.translateError(t.db.handler.ClearRange(t.handle, begin, end))
}

// AtomicOpKind enumerates the atomic read-modify-write mutations the store
// exposes over the wire.
type AtomicOpKind int

const (
	AtomicAdd AtomicOpKind = iota
	AtomicBitAnd
	AtomicBitOr
	AtomicBitXor
	AtomicMax
	AtomicMin
	AtomicByteMin
	AtomicByteMax
	AtomicCompareAndClear
	AtomicSetVersionstampedKey
	AtomicSetVersionstampedValue
)

func (k AtomicOpKind) toNative() fdbnative.AtomicOpKind {
	return fdbnative.AtomicOpKind(k)
}

// AtomicOp stages an atomic read-modify-write mutation at key.
func (t *Transaction) AtomicOp(kind AtomicOpKind, key, param []byte) error {
	if t.readOnly {
		return NewInvalidArgumentError("cannot AtomicOp on a read-only transaction")
	}
	if err := t.enterExecuting(); err != nil {
		return err
	}
	return t.translateError(t.db.handler.AtomicOp(t.handle, kind.toNative(), key, param))
}

// Watch returns a Watch that resolves once key's value changes from its
// value as of this call.
func (t *Transaction) Watch(key []byte) (*Watch, error) {
	if err := t.enterExecuting(); err != nil {
		return nil, err
	}
	fut, err := t.db.handler.Watch(t.handle, key)
	if err != nil {
		return nil, t.translateError(err)
	}
	return newWatch(fut, key), nil
}

// Commit applies every staged write. On a retriable conflict the error
// should be passed to OnError by the retry loop driving this transaction.
func (t *Transaction) Commit(ctx context.Context) error {
	switch cur := TransactionState(t.state.Load()); cur {
	case TransactionReady:
		// Nothing was read or written; commit trivially succeeds.
		t.state.Store(int32(TransactionCommitted))
		return nil
	case TransactionDisposed:
		return NewTransactionDisposedError()
	case TransactionExecuting:
		// proceed below
	default:
		return NewUsedDuringCommitError()
	}

	fut, err := t.db.handler.Commit(t.handle)
	if err != nil {
		t.state.Store(int32(TransactionFailed))
		return t.translateError(err)
	}

	_, err = fut.Await(ctx)
	if err != nil {
		t.state.Store(int32(TransactionFailed))
		return t.translateError(err)
	}

	t.state.Store(int32(TransactionCommitted))
	return nil
}

// OnError negotiates retry eligibility for err with the store. A nil
// return means the transaction has been reset and the retry loop should
// attempt again; a non-nil return must propagate to the caller.
func (t *Transaction) OnError(ctx context.Context, err error) error {
	var code int
	var nativeErr *fdbnative.NativeError
	switch {
	case asNativeError(err, &nativeErr):
		code = nativeErr.Code
	default:
		code = codeFromError(err)
	}

	fut, callErr := t.db.handler.OnError(t.handle, code)
	if callErr != nil {
		t.state.Store(int32(TransactionFailed))
		return t.translateError(callErr)
	}

	_, awaitErr := fut.Await(ctx)
	if awaitErr != nil {
		t.state.Store(int32(TransactionFailed))
		return t.translateError(awaitErr)
	}

	t.state.Store(int32(TransactionReady))
	return nil
}

// Cancel aborts the transaction's current operation without committing.
func (t *Transaction) Cancel() error {
	prev := TransactionState(t.state.Swap(int32(TransactionRolledback)))
	if prev == TransactionDisposed {
		t.state.Store(int32(TransactionDisposed))
		return NewObjectDisposedError()
	}
	return t.translateError(t.db.handler.Cancel(t.handle))
}

// Dispose releases the transaction's native resources. Idempotent.
func (t *Transaction) Dispose() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if TransactionState(t.state.Swap(int32(TransactionDisposed))) == TransactionDisposed {
		return nil
	}
	if t.deregister != nil {
		t.deregister()
	}
	return t.db.handler.DisposeTransaction(t.handle)
}

// SetReadVersion pins the transaction's read snapshot.
func (t *Transaction) SetReadVersion(version int64) error {
	return t.translateError(t.db.handler.SetReadVersion(t.handle, version))
}

// GetReadVersion returns the transaction's current read version.
func (t *Transaction) GetReadVersion(ctx context.Context) (int64, error) {
	fut, err := t.db.handler.GetReadVersion(t.handle)
	if err != nil {
		return 0, t.translateError(err)
	}
	v, err := fut.Await(ctx)
	if err != nil {
		return 0, t.translateError(err)
	}
	return v.(int64), nil
}

// GetCommittedVersion returns the version at which the transaction
// committed. Valid only after Commit has resolved successfully.
func (t *Transaction) GetCommittedVersion() (int64, error) {
	v, err := t.db.handler.GetCommittedVersion(t.handle)
	return v, t.translateError(err)
}

// SetOption forwards a transaction-scoped native option.
func (t *Transaction) SetOption(option int, value fdbnative.OptionValue) error {
	return t.translateError(t.db.handler.SetTransactionOption(t.handle, option, value))
}

// translateError maps a fdbnative.NativeError (or any other Handler error)
// into the *Error taxonomy the retry loop and callers understand.
func (t *Transaction) translateError(err error) error {
	if err == nil {
		return nil
	}
	if fdbErr, ok := err.(*Error); ok {
		return fdbErr
	}
	if err == context.Canceled || err == context.DeadlineExceeded || fdbfuture.IsCancelled(err) {
		return ErrCancelled
	}
	if fdbfuture.IsDisposed(err) {
		return NewObjectDisposedError()
	}

	var nativeErr *fdbnative.NativeError
	if asNativeError(err, &nativeErr) {
		fdblog.Debug("native error", fdblog.ErrorCode(nativeErr.Code), fdblog.Err(err))
		return fromNativeCode(nativeErr.Code, nativeErr.Message)
	}

	return NewInvalidArgumentError(err.Error())
}

func asNativeError(err error, target **fdbnative.NativeError) bool {
	ne, ok := err.(*fdbnative.NativeError)
	if ok {
		*target = ne
	}
	return ok
}

func codeFromError(err error) int {
	if e, ok := err.(*Error); ok {
		return int(e.Code)
	}
	return int(ErrInvalidArgument)
}

func fromNativeCode(code int, message string) *Error {
	ec := ErrorCode(code)
	if message == "" {
		message = ec.String()
	}
	return newError(ec, message)
}
