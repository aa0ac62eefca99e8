// Package fdbnative defines the capability boundary between the client's
// pure-Go runtime (pkg/fdb, internal/fdbfuture) and whatever actually
// talks to the store: the real cgo binding, an in-memory mock, or a
// logging decorator wrapping either. Every other package in this module
// addresses the store exclusively through the Handler interface.
package fdbnative

import (
	"context"

	"github.com/marmos91/fdb-go/internal/fdbfuture"
)

// DatabaseHandle, TransactionHandle, and TenantHandle are opaque handles
// owned by a Handler implementation. Callers never dereference their
// contents; they exist only to be passed back into subsequent Handler
// calls.
type DatabaseHandle any
type TransactionHandle any
type TenantHandle any

// OptionValueKind tags the wire shape of a native option's value, per the
// client's option-setting contract.
type OptionValueKind int

const (
	OptionValueNone OptionValueKind = iota
	OptionValueText
	OptionValueBytes
	OptionValueInt64
)

// OptionValue carries a native option's payload in one of the four wire
// shapes the store accepts.
type OptionValue struct {
	Kind  OptionValueKind
	Text  string
	Bytes []byte
	Int64 int64
}

// Database option codes recognized by SetOption.
const (
	// DatabaseOptionTraceEnable enables native trace logging; the text
	// value names the output directory (empty means the native default).
	DatabaseOptionTraceEnable = 30

	// DatabaseOptionTLSCertPath, -TLSKeyPath, and -TLSCAPath name the
	// client's certificate material on disk (text values).
	DatabaseOptionTLSCertPath = 32
	DatabaseOptionTLSKeyPath  = 33
	DatabaseOptionTLSCAPath   = 34
)

// Transaction option codes recognized by SetTransactionOption. Numbered in
// the 2000s to avoid colliding with any future per-operation option added
// to this block.
const (
	// TransactionOptionAuthorizationToken carries a signed per-tenant
	// token (OptionValueBytes) proving the caller may address the tenant
	// the transaction was created against.
	TransactionOptionAuthorizationToken = 2000
)

// AtomicOpKind enumerates the atomic mutation kinds the store exposes
// over the wire.
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

// KeyValue is a single (key, value) pair returned from a range read.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// RangeResult is one batch of a range read plus whether more results
// remain beyond this batch.
type RangeResult struct {
	Pairs []KeyValue
	More  bool
}

// NativeError reports a failure surfaced by the store, identified by its
// numeric wire code; the Future Bridge and pkg/fdb translate these into
// the *fdb.Error taxonomy.
type NativeError struct {
	Code    int
	Message string
}

func (e *NativeError) Error() string {
	return e.Message
}

// Numeric codes carried by NativeError.Code. fdbnative cannot import
// pkg/fdb (pkg/fdb imports fdbnative), so these constants are kept in the
// same order as fdb.ErrorCode's iota block; pkg/fdb casts NativeError.Code
// straight into an fdb.ErrorCode rather than pattern-matching strings.
const (
	NativeCodeCommitUnknownResult = iota
	NativeCodeNotCommitted
	NativeCodeTransactionTooOld
	NativeCodePastVersion
	NativeCodeTooManyConcurrent
	NativeCodeUsedDuringCommit
	NativeCodeObjectDisposed
	NativeCodeInvalidArgument
	NativeCodeUnsupportedAPIVersion
	NativeCodeBufferTooSmall
	NativeCodeInvalidFormat
	NativeCodeTransactionDisposed
	NativeCodeCancelled
)

// retriableNativeCodes mirrors fdb.retriableCodes so mock and logging
// Handler implementations can decide OnError's outcome without importing
// pkg/fdb.
var retriableNativeCodes = map[int]bool{
	NativeCodeCommitUnknownResult: true,
	NativeCodeNotCommitted:        true,
	NativeCodeTransactionTooOld:   true,
	NativeCodePastVersion:         true,
	NativeCodeTooManyConcurrent:   true,
}

// IsRetriableCode reports whether a numeric native error code is one the
// retry loop should hand to OnError rather than re-raise.
func IsRetriableCode(code int) bool {
	return retriableNativeCodes[code]
}

// NewNotCommittedError builds the NativeError a Handler returns when a
// transaction loses a write-write conflict at commit time.
func NewNotCommittedError() *NativeError {
	return &NativeError{Code: NativeCodeNotCommitted, Message: "not committed: conflict with another transaction"}
}

// Handler is the capability record every store backend implements. Every
// call that the real wire protocol models as asynchronous returns a
// FutureHandle; the Future Bridge (internal/fdbfuture) is responsible for
// converting that into a typed, awaitable result.
type Handler interface {
	// CreateDatabase opens a database from either a cluster file path or a
	// connection string (mutually exclusive; exactly one must be
	// non-empty). Fails with a NativeError carrying the
	// UnsupportedApiVersion code if a connection string is supplied
	// against an apiVersion below 720.
	CreateDatabase(ctx context.Context, clusterFilePath, connectionString string, apiVersion int) (DatabaseHandle, error)

	// CloseDatabase releases every resource associated with db.
	CloseDatabase(db DatabaseHandle) error

	// CreateTransaction allocates a new transaction scoped to db.
	CreateTransaction(db DatabaseHandle) (TransactionHandle, error)

	// OpenTenant resolves a byte-named tenant scoped to db.
	OpenTenant(db DatabaseHandle, name []byte) (TenantHandle, error)

	// CreateTenantTransaction allocates a transaction scoped to tenant.
	CreateTenantTransaction(tenant TenantHandle) (TransactionHandle, error)

	// Get returns a FutureHandle resolving to the value at key, or to a
	// nil value if the key is absent.
	Get(txn TransactionHandle, key []byte, snapshot bool) (FutureHandle, error)

	// GetRange returns a FutureHandle resolving to one RangeResult batch
	// between begin (inclusive) and end (exclusive).
	GetRange(txn TransactionHandle, begin, end []byte, limit int, reverse, snapshot bool) (FutureHandle, error)

	// Set stages a key/value write; the effect is visible to later reads
	// in the same transaction but not committed until Commit succeeds.
	Set(txn TransactionHandle, key, value []byte) error

	// Clear stages removal of key.
	Clear(txn TransactionHandle, key []byte) error

	// ClearRange stages removal of every key in [begin, end).
	ClearRange(txn TransactionHandle, begin, end []byte) error

	// AtomicOp stages an atomic read-modify-write mutation.
	AtomicOp(txn TransactionHandle, kind AtomicOpKind, key, param []byte) error

	// Watch returns a FutureHandle that resolves once the value at key
	// changes from what it was when Watch was called.
	Watch(txn TransactionHandle, key []byte) (FutureHandle, error)

	// Commit returns a FutureHandle resolving to nil on success or a
	// NativeError identifying the conflict/failure otherwise.
	Commit(txn TransactionHandle) (FutureHandle, error)

	// OnError returns a FutureHandle that resolves successfully if the
	// transaction has been reset and is ready for another attempt, or
	// with the original (or a more specific) error if the failure is not
	// retriable.
	OnError(txn TransactionHandle, code int) (FutureHandle, error)

	// Cancel aborts the transaction's current operation and any pending
	// Future associated with it.
	Cancel(txn TransactionHandle) error

	// DisposeTransaction releases txn's resources. Idempotent.
	DisposeTransaction(txn TransactionHandle) error

	// SetReadVersion pins the transaction's read snapshot.
	SetReadVersion(txn TransactionHandle, version int64) error

	// GetReadVersion returns a FutureHandle resolving to the
	// transaction's current read version.
	GetReadVersion(txn TransactionHandle) (FutureHandle, error)

	// GetCommittedVersion returns the version at which the transaction
	// committed. Valid only after Commit has resolved successfully.
	GetCommittedVersion(txn TransactionHandle) (int64, error)

	// SetOption forwards a native option to db; value's Kind must match
	// the option's expected wire shape.
	SetOption(db DatabaseHandle, option int, value OptionValue) error

	// SetTransactionOption forwards a native option to txn.
	SetTransactionOption(txn TransactionHandle, option int, value OptionValue) error
}

// FutureHandle is the concrete Future Bridge type every Handler method
// returns for an asynchronous call. The payload type varies by call
// (nil for Commit/OnError, []byte for Get, *RangeResult for GetRange,
// int64 for GetReadVersion); callers type-assert Await's result against
// the call they made.
type FutureHandle = *fdbfuture.Future[any]
