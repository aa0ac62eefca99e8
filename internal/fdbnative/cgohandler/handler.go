//go:build fdb_cgo

// Package cgohandler is the real fdbnative.Handler binding: a thin cgo
// layer over fdb_c.h. It is gated behind the fdb_cgo build tag because
// this environment has no native client library to link against; the
// mock handler (internal/fdbnative/mockhandler) is what every test in
// this module actually exercises. This file exists so the client
// compiles as a real binding wherever the tag and libfdb_c are both
// present, the same way the rest of the package tree assumes a capability
// record with swappable backends (internal/fdbnative.Handler).
package cgohandler

/*
#cgo LDFLAGS: -lfdb_c
#include <foundationdb/fdb_c.h>
#include <stdlib.h>

// trampoline is the single C-ABI function registered with every
// fdb_future_set_callback call; it re-enters Go through goFutureReady,
// passing the cgo.Handle smuggled through the callback_parameter void*.
extern void goFutureReady(FDBFuture *future, void *handle);

static void trampoline(FDBFuture *future, void *callback_parameter) {
	goFutureReady(future, callback_parameter);
}

static fdb_error_t register_callback(FDBFuture *future, void *handle) {
	return fdb_future_set_callback(future, (FDBCallback)trampoline, handle);
}
*/
import "C"

import (
	"context"
	"runtime/cgo"
	"unsafe"

	"github.com/marmos91/fdb-go/internal/fdbfuture"
	"github.com/marmos91/fdb-go/internal/fdbnative"
)

// Handler is the cgo-backed fdbnative.Handler implementation.
type Handler struct{}

// New returns a Handler talking to the native client library loaded into
// this process. Callers must have already called fdb_select_api_version
// and fdb_run_network themselves, mirroring the real binding's startup
// contract; this package only wraps the per-call surface.
func New() *Handler { return &Handler{} }

var _ fdbnative.Handler = (*Handler)(nil)

// errorFromCode converts a native fdb_error_t into a NativeError, mapping
// the well-known retriable codes onto fdbnative's numeric taxonomy.
func errorFromCode(code C.fdb_error_t) error {
	if code == 0 {
		return nil
	}
	msg := C.GoString(C.fdb_get_error(code))
	return &fdbnative.NativeError{Code: translateNativeCode(int(code)), Message: msg}
}

// translateNativeCode maps FoundationDB's own wire error codes onto this
// package's NativeCode* constants. Only the codes the retry loop and
// error taxonomy (pkg/fdb.ErrorCode) actually distinguish are mapped;
// anything else is reported as InvalidArgument, which is always fatal.
func translateNativeCode(code int) int {
	switch code {
	case 1021: // commit_unknown_result
		return fdbnative.NativeCodeCommitUnknownResult
	case 1020: // not_committed
		return fdbnative.NativeCodeNotCommitted
	case 1007: // transaction_too_old
		return fdbnative.NativeCodeTransactionTooOld
	case 1009: // past_version
		return fdbnative.NativeCodePastVersion
	case 1004: // too_many_watches / too many concurrent
		return fdbnative.NativeCodeTooManyConcurrent
	case 2017: // used_during_commit
		return fdbnative.NativeCodeUsedDuringCommit
	case 2023: // used after dispose
		return fdbnative.NativeCodeObjectDisposed
	case 2006: // invalid option / argument
		return fdbnative.NativeCodeInvalidArgument
	case 2203: // api_version_not_supported
		return fdbnative.NativeCodeUnsupportedAPIVersion
	case 1025: // operation cancelled
		return fdbnative.NativeCodeCancelled
	default:
		return fdbnative.NativeCodeInvalidArgument
	}
}

// bridgeFuture is the pending state a cgo.Handle (passed through the C
// callback_parameter void*) resolves back to; goFutureReady looks it up,
// completes its Future, and deletes the handle.
type bridgeFuture struct {
	raw       *C.FDBFuture
	fut       *fdbfuture.Future[any]
	transform func(*C.FDBFuture) (any, error)
}

// awaitFuture registers transform to run when raw is ready and returns a
// Future the rest of the client awaits. The C trampoline never runs Go
// user code directly: it only signals goFutureReady, which completes the
// Future on whatever goroutine the native network thread is using to
// drive the callback — still not the caller's goroutine, and still never
// running transform's caller-visible effects inline with user code, since
// Future.Await is what actually invokes the type assertion chain.
func awaitFuture(raw *C.FDBFuture, transform func(*C.FDBFuture) (any, error)) *fdbfuture.Future[any] {
	fut := fdbfuture.New[any](func() { C.fdb_future_cancel(raw) })
	bf := &bridgeFuture{raw: raw, fut: fut, transform: transform}
	h := cgo.NewHandle(bf)

	// The handle value itself travels through the callback_parameter
	// void*; a cgo.Handle is an integer, so it stays valid however long
	// the network thread takes to fire.
	if err := errorFromCode(C.register_callback(raw, unsafe.Pointer(h))); err != nil {
		h.Delete()
		fut.Fail(err)
	}
	return fut
}

//export goFutureReady
func goFutureReady(raw *C.FDBFuture, handlePtr unsafe.Pointer) {
	h := cgo.Handle(handlePtr)
	bf := h.Value().(*bridgeFuture)
	h.Delete()

	value, err := bf.transform(bf.raw)
	C.fdb_future_destroy(bf.raw)
	if err != nil {
		bf.fut.Fail(err)
		return
	}
	bf.fut.Complete(value)
}

// CreateDatabase opens a database handle from a cluster file path or
// connection string (the latter requires apiVersion >= 720, mirrored here
// even though fdb_create_database_from_connection_string enforces it
// natively too — failing fast avoids an extra cgo round trip).
func (h *Handler) CreateDatabase(ctx context.Context, clusterFilePath, connectionString string, apiVersion int) (fdbnative.DatabaseHandle, error) {
	if connectionString != "" {
		if apiVersion < 720 {
			return nil, &fdbnative.NativeError{Code: fdbnative.NativeCodeUnsupportedAPIVersion, Message: "connection strings require API version >= 720"}
		}
		cs := C.CString(connectionString)
		defer C.free(unsafe.Pointer(cs))
		var db *C.FDBDatabase
		if err := errorFromCode(C.fdb_create_database_from_connection_string(cs, &db)); err != nil {
			return nil, err
		}
		return db, nil
	}

	cf := C.CString(clusterFilePath)
	defer C.free(unsafe.Pointer(cf))
	var db *C.FDBDatabase
	if err := errorFromCode(C.fdb_create_database(cf, &db)); err != nil {
		return nil, err
	}
	return db, nil
}

func (h *Handler) CloseDatabase(dbh fdbnative.DatabaseHandle) error {
	C.fdb_database_destroy(dbh.(*C.FDBDatabase))
	return nil
}

func (h *Handler) CreateTransaction(dbh fdbnative.DatabaseHandle) (fdbnative.TransactionHandle, error) {
	var txn *C.FDBTransaction
	if err := errorFromCode(C.fdb_database_create_transaction(dbh.(*C.FDBDatabase), &txn)); err != nil {
		return nil, err
	}
	return txn, nil
}

func (h *Handler) OpenTenant(dbh fdbnative.DatabaseHandle, name []byte) (fdbnative.TenantHandle, error) {
	var tenant *C.FDBTenant
	if err := errorFromCode(C.fdb_database_open_tenant(dbh.(*C.FDBDatabase), (*C.uint8_t)(unsafe.Pointer(&name[0])), C.int(len(name)), &tenant)); err != nil {
		return nil, err
	}
	return tenant, nil
}

func (h *Handler) CreateTenantTransaction(tenant fdbnative.TenantHandle) (fdbnative.TransactionHandle, error) {
	var txn *C.FDBTransaction
	if err := errorFromCode(C.fdb_tenant_create_transaction(tenant.(*C.FDBTenant), &txn)); err != nil {
		return nil, err
	}
	return txn, nil
}

func (h *Handler) Get(txh fdbnative.TransactionHandle, key []byte, snapshot bool) (fdbnative.FutureHandle, error) {
	txn := txh.(*C.FDBTransaction)
	raw := C.fdb_transaction_get(txn, byteAddr(key), C.int(len(key)), C.fdb_bool_t(boolToInt(snapshot)))
	return awaitFuture(raw, func(f *C.FDBFuture) (any, error) {
		var present C.fdb_bool_t
		var val *C.uint8_t
		var vlen C.int
		if err := errorFromCode(C.fdb_future_get_value(f, &present, &val, &vlen)); err != nil {
			return nil, err
		}
		if present == 0 {
			return []byte(nil), nil
		}
		return C.GoBytes(unsafe.Pointer(val), vlen), nil
	}), nil
}

func (h *Handler) GetRange(txh fdbnative.TransactionHandle, begin, end []byte, limit int, reverse, snapshot bool) (fdbnative.FutureHandle, error) {
	txn := txh.(*C.FDBTransaction)
	raw := C.fdb_transaction_get_range(txn,
		byteAddr(begin), C.int(len(begin)), 1, 0,
		byteAddr(end), C.int(len(end)), 1, 0,
		C.int(limit), 0,
		C.FDB_STREAMING_MODE_ITERATOR,
		1,
		C.fdb_bool_t(boolToInt(snapshot)),
		C.fdb_bool_t(boolToInt(reverse)))
	return awaitFuture(raw, func(f *C.FDBFuture) (any, error) {
		var kvs *C.FDBKeyValue
		var count C.int
		var more C.fdb_bool_t
		if err := errorFromCode(C.fdb_future_get_keyvalue_array(f, &kvs, &count, &more)); err != nil {
			return nil, err
		}
		result := &fdbnative.RangeResult{More: more != 0}
		for i := 0; i < int(count); i++ {
			kv := (*[1 << 28]C.FDBKeyValue)(unsafe.Pointer(kvs))[i]
			result.Pairs = append(result.Pairs, fdbnative.KeyValue{
				Key:   C.GoBytes(unsafe.Pointer(kv.key), kv.key_length),
				Value: C.GoBytes(unsafe.Pointer(kv.value), kv.value_length),
			})
		}
		return result, nil
	}), nil
}

func (h *Handler) Set(txh fdbnative.TransactionHandle, key, value []byte) error {
	C.fdb_transaction_set(txh.(*C.FDBTransaction), byteAddr(key), C.int(len(key)), byteAddr(value), C.int(len(value)))
	return nil
}

func (h *Handler) Clear(txh fdbnative.TransactionHandle, key []byte) error {
	C.fdb_transaction_clear(txh.(*C.FDBTransaction), byteAddr(key), C.int(len(key)))
	return nil
}

func (h *Handler) ClearRange(txh fdbnative.TransactionHandle, begin, end []byte) error {
	C.fdb_transaction_clear_range(txh.(*C.FDBTransaction), byteAddr(begin), C.int(len(begin)), byteAddr(end), C.int(len(end)))
	return nil
}

func (h *Handler) AtomicOp(txh fdbnative.TransactionHandle, kind fdbnative.AtomicOpKind, key, param []byte) error {
	C.fdb_transaction_atomic_op(txh.(*C.FDBTransaction), byteAddr(key), C.int(len(key)), byteAddr(param), C.int(len(param)), C.FDBMutationType(kind))
	return nil
}

func (h *Handler) Watch(txh fdbnative.TransactionHandle, key []byte) (fdbnative.FutureHandle, error) {
	raw := C.fdb_transaction_watch(txh.(*C.FDBTransaction), byteAddr(key), C.int(len(key)))
	return awaitFuture(raw, func(f *C.FDBFuture) (any, error) {
		return nil, errorFromCode(C.fdb_future_get_error(f))
	}), nil
}

func (h *Handler) Commit(txh fdbnative.TransactionHandle) (fdbnative.FutureHandle, error) {
	raw := C.fdb_transaction_commit(txh.(*C.FDBTransaction))
	return awaitFuture(raw, func(f *C.FDBFuture) (any, error) {
		return nil, errorFromCode(C.fdb_future_get_error(f))
	}), nil
}

func (h *Handler) OnError(txh fdbnative.TransactionHandle, code int) (fdbnative.FutureHandle, error) {
	raw := C.fdb_transaction_on_error(txh.(*C.FDBTransaction), C.fdb_error_t(code))
	return awaitFuture(raw, func(f *C.FDBFuture) (any, error) {
		return nil, errorFromCode(C.fdb_future_get_error(f))
	}), nil
}

func (h *Handler) Cancel(txh fdbnative.TransactionHandle) error {
	C.fdb_transaction_cancel(txh.(*C.FDBTransaction))
	return nil
}

func (h *Handler) DisposeTransaction(txh fdbnative.TransactionHandle) error {
	C.fdb_transaction_destroy(txh.(*C.FDBTransaction))
	return nil
}

func (h *Handler) SetReadVersion(txh fdbnative.TransactionHandle, version int64) error {
	C.fdb_transaction_set_read_version(txh.(*C.FDBTransaction), C.int64_t(version))
	return nil
}

func (h *Handler) GetReadVersion(txh fdbnative.TransactionHandle) (fdbnative.FutureHandle, error) {
	raw := C.fdb_transaction_get_read_version(txh.(*C.FDBTransaction))
	return awaitFuture(raw, func(f *C.FDBFuture) (any, error) {
		var version C.int64_t
		if err := errorFromCode(C.fdb_future_get_int64(f, &version)); err != nil {
			return nil, err
		}
		return int64(version), nil
	}), nil
}

func (h *Handler) GetCommittedVersion(txh fdbnative.TransactionHandle) (int64, error) {
	var version C.int64_t
	if err := errorFromCode(C.fdb_transaction_get_committed_version(txh.(*C.FDBTransaction), &version)); err != nil {
		return 0, err
	}
	return int64(version), nil
}

func (h *Handler) SetOption(dbh fdbnative.DatabaseHandle, option int, value fdbnative.OptionValue) error {
	return errorFromCode(C.fdb_database_set_option(dbh.(*C.FDBDatabase), C.FDBDatabaseOption(option), optionBytes(value), optionLen(value)))
}

func (h *Handler) SetTransactionOption(txh fdbnative.TransactionHandle, option int, value fdbnative.OptionValue) error {
	return errorFromCode(C.fdb_transaction_set_option(txh.(*C.FDBTransaction), C.FDBTransactionOption(option), optionBytes(value), optionLen(value)))
}

func byteAddr(b []byte) *C.uint8_t {
	if len(b) == 0 {
		return nil
	}
	return (*C.uint8_t)(unsafe.Pointer(&b[0]))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// optionBytes and optionLen render an fdbnative.OptionValue into the
// pointer/length pair every fdb_*_set_option call expects, per the four
// wire shapes in §6 of the spec this module implements (none, text,
// bytes, little-endian int64).
func optionBytes(v fdbnative.OptionValue) *C.uint8_t {
	switch v.Kind {
	case fdbnative.OptionValueText:
		b := []byte(v.Text)
		return byteAddr(b)
	case fdbnative.OptionValueBytes:
		return byteAddr(v.Bytes)
	case fdbnative.OptionValueInt64:
		b := make([]byte, 8)
		for i := 0; i < 8; i++ {
			b[i] = byte(v.Int64 >> (8 * i))
		}
		return byteAddr(b)
	default:
		return nil
	}
}

func optionLen(v fdbnative.OptionValue) C.int {
	switch v.Kind {
	case fdbnative.OptionValueText:
		return C.int(len(v.Text))
	case fdbnative.OptionValueBytes:
		return C.int(len(v.Bytes))
	case fdbnative.OptionValueInt64:
		return 8
	default:
		return 0
	}
}
