package mockhandler

import (
	"bytes"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/fdb-go/internal/fdbfuture"
	"github.com/marmos91/fdb-go/internal/fdblog"
	"github.com/marmos91/fdb-go/internal/fdbnative"
)

// Get returns a Future resolving to the value at key, or nil if absent.
func (h *Handler) Get(txh fdbnative.TransactionHandle, key []byte, snapshot bool) (fdbnative.FutureHandle, error) {
	tx := txh.(*transaction)
	fut := fdbfuture.New[any](nil)

	go func() {
		item, err := tx.txn.Get(tx.prefixed(key))
		if err == badger.ErrKeyNotFound {
			fut.Complete([]byte(nil))
			return
		}
		if err != nil {
			fut.Fail(classifyBadgerError(err))
			return
		}
		val, err := item.ValueCopy(nil)
		if err != nil {
			fut.Fail(classifyBadgerError(err))
			return
		}
		fut.Complete(val)
	}()

	return fut, nil
}

// GetRange returns a Future resolving to one RangeResult batch.
func (h *Handler) GetRange(txh fdbnative.TransactionHandle, begin, end []byte, limit int, reverse, snapshot bool) (fdbnative.FutureHandle, error) {
	tx := txh.(*transaction)
	fut := fdbfuture.New[any](nil)

	go func() {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = reverse
		it := tx.txn.NewIterator(opts)
		defer it.Close()

		lo, hi := tx.prefixed(begin), tx.prefixed(end)
		result := &fdbnative.RangeResult{}

		seek := lo
		if reverse {
			seek = hi
		}
		for it.Seek(seek); it.Valid(); it.Next() {
			k := it.Item().KeyCopy(nil)
			if reverse {
				if bytes.Compare(k, lo) < 0 {
					break
				}
				if bytes.Compare(k, hi) >= 0 {
					continue
				}
			} else {
				if bytes.Compare(k, hi) >= 0 {
					break
				}
			}

			if limit > 0 && len(result.Pairs) >= limit {
				result.More = true
				break
			}

			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				fut.Fail(classifyBadgerError(err))
				return
			}

			unprefixed := k
			if tx.tenant != nil {
				unprefixed = k[len(tx.tenant)+1:]
			}
			result.Pairs = append(result.Pairs, fdbnative.KeyValue{Key: unprefixed, Value: v})
		}

		fut.Complete(result)
	}()

	return fut, nil
}

// Set stages a write, visible to later reads in the same transaction.
func (h *Handler) Set(txh fdbnative.TransactionHandle, key, value []byte) error {
	tx := txh.(*transaction)
	return tx.txn.Set(tx.prefixed(key), value)
}

// Clear stages removal of key.
func (h *Handler) Clear(txh fdbnative.TransactionHandle, key []byte) error {
	tx := txh.(*transaction)
	return tx.txn.Delete(tx.prefixed(key))
}

// ClearRange stages removal of every key in [begin, end).
func (h *Handler) ClearRange(txh fdbnative.TransactionHandle, begin, end []byte) error {
	tx := txh.(*transaction)
	lo, hi := tx.prefixed(begin), tx.prefixed(end)

	it := tx.txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	var toDelete [][]byte
	for it.Seek(lo); it.Valid(); it.Next() {
		k := it.Item().KeyCopy(nil)
		if bytes.Compare(k, hi) >= 0 {
			break
		}
		toDelete = append(toDelete, k)
	}
	for _, k := range toDelete {
		if err := tx.txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

// AtomicOp stages an atomic read-modify-write mutation.
func (h *Handler) AtomicOp(txh fdbnative.TransactionHandle, kind fdbnative.AtomicOpKind, key, param []byte) error {
	tx := txh.(*transaction)
	pk := tx.prefixed(key)

	current, err := readCurrent(tx.txn, pk)
	if err != nil {
		return err
	}

	next, err := applyAtomicOp(kind, current, param)
	if err != nil {
		return err
	}
	if next == nil {
		return tx.txn.Delete(pk)
	}
	return tx.txn.Set(pk, next)
}

func readCurrent(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

// Watch returns a Future resolving once key's value changes from its
// value at call time.
func (h *Handler) Watch(txh fdbnative.TransactionHandle, key []byte) (fdbnative.FutureHandle, error) {
	tx := txh.(*transaction)
	pk := tx.prefixed(key)

	current, err := readCurrent(tx.txn, pk)
	if err != nil {
		return nil, err
	}

	fut := fdbfuture.New[any](nil)
	we := &watchEntry{key: pk, after: current, fut: fut}

	tx.db.watchMu.Lock()
	tx.db.watches = append(tx.db.watches, we)
	tx.db.watchMu.Unlock()

	return fut, nil
}

// notifyWatches re-reads every outstanding watch's key against the
// database's current state and resolves those whose value changed since
// the watch was registered.
func (d *database) notifyWatches() {
	d.watchMu.Lock()
	defer d.watchMu.Unlock()

	remaining := d.watches[:0]
	for _, we := range d.watches {
		var current []byte
		_ = d.db.View(func(txn *badger.Txn) error {
			v, err := readCurrent(txn, we.key)
			current = v
			return err
		})

		if !bytes.Equal(current, we.after) {
			we.fut.Complete(nil)
			continue
		}
		remaining = append(remaining, we)
	}
	d.watches = remaining
}

// Commit applies the transaction's staged writes, surfacing a
// retriable NotCommitted error on write-write conflict.
func (h *Handler) Commit(txh fdbnative.TransactionHandle) (fdbnative.FutureHandle, error) {
	tx := txh.(*transaction)
	fut := fdbfuture.New[any](nil)

	go func() {
		if tx.readOnly {
			fut.Complete(nil)
			return
		}

		if err := tx.txn.Commit(); err != nil {
			if err == badger.ErrConflict {
				fut.Fail(fdbnative.NewNotCommittedError())
				return
			}
			fut.Fail(classifyBadgerError(err))
			return
		}

		tx.commitVer = h.versionCtr.Add(1)
		tx.db.notifyWatches()
		fut.Complete(nil)
	}()

	return fut, nil
}

// OnError resolves successfully (transaction reset for another attempt)
// for retriable codes, or re-raises for everything else.
func (h *Handler) OnError(txh fdbnative.TransactionHandle, code int) (fdbnative.FutureHandle, error) {
	tx := txh.(*transaction)
	fut := fdbfuture.New[any](nil)

	go func() {
		if !fdbnative.IsRetriableCode(code) {
			fut.Fail(&fdbnative.NativeError{Code: code, Message: "not retriable"})
			return
		}

		tx.txn.Discard()
		tx.txn = tx.db.db.NewTransaction(true)
		tx.readVer = h.versionCtr.Load()
		fut.Complete(nil)
	}()

	return fut, nil
}

// Cancel discards the transaction's current Badger txn without
// committing.
func (h *Handler) Cancel(txh fdbnative.TransactionHandle) error {
	tx := txh.(*transaction)
	tx.txn.Discard()
	return nil
}

// DisposeTransaction releases txn's Badger resources. Idempotent.
func (h *Handler) DisposeTransaction(txh fdbnative.TransactionHandle) error {
	tx := txh.(*transaction)
	tx.txn.Discard()

	tx.db.mu.Lock()
	delete(tx.db.txns, tx.id)
	tx.db.mu.Unlock()

	return nil
}

// SetReadVersion pins the transaction's read snapshot.
func (h *Handler) SetReadVersion(txh fdbnative.TransactionHandle, version int64) error {
	tx := txh.(*transaction)
	tx.readVer = version
	return nil
}

// GetReadVersion returns a Future resolving to the transaction's current
// read version.
func (h *Handler) GetReadVersion(txh fdbnative.TransactionHandle) (fdbnative.FutureHandle, error) {
	tx := txh.(*transaction)
	fut := fdbfuture.New[any](nil)
	fut.Complete(tx.readVer)
	return fut, nil
}

// GetCommittedVersion returns the version at which txn committed.
func (h *Handler) GetCommittedVersion(txh fdbnative.TransactionHandle) (int64, error) {
	tx := txh.(*transaction)
	return tx.commitVer, nil
}

// SetOption is a no-op for the mock handler beyond logging.
func (h *Handler) SetOption(dbh fdbnative.DatabaseHandle, option int, value fdbnative.OptionValue) error {
	fdblog.Debug("mock handler: set database option", fdblog.KeyNativeCall, "set_option")
	return nil
}

// SetTransactionOption is a no-op for the mock handler beyond logging.
func (h *Handler) SetTransactionOption(txh fdbnative.TransactionHandle, option int, value fdbnative.OptionValue) error {
	fdblog.Debug("mock handler: set transaction option", fdblog.KeyNativeCall, "set_transaction_option")
	return nil
}

func classifyBadgerError(err error) error {
	return &fdbnative.NativeError{Code: -1, Message: err.Error()}
}
