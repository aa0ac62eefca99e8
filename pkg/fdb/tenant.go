package fdb

import (
	"context"
	"sync"

	"github.com/marmos91/fdb-go/internal/fdbnative"
)

// Tenant is a byte-named namespace acting as a transaction factory;
// transactions born of a Tenant carry a tenant back-reference and are
// registered with (and deregistered from) the Tenant rather than the
// owning Database.
type Tenant struct {
	db     *Database
	name   []byte
	handle fdbnative.TenantHandle

	transactionsMu sync.RWMutex
	transactions   map[uint64]*Transaction
}

func newTenant(db *Database, name []byte, handle fdbnative.TenantHandle) *Tenant {
	return &Tenant{
		db:           db,
		name:         append([]byte{}, name...),
		handle:       handle,
		transactions: make(map[uint64]*Transaction),
	}
}

// Name returns the tenant's byte-sequence name.
func (t *Tenant) Name() []byte {
	return append([]byte{}, t.name...)
}

// registerTransaction adds txn to this tenant's transactionId -> Transaction
// registry.
func (t *Tenant) registerTransaction(txn *Transaction) {
	t.transactionsMu.Lock()
	t.transactions[txn.id] = txn
	t.transactionsMu.Unlock()
}

// deregisterTransaction removes the transaction with the given id from the
// registry; called once from Transaction.Dispose.
func (t *Tenant) deregisterTransaction(id uint64) {
	t.transactionsMu.Lock()
	delete(t.transactions, id)
	t.transactionsMu.Unlock()
}

func (t *Tenant) newTransaction(readOnly bool) (*Transaction, error) {
	handle, err := t.db.handler.CreateTenantTransaction(t.handle)
	if err != nil {
		return nil, t.db.translateOpenError(err)
	}

	if t.db.authIssuer != nil {
		token, err := t.db.authIssuer.Issue(string(t.name))
		if err != nil {
			_ = t.db.handler.DisposeTransaction(handle)
			return nil, NewInvalidArgumentError(err.Error())
		}
		opt := fdbnative.OptionValue{Kind: fdbnative.OptionValueBytes, Bytes: []byte(token)}
		if err := t.db.handler.SetTransactionOption(handle, fdbnative.TransactionOptionAuthorizationToken, opt); err != nil {
			_ = t.db.handler.DisposeTransaction(handle)
			return nil, t.db.translateOpenError(err)
		}
	}

	txn := newTransaction(t.db, handle, readOnly)
	t.registerTransaction(txn)
	txn.deregister = func() { t.deregisterTransaction(txn.id) }
	return txn, nil
}

// Read runs fn against a fresh read-only transaction scoped to this
// tenant, retrying on retriable errors.
func (t *Tenant) Read(ctx context.Context, fn func(ctx context.Context, txn *Transaction) (any, error)) (any, error) {
	return newTenantContext(t, true).run(ctx, fn, nil)
}

// Write runs fn against a fresh read-write transaction scoped to this
// tenant and commits it, retrying the whole attempt on retriable errors.
func (t *Tenant) Write(ctx context.Context, fn func(ctx context.Context, txn *Transaction) (any, error)) (any, error) {
	return newTenantContext(t, false).run(ctx, fn, nil)
}

// WriteWith is Write plus a success callback, with the same at-most-once
// contract as Database.WriteWith.
func (t *Tenant) WriteWith(ctx context.Context, fn func(ctx context.Context, txn *Transaction) (any, error), onSuccess SuccessFunc) (any, error) {
	return newTenantContext(t, false).run(ctx, fn, onSuccess)
}
