package fdb

import (
	"context"
	"sync"

	"github.com/marmos91/fdb-go/internal/fdbauth"
	"github.com/marmos91/fdb-go/internal/fdbconfig"
	"github.com/marmos91/fdb-go/internal/fdblog"
	"github.com/marmos91/fdb-go/internal/fdbmetrics"
	"github.com/marmos91/fdb-go/internal/fdbnative"
	"github.com/marmos91/fdb-go/internal/fdbnative/logging"
	"github.com/marmos91/fdb-go/internal/fdbnative/mockhandler"
	"github.com/marmos91/fdb-go/internal/fdbnative/realhandler"
)

// Database is the entry point for every transactional operation against a
// cluster. It owns the native Handler, the default retry-loop parameters,
// and the registries of live transactions and tenants.
type Database struct {
	handler fdbnative.Handler
	dbh     fdbnative.DatabaseHandle
	cfg     fdbconfig.Config
	metrics *fdbmetrics.Metrics

	mu     sync.RWMutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc

	tenantsMu sync.RWMutex
	tenants   map[string]*Tenant

	// transactionsMu guards transactions, the registry of transactionId ->
	// Transaction for every live transaction opened directly against this
	// Database (not through a Tenant; those register with the Tenant
	// instead, per newTransaction on Tenant).
	transactionsMu sync.RWMutex
	transactions   map[uint64]*Transaction

	// authIssuer, when set, mints a signed authorization token for every
	// tenant transaction, attached via SetTransactionOption before the
	// transaction is handed to caller code.
	authIssuer *fdbauth.Issuer
}

// Option customizes Database.Open beyond what Config specifies.
type Option func(*Database)

// WithMetrics makes the retry loop record its outcomes and retry reasons
// into m, built and registered with fdbmetrics.New.
func WithMetrics(m *fdbmetrics.Metrics) Option {
	return func(d *Database) { d.metrics = m }
}

// WithHandler overrides the Handler Open would otherwise select from
// Config.Mock; used by tests that need direct access to the underlying
// mock for fault injection.
func WithHandler(h fdbnative.Handler) Option {
	return func(d *Database) { d.handler = h }
}

// WithAuthIssuer enables per-tenant authorization tokens: every
// transaction opened against a Tenant carries a freshly signed token
// naming that tenant, attached via
// fdbnative.TransactionOptionAuthorizationToken.
func WithAuthIssuer(issuer *fdbauth.Issuer) Option {
	return func(d *Database) { d.authIssuer = issuer }
}

// Open resolves a Handler per cfg (the mock handler when cfg.Mock is true;
// otherwise the real cgo binding, failing with InvalidArgument when none
// was built in), applies defaults, and opens a database against cfg's
// cluster file or connection string.
func Open(ctx context.Context, cfg fdbconfig.Config, opts ...Option) (*Database, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, NewInvalidArgumentError(err.Error())
	}

	dbCtx, cancel := context.WithCancel(ctx)
	db := &Database{
		cfg:          cfg,
		ctx:          dbCtx,
		cancel:       cancel,
		tenants:      make(map[string]*Tenant),
		transactions: make(map[uint64]*Transaction),
		metrics:      fdbmetrics.NoOp(),
	}

	for _, opt := range opts {
		opt(db)
	}

	if db.handler == nil {
		var handler fdbnative.Handler
		if !cfg.Mock && realhandler.Available {
			var resolveErr error
			handler, resolveErr = realhandler.New()
			if resolveErr != nil {
				cancel()
				return nil, NewInvalidArgumentError(resolveErr.Error())
			}
		} else if !cfg.Mock {
			cancel()
			return nil, NewInvalidArgumentError("no real native handler is available in this build; set Config.Mock to true")
		} else {
			handler = mockhandler.New()
		}
		if cfg.LogNativeCalls {
			handler = logging.Wrap(handler)
		}
		db.handler = handler
	}

	dbh, err := db.handler.CreateDatabase(dbCtx, cfg.ClusterFilePath, cfg.ConnectionString, cfg.APIVersion)
	if err != nil {
		cancel()
		return nil, db.translateOpenError(err)
	}
	db.dbh = dbh

	if err := db.applyStaticOptions(); err != nil {
		_ = db.handler.CloseDatabase(dbh)
		cancel()
		return nil, err
	}

	fdblog.Info("database opened", fdblog.Cluster(cfg.ClusterFilePath))
	return db, nil
}

// applyStaticOptions forwards the Config-driven native options (trace, TLS)
// right after the database handle is created, before any transaction can
// exist.
func (db *Database) applyStaticOptions() error {
	if db.cfg.TraceEnabled {
		if err := db.SetOption(fdbnative.DatabaseOptionTraceEnable, TextOption(db.cfg.TracePath)); err != nil {
			return err
		}
	}
	if tls := db.cfg.TLS; tls != nil {
		for _, opt := range []struct {
			code int
			path string
		}{
			{fdbnative.DatabaseOptionTLSCertPath, tls.CertPath},
			{fdbnative.DatabaseOptionTLSKeyPath, tls.KeyPath},
			{fdbnative.DatabaseOptionTLSCAPath, tls.CAPath},
		} {
			if opt.path == "" {
				continue
			}
			if err := db.SetOption(opt.code, TextOption(opt.path)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (db *Database) translateOpenError(err error) error {
	if err == nil {
		return nil
	}
	if nativeErr, ok := err.(*fdbnative.NativeError); ok {
		return fromNativeCode(nativeErr.Code, nativeErr.Message)
	}
	return NewInvalidArgumentError(err.Error())
}

// Close releases the database's native resources and cancels every
// in-flight operation. Idempotent; operations after Close fail with
// ObjectDisposed.
func (db *Database) Close() error {
	db.mu.Lock()
	if db.closed {
		db.mu.Unlock()
		return nil
	}
	db.closed = true
	db.mu.Unlock()

	db.cancel()
	return db.handler.CloseDatabase(db.dbh)
}

func (db *Database) checkOpen() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if db.closed {
		return NewObjectDisposedError()
	}
	return nil
}

// OpenTenant resolves (creating if necessary) a byte-named tenant
// namespace within this database.
func (db *Database) OpenTenant(name []byte) (*Tenant, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	key := string(name)

	db.tenantsMu.RLock()
	if t, ok := db.tenants[key]; ok {
		db.tenantsMu.RUnlock()
		return t, nil
	}
	db.tenantsMu.RUnlock()

	db.tenantsMu.Lock()
	defer db.tenantsMu.Unlock()

	if t, ok := db.tenants[key]; ok {
		return t, nil
	}

	th, err := db.handler.OpenTenant(db.dbh, name)
	if err != nil {
		return nil, db.translateOpenError(err)
	}

	t := newTenant(db, name, th)
	db.tenants[key] = t
	return t, nil
}

// registerTransaction adds t to the transactionId -> Transaction registry.
func (db *Database) registerTransaction(t *Transaction) {
	db.transactionsMu.Lock()
	db.transactions[t.id] = t
	db.transactionsMu.Unlock()
}

// deregisterTransaction removes the transaction with the given id from the
// registry; called once from Transaction.Dispose.
func (db *Database) deregisterTransaction(id uint64) {
	db.transactionsMu.Lock()
	delete(db.transactions, id)
	db.transactionsMu.Unlock()
}

func (db *Database) newTransaction(readOnly bool) (*Transaction, error) {
	if err := db.checkOpen(); err != nil {
		return nil, err
	}
	handle, err := db.handler.CreateTransaction(db.dbh)
	if err != nil {
		return nil, db.translateOpenError(err)
	}
	t := newTransaction(db, handle, readOnly)
	db.registerTransaction(t)
	t.deregister = func() { db.deregisterTransaction(t.id) }
	return t, nil
}

// CreateTransaction allocates a read-write transaction outside the retry
// loop. The caller owns it: commit errors are not retried automatically,
// and Dispose must be called when done. Most callers want Read/Write
// instead.
func (db *Database) CreateTransaction() (*Transaction, error) {
	return db.newTransaction(false)
}

// Read runs fn against a fresh read-only transaction, retrying on
// retriable errors per the database's configured retry parameters.
func (db *Database) Read(ctx context.Context, fn func(ctx context.Context, t *Transaction) (any, error)) (any, error) {
	return newContext(db, true).run(ctx, fn, nil)
}

// Write runs fn against a fresh read-write transaction and commits it,
// retrying the whole attempt (including fn) on retriable errors.
func (db *Database) Write(ctx context.Context, fn func(ctx context.Context, t *Transaction) (any, error)) (any, error) {
	return newContext(db, false).run(ctx, fn, nil)
}

// WriteWith is Write plus a success callback: onSuccess runs exactly once,
// against the attempt whose commit finally succeeded and before that
// attempt's transaction is disposed, so it may read the committed snapshot
// (e.g. GetCommittedVersion) or replace the result with a derived value.
func (db *Database) WriteWith(ctx context.Context, fn func(ctx context.Context, t *Transaction) (any, error), onSuccess SuccessFunc) (any, error) {
	return newContext(db, false).run(ctx, fn, onSuccess)
}

// ReadWith is Read plus a success callback, with the same at-most-once
// contract as WriteWith.
func (db *Database) ReadWith(ctx context.Context, fn func(ctx context.Context, t *Transaction) (any, error), onSuccess SuccessFunc) (any, error) {
	return newContext(db, true).run(ctx, fn, onSuccess)
}

// ReadWrite is an alias of Write kept for parity with the store's own
// read/write/read_write trio.
func (db *Database) ReadWrite(ctx context.Context, fn func(ctx context.Context, t *Transaction) (any, error)) (any, error) {
	return db.Write(ctx, fn)
}

// SetOption forwards a database-scoped native option.
func (db *Database) SetOption(option int, value fdbnative.OptionValue) error {
	return db.translateOpenError(db.handler.SetOption(db.dbh, option, value))
}
