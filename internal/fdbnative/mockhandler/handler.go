// Package mockhandler implements internal/fdbnative.Handler against an
// embedded BadgerDB instance, used by every test in this module and by
// `fdbctl --mock`. It provides snapshot isolation and write-write
// conflict detection (surfaced as NotCommitted) well
// enough to exercise the retry loop deterministically, the way the
// teacher's BadgerMetadataStore exercises Badger's own Txn/iterator API.
package mockhandler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/marmos91/fdb-go/internal/fdbfuture"
	"github.com/marmos91/fdb-go/internal/fdblog"
	"github.com/marmos91/fdb-go/internal/fdbnative"
)

// Handler is the in-memory fdbnative.Handler implementation.
type Handler struct {
	mu         sync.RWMutex
	databases  map[*database]struct{}
	nextTxnID  atomic.Uint64
	versionCtr atomic.Int64
}

// New returns an empty mock Handler. Each CreateDatabase call opens its
// own independent embedded store, keyed by an in-memory (or on-disk, if
// dir is non-empty) BadgerDB instance.
func New() *Handler {
	return &Handler{databases: make(map[*database]struct{})}
}

type database struct {
	db      *badger.DB
	dir     string
	tenants map[string]*tenant
	txns    map[uint64]*transaction
	mu      sync.RWMutex
	watches []*watchEntry
	watchMu sync.Mutex
}

type tenant struct {
	name []byte
	db   *database
}

type watchEntry struct {
	key   []byte
	after []byte // value observed at watch time; nil means "was absent"
	fut   *fdbfuture.Future[any]
}

type transaction struct {
	id        uint64
	db        *database
	tenant    []byte // key prefix, nil for the default keyspace
	txn       *badger.Txn
	readOnly  bool
	readVer   int64
	commitVer int64
}

var _ fdbnative.Handler = (*Handler)(nil)

// CreateDatabase opens (or creates) an embedded Badger instance. An empty
// clusterFilePath/connectionString pair opens an in-memory store;
// otherwise clusterFilePath names the on-disk directory to use.
func (h *Handler) CreateDatabase(ctx context.Context, clusterFilePath, connectionString string, apiVersion int) (fdbnative.DatabaseHandle, error) {
	if connectionString != "" && apiVersion < 720 {
		return nil, &fdbnative.NativeError{Code: fdbnative.NativeCodeUnsupportedAPIVersion, Message: "connection strings require API version >= 720"}
	}

	opts := badger.DefaultOptions("").WithInMemory(true).WithLoggingLevel(badger.ERROR)
	if clusterFilePath != "" {
		opts = badger.DefaultOptions(clusterFilePath).WithInMemory(false).WithLoggingLevel(badger.ERROR)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("mockhandler: open badger: %w", err)
	}

	d := &database{
		db:      db,
		dir:     clusterFilePath,
		tenants: make(map[string]*tenant),
		txns:    make(map[uint64]*transaction),
	}

	h.mu.Lock()
	h.databases[d] = struct{}{}
	h.mu.Unlock()

	fdblog.Debug("mock handler: database opened", fdblog.KeyCluster, clusterFilePath)
	return d, nil
}

// CloseDatabase releases db's embedded Badger instance.
func (h *Handler) CloseDatabase(dbh fdbnative.DatabaseHandle) error {
	d := dbh.(*database)

	h.mu.Lock()
	delete(h.databases, d)
	h.mu.Unlock()

	return d.db.Close()
}

// OpenTenant resolves a byte-named tenant within db's keyspace.
func (h *Handler) OpenTenant(dbh fdbnative.DatabaseHandle, name []byte) (fdbnative.TenantHandle, error) {
	d := dbh.(*database)
	key := string(name)

	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.tenants[key]; ok {
		return t, nil
	}
	t := &tenant{name: append([]byte{}, name...), db: d}
	d.tenants[key] = t
	return t, nil
}

// CreateTransaction allocates a new transaction against db's default
// keyspace.
func (h *Handler) CreateTransaction(dbh fdbnative.DatabaseHandle) (fdbnative.TransactionHandle, error) {
	d := dbh.(*database)
	return h.newTransaction(d, nil)
}

// CreateTenantTransaction allocates a transaction scoped to tenant's
// key prefix.
func (h *Handler) CreateTenantTransaction(th fdbnative.TenantHandle) (fdbnative.TransactionHandle, error) {
	t := th.(*tenant)
	return h.newTransaction(t.db, t.name)
}

func (h *Handler) newTransaction(d *database, tenantPrefix []byte) (*transaction, error) {
	id := h.nextTxnID.Add(1)
	tx := &transaction{
		id:      id,
		db:      d,
		tenant:  tenantPrefix,
		txn:     d.db.NewTransaction(true),
		readVer: h.versionCtr.Load(),
	}

	d.mu.Lock()
	d.txns[id] = tx
	d.mu.Unlock()

	return tx, nil
}

func (tx *transaction) prefixed(key []byte) []byte {
	if tx.tenant == nil {
		return key
	}
	out := make([]byte, 0, len(tx.tenant)+1+len(key))
	out = append(out, tx.tenant...)
	out = append(out, 0x00)
	out = append(out, key...)
	return out
}
