package fdb

import (
	"context"
	"time"

	"github.com/marmos91/fdb-go/internal/fdblog"
)

// SuccessFunc is invoked at most once per retry loop, exactly when a final
// successful outcome is reached (the attempt's handler returned without
// error and, for a read-write operation, commit succeeded) — never for a
// discarded attempt that was retried. It runs while the transaction that
// produced result is still valid, so it may read from the committed
// snapshot before the transaction is disposed, and may replace result with
// a derived final value.
type SuccessFunc func(ctx context.Context, txn *Transaction, result any) (any, error)

// retryContext drives the retry loop described in §4.3: create a
// transaction, invoke the handler, commit (unless read-only), and on a
// retriable failure call OnError and loop, bounded by retry limit, timeout,
// and max retry delay.
type retryContext struct {
	db       *Database
	tenant   *Tenant
	readOnly bool
}

func newContext(db *Database, readOnly bool) *retryContext {
	return &retryContext{db: db, readOnly: readOnly}
}

func newTenantContext(t *Tenant, readOnly bool) *retryContext {
	return &retryContext{db: t.db, tenant: t, readOnly: readOnly}
}

func (c *retryContext) newTransaction() (*Transaction, error) {
	if c.tenant != nil {
		return c.tenant.newTransaction(c.readOnly)
	}
	return c.db.newTransaction(c.readOnly)
}

// run executes fn against successive transaction attempts until it
// succeeds, a non-retriable error propagates, or the retry budget is
// exhausted. Timeout is measured end-to-end across the whole loop.
// onSuccess, if non-nil, runs exactly once, on the attempt that finally
// succeeds.
func (c *retryContext) run(ctx context.Context, fn func(ctx context.Context, txn *Transaction) (any, error), onSuccess SuccessFunc) (any, error) {
	cfg := c.db.cfg
	deadline := time.Now().Add(cfg.Timeout)
	retryDelay := cfg.InitialRetryDelay

	attemptCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	// Closing the Database must interrupt an in-flight operation the same
	// way the caller's own cancellation does.
	stop := context.AfterFunc(c.db.ctx, cancel)
	defer stop()

	var lastErr error
	for attempt := 0; ; attempt++ {
		if attempt > cfg.RetryLimit && cfg.RetryLimit >= 0 {
			c.db.metrics.RecordOutcome("retry_limit_exceeded")
			if lastErr == nil {
				lastErr = NewTransactionTooOldError()
			}
			return nil, lastErr
		}

		lc := fdblog.FromContext(attemptCtx)
		if lc == nil {
			lc = &fdblog.LogContext{}
		}
		attemptCtx = fdblog.WithContext(attemptCtx, lc.WithAttempt(attempt))
		fdblog.DebugCtx(attemptCtx, "retry loop: attempt start", fdblog.Attempt(attempt))

		result, err := c.attempt(attemptCtx, fn, onSuccess)
		if err == nil {
			c.db.metrics.RecordOutcome("success")
			return result, nil
		}
		lastErr = err

		fdbErr, ok := err.(*Error)
		if !ok || !fdbErr.Retriable {
			fdblog.DebugCtx(attemptCtx, "retry loop: fatal", fdblog.Err(err))
			c.db.metrics.RecordOutcome("fatal")
			return nil, err
		}

		if fdbErr.Code == ErrCommitUnknownResult {
			// The write may have already taken effect; report verbatim,
			// never silently retry.
			fdblog.DebugCtx(attemptCtx, "retry loop: commit unknown result")
			c.db.metrics.RecordOutcome("commit_unknown_result")
			return nil, err
		}

		fdblog.DebugCtx(attemptCtx, "retry loop: on_error", fdblog.ErrorCode(int(fdbErr.Code)), fdblog.Retriable(true))
		c.db.metrics.RecordRetry(int(fdbErr.Code))

		select {
		case <-attemptCtx.Done():
			c.db.metrics.RecordOutcome("cancelled")
			return nil, translateCtxErr(attemptCtx.Err())
		case <-time.After(retryDelay):
		}

		retryDelay *= 2
		if retryDelay > cfg.MaxRetryDelay {
			retryDelay = cfg.MaxRetryDelay
		}
	}
}

func (c *retryContext) attempt(ctx context.Context, fn func(ctx context.Context, txn *Transaction) (any, error), onSuccess SuccessFunc) (result any, outErr error) {
	txn, err := c.newTransaction()
	if err != nil {
		return nil, err
	}
	defer func() { _ = txn.Dispose() }()

	if lc := fdblog.FromContext(ctx); lc != nil {
		ctx = fdblog.WithContext(ctx, lc.WithTransactionID(txn.id))
	}

	result, err = fn(ctx, txn)
	if err != nil {
		err = txn.translateError(err)
		if IsCancelled(err) {
			// Cancellation is never negotiated with the engine.
			return nil, err
		}
		if onErrErr := txn.OnError(ctx, err); onErrErr != nil {
			return nil, onErrErr
		}
		// OnError resolved: the underlying error was retriable and the
		// transaction has been reset, but fn already ran against stale
		// state, so this attempt must restart from scratch.
		return nil, err
	}

	if c.readOnly {
		return c.succeed(ctx, txn, result, onSuccess)
	}

	if commitErr := txn.Commit(ctx); commitErr != nil {
		if IsCancelled(commitErr) {
			return nil, commitErr
		}
		if onErrErr := txn.OnError(ctx, commitErr); onErrErr != nil {
			return nil, onErrErr
		}
		return nil, commitErr
	}

	return c.succeed(ctx, txn, result, onSuccess)
}

// succeed runs the optional success callback against the transaction that
// just produced result, while it is still valid (attempt's defer disposes
// it only after this returns).
func (c *retryContext) succeed(ctx context.Context, txn *Transaction, result any, onSuccess SuccessFunc) (any, error) {
	if onSuccess == nil {
		return result, nil
	}
	return onSuccess(ctx, txn, result)
}

// translateCtxErr maps the loop context's error to Cancelled: running out
// of Timeout is reported the same way as a caller cancel or Database.Close.
func translateCtxErr(err error) error {
	return ErrCancelled
}
