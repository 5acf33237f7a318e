package fake

import (
	"context"
	"sync"
	"time"

	"relayhub/internal/store"
)

// Store is a hand-written counterfeiter-shaped fake for tracker.Store.
type Store struct {
	mu sync.Mutex

	ListPendingStub    func(context.Context) ([]store.Transaction, error)
	listPendingReturns struct {
		result1 []store.Transaction
		result2 error
	}

	TryLockForReconcileStub        func(context.Context, string) (func(), bool, error)
	tryLockArgsForCall             []struct{ txHash string }
	tryLockForReconcileReturns     struct {
		result1 func()
		result2 bool
		result3 error
	}

	UpdateTransactionStatusStub        func(context.Context, string, store.TransactionUpdate) error
	updateTransactionStatusArgsForCall []struct {
		txHash string
		update store.TransactionUpdate
	}
	updateTransactionStatusReturns struct{ result1 error }

	MarkStuckStub        func(context.Context, string, time.Time) error
	markStuckArgsForCall []struct {
		txHash string
		since  time.Time
	}
	markStuckReturns struct{ result1 error }
}

func (f *Store) ListPending(ctx context.Context) ([]store.Transaction, error) {
	if f.ListPendingStub != nil {
		return f.ListPendingStub(ctx)
	}
	return f.listPendingReturns.result1, f.listPendingReturns.result2
}

func (f *Store) ListPendingReturns(txs []store.Transaction, err error) {
	f.ListPendingStub = nil
	f.listPendingReturns.result1, f.listPendingReturns.result2 = txs, err
}

func (f *Store) TryLockForReconcile(ctx context.Context, txHash string) (func(), bool, error) {
	f.mu.Lock()
	f.tryLockArgsForCall = append(f.tryLockArgsForCall, struct{ txHash string }{txHash})
	f.mu.Unlock()
	if f.TryLockForReconcileStub != nil {
		return f.TryLockForReconcileStub(ctx, txHash)
	}
	r := f.tryLockForReconcileReturns
	if r.result1 == nil {
		r.result1 = func() {}
	}
	return r.result1, r.result2, r.result3
}

func (f *Store) TryLockForReconcileReturns(unlock func(), ok bool, err error) {
	f.TryLockForReconcileStub = nil
	f.tryLockForReconcileReturns.result1, f.tryLockForReconcileReturns.result2, f.tryLockForReconcileReturns.result3 = unlock, ok, err
}

func (f *Store) UpdateTransactionStatus(ctx context.Context, txHash string, update store.TransactionUpdate) error {
	f.mu.Lock()
	f.updateTransactionStatusArgsForCall = append(f.updateTransactionStatusArgsForCall, struct {
		txHash string
		update store.TransactionUpdate
	}{txHash, update})
	f.mu.Unlock()
	if f.UpdateTransactionStatusStub != nil {
		return f.UpdateTransactionStatusStub(ctx, txHash, update)
	}
	return f.updateTransactionStatusReturns.result1
}

func (f *Store) UpdateTransactionStatusReturns(err error) {
	f.UpdateTransactionStatusStub = nil
	f.updateTransactionStatusReturns.result1 = err
}

func (f *Store) UpdateTransactionStatusCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updateTransactionStatusArgsForCall)
}

func (f *Store) UpdateTransactionStatusArgsForCall(i int) (string, store.TransactionUpdate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.updateTransactionStatusArgsForCall[i]
	return c.txHash, c.update
}

func (f *Store) MarkStuck(ctx context.Context, txHash string, since time.Time) error {
	f.mu.Lock()
	f.markStuckArgsForCall = append(f.markStuckArgsForCall, struct {
		txHash string
		since  time.Time
	}{txHash, since})
	f.mu.Unlock()
	if f.MarkStuckStub != nil {
		return f.MarkStuckStub(ctx, txHash, since)
	}
	return f.markStuckReturns.result1
}

func (f *Store) MarkStuckCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.markStuckArgsForCall)
}
