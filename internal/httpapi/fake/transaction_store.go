package fake

import (
	"context"
	"sync"

	"relayhub/internal/store"
)

// TransactionStore is a hand-written counterfeiter-shaped fake for
// httpapi.TransactionStore.
type TransactionStore struct {
	mu sync.Mutex

	GetTransactionByHashStub        func(context.Context, string) (store.Transaction, error)
	getTransactionByHashArgsForCall []struct{ txHash string }
	getTransactionByHashReturns     struct {
		result1 store.Transaction
		result2 error
	}

	ListByAccountStub        func(context.Context, string, int, int) ([]store.Transaction, error)
	listByAccountArgsForCall []struct {
		address       string
		limit, offset int
	}
	listByAccountReturns struct {
		result1 []store.Transaction
		result2 error
	}
}

func (f *TransactionStore) GetTransactionByHash(ctx context.Context, txHash string) (store.Transaction, error) {
	f.mu.Lock()
	f.getTransactionByHashArgsForCall = append(f.getTransactionByHashArgsForCall, struct{ txHash string }{txHash})
	f.mu.Unlock()
	if f.GetTransactionByHashStub != nil {
		return f.GetTransactionByHashStub(ctx, txHash)
	}
	return f.getTransactionByHashReturns.result1, f.getTransactionByHashReturns.result2
}

func (f *TransactionStore) GetTransactionByHashReturns(tx store.Transaction, err error) {
	f.GetTransactionByHashStub = nil
	f.getTransactionByHashReturns.result1 = tx
	f.getTransactionByHashReturns.result2 = err
}

func (f *TransactionStore) GetTransactionByHashCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.getTransactionByHashArgsForCall)
}

func (f *TransactionStore) GetTransactionByHashArgsForCall(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getTransactionByHashArgsForCall[i].txHash
}

func (f *TransactionStore) ListByAccount(ctx context.Context, address string, limit, offset int) ([]store.Transaction, error) {
	f.mu.Lock()
	f.listByAccountArgsForCall = append(f.listByAccountArgsForCall, struct {
		address       string
		limit, offset int
	}{address, limit, offset})
	f.mu.Unlock()
	if f.ListByAccountStub != nil {
		return f.ListByAccountStub(ctx, address, limit, offset)
	}
	return f.listByAccountReturns.result1, f.listByAccountReturns.result2
}

func (f *TransactionStore) ListByAccountReturns(txs []store.Transaction, err error) {
	f.ListByAccountStub = nil
	f.listByAccountReturns.result1 = txs
	f.listByAccountReturns.result2 = err
}

func (f *TransactionStore) ListByAccountCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listByAccountArgsForCall)
}
