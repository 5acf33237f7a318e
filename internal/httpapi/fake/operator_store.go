package fake

import (
	"context"
	"sync"

	"relayhub/internal/store"
)

// OperatorStore is a hand-written counterfeiter-shaped fake for
// httpapi.OperatorStore.
type OperatorStore struct {
	mu sync.Mutex

	GetOperatorByUsernameStub        func(context.Context, string) (store.Operator, error)
	getOperatorByUsernameArgsForCall []struct{ username string }
	getOperatorByUsernameReturns     struct {
		result1 store.Operator
		result2 error
	}
}

func (f *OperatorStore) GetOperatorByUsername(ctx context.Context, username string) (store.Operator, error) {
	f.mu.Lock()
	f.getOperatorByUsernameArgsForCall = append(f.getOperatorByUsernameArgsForCall, struct{ username string }{username})
	f.mu.Unlock()
	if f.GetOperatorByUsernameStub != nil {
		return f.GetOperatorByUsernameStub(ctx, username)
	}
	return f.getOperatorByUsernameReturns.result1, f.getOperatorByUsernameReturns.result2
}

func (f *OperatorStore) GetOperatorByUsernameReturns(op store.Operator, err error) {
	f.GetOperatorByUsernameStub = nil
	f.getOperatorByUsernameReturns.result1 = op
	f.getOperatorByUsernameReturns.result2 = err
}
