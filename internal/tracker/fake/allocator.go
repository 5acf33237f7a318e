package fake

import (
	"context"
	"sync"

	"relayhub/internal/allocator"
)

// Allocator is a hand-written counterfeiter-shaped fake for
// tracker.Allocator.
type Allocator struct {
	mu sync.Mutex

	ResyncStub        func(context.Context, allocator.Key) error
	resyncArgsForCall []struct{ key allocator.Key }
	resyncReturns     struct{ result1 error }
}

func (f *Allocator) Resync(ctx context.Context, key allocator.Key) error {
	f.mu.Lock()
	f.resyncArgsForCall = append(f.resyncArgsForCall, struct{ key allocator.Key }{key})
	f.mu.Unlock()
	if f.ResyncStub != nil {
		return f.ResyncStub(ctx, key)
	}
	return f.resyncReturns.result1
}

func (f *Allocator) ResyncReturns(err error) {
	f.ResyncStub = nil
	f.resyncReturns.result1 = err
}

func (f *Allocator) ResyncCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.resyncArgsForCall)
}

func (f *Allocator) ResyncArgsForCall(i int) allocator.Key {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resyncArgsForCall[i].key
}
