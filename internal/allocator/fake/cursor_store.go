package fake

import (
	"context"
	"sync"
)

type CursorStore struct {
	SaveCursorStub  func(context.Context, string, string, uint64) error
	LoadCursorStub  func(context.Context, string, string) (uint64, bool, error)
	mu              sync.Mutex
	saveCallCount   int
	saveArgsForCall []struct {
		network string
		address string
		next    uint64
	}
	loadReturns struct {
		next  uint64
		found bool
		err   error
	}
}

func (f *CursorStore) SaveCursor(ctx context.Context, network, address string, next uint64) error {
	f.mu.Lock()
	f.saveCallCount++
	f.saveArgsForCall = append(f.saveArgsForCall, struct {
		network string
		address string
		next    uint64
	}{network, address, next})
	stub := f.SaveCursorStub
	f.mu.Unlock()
	if stub != nil {
		return stub(ctx, network, address, next)
	}
	return nil
}

func (f *CursorStore) LoadCursor(ctx context.Context, network, address string) (uint64, bool, error) {
	f.mu.Lock()
	stub := f.LoadCursorStub
	ret := f.loadReturns
	f.mu.Unlock()
	if stub != nil {
		return stub(ctx, network, address)
	}
	return ret.next, ret.found, ret.err
}

func (f *CursorStore) LoadCursorReturns(next uint64, found bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoadCursorStub = nil
	f.loadReturns = struct {
		next  uint64
		found bool
		err   error
	}{next, found, err}
}

func (f *CursorStore) SaveCursorCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saveCallCount
}
