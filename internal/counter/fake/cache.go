package fake

import (
	"context"
	"sync"
	"time"

	"relayhub/internal/counter"
	"relayhub/internal/store"
)

// Cache is a hand-written counterfeiter-shaped fake for counter.Cache.
type Cache struct {
	RecordStub        func(context.Context, counter.Key, store.BigInt, time.Time) error
	recordMu          sync.Mutex
	recordArgsForCall []struct {
		key counter.Key
		qty store.BigInt
		at  time.Time
	}
	recordReturns struct {
		result1 error
	}

	SumStub    func(context.Context, counter.Key, time.Duration, time.Time) (store.BigInt, error)
	sumMu      sync.Mutex
	sumArgsForCall []struct {
		key    counter.Key
		window time.Duration
		now    time.Time
	}
	sumReturns struct {
		result1 store.BigInt
		result2 error
	}
}

func (f *Cache) Record(ctx context.Context, key counter.Key, qty store.BigInt, at time.Time) error {
	f.recordMu.Lock()
	defer f.recordMu.Unlock()
	f.recordArgsForCall = append(f.recordArgsForCall, struct {
		key counter.Key
		qty store.BigInt
		at  time.Time
	}{key, qty, at})
	if f.RecordStub != nil {
		return f.RecordStub(ctx, key, qty, at)
	}
	return f.recordReturns.result1
}

func (f *Cache) RecordReturns(result1 error) {
	f.RecordStub = nil
	f.recordReturns = struct{ result1 error }{result1}
}

func (f *Cache) RecordCallCount() int {
	f.recordMu.Lock()
	defer f.recordMu.Unlock()
	return len(f.recordArgsForCall)
}

func (f *Cache) RecordArgsForCall(i int) (counter.Key, store.BigInt, time.Time) {
	f.recordMu.Lock()
	defer f.recordMu.Unlock()
	a := f.recordArgsForCall[i]
	return a.key, a.qty, a.at
}

func (f *Cache) Sum(ctx context.Context, key counter.Key, window time.Duration, now time.Time) (store.BigInt, error) {
	f.sumMu.Lock()
	defer f.sumMu.Unlock()
	f.sumArgsForCall = append(f.sumArgsForCall, struct {
		key    counter.Key
		window time.Duration
		now    time.Time
	}{key, window, now})
	if f.SumStub != nil {
		return f.SumStub(ctx, key, window, now)
	}
	return f.sumReturns.result1, f.sumReturns.result2
}

func (f *Cache) SumReturns(result1 store.BigInt, result2 error) {
	f.SumStub = nil
	f.sumReturns = struct {
		result1 store.BigInt
		result2 error
	}{result1, result2}
}

func (f *Cache) SumCallCount() int {
	f.sumMu.Lock()
	defer f.sumMu.Unlock()
	return len(f.sumArgsForCall)
}

func (f *Cache) SumArgsForCall(i int) (counter.Key, time.Duration, time.Time) {
	f.sumMu.Lock()
	defer f.sumMu.Unlock()
	a := f.sumArgsForCall[i]
	return a.key, a.window, a.now
}

var _ counter.Cache = (*Cache)(nil)
