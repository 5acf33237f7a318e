package fake

import "sync"

// Health is a hand-written counterfeiter-shaped fake for httpapi.Health.
type Health struct {
	mu sync.Mutex

	ReadyStub    func() bool
	readyReturns struct{ result1 bool }
}

func (f *Health) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReadyStub != nil {
		return f.ReadyStub()
	}
	return f.readyReturns.result1
}

func (f *Health) ReadyReturns(ready bool) {
	f.ReadyStub = nil
	f.readyReturns.result1 = ready
}
