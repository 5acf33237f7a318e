package fake

import "sync"

// PolicyReloader is a hand-written counterfeiter-shaped fake for
// httpapi.PolicyReloader.
type PolicyReloader struct {
	mu sync.Mutex

	SignalStub      func()
	signalCallCount int
}

func (f *PolicyReloader) Signal() {
	f.mu.Lock()
	f.signalCallCount++
	f.mu.Unlock()
	if f.SignalStub != nil {
		f.SignalStub()
	}
}

func (f *PolicyReloader) SignalCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signalCallCount
}
