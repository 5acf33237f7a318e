package httpapi

import "sync/atomic"

// HealthState tracks whether the Store, Counter Cache, and every
// configured Chain Client have each reported healthy at least once
// (§6: readyz succeeds only once all three have).
type HealthState struct {
	store   atomic.Bool
	counter atomic.Bool
	chains  atomic.Bool
}

func NewHealthState() *HealthState {
	return &HealthState{}
}

func (h *HealthState) MarkStoreHealthy()   { h.store.Store(true) }
func (h *HealthState) MarkCounterHealthy() { h.counter.Store(true) }
func (h *HealthState) MarkChainsHealthy()  { h.chains.Store(true) }

func (h *HealthState) Ready() bool {
	return h.store.Load() && h.counter.Load() && h.chains.Load()
}
