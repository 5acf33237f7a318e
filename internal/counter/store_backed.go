package counter

import (
	"context"
	"time"

	"relayhub/internal/store"
)

// storeBackend is the narrow slice of *store.Store this package needs,
// declared here rather than imported concretely so tests can fake it.
type storeBackend interface {
	RecordCounterEntry(ctx context.Context, dimension, identity, network string, quantity store.BigInt, at time.Time) error
	SumCounterEntries(ctx context.Context, dimension, identity, network string, since time.Time) (store.BigInt, error)
	EvictCounterEntriesBefore(ctx context.Context, cutoff time.Time) error
}

// StoreBacked is the durable Counter Cache variant for multi-instance
// deployments (§4.7), backed by the Store's counter_entries table.
type StoreBacked struct {
	backend    storeBackend
	largestWin time.Duration
}

func NewStoreBacked(backend storeBackend, largestWindow time.Duration) *StoreBacked {
	return &StoreBacked{backend: backend, largestWin: largestWindow}
}

func (s *StoreBacked) Record(ctx context.Context, key Key, qty store.BigInt, at time.Time) error {
	if err := s.backend.RecordCounterEntry(ctx, key.Dimension, key.Identity, key.Network, qty, at); err != nil {
		return err
	}
	if s.largestWin > 0 {
		// Best-effort lazy eviction; a failed sweep just means a later
		// read does more work, never an incorrect sum.
		_ = s.backend.EvictCounterEntriesBefore(ctx, at.Add(-s.largestWin))
	}
	return nil
}

func (s *StoreBacked) Sum(ctx context.Context, key Key, window time.Duration, now time.Time) (store.BigInt, error) {
	return s.backend.SumCounterEntries(ctx, key.Dimension, key.Identity, key.Network, now.Add(-window))
}
