// Package allocator implements the Nonce Allocator (C2): gap-free,
// monotonically increasing sequence numbers per (relayer-address,
// network), serialized per key (§4.2).
package allocator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// ErrStalled marks a persistent failure to read the on-chain pending
// count; the pipeline surfaces this as a retryable error (§4.2, §7).
var ErrStalled = errors.New("allocator-stalled")

// ErrSaturated marks a key whose allocator queue has grown beyond the
// configured threshold; the pipeline rejects new requests rather than
// queueing unboundedly (§5 backpressure).
var ErrSaturated = errors.New("relayer-saturated")

// Key identifies one (relayer-address, network) allocator cursor.
type Key struct {
	Network string
	Address string
}

// Acquired is a single issued sequence number; the holder must call
// Release exactly once, per the pipeline's hold-lock-through-broadcast
// contract (§4.2, §5).
type Acquired struct {
	Value   uint64
	release func(consumed bool)
	done    int32
}

// Release unlocks the per-key allocator lock. consumed=true means the
// value was successfully handed to a broadcast (or persisted as part of
// one); consumed=false means release-unused semantics apply (§4.2): the
// value is reclaimed only if it was the most recently issued one,
// otherwise the gap is left for the confirmation tracker to fill.
func (a *Acquired) Release(consumed bool) {
	if !atomic.CompareAndSwapInt32(&a.done, 0, 1) {
		return
	}
	a.release(consumed)
}

type cursor struct {
	mu          sync.Mutex
	initialized bool
	next        uint64
	waiting     int32
}

// Allocator hands out sequence numbers for any number of (address,
// network) keys, each independently locked (§5: "each cursor is
// protected by its own mutex; no global lock").
type Allocator struct {
	chain ChainCounter
	store CursorStore

	saturationThreshold int

	mu      sync.Mutex
	cursors map[Key]*cursor
}

func New(chainCounter ChainCounter, store CursorStore, saturationThreshold int) *Allocator {
	return &Allocator{
		chain:               chainCounter,
		store:               store,
		saturationThreshold: saturationThreshold,
		cursors:             make(map[Key]*cursor),
	}
}

func (a *Allocator) cursorFor(key Key) *cursor {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.cursors[key]
	if !ok {
		c = &cursor{}
		a.cursors[key] = c
	}
	return c
}

// Acquire hands out the next sequence number for key, blocking other
// callers for the same key until Release is called on the result (§4.2
// tie-break: the lower-numbered caller must broadcast first, enforced by
// holding this lock across sign+broadcast).
func (a *Allocator) Acquire(ctx context.Context, key Key) (*Acquired, error) {
	c := a.cursorFor(key)

	waiting := atomic.AddInt32(&c.waiting, 1)
	if int(waiting) > a.saturationThreshold {
		atomic.AddInt32(&c.waiting, -1)
		return nil, fmt.Errorf("%w: %s/%s", ErrSaturated, key.Network, key.Address)
	}

	c.mu.Lock()
	atomic.AddInt32(&c.waiting, -1)

	if !c.initialized {
		if _, err := a.initialize(ctx, key, c); err != nil {
			c.mu.Unlock()
			return nil, err
		}
	}

	value := c.next
	c.next++

	a.persistCursor(ctx, key, c.next)

	released := false
	release := func(consumed bool) {
		if released {
			return
		}
		released = true
		if !consumed && c.next == value+1 {
			// No further allocation happened since this one was issued:
			// safe to reclaim it (§4.2 release-unused).
			c.next = value
			a.persistCursor(ctx, key, c.next)
		}
		c.mu.Unlock()
	}

	return &Acquired{Value: value, release: release}, nil
}

// initialize fetches the on-chain pending count to seed a brand-new
// cursor (§4.2: "if the cursor is uninitialised, fetch the on-chain
// pending-count and initialise").
func (a *Allocator) initialize(ctx context.Context, key Key, c *cursor) (uint64, error) {
	if a.store != nil {
		if hint, found, err := a.store.LoadCursor(ctx, key.Network, key.Address); err == nil && found {
			c.next = hint
		}
	}

	onChain, err := a.chain.PendingCount(ctx, key.Network, key.Address)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrStalled, err.Error())
	}
	if onChain > c.next {
		c.next = onChain
	}
	c.initialized = true
	return c.next, nil
}

func (a *Allocator) persistCursor(ctx context.Context, key Key, next uint64) {
	if a.store == nil {
		return
	}
	// Best-effort: a failure to durably mirror the cursor does not block
	// allocation, since the authoritative resync path is chain state.
	_ = a.store.SaveCursor(ctx, key.Network, key.Address, next)
}

// Resync sets the cursor to max(cursor, on-chain pending-count), never
// decreasing it (§4.2). Used at boot and by the confirmation tracker
// (C9) after detecting a dropped transaction.
func (a *Allocator) Resync(ctx context.Context, key Key) error {
	c := a.cursorFor(key)
	c.mu.Lock()
	defer c.mu.Unlock()

	onChain, err := a.chain.PendingCount(ctx, key.Network, key.Address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrStalled, err.Error())
	}
	if onChain > c.next {
		c.next = onChain
	}
	c.initialized = true
	a.persistCursor(ctx, key, c.next)
	return nil
}

// Peek returns the next value that would be issued, for diagnostics and
// tests; it does not allocate.
func (a *Allocator) Peek(key Key) (uint64, bool) {
	a.mu.Lock()
	c, ok := a.cursors[key]
	a.mu.Unlock()
	if !ok {
		return 0, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.next, c.initialized
}
