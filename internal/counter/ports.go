// Package counter implements the Counter Cache (C7): sliding-window
// (count, value) accounting keyed by (dimension, identity, network),
// consulted hypothetically by the Policy Engine's quota rules and
// incremented by the Relay Pipeline on broadcast success.
package counter

import (
	"context"
	"time"

	"relayhub/internal/store"
)

// Key identifies one sliding window.
type Key struct {
	Dimension string
	Identity  string
	Network   string
}

// Cache is the shared port both the in-memory and store-backed
// implementations satisfy (§4.7).
//
//counterfeiter:generate -o fake -fake-name Cache . Cache
type Cache interface {
	Record(ctx context.Context, key Key, qty store.BigInt, at time.Time) error
	Sum(ctx context.Context, key Key, window time.Duration, now time.Time) (store.BigInt, error)
}
