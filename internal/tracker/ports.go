// Package tracker implements the Confirmation Tracker (C9): a periodic
// scan of pending Transaction Records that reconciles each against chain
// state (§4.9). The poll-loop shape is grounded on the policy package's
// reload loop and, further back, on pvzzle-scanblock's ethwatch watcher
// (a ctx-cancellable select loop) -- adapted here from block subscription
// to a ticker, since §4.9 calls for a periodic scan rather than a live
// feed.
package tracker

import (
	"context"
	"time"

	"relayhub/internal/allocator"
	"relayhub/internal/chain"
	"relayhub/internal/store"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// Networks resolves a network name to its chain client.
//
//counterfeiter:generate -o fake -fake-name Networks . Networks
type Networks interface {
	Client(network string) (*chain.Client, error)
}

// Allocator is the narrow slice of the Nonce Allocator (C2) the tracker
// needs: resyncing a cursor once a drop is detected (§4.9).
//
//counterfeiter:generate -o fake -fake-name Allocator . Allocator
type Allocator interface {
	Resync(ctx context.Context, key allocator.Key) error
}

// Store is the narrow slice of the Store (C6) the tracker needs.
//
//counterfeiter:generate -o fake -fake-name Store . Store
type Store interface {
	ListPending(ctx context.Context) ([]store.Transaction, error)
	TryLockForReconcile(ctx context.Context, txHash string) (unlock func(), ok bool, err error)
	UpdateTransactionStatus(ctx context.Context, txHash string, update store.TransactionUpdate) error
	MarkStuck(ctx context.Context, txHash string, since time.Time) error
}

// Config bounds the scan cadence and the dropped/stuck grace window
// (§6 configuration: "confirmation scan interval; grace window for the
// dropped-state transition").
type Config struct {
	ScanInterval time.Duration
	GraceWindow  time.Duration
}
