package allocator

import "context"

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// ChainCounter is the on-chain source of truth the allocator falls back
// to when a cursor is uninitialized or needs resyncing (§4.2). Satisfied
// in production by chain.Client.PendingCount.
//
//counterfeiter:generate -o fake -fake-name ChainCounter . ChainCounter
type ChainCounter interface {
	PendingCount(ctx context.Context, network string, address string) (uint64, error)
}

// CursorStore durably mirrors each cursor so a restart's forced resync
// has a fast local hint before falling back to chain truth (§4.2
// "Cursor persistence survives restart").
//
//counterfeiter:generate -o fake -fake-name CursorStore . CursorStore
type CursorStore interface {
	SaveCursor(ctx context.Context, network, address string, next uint64) error
	LoadCursor(ctx context.Context, network, address string) (next uint64, found bool, err error)
}
