package tracker

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"relayhub/internal/allocator"
	"relayhub/internal/store"
)

var nowFunc = time.Now

// Tracker is the Confirmation Tracker (C9).
type Tracker struct {
	networks Networks
	alloc    Allocator
	store    Store
	logger   *zap.SugaredLogger
	cfg      Config
}

func New(networks Networks, alloc Allocator, st Store, logger *zap.SugaredLogger, cfg Config) *Tracker {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = 15 * time.Second
	}
	if cfg.GraceWindow <= 0 {
		cfg.GraceWindow = 2 * time.Minute
	}
	return &Tracker{networks: networks, alloc: alloc, store: st, logger: logger, cfg: cfg}
}

// Run scans on a fixed interval until ctx is done, the same
// ticker-plus-select shape the policy engine's reload loop uses.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.cfg.ScanInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.ScanOnce(ctx); err != nil {
				t.logger.Errorw("confirmation scan failed", "err", err)
			}
		}
	}
}

// ScanOnce reconciles every currently pending record once (§4.9).
func (t *Tracker) ScanOnce(ctx context.Context) error {
	pending, err := t.store.ListPending(ctx)
	if err != nil {
		return err
	}
	for _, tx := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.reconcileOne(ctx, tx); err != nil {
			t.logger.Errorw("reconcile failed", "tx_hash", tx.TxHash, "err", err)
		}
	}
	return nil
}

// reconcileOne applies the §4.9 decision tree to a single record, under
// the Store's advisory lock so a second tracker instance never races the
// same record (§4.9: "single-instance-safe").
func (t *Tracker) reconcileOne(ctx context.Context, tx store.Transaction) error {
	unlock, ok, err := t.store.TryLockForReconcile(ctx, tx.TxHash)
	if err != nil {
		return err
	}
	if !ok {
		// Another worker already holds this record.
		return nil
	}
	defer unlock()

	client, err := t.networks.Client(tx.Network)
	if err != nil {
		return err
	}

	receipt, err := client.Receipt(ctx, common.HexToHash(tx.TxHash))
	if err != nil {
		return err
	}

	if receipt != nil {
		return t.reconcileMined(ctx, tx, receipt.Status, receipt.BlockNumber, receipt.GasUsed)
	}

	age := nowFunc().Sub(tx.SubmittedAt)
	if age < t.cfg.GraceWindow {
		return nil
	}

	pendingCount, err := client.PendingCount(ctx, common.HexToAddress(tx.RelayerAddress))
	if err != nil {
		return err
	}
	if pendingCount > tx.SequenceNumber {
		return t.reconcileDropped(ctx, tx)
	}
	return t.reconcileStuck(ctx, tx)
}

func (t *Tracker) reconcileMined(ctx context.Context, tx store.Transaction, status, blockNumber, gasUsed uint64) error {
	final := store.StatusFailed
	if status == 1 {
		final = store.StatusConfirmed
	}
	block := blockNumber
	used := gasUsed
	return t.store.UpdateTransactionStatus(ctx, tx.TxHash, store.TransactionUpdate{
		Status:          final,
		ObservedGasUsed: &used,
		BlockNumber:     &block,
		ClearStuckSince: true,
	})
}

// reconcileDropped marks a record dropped once the chain has advanced
// past its sequence number without ever mining it -- a sibling
// submission consumed that slot instead (§4.9) -- and resyncs the
// allocator so future allocations reflect the gap.
func (t *Tracker) reconcileDropped(ctx context.Context, tx store.Transaction) error {
	if err := t.store.UpdateTransactionStatus(ctx, tx.TxHash, store.TransactionUpdate{
		Status:          store.StatusDropped,
		ClearStuckSince: true,
	}); err != nil {
		return err
	}
	return t.alloc.Resync(ctx, allocator.Key{Network: tx.Network, Address: tx.RelayerAddress})
}

// reconcileStuck leaves the record pending but stamps stuck-since for
// operator visibility (§4.9: "represented in DB as pending plus a
// stuck-since timestamp").
func (t *Tracker) reconcileStuck(ctx context.Context, tx store.Transaction) error {
	if tx.StuckSince != nil {
		return nil
	}
	t.logger.Warnw("transaction stuck", "tx_hash", tx.TxHash, "network", tx.Network, "sequence_number", tx.SequenceNumber)
	return t.store.MarkStuck(ctx, tx.TxHash, nowFunc())
}
