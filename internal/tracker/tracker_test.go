package tracker_test

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"relayhub/internal/allocator"
	"relayhub/internal/chain"
	chainfake "relayhub/internal/chain/fake"
	"relayhub/internal/store"
	"relayhub/internal/tracker"
	"relayhub/internal/tracker/fake"
)

var _ = Describe("Tracker", func() {
	var (
		rpc      *chainfake.RPC
		client   *chain.Client
		networks *fake.Networks
		alloc    *fake.Allocator
		st       *fake.Store
		trk      *tracker.Tracker
		tx       store.Transaction
	)

	BeforeEach(func() {
		rpc = new(chainfake.RPC)
		client = chain.New("localhost", big.NewInt(31337), rpc, chain.DefaultRetryPolicy())
		networks = fake.NewNetworks()
		networks.Register("localhost", client)

		alloc = new(fake.Allocator)
		st = new(fake.Store)
		st.TryLockForReconcileReturns(func() {}, true, nil)

		trk = tracker.New(networks, alloc, st, zap.NewNop().Sugar(), tracker.Config{
			ScanInterval: time.Hour,
			GraceWindow:  time.Minute,
		})

		tx = store.Transaction{
			TxHash:         "0x" + "ab",
			Network:        "localhost",
			RelayerAddress: "0x000000000000000000000000000000000000fa00",
			SequenceNumber: 5,
			SubmittedAt:    time.Now(),
			Status:         string(store.StatusPending),
		}
	})

	It("marks a record confirmed when the receipt shows success", func() {
		rpc.TransactionReceiptReturns(&types.Receipt{Status: 1, BlockNumber: big.NewInt(100), GasUsed: 21000}, nil)
		st.ListPendingReturns([]store.Transaction{tx}, nil)

		Expect(trk.ScanOnce(context.Background())).To(Succeed())
		Expect(st.UpdateTransactionStatusCallCount()).To(Equal(1))
		txHash, update := st.UpdateTransactionStatusArgsForCall(0)
		Expect(txHash).To(Equal(tx.TxHash))
		Expect(update.Status).To(Equal(store.StatusConfirmed))
	})

	It("marks a record failed when the receipt shows a revert", func() {
		rpc.TransactionReceiptReturns(&types.Receipt{Status: 0, BlockNumber: big.NewInt(100), GasUsed: 21000}, nil)
		st.ListPendingReturns([]store.Transaction{tx}, nil)

		Expect(trk.ScanOnce(context.Background())).To(Succeed())
		_, update := st.UpdateTransactionStatusArgsForCall(0)
		Expect(update.Status).To(Equal(store.StatusFailed))
	})

	It("leaves a record pending when there is no receipt and the grace window has not elapsed", func() {
		rpc.TransactionReceiptReturns(nil, nil)
		st.ListPendingReturns([]store.Transaction{tx}, nil)

		Expect(trk.ScanOnce(context.Background())).To(Succeed())
		Expect(st.UpdateTransactionStatusCallCount()).To(Equal(0))
		Expect(st.MarkStuckCallCount()).To(Equal(0))
	})

	It("marks a record dropped once the chain advances past its sequence number", func() {
		aged := tx
		aged.SubmittedAt = time.Now().Add(-time.Hour)
		rpc.TransactionReceiptReturns(nil, nil)
		rpc.PendingNonceAtReturns(9, nil)
		st.ListPendingReturns([]store.Transaction{aged}, nil)

		Expect(trk.ScanOnce(context.Background())).To(Succeed())
		_, update := st.UpdateTransactionStatusArgsForCall(0)
		Expect(update.Status).To(Equal(store.StatusDropped))
		Expect(alloc.ResyncCallCount()).To(Equal(1))
		Expect(alloc.ResyncArgsForCall(0)).To(Equal(allocator.Key{Network: "localhost", Address: aged.RelayerAddress}))
	})

	It("marks a record stuck when the grace window elapses and the chain has not advanced", func() {
		aged := tx
		aged.SubmittedAt = time.Now().Add(-time.Hour)
		rpc.TransactionReceiptReturns(nil, nil)
		rpc.PendingNonceAtReturns(aged.SequenceNumber, nil)
		st.ListPendingReturns([]store.Transaction{aged}, nil)

		Expect(trk.ScanOnce(context.Background())).To(Succeed())
		Expect(st.MarkStuckCallCount()).To(Equal(1))
		Expect(st.UpdateTransactionStatusCallCount()).To(Equal(0))
	})

	It("skips a record another worker already holds the advisory lock for", func() {
		st.TryLockForReconcileReturns(nil, false, nil)
		st.ListPendingReturns([]store.Transaction{tx}, nil)

		Expect(trk.ScanOnce(context.Background())).To(Succeed())
		Expect(st.UpdateTransactionStatusCallCount()).To(Equal(0))
		Expect(rpc.TransactionReceiptCallCount()).To(Equal(0))
	})
})
