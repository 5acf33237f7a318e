package fake

import (
	"context"
	"math/big"
	"sync"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// RPC is a hand-written counterfeiter-shaped fake for chain.RPC.
type RPC struct {
	mu sync.Mutex

	HeaderByNumberStub func(context.Context, *big.Int) (*types.Header, error)
	headerByNumberReturns struct {
		result1 *types.Header
		result2 error
	}

	PendingNonceAtStub func(context.Context, common.Address) (uint64, error)
	pendingNonceAtReturns struct {
		result1 uint64
		result2 error
	}

	SuggestGasPriceStub func(context.Context) (*big.Int, error)
	suggestGasPriceReturns struct {
		result1 *big.Int
		result2 error
	}

	EstimateGasStub func(context.Context, ethereum.CallMsg) (uint64, error)
	estimateGasReturns struct {
		result1 uint64
		result2 error
	}

	CallContractStub func(context.Context, ethereum.CallMsg, *big.Int) ([]byte, error)
	callContractReturns struct {
		result1 []byte
		result2 error
	}

	SendTransactionStub func(context.Context, *types.Transaction) error
	sendTransactionArgsForCall []struct {
		tx *types.Transaction
	}
	sendTransactionReturns struct {
		result1 error
	}

	TransactionReceiptStub func(context.Context, common.Hash) (*types.Receipt, error)
	transactionReceiptArgsForCall []struct {
		txHash common.Hash
	}
	transactionReceiptReturns struct {
		result1 *types.Receipt
		result2 error
	}

	NetworkIDStub func(context.Context) (*big.Int, error)
	networkIDReturns struct {
		result1 *big.Int
		result2 error
	}

	PendingTransactionCountStub func(context.Context) (uint, error)
	pendingTransactionCountReturns struct {
		result1 uint
		result2 error
	}
}

func (f *RPC) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	if f.HeaderByNumberStub != nil {
		return f.HeaderByNumberStub(ctx, number)
	}
	return f.headerByNumberReturns.result1, f.headerByNumberReturns.result2
}

func (f *RPC) HeaderByNumberReturns(h *types.Header, err error) {
	f.HeaderByNumberStub = nil
	f.headerByNumberReturns.result1, f.headerByNumberReturns.result2 = h, err
}

func (f *RPC) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	if f.PendingNonceAtStub != nil {
		return f.PendingNonceAtStub(ctx, account)
	}
	return f.pendingNonceAtReturns.result1, f.pendingNonceAtReturns.result2
}

func (f *RPC) PendingNonceAtReturns(n uint64, err error) {
	f.PendingNonceAtStub = nil
	f.pendingNonceAtReturns.result1, f.pendingNonceAtReturns.result2 = n, err
}

func (f *RPC) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	if f.SuggestGasPriceStub != nil {
		return f.SuggestGasPriceStub(ctx)
	}
	return f.suggestGasPriceReturns.result1, f.suggestGasPriceReturns.result2
}

func (f *RPC) SuggestGasPriceReturns(p *big.Int, err error) {
	f.SuggestGasPriceStub = nil
	f.suggestGasPriceReturns.result1, f.suggestGasPriceReturns.result2 = p, err
}

func (f *RPC) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	if f.EstimateGasStub != nil {
		return f.EstimateGasStub(ctx, call)
	}
	return f.estimateGasReturns.result1, f.estimateGasReturns.result2
}

func (f *RPC) EstimateGasReturns(n uint64, err error) {
	f.EstimateGasStub = nil
	f.estimateGasReturns.result1, f.estimateGasReturns.result2 = n, err
}

func (f *RPC) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if f.CallContractStub != nil {
		return f.CallContractStub(ctx, call, blockNumber)
	}
	return f.callContractReturns.result1, f.callContractReturns.result2
}

func (f *RPC) CallContractReturns(b []byte, err error) {
	f.CallContractStub = nil
	f.callContractReturns.result1, f.callContractReturns.result2 = b, err
}

func (f *RPC) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	f.sendTransactionArgsForCall = append(f.sendTransactionArgsForCall, struct{ tx *types.Transaction }{tx})
	f.mu.Unlock()
	if f.SendTransactionStub != nil {
		return f.SendTransactionStub(ctx, tx)
	}
	return f.sendTransactionReturns.result1
}

func (f *RPC) SendTransactionReturns(err error) {
	f.SendTransactionStub = nil
	f.sendTransactionReturns.result1 = err
}

func (f *RPC) SendTransactionCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sendTransactionArgsForCall)
}

func (f *RPC) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	f.transactionReceiptArgsForCall = append(f.transactionReceiptArgsForCall, struct{ txHash common.Hash }{txHash})
	f.mu.Unlock()
	if f.TransactionReceiptStub != nil {
		return f.TransactionReceiptStub(ctx, txHash)
	}
	return f.transactionReceiptReturns.result1, f.transactionReceiptReturns.result2
}

func (f *RPC) TransactionReceiptReturns(r *types.Receipt, err error) {
	f.TransactionReceiptStub = nil
	f.transactionReceiptReturns.result1, f.transactionReceiptReturns.result2 = r, err
}

func (f *RPC) TransactionReceiptCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.transactionReceiptArgsForCall)
}

func (f *RPC) NetworkID(ctx context.Context) (*big.Int, error) {
	if f.NetworkIDStub != nil {
		return f.NetworkIDStub(ctx)
	}
	return f.networkIDReturns.result1, f.networkIDReturns.result2
}

func (f *RPC) NetworkIDReturns(n *big.Int, err error) {
	f.NetworkIDStub = nil
	f.networkIDReturns.result1, f.networkIDReturns.result2 = n, err
}

func (f *RPC) PendingTransactionCount(ctx context.Context) (uint, error) {
	if f.PendingTransactionCountStub != nil {
		return f.PendingTransactionCountStub(ctx)
	}
	return f.pendingTransactionCountReturns.result1, f.pendingTransactionCountReturns.result2
}

func (f *RPC) PendingTransactionCountReturns(n uint, err error) {
	f.PendingTransactionCountStub = nil
	f.pendingTransactionCountReturns.result1, f.pendingTransactionCountReturns.result2 = n, err
}
