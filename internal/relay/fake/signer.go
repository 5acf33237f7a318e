package fake

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"relayhub/internal/chain"
)

// Signer is a hand-written counterfeiter-shaped fake for relay.Signer.
type Signer struct {
	mu sync.Mutex

	AddressStub    func(context.Context, string) (common.Address, error)
	addressReturns struct {
		result1 common.Address
		result2 error
	}

	SignStub        func(context.Context, string, chain.UnsignedTx) (*types.Transaction, error)
	signArgsForCall []struct {
		network string
		tx      chain.UnsignedTx
	}
	signReturns struct {
		result1 *types.Transaction
		result2 error
	}
}

func (f *Signer) Address(ctx context.Context, network string) (common.Address, error) {
	if f.AddressStub != nil {
		return f.AddressStub(ctx, network)
	}
	return f.addressReturns.result1, f.addressReturns.result2
}

func (f *Signer) AddressReturns(a common.Address, err error) {
	f.AddressStub = nil
	f.addressReturns.result1, f.addressReturns.result2 = a, err
}

func (f *Signer) Sign(ctx context.Context, network string, tx chain.UnsignedTx) (*types.Transaction, error) {
	f.mu.Lock()
	f.signArgsForCall = append(f.signArgsForCall, struct {
		network string
		tx      chain.UnsignedTx
	}{network, tx})
	f.mu.Unlock()
	if f.SignStub != nil {
		return f.SignStub(ctx, network, tx)
	}
	return f.signReturns.result1, f.signReturns.result2
}

func (f *Signer) SignReturns(tx *types.Transaction, err error) {
	f.SignStub = nil
	f.signReturns.result1, f.signReturns.result2 = tx, err
}

func (f *Signer) SignCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.signArgsForCall)
}
