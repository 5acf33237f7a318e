package signer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"relayhub/internal/chain"
)

// KeyManagementTransport is the capability a hosted key-management
// backend exposes: sign opaque unsigned-transaction bytes and report the
// relayer address for a network, without ever handing back raw key
// material. Swapping the transport (e.g. to a specific KMS vendor) only
// requires a new implementation of this interface; none of the example
// pack wires in a concrete hosted-KMS SDK, so no vendor client is
// hardcoded here (see DESIGN.md).
type KeyManagementTransport interface {
	Address(ctx context.Context, network string) (common.Address, error)
	SignRLP(ctx context.Context, network string, unsignedRLP []byte) (signedRLP []byte, err error)
}

// Hosted delegates signing to a remote key-management transport,
// satisfying the same Signer capability as LocalKey (§4.1).
type Hosted struct {
	transport KeyManagementTransport
}

func NewHosted(transport KeyManagementTransport) *Hosted {
	return &Hosted{transport: transport}
}

func (s *Hosted) Address(ctx context.Context, network string) (common.Address, error) {
	addr, err := s.transport.Address(ctx, network)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: fetch relayer address: %s", ErrUnavailable, err.Error())
	}
	return addr, nil
}

func (s *Hosted) Sign(ctx context.Context, network string, tx chain.UnsignedTx) (*types.Transaction, error) {
	unsigned := types.NewTx(&types.LegacyTx{
		Nonce:    tx.Nonce,
		To:       &tx.To,
		Value:    tx.Value,
		Gas:      tx.GasLimit,
		GasPrice: tx.GasPrice,
		Data:     tx.Data,
	})

	rlpBytes, err := unsigned.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("marshal unsigned tx: %w", err)
	}

	signedRLP, err := s.transport.SignRLP(ctx, network, rlpBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: remote sign: %s", ErrUnavailable, err.Error())
	}

	var signed types.Transaction
	if err := signed.UnmarshalBinary(signedRLP); err != nil {
		return nil, fmt.Errorf("%w: decode signed tx: %s", ErrDenied, err.Error())
	}

	return &signed, nil
}
