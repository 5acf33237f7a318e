package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ethereum/go-ethereum/common"
	"relayhub/internal/chain"
)

// LocalKey signs with an in-process ECDSA private key. The same address
// is used across every network this relayer operates on; a deployment
// wanting a distinct relayer account per network runs one LocalKey per
// network instead.
type LocalKey struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewLocalKey constructs a LocalKey signer from raw key material. The key
// is held only in memory for the lifetime of the process; no raw key
// material is ever returned from any method on this type.
func NewLocalKey(key *ecdsa.PrivateKey) *LocalKey {
	return &LocalKey{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}
}

func (s *LocalKey) Address(_ context.Context, _ string) (common.Address, error) {
	return s.address, nil
}

func (s *LocalKey) Sign(_ context.Context, _ string, tx chain.UnsignedTx) (*types.Transaction, error) {
	unsigned := types.NewTx(&types.LegacyTx{
		Nonce:    tx.Nonce,
		To:       &tx.To,
		Value:    tx.Value,
		Gas:      tx.GasLimit,
		GasPrice: tx.GasPrice,
		Data:     tx.Data,
	})

	signer := types.LatestSignerForChainID(tx.ChainID)
	signed, err := types.SignTx(unsigned, signer, s.key)
	if err != nil {
		return nil, fmt.Errorf("%w: sign tx: %s", ErrUnavailable, err.Error())
	}
	return signed, nil
}
