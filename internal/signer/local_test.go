package signer_test

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"relayhub/internal/chain"
	"relayhub/internal/signer"
)

var _ = Describe("LocalKey", func() {
	var (
		key *signer.LocalKey
		ctx context.Context
	)

	BeforeEach(func() {
		priv, err := crypto.GenerateKey()
		Expect(err).NotTo(HaveOccurred())
		key = signer.NewLocalKey(priv)
		ctx = context.Background()
	})

	Describe("Address", func() {
		It("returns a stable, non-zero address", func() {
			addr1, err := key.Address(ctx, "localhost")
			Expect(err).NotTo(HaveOccurred())
			addr2, err := key.Address(ctx, "other")
			Expect(err).NotTo(HaveOccurred())
			Expect(addr1).To(Equal(addr2))
			Expect(addr1).NotTo(Equal(common.Address{}))
		})
	})

	Describe("Sign", func() {
		var tx chain.UnsignedTx

		BeforeEach(func() {
			tx = chain.UnsignedTx{
				To:       common.HexToAddress("0x000000000000000000000000000000000000aa"),
				Value:    big.NewInt(1000),
				Data:     []byte{0x01, 0x02},
				GasLimit: 21000,
				GasPrice: big.NewInt(1_000_000_000),
				Nonce:    5,
				ChainID:  big.NewInt(31337),
			}
		})

		It("is deterministic for a fixed input", func() {
			signed1, err := key.Sign(ctx, "localhost", tx)
			Expect(err).NotTo(HaveOccurred())
			signed2, err := key.Sign(ctx, "localhost", tx)
			Expect(err).NotTo(HaveOccurred())

			Expect(signed1.Hash()).To(Equal(signed2.Hash()))
		})

		It("recovers to the signer's own address", func() {
			signed, err := key.Sign(ctx, "localhost", tx)
			Expect(err).NotTo(HaveOccurred())

			ecdsaSigner := types.LatestSignerForChainID(tx.ChainID)
			from, err := types.Sender(ecdsaSigner, signed)
			Expect(err).NotTo(HaveOccurred())

			addr, err := key.Address(ctx, "localhost")
			Expect(err).NotTo(HaveOccurred())
			Expect(from).To(Equal(addr))
		})

		It("produces a different hash for a single mutated field", func() {
			signed1, err := key.Sign(ctx, "localhost", tx)
			Expect(err).NotTo(HaveOccurred())

			mutated := tx
			mutated.Nonce = tx.Nonce + 1
			signed2, err := key.Sign(ctx, "localhost", mutated)
			Expect(err).NotTo(HaveOccurred())

			Expect(signed1.Hash()).NotTo(Equal(signed2.Hash()))
		})
	})
})
