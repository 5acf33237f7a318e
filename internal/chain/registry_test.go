package chain_test

import (
	"context"
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"relayhub/internal/chain"
	"relayhub/internal/chain/fake"
	"relayhub/internal/verify"
)

var _ = Describe("Registry", func() {
	var (
		registry *chain.Registry
		rpc      *fake.RPC
		ctx      context.Context
	)

	BeforeEach(func() {
		registry = chain.NewRegistry()
		rpc = new(fake.RPC)
		ctx = context.Background()
		registry.Register("localhost", chain.New("localhost", big.NewInt(31337), rpc, chain.DefaultRetryPolicy()))
		registry.RegisterForwarder("localhost", "0x000000000000000000000000000000000000fa00")
	})

	Describe("Domain", func() {
		It("resolves a registered network's EIP-712 domain", func() {
			domain, ok := registry.Domain("localhost")
			Expect(ok).To(BeTrue())
			Expect(domain).To(Equal(verify.NetworkDomain{ChainID: 31337, ForwarderAddress: "0x000000000000000000000000000000000000fa00"}))
		})

		It("reports false for an unregistered network", func() {
			_, ok := registry.Domain("unknown")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("PendingCount", func() {
		It("resolves the network then delegates to the client", func() {
			rpc.PendingNonceAtReturns(uint64(7), nil)
			count, err := registry.PendingCount(ctx, "localhost", "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(uint64(7)))
		})

		It("returns ErrUnsupportedNetwork for an unregistered network", func() {
			_, err := registry.PendingCount(ctx, "unknown", "0xaaa")
			Expect(err).To(MatchError(chain.ErrUnsupportedNetwork))
		})
	})

	Describe("Client", func() {
		It("returns the registered client", func() {
			client, err := registry.Client("localhost")
			Expect(err).NotTo(HaveOccurred())
			Expect(client.Network()).To(Equal("localhost"))
		})
	})
})
