package policy_test

import (
	"context"
	"math/big"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	counterfake "relayhub/internal/counter/fake"
	"relayhub/internal/policy"
	"relayhub/internal/policy/fake"
	"relayhub/internal/store"
)

const addrA = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb9226A"

var _ = Describe("Engine", func() {
	var (
		source *fake.RuleSource
		cache  *counterfake.Cache
		engine *policy.Engine
		ctx    context.Context
	)

	BeforeEach(func() {
		source = new(fake.RuleSource)
		cache = new(counterfake.Cache)
		cache.SumReturns(store.NewBigInt(big.NewInt(0)), nil)
		engine = policy.New(source, cache, zap.NewNop().Sugar())
		ctx = context.Background()
	})

	reload := func(rules []policy.StoredRule) {
		source.ListPolicyRulesReturns(rules, nil)
		Expect(engine.Reload(ctx)).To(Succeed())
	}

	Describe("allowlist", func() {
		It("admits an address present in a wildcard allowlist", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "allowlist", Target: "*", Enabled: true, Value: `{"addresses":["` + addrA + `"]}`},
			})
			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost"})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeTrue())
		})

		It("rejects an address absent from the allowlist", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "allowlist", Target: "*", Enabled: true, Value: `{"addresses":["` + addrA + `"]}`},
			})
			d, err := engine.Evaluate(ctx, policy.Request{From: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", Network: "localhost"})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeFalse())
			Expect(d.Kind).To(Equal(policy.KindAllowlist))
		})

		It("denies everyone when the wildcard allowlist is empty", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "allowlist", Target: "*", Enabled: true, Value: `{"addresses":[]}`},
			})
			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost"})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeFalse())
		})

		It("skips a malformed rule instead of aborting the whole reload", func() {
			source.ListPolicyRulesReturns([]policy.StoredRule{
				{ID: "1", Kind: "allowlist", Target: "*", Enabled: true, Value: `not-json`},
			}, nil)
			Expect(engine.Reload(ctx)).To(Succeed())
			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost"})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeTrue())
		})
	})

	Describe("quota", func() {
		It("rejects once the hourly transaction count would be exceeded", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "quota", Target: "*", Enabled: true, Value: `{"maxTxPerHour":2}`},
			})
			cache.SumReturns(store.NewBigInt(big.NewInt(2)), nil)

			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost"})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeFalse())
			Expect(d.Kind).To(Equal(policy.KindQuota))
			Expect(d.Reason).To(ContainSubstring("hourly transaction"))
		})

		It("admits while under the hourly transaction count", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "quota", Target: "*", Enabled: true, Value: `{"maxTxPerHour":2}`},
			})
			cache.SumReturns(store.NewBigInt(big.NewInt(1)), nil)

			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost"})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeTrue())
		})

		It("rejects when the hypothetical projected value sum exceeds the hourly cap", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "quota", Target: "*", Enabled: true, Value: `{"maxValuePerHour":"100"}`},
			})
			cache.SumReturns(store.NewBigInt(big.NewInt(60)), nil)

			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost", Value: big.NewInt(50)})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeFalse())
			Expect(d.Reason).To(ContainSubstring("hourly value"))
		})
	})

	Describe("gas-cap", func() {
		It("rejects declared gas above max-gas-limit", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "gas-cap", Target: "*", Enabled: true, Value: `{"maxGasLimit":100000}`},
			})
			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost", DeclaredGas: 200000})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeFalse())
			Expect(d.Kind).To(Equal(policy.KindGasCap))
		})

		It("rejects an intended fee above max-gas-price", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "gas-cap", Target: "*", Enabled: true, Value: `{"maxGasPrice":"100"}`},
			})
			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost", IntendedFee: big.NewInt(150)})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeFalse())
		})

		It("does not evaluate the price check until IntendedFee is populated", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "gas-cap", Target: "*", Enabled: true, Value: `{"maxGasPrice":"100"}`},
			})
			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost"})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeTrue())
		})
	})

	Describe("token-cap", func() {
		It("rejects a token not in allowed-tokens", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "token-cap", Target: "*", Enabled: true, Value: `{"allowedTokens":["0xcccccccccccccccccccccccccccccccccccccccc"]}`},
			})
			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost", TokenAddress: "0xdddddddddddddddddddddddddddddddddddddddd"})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeFalse())
			Expect(d.Kind).To(Equal(policy.KindTokenCap))
		})

		It("rejects an amount above the per-tx cap", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "token-cap", Target: "*", Enabled: true, Value: `{"maxAmountPerTx":"10"}`},
			})
			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost", TokenAddress: "0xdddddddddddddddddddddddddddddddddddddddd", TokenAmount: big.NewInt(20)})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeFalse())
		})

		It("is skipped entirely for requests with no token fields", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "token-cap", Target: "*", Enabled: true, Value: `{"allowedTokens":[]}`},
			})
			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost"})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeTrue())
		})

		It("rejects once the hypothetical projected token amount sum exceeds the hourly cap", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "token-cap", Target: "*", Enabled: true, Value: `{"maxAmountHour":"100"}`},
			})
			cache.SumReturns(store.NewBigInt(big.NewInt(60)), nil)

			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost", TokenAddress: "0xdddddddddddddddddddddddddddddddddddddddd", TokenAmount: big.NewInt(50)})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeFalse())
			Expect(d.Kind).To(Equal(policy.KindTokenCap))
			Expect(d.Reason).To(ContainSubstring("hourly token amount"))
		})

		It("admits while under the daily token amount cap", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "token-cap", Target: "*", Enabled: true, Value: `{"maxAmountDay":"100"}`},
			})
			cache.SumReturns(store.NewBigInt(big.NewInt(10)), nil)

			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost", TokenAddress: "0xdddddddddddddddddddddddddddddddddddddddd", TokenAmount: big.NewInt(5)})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeTrue())
		})
	})

	Describe("evaluation order", func() {
		It("rejects on the first failing kind without evaluating later kinds", func() {
			reload([]policy.StoredRule{
				{ID: "1", Kind: "allowlist", Target: "*", Enabled: true, Value: `{"addresses":[]}`},
				{ID: "2", Kind: "gas-cap", Target: "*", Enabled: true, Value: `{"maxGasLimit":1}`},
			})
			d, err := engine.Evaluate(ctx, policy.Request{From: addrA, Network: "localhost", DeclaredGas: 999})
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Admitted).To(BeFalse())
			Expect(d.Kind).To(Equal(policy.KindAllowlist))
		})
	})

	Describe("Signal", func() {
		It("does not block when a reload is already pending", func() {
			engine.Signal()
			engine.Signal()
		})
	})
})
