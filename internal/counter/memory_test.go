package counter_test

import (
	"context"
	"math/big"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"relayhub/internal/counter"
	"relayhub/internal/store"
)

var _ = Describe("Memory", func() {
	var (
		mem *counter.Memory
		ctx context.Context
		key counter.Key
		now time.Time
	)

	BeforeEach(func() {
		mem = counter.NewMemory(24 * time.Hour)
		ctx = context.Background()
		key = counter.Key{Dimension: "count", Identity: "0xaaa", Network: "localhost"}
		now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	})

	It("sums recorded quantities within the window", func() {
		Expect(mem.Record(ctx, key, store.NewBigInt(big.NewInt(1)), now.Add(-30*time.Minute))).To(Succeed())
		Expect(mem.Record(ctx, key, store.NewBigInt(big.NewInt(1)), now.Add(-10*time.Minute))).To(Succeed())

		sum, err := mem.Sum(ctx, key, time.Hour, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Int.Int64()).To(Equal(int64(2)))
	})

	It("excludes entries older than the requested window", func() {
		Expect(mem.Record(ctx, key, store.NewBigInt(big.NewInt(5)), now.Add(-2*time.Hour))).To(Succeed())
		Expect(mem.Record(ctx, key, store.NewBigInt(big.NewInt(3)), now.Add(-10*time.Minute))).To(Succeed())

		sum, err := mem.Sum(ctx, key, time.Hour, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Int.Int64()).To(Equal(int64(3)))
	})

	It("evicts entries older than the largest configured window", func() {
		mem = counter.NewMemory(time.Hour)
		Expect(mem.Record(ctx, key, store.NewBigInt(big.NewInt(9)), now.Add(-2*time.Hour))).To(Succeed())

		sum, err := mem.Sum(ctx, key, 24*time.Hour, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Int.Int64()).To(Equal(int64(0)))
	})

	It("keeps windows independent per key", func() {
		other := counter.Key{Dimension: "count", Identity: "0xbbb", Network: "localhost"}
		Expect(mem.Record(ctx, key, store.NewBigInt(big.NewInt(1)), now)).To(Succeed())
		Expect(mem.Record(ctx, other, store.NewBigInt(big.NewInt(7)), now)).To(Succeed())

		sum, err := mem.Sum(ctx, key, time.Hour, now)
		Expect(err).NotTo(HaveOccurred())
		Expect(sum.Int.Int64()).To(Equal(int64(1)))
	})

	It("uses exact 256-bit arithmetic for value sums", func() {
		big1, _ := new(big.Int).SetString("1000000000000000000", 10)
		Expect(mem.Record(ctx, key, store.NewBigInt(big1), now)).To(Succeed())
		Expect(mem.Record(ctx, key, store.NewBigInt(big1), now)).To(Succeed())

		sum, err := mem.Sum(ctx, key, time.Hour, now)
		Expect(err).NotTo(HaveOccurred())
		want, _ := new(big.Int).SetString("2000000000000000000", 10)
		Expect(sum.Int.Cmp(want)).To(Equal(0))
	})
})
