package relay_test

import (
	"context"
	"database/sql"
	"math/big"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"relayhub/internal/allocator"
	allocfake "relayhub/internal/allocator/fake"
	"relayhub/internal/chain"
	chainfake "relayhub/internal/chain/fake"
	"relayhub/internal/counter"
	"relayhub/internal/policy"
	policyfake "relayhub/internal/policy/fake"
	"relayhub/internal/relay"
	"relayhub/internal/relay/fake"
	"relayhub/internal/store"
	"relayhub/internal/verify"
)

type stubNetworks struct {
	domain verify.NetworkDomain
}

func (s stubNetworks) Domain(string) (verify.NetworkDomain, bool) { return s.domain, true }

var _ = Describe("Pipeline", func() {
	var (
		mockDB   *sql.DB
		mock     sqlmock.Sqlmock
		st       *store.Store
		rpc      *chainfake.RPC
		client   *chain.Client
		networks *fake.Networks
		signer   *fake.Signer
		alloc    *allocator.Allocator
		cache    *counter.Memory
		engine   *policy.Engine
		ruleSrc  *policyfake.RuleSource
		pipeline *relay.Pipeline

		fromKey     = mustKey()
		fromAddr    = crypto.PubkeyToAddress(fromKey.PublicKey)
		toAddr      = common.HexToAddress("0x000000000000000000000000000000000000b0b0")
		relayerKey  = mustKey()
		relayerAddr = crypto.PubkeyToAddress(relayerKey.PublicKey)
		domain      = verify.NetworkDomain{ChainID: 31337, ForwarderAddress: "0x000000000000000000000000000000000000fa00"}
	)

	BeforeEach(func() {
		var err error
		mockDB, mock, err = sqlmock.New()
		Expect(err).NotTo(HaveOccurred())
		dialector := postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"})
		gormDB, err := gorm.Open(dialector, &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())
		st = store.NewFromDB(gormDB)

		rpc = new(chainfake.RPC)
		rpc.SuggestGasPriceReturns(big.NewInt(100), nil)
		rpc.EstimateGasReturns(21000, nil)
		rpc.CallContractReturns(nil, nil)
		rpc.PendingNonceAtReturns(0, nil)
		rpc.SendTransactionReturns(nil)

		client = chain.New("localhost", big.NewInt(31337), rpc, chain.DefaultRetryPolicy())
		networks = fake.NewNetworks()
		networks.Register("localhost", client)

		signer = new(fake.Signer)
		signer.AddressReturns(relayerAddr, nil)
		signer.SignStub = func(_ context.Context, _ string, tx chain.UnsignedTx) (*types.Transaction, error) {
			unsigned := types.NewTx(&types.LegacyTx{Nonce: tx.Nonce, To: &tx.To, Value: tx.Value, Gas: tx.GasLimit, GasPrice: tx.GasPrice, Data: tx.Data})
			return types.SignTx(unsigned, types.LatestSignerForChainID(tx.ChainID), relayerKey)
		}

		chainCounter := new(allocfake.ChainCounter)
		chainCounter.PendingCountReturns(0, nil)
		cursorStore := new(allocfake.CursorStore)
		alloc = allocator.New(chainCounter, cursorStore, 64)

		cache = counter.NewMemory(24 * time.Hour)

		ruleSrc = new(policyfake.RuleSource)
		ruleSrc.ListPolicyRulesReturns([]policy.StoredRule{
			{ID: "1", Kind: "allowlist", Target: "*", Enabled: true, Value: `{"addresses":["` + fromAddr.Hex() + `"]}`},
		}, nil)
		engine = policy.New(ruleSrc, cache, zap.NewNop().Sugar())
		Expect(engine.Reload(context.Background())).To(Succeed())

		verifier := verify.New(stubNetworks{domain: domain}, verify.Ceilings{MaxGasLimit: 1_000_000, MaxTxValue: big.NewInt(2_000_000_000_000_000_000)})

		pipeline = relay.New(verifier, engine, networks, signer, alloc, st, cache, relay.Config{FeeMultiplierBps: 1000, GasHeadroomBps: 1000})
	})

	buildRaw := func(value *big.Int) verify.Raw {
		gas := big.NewInt(100000)
		nonce := big.NewInt(0)
		data := []byte{}
		sig, err := signRequest(fromKey, domain, fromAddr, toAddr, value, gas, nonce, data)
		Expect(err).NotTo(HaveOccurred())
		return verify.Raw{
			From: fromAddr.Hex(), To: toAddr.Hex(), Value: value.String(),
			Gas: gas.String(), UserNonce: nonce.String(), Data: "0x",
			Signature: sig, Network: "localhost",
		}
	}

	It("relays a valid request end to end (scenario 1)", func() {
		// gorm's postgres dialector always issues Create as a QueryContext
		// with a RETURNING clause, the same shape the teacher's own
		// db_test.go asserts against for SaveToTable.
		mock.ExpectQuery(`INSERT INTO "transactions"`).WillReturnRows(sqlmock.NewRows([]string{"tx_hash"}))

		result, err := pipeline.Relay(context.Background(), buildRaw(big.NewInt(1_000_000_000_000_000_000)))
		Expect(err).NotTo(HaveOccurred())
		Expect(result.TxHash).NotTo(BeEmpty())
		Expect(rpc.SendTransactionCallCount()).To(Equal(1))

		countSum, err := cache.Sum(context.Background(), counter.Key{Dimension: "count", Identity: fromAddr.Hex(), Network: "localhost"}, time.Hour, time.Now())
		Expect(err).NotTo(HaveOccurred())
		Expect(countSum.Int.Int64()).To(Equal(int64(1)))
	})

	It("rejects a non-allowlisted sender without allocating or broadcasting (scenario 2-shaped rejection)", func() {
		ruleSrc.ListPolicyRulesReturns([]policy.StoredRule{
			{ID: "1", Kind: "allowlist", Target: "*", Enabled: true, Value: `{"addresses":[]}`},
		}, nil)
		Expect(engine.Reload(context.Background())).To(Succeed())

		_, err := pipeline.Relay(context.Background(), buildRaw(big.NewInt(1)))
		Expect(err).To(HaveOccurred())
		Expect(rpc.SendTransactionCallCount()).To(Equal(0))
		_, initialized := alloc.Peek(allocator.Key{Network: "localhost", Address: relayerAddr.Hex()})
		Expect(initialized).To(BeFalse())
	})

	It("releases the nonce when persistence fails", func() {
		mock.ExpectQuery(`INSERT INTO "transactions"`).WillReturnError(sql.ErrConnDone)

		_, err := pipeline.Relay(context.Background(), buildRaw(big.NewInt(1)))
		Expect(err).To(MatchError(relay.ErrPersistFailed))

		next, initialized := alloc.Peek(allocator.Key{Network: "localhost", Address: relayerAddr.Hex()})
		Expect(initialized).To(BeTrue())
		Expect(next).To(Equal(uint64(0))) // reclaimed
	})
})
