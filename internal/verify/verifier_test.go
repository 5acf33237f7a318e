package verify_test

import (
	"crypto/ecdsa"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"relayhub/internal/verify"
)

var _ = Describe("Verifier", func() {
	var (
		key      = mustGenerateKey()
		from     = crypto.PubkeyToAddress(key.PublicKey)
		to       = common.HexToAddress("0x000000000000000000000000000000000000b0b0")
		domain   = verify.NetworkDomain{ChainID: 31337, ForwarderAddress: "0x000000000000000000000000000000000000fa00"}
		networks = stubNetworks{domains: map[string]verify.NetworkDomain{"localhost": domain}}
		v        = verify.New(networks, verify.Ceilings{MaxGasLimit: 1_000_000, MaxTxValue: big.NewInt(1_000_000_000_000_000_000)})
	)

	buildValid := func() verify.Raw {
		value := big.NewInt(1_000_000_000_000_000) // under ceiling
		gas := big.NewInt(100000)
		nonce := big.NewInt(0)
		data := []byte{}

		sig, err := signForwardRequest(key, domain, from, to, value, gas, nonce, data)
		Expect(err).NotTo(HaveOccurred())

		return verify.Raw{
			From:      from.Hex(),
			To:        to.Hex(),
			Value:     value.String(),
			Gas:       gas.String(),
			UserNonce: nonce.String(),
			Data:      "0x",
			Signature: sig,
			Network:   "localhost",
		}
	}

	It("accepts a correctly signed request (scenario 1: happy path)", func() {
		raw := buildValid()
		verified, err := v.Verify(raw)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.EqualFold(verified.From, from.Hex())).To(BeTrue())
		Expect(verified.Gas).To(Equal(uint64(100000)))
	})

	It("rejects a request with one mutated signature byte (scenario 2)", func() {
		raw := buildValid()
		// flip a hex nibble in the signature, away from the 0x prefix
		mutated := []byte(raw.Signature)
		if mutated[10] == '0' {
			mutated[10] = '1'
		} else {
			mutated[10] = '0'
		}
		raw.Signature = string(mutated)

		_, err := v.Verify(raw)
		Expect(err).To(HaveOccurred())
		Expect(err).To(MatchError(verify.ErrInvalidRequest))
	})

	It("rejects an unsupported network", func() {
		raw := buildValid()
		raw.Network = "nowhere"
		_, err := v.Verify(raw)
		Expect(err).To(MatchError(verify.ErrUnsupportedNetwork))
	})

	It("rejects gas above the hard ceiling regardless of policy", func() {
		raw := buildValid()
		raw.Gas = strconv.Itoa(10_000_000)
		_, err := v.Verify(raw)
		Expect(err).To(MatchError(verify.ErrInvalidRequest))
	})

	It("rejects malformed hex data", func() {
		raw := buildValid()
		raw.Data = "0xzz"
		_, err := v.Verify(raw)
		Expect(err).To(MatchError(verify.ErrInvalidRequest))
	})

	It("rejects a structurally incomplete request", func() {
		raw := buildValid()
		raw.From = ""
		_, err := v.Verify(raw)
		Expect(err).To(MatchError(verify.ErrInvalidRequest))
	})

	It("never consults chain state for user-nonce freshness", func() {
		// the verifier's Networks port only exposes Domain lookup, so
		// there is no way for Verify to ask the chain about user-nonce
		// by construction; two requests with the same nonce both verify.
		raw1 := buildValid()
		raw2 := buildValid()
		_, err1 := v.Verify(raw1)
		_, err2 := v.Verify(raw2)
		Expect(err1).NotTo(HaveOccurred())
		Expect(err2).NotTo(HaveOccurred())
	})
})

func mustGenerateKey() *ecdsa.PrivateKey {
	k, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return k
}
