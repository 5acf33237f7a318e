// Package relay implements the Relay Pipeline (C8): the eleven-step
// verify -> admit -> simulate -> fee -> gas -> acquire -> sign -> persist
// -> broadcast -> count -> return sequence of §4.8, generalized from the
// teacher's internal/core.Fethcher orchestrator.
package relay

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"relayhub/internal/allocator"
	"relayhub/internal/chain"
	"relayhub/internal/counter"
	"relayhub/internal/policy"
	"relayhub/internal/store"
	"relayhub/internal/verify"
)

var (
	ErrFeeCapTooLow    = errors.New("fee-cap-too-low")
	ErrGasLimitTooLow  = errors.New("gas-limit-too-low")
	ErrPersistFailed   = errors.New("persist-failed")
	ErrBroadcastFailed = errors.New("broadcast-failed-post-persist")
)

// RejectionError carries the rejecting rule's kind and reason through to
// the HTTP layer, so §6's per-kind error codes (not-allowlisted,
// quota-exceeded, gas-cap-exceeded, token-cap-exceeded) can be derived
// without parsing an error string.
type RejectionError struct {
	Kind   policy.Kind
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("%s: %s: %s", policy.ErrRejected, e.Kind, e.Reason)
}

func (e *RejectionError) Unwrap() error { return policy.ErrRejected }

// Networks resolves a network name to its chain client. The concrete
// implementation typically also satisfies verify.Networks, so one
// config-backed adapter serves both the verifier and the pipeline.
type Networks interface {
	Client(network string) (*chain.Client, error)
}

// Signer is the narrow slice of the Signer Capability (C1) the pipeline
// drives.
type Signer interface {
	Address(ctx context.Context, network string) (common.Address, error)
	Sign(ctx context.Context, network string, tx chain.UnsignedTx) (*types.Transaction, error)
}

// Config holds the pipeline's tunables (§6 configuration field list).
type Config struct {
	FeeMultiplierBps int64
	GasHeadroomBps   int64
}

// Result is returned on a successful relay (§6 inbound relay endpoint).
type Result struct {
	TxHash   string
	GasPrice *big.Int
	GasLimit uint64
}

// Pipeline wires C1-C7 together per §4.8.
type Pipeline struct {
	verifier  *verify.Verifier
	policy    *policy.Engine
	networks  Networks
	signer    Signer
	allocator *allocator.Allocator
	store     *store.Store
	counter   counter.Cache
	cfg       Config
}

func New(verifier *verify.Verifier, engine *policy.Engine, networks Networks, signer Signer, alloc *allocator.Allocator, st *store.Store, cache counter.Cache, cfg Config) *Pipeline {
	return &Pipeline{
		verifier:  verifier,
		policy:    engine,
		networks:  networks,
		signer:    signer,
		allocator: alloc,
		store:     st,
		counter:   cache,
		cfg:       cfg,
	}
}

func bps(amount *big.Int, b int64) *big.Int {
	if amount == nil {
		return nil
	}
	out := new(big.Int).Mul(amount, big.NewInt(10_000+b))
	return out.Div(out, big.NewInt(10_000))
}

var nowFunc = time.Now
