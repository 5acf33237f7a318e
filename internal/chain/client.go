// Package chain implements the Chain Client (C3): an RPC abstraction
// providing gas estimation, fee reads, simulation, broadcast, receipt and
// head-block lookups. One Client instance serves exactly one network;
// there is no cross-network state, per spec §4.3.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ErrTransient marks an error the caller may retry (§7 chain-transient).
var ErrTransient = errors.New("chain-transient")

// RetryPolicy bounds the backoff budget for idempotent RPC calls. Broadcast
// is excluded from automatic retry: a duplicate broadcast of identical
// signed bytes is safe (§4.3), but the client never re-broadcasts on its
// own initiative, to keep the at-most-once-observable contract obvious at
// the call site.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 4, BaseDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second}
}

// Client is a single network's Chain Client.
type Client struct {
	network string
	chainID *big.Int
	rpc     RPC
	retry   RetryPolicy
}

func New(network string, chainID *big.Int, rpc RPC, retry RetryPolicy) *Client {
	return &Client{
		network: network,
		chainID: chainID,
		rpc:     rpc,
		retry:   retry,
	}
}

func (c *Client) Network() string { return c.network }

func (c *Client) ChainID() *big.Int { return new(big.Int).Set(c.chainID) }

// HeadBlock returns the current head header.
func (c *Client) HeadBlock(ctx context.Context) (*types.Header, error) {
	var header *types.Header
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		header, err = c.rpc.HeaderByNumber(ctx, nil)
		return err
	})
	return header, err
}

// PendingCount returns the number of pending transactions known for the
// relayer address, the chain-side source of truth the Nonce Allocator
// (C2) resyncs against.
func (c *Client) PendingCount(ctx context.Context, address common.Address) (uint64, error) {
	var nonce uint64
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		nonce, err = c.rpc.PendingNonceAt(ctx, address)
		return err
	})
	return nonce, err
}

// FeeSuggestion returns the chain's current gas price signal (§4.3
// fee-suggestion).
func (c *Client) FeeSuggestion(ctx context.Context) (FeeSuggestion, error) {
	var price *big.Int
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		price, err = c.rpc.SuggestGasPrice(ctx)
		return err
	})
	if err != nil {
		return FeeSuggestion{}, err
	}
	return FeeSuggestion{GasPrice: price}, nil
}

// EstimateGas estimates the gas a call would consume.
func (c *Client) EstimateGas(ctx context.Context, call Call) (uint64, error) {
	var gas uint64
	msg := ethereum.CallMsg{From: call.From, To: &call.To, Value: call.Value, Data: call.Data}
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		gas, err = c.rpc.EstimateGas(ctx, msg)
		return err
	})
	return gas, err
}

// ErrWouldRevert marks a simulated call that reverted (§4.8 step 3).
var ErrWouldRevert = errors.New("would-revert")

// Simulate executes the call against current chain state without
// broadcasting it, surfacing ErrWouldRevert on revert.
func (c *Client) Simulate(ctx context.Context, call Call) error {
	msg := ethereum.CallMsg{From: call.From, To: &call.To, Value: call.Value, Data: call.Data}
	err := c.withRetry(ctx, func(ctx context.Context) error {
		_, err := c.rpc.CallContract(ctx, msg, nil)
		return err
	})
	if err != nil {
		return fmt.Errorf("%w: %s", ErrWouldRevert, err.Error())
	}
	return nil
}

// Broadcast submits a signed transaction and returns its hash. Broadcast
// is at-least-once from the caller's perspective but at-most-once
// observable: re-submitting identical signed bytes to the node yields the
// same hash (§4.3). The client itself never retries broadcast — a failure
// here is surfaced as-is so the pipeline can apply §7's
// broadcast-failed-post-persist handling.
func (c *Client) Broadcast(ctx context.Context, signedTx *types.Transaction) (common.Hash, error) {
	if err := c.rpc.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, err
	}
	return signedTx.Hash(), nil
}

// Receipt fetches the receipt for a tx-hash, returning (nil, nil) if the
// transaction is not yet mined.
func (c *Client) Receipt(ctx context.Context, txHash common.Hash) (*Receipt, error) {
	var receipt *types.Receipt
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		receipt, err = c.rpc.TransactionReceipt(ctx, txHash)
		if errors.Is(err, ethereum.NotFound) {
			receipt = nil
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, nil
	}
	return &Receipt{
		Status:      receipt.Status,
		BlockNumber: receipt.BlockNumber.Uint64(),
		GasUsed:     receipt.GasUsed,
	}, nil
}

// withRetry runs fn with bounded exponential backoff for transient
// network errors, per §4.3's "Timeouts are per-call; transient network
// errors are retried with exponential backoff up to a bounded budget
// inside the client."
func (c *Client) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	delay := c.retry.BaseDelay
	var lastErr error
	for attempt := 0; attempt < c.retry.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == c.retry.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if delay > c.retry.MaxDelay {
			delay = c.retry.MaxDelay
		}
	}
	return fmt.Errorf("%w: %s", ErrTransient, lastErr.Error())
}
