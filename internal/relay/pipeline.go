package relay

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"relayhub/internal/allocator"
	"relayhub/internal/chain"
	"relayhub/internal/counter"
	"relayhub/internal/policy"
	"relayhub/internal/store"
	"relayhub/internal/verify"
)

var bigOne = big.NewInt(1)

// Relay runs the full §4.8 sequence for one inbound request.
func (p *Pipeline) Relay(ctx context.Context, raw verify.Raw) (Result, error) {
	// Step 1: verify.
	verified, err := p.verifier.Verify(raw)
	if err != nil {
		return Result{}, err
	}

	client, err := p.networks.Client(verified.Network)
	if err != nil {
		return Result{}, err
	}

	// Step 2: admit (ahead of fee knowledge; gas-cap's price leg is
	// re-checked once the fee is computed, see step 4).
	decision, err := p.policy.Evaluate(ctx, admissionRequest(verified, nil))
	if err != nil {
		return Result{}, fmt.Errorf("internal: evaluate policy: %w", err)
	}
	if !decision.Admitted {
		return Result{}, &RejectionError{Kind: decision.Kind, Reason: decision.Reason}
	}

	relayerAddress, err := p.signer.Address(ctx, verified.Network)
	if err != nil {
		return Result{}, err
	}

	// Step 3: simulate.
	call := chain.Call{From: relayerAddress, To: common.HexToAddress(verified.To), Value: verified.Value, Data: verified.Data}
	if err := client.Simulate(ctx, call); err != nil {
		return Result{}, err
	}

	// Step 4: compute effective fee.
	suggestion, err := client.FeeSuggestion(ctx)
	if err != nil {
		return Result{}, err
	}
	effectiveFee := bps(suggestion.GasPrice, p.cfg.FeeMultiplierBps)
	if ceiling, ok := p.policy.GasPriceCeiling(verified.Network); ok && effectiveFee.Cmp(ceiling) > 0 {
		if ceiling.Cmp(suggestion.GasPrice) < 0 {
			return Result{}, fmt.Errorf("%w: ceiling %s below chain suggestion %s", ErrFeeCapTooLow, ceiling, suggestion.GasPrice)
		}
		effectiveFee = ceiling
	}

	decision, err = p.policy.Evaluate(ctx, admissionRequest(verified, effectiveFee))
	if err != nil {
		return Result{}, fmt.Errorf("internal: evaluate policy: %w", err)
	}
	if !decision.Admitted {
		return Result{}, &RejectionError{Kind: decision.Kind, Reason: decision.Reason}
	}

	// Step 5: estimate gas.
	estimate, err := client.EstimateGas(ctx, call)
	if err != nil {
		return Result{}, err
	}
	gasLimit := estimate + (estimate*uint64(p.cfg.GasHeadroomBps))/10_000
	if estimate > verified.Gas {
		return Result{}, fmt.Errorf("%w: estimate %d exceeds declared %d", ErrGasLimitTooLow, estimate, verified.Gas)
	}
	if gasLimit > verified.Gas {
		gasLimit = verified.Gas
	}

	// Step 6: acquire sequence number, holding the lock through broadcast.
	key := allocator.Key{Network: verified.Network, Address: relayerAddress.Hex()}
	acquired, err := p.allocator.Acquire(ctx, key)
	if err != nil {
		return Result{}, err
	}
	consumed := false
	defer func() {
		acquired.Release(consumed)
	}()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// Step 7: sign.
	unsigned := chain.UnsignedTx{
		To:       common.HexToAddress(verified.To),
		Value:    verified.Value,
		Data:     verified.Data,
		GasLimit: gasLimit,
		GasPrice: effectiveFee,
		Nonce:    acquired.Value,
		ChainID:  client.ChainID(),
	}
	signedTx, err := p.signer.Sign(ctx, verified.Network, unsigned)
	if err != nil {
		return Result{}, err
	}

	// Step 8: persist pending record before broadcast.
	txHash := signedTx.Hash().Hex()
	record := store.Transaction{
		TxHash:           txHash,
		From:             verified.From,
		To:               verified.To,
		Network:          verified.Network,
		Value:            store.NewBigInt(verified.Value),
		Status:           string(store.StatusPending),
		DeclaredGasLimit: verified.Gas,
		SequenceNumber:   acquired.Value,
		RelayerAddress:   relayerAddress.Hex(),
		SubmittedAt:      nowFunc(),
		UpdatedAt:        nowFunc(),
	}
	if verified.TokenAddress != "" {
		record.TokenAddress = verified.TokenAddress
		record.TokenKind = verified.TokenKind
		if verified.TokenAmount != nil {
			record.TokenAmount = store.NewBigInt(verified.TokenAmount)
		}
		if verified.TokenID != nil {
			record.TokenID = store.NewBigInt(verified.TokenID)
		}
	}
	if err := p.store.InsertTransaction(ctx, record); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrPersistFailed, err.Error())
	}
	// The sequence number is spoken for as soon as the pending record lands:
	// a broadcast failure from here on must not release it back for reuse,
	// since the record already occupies that slot and C9 will reconcile it.
	consumed = true

	// Step 9: broadcast, then release the allocator lock.
	if _, err := client.Broadcast(ctx, signedTx); err != nil {
		return Result{}, fmt.Errorf("%w: %s", ErrBroadcastFailed, err.Error())
	}

	// Step 10: record counters on broadcast success only (§9 open
	// question 2).
	now := nowFunc()
	countKey := counter.Key{Dimension: "count", Identity: verified.From, Network: verified.Network}
	_ = p.counter.Record(ctx, countKey, store.NewBigInt(bigOne), now)
	valueKey := counter.Key{Dimension: "value", Identity: verified.From, Network: verified.Network}
	_ = p.counter.Record(ctx, valueKey, store.NewBigInt(verified.Value), now)
	if verified.TokenAddress != "" && verified.TokenAmount != nil {
		tokenKey := counter.Key{Dimension: "token:" + verified.TokenAddress, Identity: verified.From, Network: verified.Network}
		_ = p.counter.Record(ctx, tokenKey, store.NewBigInt(verified.TokenAmount), now)
	}

	// Step 11: return.
	return Result{TxHash: txHash, GasPrice: effectiveFee, GasLimit: gasLimit}, nil
}

func admissionRequest(v verify.Verified, intendedFee *big.Int) policy.Request {
	return policy.Request{
		From:         v.From,
		Network:      v.Network,
		Value:        v.Value,
		DeclaredGas:  v.Gas,
		IntendedFee:  intendedFee,
		TokenAddress: v.TokenAddress,
		TokenAmount:  v.TokenAmount,
	}
}
