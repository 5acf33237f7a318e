// Package signer implements the Signer Capability (C1): producing a
// signed wire-format transaction and exposing the relayer address for a
// network, without exposing raw key material to callers.
package signer

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"relayhub/internal/chain"
)

// ErrUnavailable marks a transient signer failure, retry-eligible per §4.1.
var ErrUnavailable = errors.New("signer-unavailable")

// ErrDenied marks a fatal signer failure for the given request (e.g. the
// hosted key-management service refused the signing request outright).
var ErrDenied = errors.New("signer-denied")

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// Signer is the capability the relay pipeline (C8) signs through. Two
// variants satisfy it: an in-process private-key signer and a remote
// key-management signer (§4.1).
//
//counterfeiter:generate -o fake -fake-name Signer . Signer
type Signer interface {
	// Address returns the relayer account used to submit transactions on
	// the given network. Implementations may cache this but must fetch it
	// at least once at startup.
	Address(ctx context.Context, network string) (common.Address, error)

	// Sign produces deterministic signed wire bytes for the given
	// unsigned transaction, for the given network.
	Sign(ctx context.Context, network string, tx chain.UnsignedTx) (*types.Transaction, error)
}
