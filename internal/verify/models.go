// Package verify implements the Request Verifier (C5): structural
// validation, network membership, ceiling checks, and EIP-712-style
// structured-data signature recovery for the MinimalForwarder schema
// (§4.5), grounded on vitwit-x402-go's typed-data hashing helpers.
package verify

import (
	"errors"
	"math/big"
)

// ErrInvalidRequest is the typed §4.5/§7 invalid-request error; the
// offending field is carried in the wrapped message.
var ErrInvalidRequest = errors.New("invalid request")

// ErrUnsupportedNetwork signals step 2 (network membership) failed.
var ErrUnsupportedNetwork = errors.New("unsupported network")

// Raw is the wire-shaped inbound relay request (§3, §6): a meta-tx plus
// its signature and target network.
type Raw struct {
	From      string
	To        string
	Value     string // decimal string
	Gas       string // decimal string
	UserNonce string // decimal string
	Data      string // 0x-prefixed hex
	Signature string // 0x-prefixed hex, 65 bytes
	Network   string

	// Optional token fields (§3), empty when the request carries no asset.
	TokenAddress string
	TokenKind    string
	TokenAmount  string
	TokenID      string
}

// Verified is the decoded, signature-checked request the rest of the
// pipeline operates on.
type Verified struct {
	From      string
	To        string
	Value     *big.Int
	Gas       uint64
	UserNonce uint64
	Data      []byte
	Network   string

	TokenAddress string
	TokenKind    string
	TokenAmount  *big.Int
	TokenID      *big.Int
}

// NetworkDomain is the per-network EIP-712 domain binding (§4.5, §6):
// "the relayer MUST reproduce it bit-exactly".
type NetworkDomain struct {
	ChainID          uint64
	ForwarderAddress string
}

const (
	domainName    = "MinimalForwarder"
	domainVersion = "0.0.1"
)
