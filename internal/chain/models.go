package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Call describes an unsigned on-chain call, used for both gas estimation
// and revert simulation (§4.3, §4.8 steps 3-5).
type Call struct {
	From  common.Address
	To    common.Address
	Value *big.Int
	Data  []byte
}

// UnsignedTx carries the fields the pipeline hands to the Signer
// Capability (C1) once fee, gas and sequence number are settled (§4.8
// step 7).
type UnsignedTx struct {
	To       common.Address
	Value    *big.Int
	Data     []byte
	GasLimit uint64
	GasPrice *big.Int
	Nonce    uint64
	ChainID  *big.Int
}

// Receipt is the chain-client-facing view of a transaction receipt; a
// nil *Receipt from Client.Receipt means "not yet mined".
type Receipt struct {
	Status      uint64
	BlockNumber uint64
	GasUsed     uint64
}

// FeeSuggestion is the chain's current fee signal (§4.3 fee-suggestion).
type FeeSuggestion struct {
	GasPrice *big.Int
}
