package verify

import (
	"bytes"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// forwardRequestTypeHash is keccak256 of the ForwardRequest type string
// (§4.5: "over the field tuple {from, to, value, gas, user-nonce,
// data}").
var forwardRequestTypeHash = crypto.Keccak256Hash(
	[]byte("ForwardRequest(address from,address to,uint256 value,uint256 gas,uint256 nonce,bytes data)"),
)

var eip712DomainTypeHash = crypto.Keccak256Hash(
	[]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"),
)

func domainSeparator(d NetworkDomain) ([]byte, error) {
	args := abi.Arguments{
		{Type: mustType("bytes32")},
		{Type: mustType("bytes32")},
		{Type: mustType("bytes32")},
		{Type: mustType("uint256")},
		{Type: mustType("address")},
	}
	packed, err := args.Pack(
		eip712DomainTypeHash,
		crypto.Keccak256Hash([]byte(domainName)),
		crypto.Keccak256Hash([]byte(domainVersion)),
		new(big.Int).SetUint64(d.ChainID),
		common.HexToAddress(d.ForwarderAddress),
	)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(packed), nil
}

// structHash hashes the ForwardRequest struct over exactly the tuple
// §4.5 names, in field order.
func structHash(from, to common.Address, value, gas, nonce *big.Int, data []byte) ([]byte, error) {
	args := abi.Arguments{
		{Type: mustType("bytes32")},
		{Type: mustType("address")},
		{Type: mustType("address")},
		{Type: mustType("uint256")},
		{Type: mustType("uint256")},
		{Type: mustType("uint256")},
		{Type: mustType("bytes32")},
	}
	packed, err := args.Pack(
		forwardRequestTypeHash,
		from,
		to,
		value,
		gas,
		nonce,
		crypto.Keccak256Hash(data),
	)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(packed), nil
}

// digest computes keccak256("\x19\x01" || domainSeparator || structHash),
// the final EIP-712 signing digest (§4.5, §6).
func digest(domain NetworkDomain, from, to common.Address, value, gas, nonce *big.Int, data []byte) ([]byte, error) {
	ds, err := domainSeparator(domain)
	if err != nil {
		return nil, err
	}
	sh, err := structHash(from, to, value, gas, nonce, data)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256(bytes.Join([][]byte{{0x19, 0x01}, ds, sh}, nil)), nil
}

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic("verify: invalid abi type " + t + ": " + err.Error())
	}
	return typ
}

// recoverSigner recovers the signing address from digest and a 65-byte
// [R || S || V] signature, normalizing V from the Ethereum 27/28
// convention to go-ethereum's 0/1 convention when needed.
func recoverSigner(digest []byte, sig []byte) (common.Address, error) {
	if len(sig) != 65 {
		return common.Address{}, errInvalidSignatureLength
	}
	normalized := make([]byte, 65)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	pub, err := crypto.SigToPub(digest, normalized)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}
