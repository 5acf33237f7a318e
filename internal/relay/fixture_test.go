package relay_test

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"relayhub/internal/verify"
)

func mustKey() *ecdsa.PrivateKey {
	k, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return k
}

// signRequest reproduces the production EIP-712 digest construction
// independently, the way a signing client would, for use as a fixture.
func signRequest(key *ecdsa.PrivateKey, domain verify.NetworkDomain, from, to common.Address, value, gas, nonce *big.Int, data []byte) (string, error) {
	domainTypeHash := crypto.Keccak256Hash([]byte("EIP712Domain(string name,string version,uint256 chainId,address verifyingContract)"))
	reqTypeHash := crypto.Keccak256Hash([]byte("ForwardRequest(address from,address to,uint256 value,uint256 gas,uint256 nonce,bytes data)"))

	addressType, _ := abi.NewType("address", "", nil)
	uint256Type, _ := abi.NewType("uint256", "", nil)
	bytes32Type, _ := abi.NewType("bytes32", "", nil)

	domainArgs := abi.Arguments{{Type: bytes32Type}, {Type: bytes32Type}, {Type: bytes32Type}, {Type: uint256Type}, {Type: addressType}}
	domainPacked, err := domainArgs.Pack(
		domainTypeHash,
		crypto.Keccak256Hash([]byte("MinimalForwarder")),
		crypto.Keccak256Hash([]byte("0.0.1")),
		new(big.Int).SetUint64(domain.ChainID),
		common.HexToAddress(domain.ForwarderAddress),
	)
	if err != nil {
		return "", err
	}
	domainSeparator := crypto.Keccak256(domainPacked)

	structArgs := abi.Arguments{{Type: bytes32Type}, {Type: addressType}, {Type: addressType}, {Type: uint256Type}, {Type: uint256Type}, {Type: uint256Type}, {Type: bytes32Type}}
	structPacked, err := structArgs.Pack(reqTypeHash, from, to, value, gas, nonce, crypto.Keccak256Hash(data))
	if err != nil {
		return "", err
	}
	structHash := crypto.Keccak256(structPacked)

	digest := crypto.Keccak256(bytes.Join([][]byte{{0x19, 0x01}, domainSeparator, structHash}, nil))

	sig, err := crypto.Sign(digest, key)
	if err != nil {
		return "", err
	}
	if sig[64] < 27 {
		sig[64] += 27
	}
	return fmt.Sprintf("0x%x", sig), nil
}
