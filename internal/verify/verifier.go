package verify

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jellydator/validation"
)

var errInvalidSignatureLength = errors.New("signature must be 65 bytes")

var (
	hexAddressRegex   = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	hexDataRegex      = regexp.MustCompile(`^0x([a-fA-F0-9]{2})*$`)
	hexSignatureRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{130}$`)
	decimalRegex      = regexp.MustCompile(`^[0-9]+$`)
)

func (r Raw) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.Required, validation.Match(hexAddressRegex)),
		validation.Field(&r.To, validation.Required, validation.Match(hexAddressRegex)),
		validation.Field(&r.Value, validation.Required, validation.Match(decimalRegex)),
		validation.Field(&r.Gas, validation.Required, validation.Match(decimalRegex)),
		validation.Field(&r.UserNonce, validation.Required, validation.Match(decimalRegex)),
		validation.Field(&r.Data, validation.Required, validation.Match(hexDataRegex)),
		validation.Field(&r.Signature, validation.Required, validation.Match(hexSignatureRegex)),
		validation.Field(&r.Network, validation.Required),
	)
}

// Ceilings are the hard, policy-independent floor defence step 3 checks
// (§4.5: "independent of policy").
type Ceilings struct {
	MaxGasLimit uint64
	MaxTxValue  *big.Int
}

// Networks resolves a network name to its chain-id/forwarder-contract
// binding (step 2 and step 4, §4.5).
type Networks interface {
	Domain(network string) (NetworkDomain, bool)
}

// Verifier runs the five ordered steps of §4.5.
type Verifier struct {
	networks Networks
	ceilings Ceilings
}

func New(networks Networks, ceilings Ceilings) *Verifier {
	return &Verifier{networks: networks, ceilings: ceilings}
}

// Verify runs structural validation, network membership, ceiling
// checks, structured-data hash reconstruction, and signature recovery,
// in that order (§4.5). Any failing step returns a wrapped
// ErrInvalidRequest or ErrUnsupportedNetwork naming the offending field.
func (v *Verifier) Verify(raw Raw) (Verified, error) {
	if err := raw.Validate(); err != nil {
		return Verified{}, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}

	domain, ok := v.networks.Domain(raw.Network)
	if !ok {
		return Verified{}, fmt.Errorf("%w: %s", ErrUnsupportedNetwork, raw.Network)
	}

	value, ok := new(big.Int).SetString(raw.Value, 10)
	if !ok {
		return Verified{}, fmt.Errorf("%w: value is not a well-formed decimal", ErrInvalidRequest)
	}
	gas, ok := new(big.Int).SetString(raw.Gas, 10)
	if !ok || !gas.IsUint64() {
		return Verified{}, fmt.Errorf("%w: gas is not a well-formed decimal", ErrInvalidRequest)
	}
	nonce, ok := new(big.Int).SetString(raw.UserNonce, 10)
	if !ok {
		return Verified{}, fmt.Errorf("%w: user-nonce is not a well-formed decimal", ErrInvalidRequest)
	}

	if v.ceilings.MaxGasLimit > 0 && gas.Uint64() > v.ceilings.MaxGasLimit {
		return Verified{}, fmt.Errorf("%w: gas %s exceeds hard ceiling", ErrInvalidRequest, raw.Gas)
	}
	if v.ceilings.MaxTxValue != nil && value.Cmp(v.ceilings.MaxTxValue) > 0 {
		return Verified{}, fmt.Errorf("%w: value %s exceeds hard ceiling", ErrInvalidRequest, raw.Value)
	}

	data, err := hex.DecodeString(strings.TrimPrefix(raw.Data, "0x"))
	if err != nil {
		return Verified{}, fmt.Errorf("%w: data is not well-formed hex", ErrInvalidRequest)
	}
	sig, err := hex.DecodeString(strings.TrimPrefix(raw.Signature, "0x"))
	if err != nil {
		return Verified{}, fmt.Errorf("%w: signature is not well-formed hex", ErrInvalidRequest)
	}

	from := common.HexToAddress(raw.From)
	to := common.HexToAddress(raw.To)

	d, err := digest(domain, from, to, value, gas, nonce, data)
	if err != nil {
		return Verified{}, fmt.Errorf("%w: could not build structured-data digest: %v", ErrInvalidRequest, err)
	}
	recovered, err := recoverSigner(d, sig)
	if err != nil {
		return Verified{}, fmt.Errorf("%w: could not recover signer: %v", ErrInvalidRequest, err)
	}
	if !strings.EqualFold(recovered.Hex(), from.Hex()) {
		return Verified{}, fmt.Errorf("%w: recovered signer does not match from", ErrInvalidRequest)
	}

	verified := Verified{
		From:         from.Hex(),
		To:           to.Hex(),
		Value:        value,
		Gas:          gas.Uint64(),
		UserNonce:    nonce.Uint64(),
		Data:         data,
		Network:      raw.Network,
		TokenAddress: raw.TokenAddress,
		TokenKind:    raw.TokenKind,
	}

	if raw.TokenAmount != "" {
		amt, ok := new(big.Int).SetString(raw.TokenAmount, 10)
		if !ok {
			return Verified{}, fmt.Errorf("%w: token-amount is not a well-formed decimal", ErrInvalidRequest)
		}
		verified.TokenAmount = amt
	}
	if raw.TokenID != "" {
		id, ok := new(big.Int).SetString(raw.TokenID, 10)
		if !ok {
			return Verified{}, fmt.Errorf("%w: token-id is not a well-formed decimal", ErrInvalidRequest)
		}
		verified.TokenID = id
	}

	return verified, nil
}
