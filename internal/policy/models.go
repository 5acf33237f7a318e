// Package policy implements the Policy Engine (C4): allowlist, quota,
// gas-cap and token-cap rule evaluation over a verified request.
package policy

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jellydator/validation"
)

// Kind enumerates the four rule kinds (§4.4), evaluated strictly in this
// order.
type Kind string

const (
	KindAllowlist Kind = "allowlist"
	KindQuota     Kind = "quota"
	KindGasCap    Kind = "gas-cap"
	KindTokenCap  Kind = "token-cap"
)

var evaluationOrder = []Kind{KindAllowlist, KindQuota, KindGasCap, KindTokenCap}

// Rule is the in-memory, kind-decoded form of a stored PolicyRule row.
type Rule struct {
	ID      string
	Kind    Kind
	Target  string // "*" or a network name
	Enabled bool

	Allowlist *AllowlistValue
	Quota     *QuotaValue
	GasCap    *GasCapValue
	TokenCap  *TokenCapValue
}

// AllowlistValue requires from to be a member of Addresses; an empty set
// denies everyone for that target (§4.4).
type AllowlistValue struct {
	Addresses []string `json:"addresses"`
}

func (v AllowlistValue) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Addresses, validation.Each(validation.Match(hexAddressRegex))),
	)
}

func (v AllowlistValue) allows(address string) bool {
	for _, a := range v.Addresses {
		if strings.EqualFold(a, address) {
			return true
		}
	}
	return false
}

// QuotaValue bounds transaction count and value over rolling windows
// (§4.4). A zero count or an empty decimal string means "no limit" for
// that field; a decimal string of "0" is a limit of zero.
type QuotaValue struct {
	MaxTxPerHour    uint64 `json:"maxTxPerHour"`
	MaxTxPerDay     uint64 `json:"maxTxPerDay"`
	MaxValuePerTx   string `json:"maxValuePerTx"`
	MaxValuePerHour string `json:"maxValuePerHour"`
	MaxValuePerDay  string `json:"maxValuePerDay"`
}

func (v QuotaValue) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.MaxValuePerTx, validation.Match(decimalRegex)),
		validation.Field(&v.MaxValuePerHour, validation.Match(decimalRegex)),
		validation.Field(&v.MaxValuePerDay, validation.Match(decimalRegex)),
	)
}

// GasCapValue bounds declared gas limit and the fee the pipeline intends
// to submit at (§4.4). A zero MaxGasLimit or an empty MaxGasPrice means
// "no limit"; a MaxGasPrice of "0" is a limit of zero.
type GasCapValue struct {
	MaxGasLimit  uint64 `json:"maxGasLimit"`
	MaxGasPrice  string `json:"maxGasPrice"`
}

func (v GasCapValue) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.MaxGasPrice, validation.Match(decimalRegex)),
	)
}

// TokenCapValue restricts which token addresses may be relayed and caps
// the `amount` field per transaction/hour/day (§4.4).
type TokenCapValue struct {
	AllowedTokens  []string `json:"allowedTokens"`
	MaxAmountPerTx string   `json:"maxAmountPerTx"`
	MaxAmountHour  string   `json:"maxAmountHour"`
	MaxAmountDay   string   `json:"maxAmountDay"`
}

func (v TokenCapValue) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.AllowedTokens, validation.Each(validation.Match(hexAddressRegex))),
		validation.Field(&v.MaxAmountPerTx, validation.Match(decimalRegex)),
		validation.Field(&v.MaxAmountHour, validation.Match(decimalRegex)),
		validation.Field(&v.MaxAmountDay, validation.Match(decimalRegex)),
	)
}

func (v TokenCapValue) allows(tokenAddress string) bool {
	if len(v.AllowedTokens) == 0 {
		return true
	}
	for _, t := range v.AllowedTokens {
		if strings.EqualFold(t, tokenAddress) {
			return true
		}
	}
	return false
}

var (
	hexAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	decimalRegex    = regexp.MustCompile(`^$|^[0-9]+$`)
)

// DecodeRule parses a stored rule's opaque JSON value against its kind's
// schema, the revalidation §6 requires on every policy-rule write.
func DecodeRule(id string, kind Kind, target string, enabled bool, rawValue string) (Rule, error) {
	rule := Rule{ID: id, Kind: kind, Target: target, Enabled: enabled}
	switch kind {
	case KindAllowlist:
		var v AllowlistValue
		if err := decodeAndValidate(rawValue, &v); err != nil {
			return Rule{}, err
		}
		rule.Allowlist = &v
	case KindQuota:
		var v QuotaValue
		if err := decodeAndValidate(rawValue, &v); err != nil {
			return Rule{}, err
		}
		rule.Quota = &v
	case KindGasCap:
		var v GasCapValue
		if err := decodeAndValidate(rawValue, &v); err != nil {
			return Rule{}, err
		}
		rule.GasCap = &v
	case KindTokenCap:
		var v TokenCapValue
		if err := decodeAndValidate(rawValue, &v); err != nil {
			return Rule{}, err
		}
		rule.TokenCap = &v
	default:
		return Rule{}, fmt.Errorf("%w: %q", ErrUnknownRuleKind, kind)
	}
	return rule, nil
}

func decodeAndValidate(raw string, v validation.Validatable) error {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("decode rule value: %w", err)
	}
	if err := v.Validate(); err != nil {
		return fmt.Errorf("validate rule value: %w", err)
	}
	return nil
}
