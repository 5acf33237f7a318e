package policy

import (
	"context"
	"errors"
	"math/big"
	"time"
)

var (
	ErrUnknownRuleKind = errors.New("unknown policy rule kind")
	ErrRejected        = errors.New("policy rejected")
)

// StoredRule is the minimal shape this package needs from a persisted
// policy rule row, decoupling it from internal/store's gorm model.
type StoredRule struct {
	ID      string
	Kind    string
	Target  string
	Value   string
	Enabled bool
}

// RuleSource lists all rules currently in the Store, for the engine's
// periodic and signalled reloads (§4.4).
//
//counterfeiter:generate -o fake -fake-name RuleSource . RuleSource
type RuleSource interface {
	ListPolicyRules(ctx context.Context, kind string) ([]StoredRule, error)
}

// Request is the subset of a verified request the engine evaluates
// against rules (§4.4, §3).
type Request struct {
	From         string
	Network      string
	Value        *big.Int
	DeclaredGas  uint64
	IntendedFee  *big.Int // fee the pipeline intends to submit at; nil before step 4 of §4.8
	TokenAddress string
	TokenAmount  *big.Int
}

// Decision is the engine's admit/reject verdict.
type Decision struct {
	Admitted bool
	Kind     Kind
	Reason   string
}

// Now lets tests fix wall-clock time deterministically.
var Now = time.Now
