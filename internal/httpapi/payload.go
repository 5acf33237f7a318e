package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	valid "github.com/jellydator/validation"
	"github.com/shopspring/decimal"

	"relayhub/internal/store"
	"relayhub/internal/verify"
)

// decodeAndValidate mirrors the teacher's payload.DecodeAndValidateJSONPayload:
// decode the body, then run the payload's own Validate().
func decodeAndValidate(r *http.Request, payload interface{ Validate() error }) error {
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return verify.ErrInvalidRequest
	}
	return payload.Validate()
}

// relayRequest is the POST /relay body, mapping field-for-field onto
// verify.Raw (§3: the meta-transaction envelope).
type relayRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	Gas       string `json:"gas"`
	UserNonce string `json:"user_nonce"`
	Data      string `json:"data"`
	Signature string `json:"signature"`
	Network   string `json:"network"`

	TokenAddress string `json:"token_address,omitempty"`
	TokenKind    string `json:"token_kind,omitempty"`
	TokenAmount  string `json:"token_amount,omitempty"`
	TokenID      string `json:"token_id,omitempty"`
}

func (p relayRequest) Validate() error {
	return valid.ValidateStruct(&p,
		valid.Field(&p.From, valid.Required),
		valid.Field(&p.To, valid.Required),
		valid.Field(&p.Value, valid.Required),
		valid.Field(&p.Gas, valid.Required),
		valid.Field(&p.UserNonce, valid.Required),
		valid.Field(&p.Data, valid.Required),
		valid.Field(&p.Signature, valid.Required),
		valid.Field(&p.Network, valid.Required),
	)
}

func (p relayRequest) toRaw() verify.Raw {
	return verify.Raw{
		From:         p.From,
		To:           p.To,
		Value:        p.Value,
		Gas:          p.Gas,
		UserNonce:    p.UserNonce,
		Data:         p.Data,
		Signature:    p.Signature,
		Network:      p.Network,
		TokenAddress: p.TokenAddress,
		TokenKind:    p.TokenKind,
		TokenAmount:  p.TokenAmount,
		TokenID:      p.TokenID,
	}
}

// relayResponse is the success body for POST /relay.
type relayResponse struct {
	TxHash   string `json:"tx_hash"`
	GasPrice string `json:"gas_price"`
	GasLimit uint64 `json:"gas_limit"`
}

// transactionResponse renders a store.Transaction for the status and
// listing endpoints.
type transactionResponse struct {
	TxHash            string  `json:"tx_hash"`
	From              string  `json:"from"`
	To                string  `json:"to"`
	Network           string  `json:"network"`
	Value             string  `json:"value"`
	Status            string  `json:"status"`
	DeclaredGasLimit  uint64  `json:"declared_gas_limit"`
	EffectiveGasPrice string  `json:"effective_gas_price,omitempty"`
	ObservedGasUsed   uint64  `json:"observed_gas_used,omitempty"`
	BlockNumber       *uint64 `json:"block_number,omitempty"`
	SequenceNumber    uint64  `json:"sequence_number"`
	RelayerAddress    string  `json:"relayer_address"`
	Stuck             bool    `json:"stuck"`
	SubmittedAt       string  `json:"submitted_at"`
	UpdatedAt         string  `json:"updated_at"`

	TokenAddress string `json:"token_address,omitempty"`
	TokenKind    string `json:"token_kind,omitempty"`
	TokenAmount  string `json:"token_amount,omitempty"`
	TokenID      string `json:"token_id,omitempty"`
}

// decimalString renders a store.BigInt through shopspring/decimal rather
// than big.Int.String() directly, so the wire format is produced by the
// same presentation-safe decimal layer regardless of which gorm numeric
// column it came from.
func decimalString(b store.BigInt) string {
	if b.Int == nil {
		return decimal.Zero.String()
	}
	return decimal.NewFromBigInt(b.Int, 0).String()
}

func renderTransaction(tx store.Transaction) transactionResponse {
	out := transactionResponse{
		TxHash:           tx.TxHash,
		From:             strings.ToLower(tx.From),
		To:               strings.ToLower(tx.To),
		Network:          tx.Network,
		Value:            decimalString(tx.Value),
		Status:           tx.Status,
		DeclaredGasLimit: tx.DeclaredGasLimit,
		ObservedGasUsed:  tx.ObservedGasUsed,
		BlockNumber:      tx.BlockNumber,
		SequenceNumber:   tx.SequenceNumber,
		RelayerAddress:   strings.ToLower(tx.RelayerAddress),
		Stuck:            tx.StuckSince != nil,
		SubmittedAt:      tx.SubmittedAt.UTC().Format(timeLayout),
		UpdatedAt:        tx.UpdatedAt.UTC().Format(timeLayout),
		TokenAddress:     strings.ToLower(tx.TokenAddress),
		TokenKind:        tx.TokenKind,
	}
	if tx.EffectiveGasPrice.Int != nil {
		out.EffectiveGasPrice = decimalString(tx.EffectiveGasPrice)
	}
	if tx.TokenAmount.Int != nil && tx.TokenAmount.Sign() != 0 {
		out.TokenAmount = decimalString(tx.TokenAmount)
	}
	if tx.TokenID.Int != nil && tx.TokenID.Sign() != 0 {
		out.TokenID = decimalString(tx.TokenID)
	}
	return out
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// loginRequest is the POST /admin/login body.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (p loginRequest) Validate() error {
	return valid.ValidateStruct(&p,
		valid.Field(&p.Username, valid.Required),
		valid.Field(&p.Password, valid.Required),
	)
}

// loginResponse is the success body for POST /admin/login.
type loginResponse struct {
	Token string `json:"token"`
}

// policyRuleRequest is the POST/PUT /admin/policy-rules body (§4.4: one
// rule per allowlist/quota/gas-cap/token-cap kind).
type policyRuleRequest struct {
	Kind    string `json:"kind"`
	Target  string `json:"target"`
	Value   string `json:"value"`
	Enabled *bool  `json:"enabled"`
}

func (p policyRuleRequest) Validate() error {
	return valid.ValidateStruct(&p,
		valid.Field(&p.Kind, valid.Required, valid.In("allowlist", "quota", "gas-cap", "token-cap")),
		valid.Field(&p.Value, valid.Required),
	)
}

// policyRuleResponse renders a store.PolicyRule.
type policyRuleResponse struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	Target  string `json:"target,omitempty"`
	Value   string `json:"value"`
	Enabled bool   `json:"enabled"`
}

func renderPolicyRule(rule store.PolicyRule) policyRuleResponse {
	return policyRuleResponse{
		ID:      rule.ID,
		Kind:    rule.Kind,
		Target:  rule.Target,
		Value:   rule.Value,
		Enabled: rule.Enabled,
	}
}
