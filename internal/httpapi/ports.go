// Package httpapi implements the External Interfaces (§6): the relay
// submit/status/listing/rlp endpoints, the admin policy-rule CRUD and
// login surface, and the live/ready health endpoints. Route registration
// and handler shape are generalized from the teacher's
// internal/http/handler package (stdlib net/http ServeMux with
// Go-1.22-style "METHOD /path" patterns, one small handler struct per
// concern, a shared JSON Response envelope).
package httpapi

import (
	"context"

	"github.com/golang-jwt/jwt"

	"relayhub/internal/relay"
	"relayhub/internal/store"
	"relayhub/internal/verify"
	tokenIssuer "relayhub/pkg/jwt"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -generate

// RelayService is the narrow slice of the Relay Pipeline (C8) the relay
// handler drives.
//
//counterfeiter:generate -o fake -fake-name RelayService . RelayService
type RelayService interface {
	Relay(ctx context.Context, raw verify.Raw) (relay.Result, error)
}

// TransactionStore backs the status and listing endpoints.
//
//counterfeiter:generate -o fake -fake-name TransactionStore . TransactionStore
type TransactionStore interface {
	GetTransactionByHash(ctx context.Context, txHash string) (store.Transaction, error)
	ListByAccount(ctx context.Context, address string, limit, offset int) ([]store.Transaction, error)
}

// PolicyStore backs the policy-rule CRUD endpoints.
//
//counterfeiter:generate -o fake -fake-name PolicyStore . PolicyStore
type PolicyStore interface {
	ListPolicyRules(ctx context.Context, kind string) ([]store.PolicyRule, error)
	CreatePolicyRule(ctx context.Context, rule store.PolicyRule) error
	UpdatePolicyRule(ctx context.Context, id string, fields map[string]interface{}) error
	DeletePolicyRule(ctx context.Context, id string) error
}

// PolicyReloader lets the admin surface request an out-of-band policy
// reload (§4.4) after a rule write.
//
//counterfeiter:generate -o fake -fake-name PolicyReloader . PolicyReloader
type PolicyReloader interface {
	Signal()
}

// OperatorStore backs admin login.
//
//counterfeiter:generate -o fake -fake-name OperatorStore . OperatorStore
type OperatorStore interface {
	GetOperatorByUsername(ctx context.Context, username string) (store.Operator, error)
}

// JWTIssuer mirrors the teacher's core.JWTIssuer port exactly, repurposed
// for operator sessions instead of end-user ones.
//
//counterfeiter:generate -o fake -fake-name JWTIssuer . JWTIssuer
type JWTIssuer interface {
	Generate(data tokenIssuer.TokenInfo) *jwt.Token
	Sign(token *jwt.Token) (string, error)
}

// Health reports whether the process is ready to serve relay traffic
// (§6: "ready returns success only when Store, Counter Cache, and all
// configured Chain Clients have reported healthy at least once").
//
//counterfeiter:generate -o fake -fake-name Health . Health
type Health interface {
	Ready() bool
}
