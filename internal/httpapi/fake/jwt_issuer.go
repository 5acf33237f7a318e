package fake

import (
	"sync"

	"github.com/golang-jwt/jwt"

	tokenIssuer "relayhub/pkg/jwt"
)

// JWTIssuer is a hand-written counterfeiter-shaped fake for
// httpapi.JWTIssuer.
type JWTIssuer struct {
	mu sync.Mutex

	GenerateStub        func(tokenIssuer.TokenInfo) *jwt.Token
	generateArgsForCall []struct{ data tokenIssuer.TokenInfo }
	generateReturns     struct{ result1 *jwt.Token }

	SignStub        func(*jwt.Token) (string, error)
	signArgsForCall []struct{ token *jwt.Token }
	signReturns     struct {
		result1 string
		result2 error
	}
}

func (f *JWTIssuer) Generate(data tokenIssuer.TokenInfo) *jwt.Token {
	f.mu.Lock()
	f.generateArgsForCall = append(f.generateArgsForCall, struct{ data tokenIssuer.TokenInfo }{data})
	f.mu.Unlock()
	if f.GenerateStub != nil {
		return f.GenerateStub(data)
	}
	return f.generateReturns.result1
}

func (f *JWTIssuer) GenerateReturns(token *jwt.Token) {
	f.GenerateStub = nil
	f.generateReturns.result1 = token
}

func (f *JWTIssuer) Sign(token *jwt.Token) (string, error) {
	f.mu.Lock()
	f.signArgsForCall = append(f.signArgsForCall, struct{ token *jwt.Token }{token})
	f.mu.Unlock()
	if f.SignStub != nil {
		return f.SignStub(token)
	}
	return f.signReturns.result1, f.signReturns.result2
}

func (f *JWTIssuer) SignReturns(signed string, err error) {
	f.SignStub = nil
	f.signReturns.result1 = signed
	f.signReturns.result2 = err
}
