package httpapi

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"relayhub/internal/store"
	tokenIssuer "relayhub/pkg/jwt"
)

var (
	ErrOperatorNotFound  = errors.New("operator not found")
	ErrIncorrectPassword = errors.New("incorrect password")
)

// Authenticator checks operator credentials and mints a session token,
// the admin-surface repurposing of the teacher's Fethcher.Authenticate.
type Authenticator struct {
	operators OperatorStore
	issuer    JWTIssuer
}

func NewAuthenticator(operators OperatorStore, issuer JWTIssuer) *Authenticator {
	return &Authenticator{operators: operators, issuer: issuer}
}

func (a *Authenticator) Login(ctx context.Context, username, password string) (string, error) {
	op, err := a.operators.GetOperatorByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrOperatorNotFound
		}
		return "", fmt.Errorf("get operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return "", ErrIncorrectPassword
	}

	info := tokenIssuer.TokenInfo{
		OperatorName: op.Username,
		Subject:      op.ID,
		Expiration:   24,
	}
	token := a.issuer.Generate(info)
	signed, err := a.issuer.Sign(token)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
