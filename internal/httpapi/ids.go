package httpapi

import "github.com/google/uuid"

func newRuleID() string {
	return uuid.NewString()
}
