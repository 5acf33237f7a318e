package fake

import (
	"context"
	"sync"

	"relayhub/internal/policy"
)

// RuleSource is a hand-written counterfeiter-shaped fake for
// policy.RuleSource.
type RuleSource struct {
	ListPolicyRulesStub        func(context.Context, string) ([]policy.StoredRule, error)
	mu                         sync.Mutex
	listPolicyRulesArgsForCall []struct {
		kind string
	}
	listPolicyRulesReturns struct {
		result1 []policy.StoredRule
		result2 error
	}
}

func (f *RuleSource) ListPolicyRules(ctx context.Context, kind string) ([]policy.StoredRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listPolicyRulesArgsForCall = append(f.listPolicyRulesArgsForCall, struct{ kind string }{kind})
	if f.ListPolicyRulesStub != nil {
		return f.ListPolicyRulesStub(ctx, kind)
	}
	return f.listPolicyRulesReturns.result1, f.listPolicyRulesReturns.result2
}

func (f *RuleSource) ListPolicyRulesReturns(result1 []policy.StoredRule, result2 error) {
	f.ListPolicyRulesStub = nil
	f.listPolicyRulesReturns = struct {
		result1 []policy.StoredRule
		result2 error
	}{result1, result2}
}

func (f *RuleSource) ListPolicyRulesCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listPolicyRulesArgsForCall)
}

var _ policy.RuleSource = (*RuleSource)(nil)
