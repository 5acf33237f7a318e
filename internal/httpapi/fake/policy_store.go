package fake

import (
	"context"
	"sync"

	"relayhub/internal/store"
)

// PolicyStore is a hand-written counterfeiter-shaped fake for
// httpapi.PolicyStore.
type PolicyStore struct {
	mu sync.Mutex

	ListPolicyRulesStub        func(context.Context, string) ([]store.PolicyRule, error)
	listPolicyRulesArgsForCall []struct{ kind string }
	listPolicyRulesReturns     struct {
		result1 []store.PolicyRule
		result2 error
	}

	CreatePolicyRuleStub        func(context.Context, store.PolicyRule) error
	createPolicyRuleArgsForCall []struct{ rule store.PolicyRule }
	createPolicyRuleReturns     struct{ result1 error }

	UpdatePolicyRuleStub        func(context.Context, string, map[string]interface{}) error
	updatePolicyRuleArgsForCall []struct {
		id     string
		fields map[string]interface{}
	}
	updatePolicyRuleReturns struct{ result1 error }

	DeletePolicyRuleStub        func(context.Context, string) error
	deletePolicyRuleArgsForCall []struct{ id string }
	deletePolicyRuleReturns     struct{ result1 error }
}

func (f *PolicyStore) ListPolicyRules(ctx context.Context, kind string) ([]store.PolicyRule, error) {
	f.mu.Lock()
	f.listPolicyRulesArgsForCall = append(f.listPolicyRulesArgsForCall, struct{ kind string }{kind})
	f.mu.Unlock()
	if f.ListPolicyRulesStub != nil {
		return f.ListPolicyRulesStub(ctx, kind)
	}
	return f.listPolicyRulesReturns.result1, f.listPolicyRulesReturns.result2
}

func (f *PolicyStore) ListPolicyRulesReturns(rules []store.PolicyRule, err error) {
	f.ListPolicyRulesStub = nil
	f.listPolicyRulesReturns.result1 = rules
	f.listPolicyRulesReturns.result2 = err
}

func (f *PolicyStore) CreatePolicyRule(ctx context.Context, rule store.PolicyRule) error {
	f.mu.Lock()
	f.createPolicyRuleArgsForCall = append(f.createPolicyRuleArgsForCall, struct{ rule store.PolicyRule }{rule})
	f.mu.Unlock()
	if f.CreatePolicyRuleStub != nil {
		return f.CreatePolicyRuleStub(ctx, rule)
	}
	return f.createPolicyRuleReturns.result1
}

func (f *PolicyStore) CreatePolicyRuleReturns(err error) {
	f.CreatePolicyRuleStub = nil
	f.createPolicyRuleReturns.result1 = err
}

func (f *PolicyStore) CreatePolicyRuleArgsForCall(i int) store.PolicyRule {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.createPolicyRuleArgsForCall[i].rule
}

func (f *PolicyStore) CreatePolicyRuleCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createPolicyRuleArgsForCall)
}

func (f *PolicyStore) UpdatePolicyRule(ctx context.Context, id string, fields map[string]interface{}) error {
	f.mu.Lock()
	f.updatePolicyRuleArgsForCall = append(f.updatePolicyRuleArgsForCall, struct {
		id     string
		fields map[string]interface{}
	}{id, fields})
	f.mu.Unlock()
	if f.UpdatePolicyRuleStub != nil {
		return f.UpdatePolicyRuleStub(ctx, id, fields)
	}
	return f.updatePolicyRuleReturns.result1
}

func (f *PolicyStore) UpdatePolicyRuleReturns(err error) {
	f.UpdatePolicyRuleStub = nil
	f.updatePolicyRuleReturns.result1 = err
}

func (f *PolicyStore) UpdatePolicyRuleCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updatePolicyRuleArgsForCall)
}

func (f *PolicyStore) DeletePolicyRule(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deletePolicyRuleArgsForCall = append(f.deletePolicyRuleArgsForCall, struct{ id string }{id})
	f.mu.Unlock()
	if f.DeletePolicyRuleStub != nil {
		return f.DeletePolicyRuleStub(ctx, id)
	}
	return f.deletePolicyRuleReturns.result1
}

func (f *PolicyStore) DeletePolicyRuleReturns(err error) {
	f.DeletePolicyRuleStub = nil
	f.deletePolicyRuleReturns.result1 = err
}
