package policy

import (
	"context"

	"relayhub/internal/store"
)

// StoreAdapter adapts *store.Store to the narrow RuleSource port,
// keeping this package's schema-validating decode logic decoupled from
// gorm's concrete PolicyRule model.
type StoreAdapter struct {
	Store *store.Store
}

func (a StoreAdapter) ListPolicyRules(ctx context.Context, kind string) ([]StoredRule, error) {
	rows, err := a.Store.ListPolicyRules(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]StoredRule, 0, len(rows))
	for _, r := range rows {
		out = append(out, StoredRule{ID: r.ID, Kind: r.Kind, Target: r.Target, Value: r.Value, Enabled: r.Enabled})
	}
	return out, nil
}
