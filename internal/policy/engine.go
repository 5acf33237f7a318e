package policy

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"

	"relayhub/internal/counter"
)

// Engine holds the current rule set and evaluates requests against it in
// the fixed order allowlist -> quota -> gas-cap -> token-cap (§4.4).
// Rule reloads swap the whole indexed snapshot atomically, so evaluation
// never observes a half-updated set.
type Engine struct {
	source  RuleSource
	counter counter.Cache
	logger  *zap.SugaredLogger

	mu    sync.RWMutex
	rules indexedRules

	reloadSignal chan struct{}
}

type indexedRules struct {
	byKind map[Kind][]Rule
}

func New(source RuleSource, cache counter.Cache, logger *zap.SugaredLogger) *Engine {
	return &Engine{
		source:       source,
		counter:      cache,
		logger:       logger,
		rules:        indexedRules{byKind: make(map[Kind][]Rule)},
		reloadSignal: make(chan struct{}, 1),
	}
}

// Reload re-fetches every rule from the Store, decodes and validates
// each against its kind's schema, and swaps the snapshot atomically
// (§4.4). A single malformed rule does not abort the reload; it is
// logged and skipped so one bad row can't wedge admission entirely.
func (e *Engine) Reload(ctx context.Context) error {
	stored, err := e.source.ListPolicyRules(ctx, "")
	if err != nil {
		return fmt.Errorf("list policy rules: %w", err)
	}

	next := indexedRules{byKind: make(map[Kind][]Rule)}
	for _, s := range stored {
		if !s.Enabled {
			continue
		}
		kind := Kind(s.Kind)
		rule, err := DecodeRule(s.ID, kind, s.Target, s.Enabled, s.Value)
		if err != nil {
			e.logger.Warnw("skipping malformed policy rule", "id", s.ID, "kind", s.Kind, "err", err)
			continue
		}
		next.byKind[kind] = append(next.byKind[kind], rule)
	}

	e.mu.Lock()
	e.rules = next
	e.mu.Unlock()
	return nil
}

// RunReloadLoop periodically reloads rules on the given interval and
// additionally whenever Signal is called, until ctx is done (§4.4:
// "bounded schedule... and, additionally, on an explicit reload
// signal").
func (e *Engine) RunReloadLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.Reload(ctx); err != nil {
				e.logger.Errorw("scheduled policy reload failed", "err", err)
			}
		case <-e.reloadSignal:
			if err := e.Reload(ctx); err != nil {
				e.logger.Errorw("signalled policy reload failed", "err", err)
			}
		}
	}
}

// Signal requests an out-of-band reload; non-blocking if one is already
// pending.
func (e *Engine) Signal() {
	select {
	case e.reloadSignal <- struct{}{}:
	default:
	}
}

func (e *Engine) snapshot() indexedRules {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules
}

func targetMatches(ruleTarget, network string) bool {
	return ruleTarget == "*" || ruleTarget == network
}

// Evaluate applies every rule kind in order, first rejection wins
// (§4.4). IntendedFee may be nil when called ahead of fee computation;
// gas-cap's price check is then skipped by the caller re-invoking
// Evaluate after §4.8 step 4 with it populated.
func (e *Engine) Evaluate(ctx context.Context, req Request) (Decision, error) {
	snap := e.snapshot()

	if d, ok := e.evalAllowlist(snap, req); !ok {
		return d, nil
	}
	if d, err := e.evalQuota(ctx, snap, req); err != nil {
		return Decision{}, err
	} else if !d.Admitted {
		return d, nil
	}
	if d, ok := e.evalGasCap(snap, req); !ok {
		return d, nil
	}
	if d, err := e.evalTokenCap(ctx, snap, req); err != nil {
		return Decision{}, err
	} else if !d.Admitted {
		return d, nil
	}
	return Decision{Admitted: true}, nil
}

func (e *Engine) evalAllowlist(snap indexedRules, req Request) (Decision, bool) {
	for _, rule := range snap.byKind[KindAllowlist] {
		if !targetMatches(rule.Target, req.Network) {
			continue
		}
		if rule.Allowlist == nil || !rule.Allowlist.allows(req.From) {
			return Decision{Kind: KindAllowlist, Reason: fmt.Sprintf("%s is not allowlisted for %s", req.From, rule.Target)}, false
		}
	}
	return Decision{Admitted: true}, true
}

func (e *Engine) evalQuota(ctx context.Context, snap indexedRules, req Request) (Decision, error) {
	for _, rule := range snap.byKind[KindQuota] {
		if !targetMatches(rule.Target, req.Network) || rule.Quota == nil {
			continue
		}
		q := rule.Quota

		if q.MaxTxPerHour > 0 {
			n, err := e.countSince(ctx, "count", req, time.Hour)
			if err != nil {
				return Decision{}, err
			}
			if n+1 > q.MaxTxPerHour {
				return Decision{Kind: KindQuota, Reason: "hourly transaction quota exceeded"}, nil
			}
		}
		if q.MaxTxPerDay > 0 {
			n, err := e.countSince(ctx, "count", req, 24*time.Hour)
			if err != nil {
				return Decision{}, err
			}
			if n+1 > q.MaxTxPerDay {
				return Decision{Kind: KindQuota, Reason: "daily transaction quota exceeded"}, nil
			}
		}
		if limit, ok := parseLimit(q.MaxValuePerTx); ok && req.Value != nil && req.Value.Cmp(limit) > 0 {
			return Decision{Kind: KindQuota, Reason: "per-transaction value quota exceeded"}, nil
		}
		if limit, ok := parseLimit(q.MaxValuePerHour); ok {
			sum, err := e.valueSince(ctx, req, time.Hour)
			if err != nil {
				return Decision{}, err
			}
			if projected(sum, req.Value).Cmp(limit) > 0 {
				return Decision{Kind: KindQuota, Reason: "hourly value quota exceeded"}, nil
			}
		}
		if limit, ok := parseLimit(q.MaxValuePerDay); ok {
			sum, err := e.valueSince(ctx, req, 24*time.Hour)
			if err != nil {
				return Decision{}, err
			}
			if projected(sum, req.Value).Cmp(limit) > 0 {
				return Decision{Kind: KindQuota, Reason: "daily value quota exceeded"}, nil
			}
		}
	}
	return Decision{Admitted: true}, nil
}

func (e *Engine) evalGasCap(snap indexedRules, req Request) (Decision, bool) {
	for _, rule := range snap.byKind[KindGasCap] {
		if !targetMatches(rule.Target, req.Network) || rule.GasCap == nil {
			continue
		}
		g := rule.GasCap
		if g.MaxGasLimit > 0 && req.DeclaredGas > g.MaxGasLimit {
			return Decision{Kind: KindGasCap, Reason: "declared gas exceeds max-gas-limit"}, false
		}
		if limit, ok := parseLimit(g.MaxGasPrice); ok && req.IntendedFee != nil && req.IntendedFee.Cmp(limit) > 0 {
			return Decision{Kind: KindGasCap, Reason: "intended fee exceeds max-gas-price"}, false
		}
	}
	return Decision{Admitted: true}, true
}

// GasPriceCeiling returns the tightest max-gas-price ceiling among the
// gas-cap rules applicable to network, if any is configured. The Relay
// Pipeline consults this at §4.8 step 4, ahead of having an IntendedFee
// to run the full gas-cap evaluation against.
func (e *Engine) GasPriceCeiling(network string) (*big.Int, bool) {
	snap := e.snapshot()
	var tightest *big.Int
	for _, rule := range snap.byKind[KindGasCap] {
		if !targetMatches(rule.Target, network) || rule.GasCap == nil {
			continue
		}
		limit, ok := parseLimit(rule.GasCap.MaxGasPrice)
		if !ok {
			continue
		}
		if tightest == nil || limit.Cmp(tightest) < 0 {
			tightest = limit
		}
	}
	return tightest, tightest != nil
}

func (e *Engine) evalTokenCap(ctx context.Context, snap indexedRules, req Request) (Decision, error) {
	if req.TokenAddress == "" {
		return Decision{Admitted: true}, nil
	}
	for _, rule := range snap.byKind[KindTokenCap] {
		if !targetMatches(rule.Target, req.Network) || rule.TokenCap == nil {
			continue
		}
		t := rule.TokenCap
		if !t.allows(req.TokenAddress) {
			return Decision{Kind: KindTokenCap, Reason: fmt.Sprintf("token %s is not in allowed-tokens", req.TokenAddress)}, nil
		}
		if limit, ok := parseLimit(t.MaxAmountPerTx); ok && req.TokenAmount != nil && req.TokenAmount.Cmp(limit) > 0 {
			return Decision{Kind: KindTokenCap, Reason: "per-transaction token amount cap exceeded"}, nil
		}
		if limit, ok := parseLimit(t.MaxAmountHour); ok {
			sum, err := e.tokenAmountSince(ctx, req, time.Hour)
			if err != nil {
				return Decision{}, err
			}
			if projected(sum, req.TokenAmount).Cmp(limit) > 0 {
				return Decision{Kind: KindTokenCap, Reason: "hourly token amount cap exceeded"}, nil
			}
		}
		if limit, ok := parseLimit(t.MaxAmountDay); ok {
			sum, err := e.tokenAmountSince(ctx, req, 24*time.Hour)
			if err != nil {
				return Decision{}, err
			}
			if projected(sum, req.TokenAmount).Cmp(limit) > 0 {
				return Decision{Kind: KindTokenCap, Reason: "daily token amount cap exceeded"}, nil
			}
		}
	}
	return Decision{Admitted: true}, nil
}

func (e *Engine) countSince(ctx context.Context, dimension string, req Request, window time.Duration) (uint64, error) {
	key := counter.Key{Dimension: dimension, Identity: req.From, Network: req.Network}
	sum, err := e.counter.Sum(ctx, key, window, Now())
	if err != nil {
		return 0, fmt.Errorf("sum counter: %w", err)
	}
	if sum.Int == nil {
		return 0, nil
	}
	return sum.Int.Uint64(), nil
}

func (e *Engine) valueSince(ctx context.Context, req Request, window time.Duration) (*big.Int, error) {
	return e.sumSince(ctx, "value", req, window)
}

// tokenAmountSince sums the same "token:"+address dimension the Relay
// Pipeline records to on broadcast success (§4.8 step 10), mirroring
// valueSince's per-identity window sum but scoped to one token.
func (e *Engine) tokenAmountSince(ctx context.Context, req Request, window time.Duration) (*big.Int, error) {
	return e.sumSince(ctx, "token:"+req.TokenAddress, req, window)
}

func (e *Engine) sumSince(ctx context.Context, dimension string, req Request, window time.Duration) (*big.Int, error) {
	key := counter.Key{Dimension: dimension, Identity: req.From, Network: req.Network}
	sum, err := e.counter.Sum(ctx, key, window, Now())
	if err != nil {
		return nil, fmt.Errorf("sum counter: %w", err)
	}
	if sum.Int == nil {
		return new(big.Int), nil
	}
	return sum.Int, nil
}

func projected(sum *big.Int, value *big.Int) *big.Int {
	out := new(big.Int).Set(sum)
	if value != nil {
		out.Add(out, value)
	}
	return out
}

func parseLimit(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, false
	}
	return n, true
}
