package fake

import (
	"context"
	"sync"

	"relayhub/internal/relay"
	"relayhub/internal/verify"
)

// RelayService is a hand-written counterfeiter-shaped fake for
// httpapi.RelayService.
type RelayService struct {
	mu sync.Mutex

	RelayStub        func(context.Context, verify.Raw) (relay.Result, error)
	relayArgsForCall []struct{ raw verify.Raw }
	relayReturns     struct {
		result1 relay.Result
		result2 error
	}
}

func (f *RelayService) Relay(ctx context.Context, raw verify.Raw) (relay.Result, error) {
	f.mu.Lock()
	f.relayArgsForCall = append(f.relayArgsForCall, struct{ raw verify.Raw }{raw})
	f.mu.Unlock()
	if f.RelayStub != nil {
		return f.RelayStub(ctx, raw)
	}
	return f.relayReturns.result1, f.relayReturns.result2
}

func (f *RelayService) RelayReturns(result relay.Result, err error) {
	f.RelayStub = nil
	f.relayReturns.result1 = result
	f.relayReturns.result2 = err
}

func (f *RelayService) RelayCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.relayArgsForCall)
}

func (f *RelayService) RelayArgsForCall(i int) verify.Raw {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.relayArgsForCall[i].raw
}
