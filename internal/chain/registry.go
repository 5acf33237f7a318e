package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"relayhub/internal/verify"
)

// ErrUnsupportedNetwork marks a network identifier the relay has no
// Client configured for (§5 "one of a closed set of network
// identifiers").
var ErrUnsupportedNetwork = fmt.Errorf("unsupported-network")

// Registry holds one Client per configured network, each independent per
// §4.3 ("there is no cross-network state").
type Registry struct {
	clients    map[string]*Client
	forwarders map[string]string
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client), forwarders: make(map[string]string)}
}

// Dial connects to an RPC endpoint and registers it under the given
// network name. Kept separate from NewRegistry so tests can register fake
// RPC implementations without dialing a real node.
func (r *Registry) Dial(network string, chainID int64, rpcURL, forwarderAddress string, retry RetryPolicy) error {
	rawClient, err := ethclient.Dial(rpcURL)
	if err != nil {
		return fmt.Errorf("dial %s: %w", network, err)
	}
	r.Register(network, New(network, big.NewInt(chainID), rawClient, retry))
	r.forwarders[network] = forwarderAddress
	return nil
}

func (r *Registry) Register(network string, client *Client) {
	r.clients[network] = client
}

// RegisterForwarder binds a network's EIP-712 forwarder contract address,
// the piece Dial sets automatically; exposed separately so tests can
// register a fake Client via Register and still exercise Domain.
func (r *Registry) RegisterForwarder(network, forwarderAddress string) {
	r.forwarders[network] = forwarderAddress
}

// Domain satisfies verify.Networks, binding each network to the EIP-712
// domain (§4.5) the Request Verifier (C5) checks signatures against.
func (r *Registry) Domain(network string) (verify.NetworkDomain, bool) {
	client, ok := r.clients[network]
	if !ok {
		return verify.NetworkDomain{}, false
	}
	forwarder, ok := r.forwarders[network]
	if !ok {
		return verify.NetworkDomain{}, false
	}
	return verify.NetworkDomain{ChainID: client.ChainID().Uint64(), ForwarderAddress: forwarder}, true
}

func (r *Registry) Get(network string) (*Client, error) {
	client, ok := r.clients[network]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedNetwork, network)
	}
	return client, nil
}

// Client satisfies the narrow Networks port both the Relay Pipeline (C8)
// and the Confirmation Tracker (C9) depend on.
func (r *Registry) Client(network string) (*Client, error) {
	return r.Get(network)
}

// PendingCount satisfies allocator.ChainCounter, resolving network to a
// registered Client before delegating to its own PendingCount.
func (r *Registry) PendingCount(ctx context.Context, network, address string) (uint64, error) {
	client, err := r.Get(network)
	if err != nil {
		return 0, err
	}
	return client.PendingCount(ctx, common.HexToAddress(address))
}

func (r *Registry) Networks() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// All returns a copy of the network-name-to-client map, so callers can
// iterate the registered clients without touching the registry itself.
func (r *Registry) All() map[string]*Client {
	out := make(map[string]*Client, len(r.clients))
	for k, v := range r.clients {
		out[k] = v
	}
	return out
}
