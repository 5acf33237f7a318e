package fake

import (
	"relayhub/internal/chain"
)

// Networks is a hand-written fake for relay.Networks.
type Networks struct {
	clients map[string]*chain.Client
}

func NewNetworks() *Networks {
	return &Networks{clients: make(map[string]*chain.Client)}
}

func (n *Networks) Register(network string, client *chain.Client) {
	n.clients[network] = client
}

func (n *Networks) Client(network string) (*chain.Client, error) {
	c, ok := n.clients[network]
	if !ok {
		return nil, chain.ErrUnsupportedNetwork
	}
	return c, nil
}
