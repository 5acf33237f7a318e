package signer

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
)

// HTTPTransport is a minimal KeyManagementTransport over a JSON HTTP
// API, used when SignerKindHosted is configured without a vendor KMS SDK
// in hand. No hosted-KMS client appears anywhere in the example pack for
// this role (see DESIGN.md), so this is plain net/http rather than a
// fabricated vendor dependency.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
}

func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{baseURL: baseURL, client: &http.Client{}}
}

type addressResponse struct {
	Address string `json:"address"`
}

func (t *HTTPTransport) Address(ctx context.Context, network string) (common.Address, error) {
	url := fmt.Sprintf("%s/address?network=%s", t.baseURL, network)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("build address request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return common.Address{}, fmt.Errorf("fetch relayer address: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return common.Address{}, fmt.Errorf("fetch relayer address: status %d", resp.StatusCode)
	}

	var out addressResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return common.Address{}, fmt.Errorf("decode address response: %w", err)
	}
	return common.HexToAddress(out.Address), nil
}

type signRequest struct {
	Network     string `json:"network"`
	UnsignedRLP string `json:"unsigned_rlp"`
}

type signResponse struct {
	SignedRLP string `json:"signed_rlp"`
}

func (t *HTTPTransport) SignRLP(ctx context.Context, network string, unsignedRLP []byte) ([]byte, error) {
	body, err := json.Marshal(signRequest{Network: network, UnsignedRLP: hex.EncodeToString(unsignedRLP)})
	if err != nil {
		return nil, fmt.Errorf("marshal sign request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/sign", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call sign: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("call sign: status %d", resp.StatusCode)
	}

	var out signResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sign response: %w", err)
	}
	return hex.DecodeString(out.SignedRLP)
}
