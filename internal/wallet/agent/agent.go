// Package agent bridges the wallet session to a local signing agent over
// HTTP. The agent holds the user keys; this process only ever sees encoded
// envelopes and signatures.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tokenforge/deployer/internal/wallet"
)

type Agent struct {
	baseURL string
	client  *http.Client
}

func New(baseURL string, timeout time.Duration) *Agent {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Agent{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Discover probes the agent's status endpoint. An unreachable agent is "not
// there yet", reported as an error so the session keeps polling.
func (a *Agent) Discover(ctx context.Context) (wallet.Extension, error) {
	if _, err := a.status(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Agent) Connected(ctx context.Context) (bool, error) {
	st, err := a.status(ctx)
	if err != nil {
		return false, err
	}
	return st.Connected, nil
}

func (a *Agent) Allowed(ctx context.Context) (bool, error) {
	st, err := a.status(ctx)
	if err != nil {
		return false, err
	}
	return st.Allowed, nil
}

func (a *Agent) RequestAccess(ctx context.Context, hint wallet.NetworkHint) (string, error) {
	var resp struct {
		Address string `json:"address"`
	}
	err := a.post(ctx, "/access", map[string]string{
		"passphrase": hint.Passphrase,
		"rpcUrl":     hint.RPCURL,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Address, nil
}

func (a *Agent) Address(ctx context.Context) (string, error) {
	var resp struct {
		Address string `json:"address"`
	}
	if err := a.get(ctx, "/account", &resp); err != nil {
		return "", err
	}
	return resp.Address, nil
}

func (a *Agent) Network(ctx context.Context) (wallet.NetworkDetails, error) {
	var resp struct {
		Network    string `json:"network"`
		Passphrase string `json:"passphrase"`
	}
	if err := a.get(ctx, "/network", &resp); err != nil {
		return wallet.NetworkDetails{}, err
	}
	return wallet.NetworkDetails{Network: resp.Network, Passphrase: resp.Passphrase}, nil
}

func (a *Agent) SignTransaction(ctx context.Context, envelope, passphrase string) (string, error) {
	var resp struct {
		SignedEnvelope string `json:"signedEnvelope"`
	}
	err := a.post(ctx, "/sign", map[string]string{
		"envelope":   envelope,
		"passphrase": passphrase,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.SignedEnvelope == "" {
		return "", fmt.Errorf("agent returned an empty signature")
	}
	return resp.SignedEnvelope, nil
}

// RevokeAccess implements the optional wallet.AccessRevoker capability.
func (a *Agent) RevokeAccess(ctx context.Context) error {
	return a.post(ctx, "/revoke", nil, nil)
}

type statusResponse struct {
	Connected bool `json:"connected"`
	Allowed   bool `json:"allowed"`
}

func (a *Agent) status(ctx context.Context) (statusResponse, error) {
	var st statusResponse
	if err := a.get(ctx, "/status", &st); err != nil {
		return statusResponse{}, err
	}
	return st, nil
}

func (a *Agent) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build agent request: %w", err)
	}
	return a.do(req, out)
}

func (a *Agent) post(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode agent request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return a.do(req, out)
}

func (a *Agent) do(req *http.Request, out any) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("agent request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("agent returned status %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode agent response: %w", err)
	}

	return nil
}
