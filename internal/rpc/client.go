// Package rpc is a typed wrapper over the chain's JSON-RPC 2.0 endpoint.
package rpc

import (
	"context"
	"fmt"
	"log/slog"

	gethrpc "github.com/ethereum/go-ethereum/rpc"

	"github.com/tokenforge/deployer/internal/logger"
)

type Client struct {
	rpc    *gethrpc.Client
	logger *slog.Logger
}

// Dial connects to the chain RPC endpoint.
func Dial(ctx context.Context, url string) (*Client, error) {
	c, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to dial RPC at %s: %w", url, err)
	}

	return &Client{
		rpc:    c,
		logger: logger.Named("rpc_client"),
	}, nil
}

func (c *Client) Close() {
	c.rpc.Close()
}

// GetAccount fetches the account's current sequence state.
func (c *Client) GetAccount(ctx context.Context, address string) (Account, error) {
	var account Account
	if err := c.rpc.CallContext(ctx, &account, "getAccount", address); err != nil {
		return Account{}, fmt.Errorf("getAccount failed: %w", err)
	}
	return account, nil
}

// SimulateTransaction dry-runs the encoded transaction envelope.
func (c *Client) SimulateTransaction(ctx context.Context, envelope string) (SimulateResponse, error) {
	var resp SimulateResponse
	if err := c.rpc.CallContext(ctx, &resp, "simulateTransaction", envelope); err != nil {
		return SimulateResponse{}, fmt.Errorf("simulateTransaction failed: %w", err)
	}
	return resp, nil
}

// SendTransaction submits a signed envelope.
func (c *Client) SendTransaction(ctx context.Context, signedEnvelope string) (SendResponse, error) {
	var resp SendResponse
	if err := c.rpc.CallContext(ctx, &resp, "sendTransaction", signedEnvelope); err != nil {
		return SendResponse{}, fmt.Errorf("sendTransaction failed: %w", err)
	}
	c.logger.With("hash", resp.Hash).With("status", resp.Status).Debug("transaction submitted")
	return resp, nil
}

// GetTransaction fetches the current status of a submitted transaction.
func (c *Client) GetTransaction(ctx context.Context, hash string) (TransactionResponse, error) {
	var resp TransactionResponse
	if err := c.rpc.CallContext(ctx, &resp, "getTransaction", hash); err != nil {
		return TransactionResponse{}, fmt.Errorf("getTransaction failed: %w", err)
	}
	return resp, nil
}

// Health checks whether the node is reachable and synced.
func (c *Client) Health(ctx context.Context) error {
	var status struct {
		Status string `json:"status"`
	}
	if err := c.rpc.CallContext(ctx, &status, "getHealth"); err != nil {
		return fmt.Errorf("getHealth failed: %w", err)
	}
	if status.Status != "healthy" {
		return fmt.Errorf("node reported status %q", status.Status)
	}
	return nil
}
