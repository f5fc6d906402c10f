package network

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/tokenforge/deployer/internal/logger"
)

// Faucet funds accounts on networks that expose a friendbot endpoint.
type Faucet struct {
	client *http.Client
	logger *slog.Logger
}

func NewFaucet() *Faucet {
	return &Faucet{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger.Named("faucet"),
	}
}

// Fund requests free test currency for the address. Networks without a
// faucet reject the request locally, without a network call.
func (f *Faucet) Fund(ctx context.Context, cfg *Config, address string) error {
	if !cfg.HasFaucet() {
		return fmt.Errorf("network %q has no faucet", cfg.Key)
	}

	endpoint := fmt.Sprintf("%s?addr=%s", cfg.FriendbotURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build faucet request: %w", err)
	}

	f.logger.With("network", cfg.Key).With("address", address).Info("requesting faucet funding")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("faucet request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("faucet returned status %d", resp.StatusCode)
	}

	f.logger.With("address", address).Info("account funded")

	return nil
}
