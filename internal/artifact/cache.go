// Package artifact fetches the compiled contract from its remote host and
// pins it in memory. The slot is written once on first success and read for
// the rest of the process lifetime; there is no invalidation path.
package artifact

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/tokenforge/deployer/internal/logger"
)

type Cache struct {
	url    string
	client *http.Client
	logger *slog.Logger

	mu   sync.Mutex
	wasm []byte
}

func NewCache(url string, timeout time.Duration) *Cache {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Cache{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger.Named("artifact_cache"),
	}
}

// GetOrFetch returns the cached artifact, downloading it on first use.
// Concurrent callers serialize on the slot, so the host is hit at most once
// per successful fetch.
func (c *Cache) GetOrFetch(ctx context.Context) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.wasm != nil {
		return c.wasm, nil
	}

	c.logger.With("url", c.url).Info("fetching contract artifact")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build artifact request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("artifact download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("artifact host returned status %d", resp.StatusCode)
	}

	wasm, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact body: %w", err)
	}
	if len(wasm) == 0 {
		return nil, fmt.Errorf("artifact host returned an empty payload")
	}

	c.logger.With("bytes", len(wasm)).Info("contract artifact cached")
	c.wasm = wasm

	return c.wasm, nil
}
