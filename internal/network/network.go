// Package network holds the static per-network configuration: RPC and read
// endpoints, explorer base, signing passphrase, native currency and optional
// faucet. Entries are looked up by key; retired keys resolve through an alias
// table so stored references never dangle.
package network

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed networks.yaml
var networksYAML []byte

type (
	Currency struct {
		Code     string `yaml:"code"`
		Name     string `yaml:"name"`
		Decimals int    `yaml:"decimals"`
	}

	Config struct {
		Key          string   `yaml:"-"`
		RPCURL       string   `yaml:"rpc-url"`
		HorizonURL   string   `yaml:"horizon-url"`
		ExplorerURL  string   `yaml:"explorer-url"`
		Passphrase   string   `yaml:"passphrase"`
		ChainID      int      `yaml:"chain-id"`
		Currency     Currency `yaml:"currency"`
		FriendbotURL string   `yaml:"friendbot-url"`
	}

	registryFile struct {
		Networks map[string]*Config `yaml:"networks"`
		Aliases  map[string]string  `yaml:"aliases"`
		Default  string             `yaml:"default"`
	}
)

var (
	registryOnce sync.Once
	registry     registryFile
	registryErr  error
)

func load() (registryFile, error) {
	registryOnce.Do(func() {
		if err := yaml.Unmarshal(networksYAML, &registry); err != nil {
			registryErr = fmt.Errorf("failed to parse embedded networks.yaml: %w", err)
			return
		}
		for key, cfg := range registry.Networks {
			cfg.Key = key
		}
	})

	if registryErr != nil {
		return registryFile{}, registryErr
	}

	return registry, nil
}

// Lookup resolves a network key to its configuration. Alias keys resolve to
// the live network they point at; a key nobody recognizes resolves to the
// default network instead of failing, so a stale stored key still deploys
// somewhere sane.
func Lookup(key string) (*Config, error) {
	reg, err := load()
	if err != nil {
		return nil, err
	}

	if target, ok := reg.Aliases[key]; ok {
		key = target
	}

	cfg, ok := reg.Networks[key]
	if !ok {
		cfg, ok = reg.Networks[reg.Default]
		if !ok {
			return nil, fmt.Errorf("network registry has no entry for default %q", reg.Default)
		}
	}

	return cfg, nil
}

// ByPassphrase finds the network whose signing passphrase matches. Wallets
// report network changes by passphrase, not by key.
func ByPassphrase(passphrase string) (*Config, bool) {
	reg, err := load()
	if err != nil {
		return nil, false
	}

	for _, cfg := range reg.Networks {
		if cfg.Passphrase == passphrase {
			return cfg, true
		}
	}
	return nil, false
}

// Default returns the registry's default network.
func Default() (*Config, error) {
	reg, err := load()
	if err != nil {
		return nil, err
	}
	return Lookup(reg.Default)
}

// Keys lists the live (non-alias) network keys.
func Keys() ([]string, error) {
	reg, err := load()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(reg.Networks))
	for key := range reg.Networks {
		keys = append(keys, key)
	}
	return keys, nil
}

// ExplorerTxURL derives the explorer page for a transaction hash. Empty when
// the network carries no explorer.
func (c *Config) ExplorerTxURL(txHash string) string {
	if c.ExplorerURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/tx/%s", c.ExplorerURL, txHash)
}

// HasFaucet reports whether the network funds accounts for free.
func (c *Config) HasFaucet() bool {
	return c.FriendbotURL != ""
}
