package configs

import (
	"errors"
	"fmt"
)

var Values Config

type (
	Config struct {
		LogLevel string   `mapstructure:"log-level"`
		Network  string   `mapstructure:"network"`
		Artifact Artifact `mapstructure:"artifact"`
		Signer   Signer   `mapstructure:"signer"`
		Deploy   Deploy   `mapstructure:"deploy"`
		Localnet Localnet `mapstructure:"localnet"`
	}

	// Artifact locates the compiled token contract served over plain HTTP.
	Artifact struct {
		URL            string `mapstructure:"url"`
		TimeoutSeconds int    `mapstructure:"timeout-seconds"`
	}

	// Signer points at the external signing agent that holds the user keys.
	Signer struct {
		AgentURL       string `mapstructure:"agent-url"`
		TimeoutSeconds int    `mapstructure:"timeout-seconds"`
	}

	Deploy struct {
		RecordsDir string `mapstructure:"records-dir"`
		DryRun     bool   `mapstructure:"dry-run"`
	}

	Localnet struct {
		Image      string `mapstructure:"image"`
		RPCPort    int    `mapstructure:"rpc-port"`
		FaucetPort int    `mapstructure:"faucet-port"`
	}
)

func (c *Config) Validate() error {
	var errs []error

	if c.Network == "" {
		errs = append(errs, errors.New("network is required"))
	}
	if c.Artifact.URL == "" {
		errs = append(errs, errors.New("artifact.url is required"))
	}
	if !c.Deploy.DryRun && c.Signer.AgentURL == "" {
		errs = append(errs, errors.New("signer.agent-url is required unless deploy.dry-run is set"))
	}
	if c.Deploy.RecordsDir == "" {
		errs = append(errs, errors.New("deploy.records-dir is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}

func (c *Localnet) Validate() error {
	var errs []error

	if c.Image == "" {
		errs = append(errs, errors.New("localnet.image is required"))
	}
	if c.RPCPort == 0 {
		errs = append(errs, errors.New("localnet.rpc-port is required"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("localnet configuration validation failed: %w", errors.Join(errs...))
	}

	return nil
}
