package deploy

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tokenforge/deployer/configs"
	"github.com/tokenforge/deployer/internal/artifact"
	"github.com/tokenforge/deployer/internal/network"
	"github.com/tokenforge/deployer/internal/rpc"
	"github.com/tokenforge/deployer/internal/wallet"
	"github.com/tokenforge/deployer/internal/wallet/agent"
)

var (
	flagName    string
	flagSymbol  string
	flagSupply  string
	flagNetwork string
	flagSource  string
	flagUserID  string
)

var CMD = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a token contract through the connected wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.Values.Validate(); err != nil {
			return err
		}

		networkKey := flagNetwork
		if networkKey == "" {
			networkKey = configs.Values.Network
		}

		cfg, err := network.Lookup(networkKey)
		if err != nil {
			return err
		}

		ctx := cmd.Context()

		discoverer := agent.New(
			configs.Values.Signer.AgentURL,
			time.Duration(configs.Values.Signer.TimeoutSeconds)*time.Second,
		)

		session := wallet.NewManager(discoverer, cfg)
		defer session.Close()

		slog.Info("probing for the signing agent")
		session.Probe(ctx)

		if !session.Session().ExtensionInstalled {
			return wallet.ErrExtensionUnavailable
		}

		slog.With("network", cfg.Key).Info("requesting wallet authorization")
		if err := session.Connect(ctx, cfg); err != nil {
			return err
		}
		address := session.Session().Address
		slog.With("address", address).Info("wallet connected")

		var client ChainClient
		if configs.Values.Deploy.DryRun {
			slog.Warn("dry-run enabled, producing a simulated result")
		} else {
			rpcClient, err := rpc.Dial(ctx, cfg.RPCURL)
			if err != nil {
				return err
			}
			defer rpcClient.Close()

			if err := rpcClient.Health(ctx); err != nil {
				return fmt.Errorf("node at %s is not usable: %w", cfg.RPCURL, err)
			}
			client = rpcClient
		}

		var source string
		if flagSource != "" {
			raw, err := os.ReadFile(flagSource)
			if err != nil {
				return fmt.Errorf("failed to read source file: %w", err)
			}
			source = string(raw)
		}

		cache := artifact.NewCache(
			configs.Values.Artifact.URL,
			time.Duration(configs.Values.Artifact.TimeoutSeconds)*time.Second,
		)

		orchestrator := NewOrchestrator(client, session, cache)

		req := Request{
			UserID:        flagUserID,
			Address:       address,
			Network:       cfg.Key,
			ContractName:  flagName,
			TokenName:     flagName,
			TokenSymbol:   flagSymbol,
			InitialSupply: flagSupply,
			SourceCode:    source,
		}

		result, err := orchestrator.Execute(ctx, req)
		if err != nil {
			return err
		}

		recorder := NewRecorder(configs.Values.Deploy.RecordsDir)
		path, err := recorder.Record(req, result)
		if err != nil {
			return err
		}

		slog.
			With("contract_id", result.ContractID).
			With("tx_hash", result.TxHash).
			With("explorer_url", result.ExplorerURL).
			With("simulated", result.Simulated).
			With("record", path).
			Info("deployment finished")

		return nil
	},
}

func init() {
	CMD.Flags().StringVar(&flagName, "name", "", "token contract name")
	CMD.Flags().StringVar(&flagSymbol, "symbol", "", "token symbol")
	CMD.Flags().StringVar(&flagSupply, "supply", "0", "initial supply as a decimal string")
	CMD.Flags().StringVar(&flagNetwork, "network", "", "target network key (defaults to the configured network)")
	CMD.Flags().StringVar(&flagSource, "source", "", "path to the generated contract source, stored with the record")
	CMD.Flags().StringVar(&flagUserID, "user", "", "builder user id the record is keyed by")

	_ = CMD.MarkFlagRequired("name")
	_ = CMD.MarkFlagRequired("symbol")
}
