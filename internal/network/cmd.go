package network

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var CMD = &cobra.Command{
	Use:   "networks",
	Short: "List the supported networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := Keys()
		if err != nil {
			return err
		}

		out := make(map[string]*Config, len(keys))
		for _, key := range keys {
			cfg, err := Lookup(key)
			if err != nil {
				return err
			}
			out[key] = cfg
		}

		encoder := yaml.NewEncoder(os.Stdout)
		defer encoder.Close()
		return encoder.Encode(out)
	},
}

var fundAddress string

var FundCMD = &cobra.Command{
	Use:   "fund",
	Short: "Fund an account from the network faucet",
	RunE: func(cmd *cobra.Command, args []string) error {
		networkKey, err := cmd.Flags().GetString("network")
		if err != nil {
			return err
		}

		cfg, err := Lookup(networkKey)
		if err != nil {
			return err
		}

		if err := NewFaucet().Fund(cmd.Context(), cfg, fundAddress); err != nil {
			return fmt.Errorf("funding failed: %w", err)
		}

		slog.With("address", fundAddress).With("network", cfg.Key).Info("account funded")
		return nil
	},
}

func init() {
	FundCMD.Flags().StringVar(&fundAddress, "address", "", "account address to fund")
	FundCMD.Flags().String("network", "testnet", "network key (must carry a faucet)")
	_ = FundCMD.MarkFlagRequired("address")
}
