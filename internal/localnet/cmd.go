package localnet

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokenforge/deployer/configs"
)

var CMD = &cobra.Command{
	Use:   "localnet",
	Short: "Manage a disposable local chain node for development",
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the local node container",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.Values.Localnet.Validate(); err != nil {
			return err
		}

		svc, err := New()
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.Start(cmd.Context(), configs.Values.Localnet); err != nil {
			return fmt.Errorf("failed to start localnet: %w", err)
		}

		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop and remove the local node container",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := New()
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.Stop(cmd.Context()); err != nil {
			return fmt.Errorf("failed to stop localnet: %w", err)
		}

		return nil
	},
}

func init() {
	CMD.AddCommand(startCmd)
	CMD.AddCommand(stopCmd)
}
