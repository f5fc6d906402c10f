package main

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tokenforge/deployer/configs"
	"github.com/tokenforge/deployer/internal/deploy"
	"github.com/tokenforge/deployer/internal/localnet"
	"github.com/tokenforge/deployer/internal/logger"
	"github.com/tokenforge/deployer/internal/network"
)

const appName = "deployer"

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "CLI for deploying builder-generated token contracts",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if execPath, err := os.Executable(); err == nil {
			execDir := filepath.Dir(execPath)
			viper.AddConfigPath(execDir)
		}
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")

		// Try to read config file, but don't fail if it doesn't exist
		// Flags can provide all necessary configuration
		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				configs.Values = configs.MustDefaultConfig()
			} else {
				const errMsg = "error reading config file"
				slog.With("err", err.Error()).Error(errMsg)
				return errors.Join(err, errors.New(errMsg))
			}
		} else if err := viper.Unmarshal(&configs.Values); err != nil {
			const errMsg = "unable to decode application config"
			slog.With("err", err.Error()).Error(errMsg)
			return errors.Join(err, errors.New(errMsg))
		}

		logger.Initialize(logger.ParseLevel(configs.Values.LogLevel))

		slog.With("config_file", viper.ConfigFileUsed()).Debug("configuration loaded")

		return nil
	},
}

func main() {
	rootCmd.AddCommand(deploy.CMD)
	rootCmd.AddCommand(network.CMD)
	rootCmd.AddCommand(network.FundCMD)
	rootCmd.AddCommand(localnet.CMD)

	if err := rootCmd.Execute(); err != nil {
		slog.With("err", err.Error()).Error("failed to execute root command")
		os.Exit(1)
	}
}
