package main

import (
	"log"
	"log/slog"
	"os"

	"contractloader/internal/config"

	"github.com/spf13/cobra"
)

const (
	flagRPC        = "rpc"
	flagNetwork    = "network"
	flagDecompiler = "decompiler"
	flagLogLevel   = "log-level"
)

// cfg is set by the root command before any subcommand runs
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "contractloader",
	Short: "Load Soroban contract WASM from Stellar RPC and decompile it",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = loaded
		setupLogger(cfg)
		return nil
	},
	SilenceUsage: true,
}

func main() {
	check(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().String(flagRPC, "", "Stellar RPC server URL (overrides RPC_SERVER_URL)")
	rootCmd.PersistentFlags().String(flagNetwork, "", "network passphrase (overrides NETWORK_PASSPHRASE)")
	rootCmd.PersistentFlags().String(flagDecompiler, "", "decompiler base URL (overrides DECOMPILER_URL)")
	rootCmd.PersistentFlags().String(flagLogLevel, "", "debug, info, warn or error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(loadCmd, storageCmd, decompileCmd, idCmd, serveCmd)
}

// loadConfig reads the environment and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c := config.Load()

	overrides := map[string]*string{
		flagRPC:        &c.RPCServerURL,
		flagNetwork:    &c.NetworkPassphrase,
		flagDecompiler: &c.DecompilerURL,
		flagLogLevel:   &c.LogLevel,
	}
	for name, target := range overrides {
		val, err := cmd.Flags().GetString(name)
		if err != nil {
			return nil, err
		}
		if val != "" {
			*target = val
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// setupLogger installs a text slog handler on stderr, stdout is kept for command output
func setupLogger(c *config.Config) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: c.SlogLevel(),
	}))
	slog.SetDefault(logger)
}

func check(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
