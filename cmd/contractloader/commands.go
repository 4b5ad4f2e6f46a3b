package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"contractloader/internal/api"
	"contractloader/internal/contract"
	"contractloader/internal/debug"
	"contractloader/internal/decompiler"
	"contractloader/internal/extraction"
	"contractloader/internal/integration/rpc_backend"
	"contractloader/internal/models"
	"contractloader/internal/service/rpc"

	"github.com/spf13/cobra"
)

const (
	flagPort = "port"
	flagFile = "file"
)

var loadCmd = &cobra.Command{
	Use:   "load <contract-id>",
	Short: "Print the contract summary (WASM hash, bytecode and their ledgers) as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd.Context(), func(ctx context.Context, backend *rpc.EntriesBackend) error {
			summary, err := contract.NewLoader(backend).Load(ctx, args[0])
			if err != nil {
				return err
			}
			debug.PrintContractSummary(summary)
			return printJSON(cmd.OutOrStdout(), summary)
		})
	},
}

var storageCmd = &cobra.Command{
	Use:   "storage <contract-id>",
	Short: "Print the rendered contract instance storage as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBackend(cmd.Context(), func(ctx context.Context, backend *rpc.EntriesBackend) error {
			ref, instance, err := contract.NewLoader(backend).LoadInstance(ctx, args[0])
			if err != nil {
				return err
			}
			entries := extraction.RenderStorage(instance.Storage)
			debug.PrintStorage(ref.StrKey, entries)
			return printJSON(cmd.OutOrStdout(), models.StorageResponse{
				ContractID: ref.StrKey,
				WasmID:     instance.ExecutableHash.HexString(),
				LedgerSeq:  instance.LastModifiedLedger,
				Entries:    entries,
				Total:      len(entries),
			})
		})
	},
}

var decompileCmd = &cobra.Command{
	Use:   "decompile [contract-id]",
	Short: "Load a contract's WASM (or read --file) and print the decompiled source",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := cmd.Flags().GetString(flagFile)
		if err != nil {
			return err
		}
		client := decompiler.NewClient(cfg.DecompilerURL, nil)
		ctx := cmd.Context()

		if file != "" {
			wasm, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading WASM file: %w", err)
			}
			text, err := client.DecompileBytes(ctx, wasm)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		}

		if len(args) != 1 {
			return fmt.Errorf("either a contract id or --%s is required", flagFile)
		}

		return withBackend(ctx, func(ctx context.Context, backend *rpc.EntriesBackend) error {
			summary, err := contract.NewLoader(backend).Load(ctx, args[0])
			if err != nil {
				return err
			}
			text, err := client.Decompile(ctx, summary.WasmCode)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		})
	},
}

var idCmd = &cobra.Command{
	Use:   "id <contract-ref>",
	Short: "Normalize a contract strkey or hex id and print both forms",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := contract.NormalizeReference(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ref.StrKey)
		fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(ref.ID[:]))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the contract API over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := cmd.Flags().GetInt(flagPort)
		if err != nil {
			return err
		}
		if port == 0 {
			port = cfg.APIPort
		}

		slog.Info("Configuration loaded",
			"rpc_server", cfg.RPCServerURL,
			"network", cfg.NetworkPassphrase,
			"decompiler", cfg.DecompilerURL,
			"log_level", cfg.LogLevel,
		)

		backend := newBackend()
		if err := backend.Start(); err != nil {
			return fmt.Errorf("failed to start RPC backend: %w", err)
		}
		defer backend.Close()

		ctx := context.Background()
		if status, err := backend.CheckNetwork(ctx); err != nil {
			slog.Warn("RPC network check failed", "error", err)
		} else {
			slog.Info("RPC network",
				"passphrase", status.Passphrase,
				"protocol", status.ProtocolVersion,
				"latest_ledger", status.LatestLedger,
				"healthy", status.Healthy,
			)
		}

		server := api.NewServer(port, contract.NewLoader(backend), decompiler.NewClient(cfg.DecompilerURL, nil), backend)
		if err := server.Start(); err != nil {
			return err
		}

		// Listen for interrupt signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		slog.Warn("Interrupt received, shutting down...")

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Error stopping API server", "error", err)
		}

		slog.Info("Contract loader stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntP(flagPort, "p", 0, "HTTP port (overrides API_PORT)")
	decompileCmd.Flags().StringP(flagFile, "f", "", "decompile a local WASM file instead of a deployed contract")
}

func newBackend() *rpc.EntriesBackend {
	return &rpc.EntriesBackend{
		ClientConfig: rpc_backend.ClientConfig{
			Endpoint:          cfg.RPCServerURL,
			NetworkPassphrase: cfg.NetworkPassphrase,
		},
	}
}

// withBackend runs fn with a started backend and closes it afterwards.
// Ctrl-C cancels the context passed to fn.
func withBackend(parent context.Context, fn func(ctx context.Context, backend *rpc.EntriesBackend) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := newBackend()
	if err := backend.Start(); err != nil {
		return fmt.Errorf("failed to start RPC backend: %w", err)
	}
	defer backend.Close()

	return fn(ctx, backend)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
