package rpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"contractloader/internal/integration/rpc_backend"
	"contractloader/internal/metrics"

	rpcclient "github.com/stellar/go/clients/rpcclient"
	protocol "github.com/stellar/go/protocols/rpc"
)

// ErrBackendUnavailable is returned by calls made before Start or after Close
var ErrBackendUnavailable = errors.New("rpc backend is not available")

// EntriesBackendHandlerService manages the RPC client used for ledger entry lookups
type EntriesBackendHandlerService interface {
	BackendHandlerService[*rpcclient.Client]
	GetLedgerEntries(ctx context.Context, request protocol.GetLedgerEntriesRequest) (protocol.GetLedgerEntriesResponse, error)
	CheckNetwork(ctx context.Context) (NetworkStatus, error)
}

// NetworkStatus is what the RPC server reports about itself
type NetworkStatus struct {
	Passphrase      string
	ProtocolVersion int
	LatestLedger    uint32
	Healthy         bool
}

// EntriesBackend implements the RPC client handler. It satisfies ledger.EntriesClient.
type EntriesBackend struct {
	ClientConfig rpc_backend.ClientConfig

	mu          sync.RWMutex
	client      *rpcclient.Client
	buildErr    error
	isAvailable bool
}

var _ EntriesBackendHandlerService = (*EntriesBackend)(nil)

// Start builds the RPC client from the client config
func (b *EntriesBackend) Start() error {
	builder := rpc_backend.ClientBuilder{
		ClientConfig: b.ClientConfig,
	}

	client, err := builder.Build()

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.buildErr = err
		b.isAvailable = false
		metrics.RPCAvailable.Set(0)
		return err
	}

	b.client = client
	b.buildErr = nil
	b.isAvailable = true
	metrics.RPCAvailable.Set(1)

	slog.Info("RPC backend started", "endpoint", b.ClientConfig.Endpoint)
	return nil
}

// Close shuts down the RPC client
func (b *EntriesBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.isAvailable = false
	metrics.RPCAvailable.Set(0)
	if b.client != nil {
		err := b.client.Close()
		b.client = nil
		return err
	}
	return nil
}

// IsAvailable returns whether the backend is ready for use
func (b *EntriesBackend) IsAvailable() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.isAvailable
}

// HandleBackend returns the underlying RPC client
func (b *EntriesBackend) HandleBackend() (*rpcclient.Client, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.buildErr != nil {
		return nil, b.buildErr
	}
	if !b.isAvailable {
		return nil, ErrBackendUnavailable
	}
	return b.client, nil
}

// GetLedgerEntries forwards the lookup to the RPC client
func (b *EntriesBackend) GetLedgerEntries(ctx context.Context, request protocol.GetLedgerEntriesRequest) (protocol.GetLedgerEntriesResponse, error) {
	client, err := b.HandleBackend()
	if err != nil {
		return protocol.GetLedgerEntriesResponse{}, err
	}

	resp, err := client.GetLedgerEntries(ctx, request)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("rpc").Inc()
		return resp, fmt.Errorf("getLedgerEntries: %w", err)
	}
	return resp, nil
}

// CheckNetwork asks the server for its network and health and compares the passphrase with
// the configured one. A mismatch is logged, not returned as an error.
func (b *EntriesBackend) CheckNetwork(ctx context.Context) (NetworkStatus, error) {
	client, err := b.HandleBackend()
	if err != nil {
		return NetworkStatus{}, err
	}

	network, err := client.GetNetwork(ctx)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("rpc").Inc()
		return NetworkStatus{}, fmt.Errorf("getNetwork: %w", err)
	}

	health, err := client.GetHealth(ctx)
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues("rpc").Inc()
		return NetworkStatus{}, fmt.Errorf("getHealth: %w", err)
	}

	status := NetworkStatus{
		Passphrase:      network.Passphrase,
		ProtocolVersion: int(network.ProtocolVersion),
		LatestLedger:    uint32(health.LatestLedger),
		Healthy:         health.Status == "healthy",
	}
	metrics.RPCLatestLedger.Set(float64(status.LatestLedger))

	expected := b.ClientConfig.NetworkPassphrase
	if expected != "" && status.Passphrase != expected {
		slog.Warn("RPC network passphrase does not match configuration",
			"configured", expected,
			"server", status.Passphrase,
		)
	}

	return status, nil
}
