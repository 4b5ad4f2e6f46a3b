package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"contractloader/internal/integration/rpc_backend"

	"github.com/stellar/go/network"
	protocol "github.com/stellar/go/protocols/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newJSONRPCServer answers JSON-RPC 2.0 calls with the result registered for the method
func newJSONRPCServer(t *testing.T, results map[string]interface{}) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if result, ok := results[req.Method]; ok {
			resp["result"] = result
		} else {
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestEntriesBackend_Lifecycle(t *testing.T) {
	backend := &EntriesBackend{ClientConfig: rpc_backend.ClientConfig{Endpoint: "https://soroban-testnet.stellar.org"}}

	assert.False(t, backend.IsAvailable())
	_, err := backend.HandleBackend()
	assert.ErrorIs(t, err, ErrBackendUnavailable)

	require.NoError(t, backend.Start())
	assert.True(t, backend.IsAvailable())
	client, err := backend.HandleBackend()
	require.NoError(t, err)
	assert.NotNil(t, client)

	require.NoError(t, backend.Close())
	assert.False(t, backend.IsAvailable())

	_, err = backend.GetLedgerEntries(context.Background(), protocol.GetLedgerEntriesRequest{Keys: []string{"AAAA"}})
	assert.ErrorIs(t, err, ErrBackendUnavailable)
}

func TestEntriesBackend_StartInvalidEndpoint(t *testing.T) {
	backend := &EntriesBackend{}

	err := backend.Start()

	assert.Error(t, err)
	assert.False(t, backend.IsAvailable())
	_, err = backend.HandleBackend()
	assert.Error(t, err)
}

func TestEntriesBackend_GetLedgerEntries(t *testing.T) {
	srv := newJSONRPCServer(t, map[string]interface{}{
		"getLedgerEntries": map[string]interface{}{
			"entries": []map[string]interface{}{{
				"key":                   "AAAABg==",
				"xdr":                   "AAAABg==",
				"lastModifiedLedgerSeq": 4242,
			}},
			"latestLedger": 5000,
		},
	})

	backend := &EntriesBackend{ClientConfig: rpc_backend.ClientConfig{Endpoint: srv.URL, HTTPClient: srv.Client()}}
	require.NoError(t, backend.Start())
	defer backend.Close()

	resp, err := backend.GetLedgerEntries(context.Background(), protocol.GetLedgerEntriesRequest{Keys: []string{"AAAABg=="}})
	require.NoError(t, err)

	require.Len(t, resp.Entries, 1)
	assert.Equal(t, uint32(4242), resp.Entries[0].LastModifiedLedger)
	assert.Equal(t, "AAAABg==", resp.Entries[0].DataXDR)
}

func TestEntriesBackend_CheckNetwork(t *testing.T) {
	srv := newJSONRPCServer(t, map[string]interface{}{
		"getNetwork": map[string]interface{}{
			"passphrase":      network.TestNetworkPassphrase,
			"protocolVersion": 23,
		},
		"getHealth": map[string]interface{}{
			"status":                "healthy",
			"latestLedger":          123456,
			"oldestLedger":          100000,
			"ledgerRetentionWindow": 17280,
		},
	})

	backend := &EntriesBackend{ClientConfig: rpc_backend.ClientConfig{
		Endpoint:          srv.URL,
		NetworkPassphrase: network.PublicNetworkPassphrase,
		HTTPClient:        srv.Client(),
	}}
	require.NoError(t, backend.Start())
	defer backend.Close()

	// Mismatching passphrase is reported, not failed
	status, err := backend.CheckNetwork(context.Background())
	require.NoError(t, err)

	assert.Equal(t, network.TestNetworkPassphrase, status.Passphrase)
	assert.Equal(t, 23, status.ProtocolVersion)
	assert.Equal(t, uint32(123456), status.LatestLedger)
	assert.True(t, status.Healthy)
}

func TestEntriesBackend_CheckNetworkRPCError(t *testing.T) {
	srv := newJSONRPCServer(t, map[string]interface{}{})

	backend := &EntriesBackend{ClientConfig: rpc_backend.ClientConfig{Endpoint: srv.URL, HTTPClient: srv.Client()}}
	require.NoError(t, backend.Start())
	defer backend.Close()

	_, err := backend.CheckNetwork(context.Background())

	assert.Error(t, err)
}

func TestEntriesBackend_ServesAsHealthCheck(t *testing.T) {
	var health Availability = &EntriesBackend{ClientConfig: rpc_backend.ClientConfig{Endpoint: "https://soroban-testnet.stellar.org"}}
	assert.False(t, health.IsAvailable())

	backend := health.(*EntriesBackend)
	require.NoError(t, backend.Start())
	defer backend.Close()

	assert.True(t, health.IsAvailable())
}
