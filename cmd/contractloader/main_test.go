package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"contractloader/internal/contract"
	"contractloader/internal/ledger"
	"contractloader/internal/ledger/ledgertest"
	"contractloader/internal/models"

	protocol "github.com/stellar/go/protocols/rpc"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestIDCommand(t *testing.T) {
	id := ledgertest.ContractID(0x5a)
	strKey, err := ledger.EncodeContractID(id)
	require.NoError(t, err)

	out, err := execute(t, "id", hex.EncodeToString(id[:]))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strKey, lines[0])
	assert.Equal(t, hex.EncodeToString(id[:]), lines[1])
}

func TestIDCommand_Invalid(t *testing.T) {
	_, err := execute(t, "id", "definitely-not-a-contract")
	assert.Error(t, err)
}

func TestDecompileCommand_File(t *testing.T) {
	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	uploads := make(chan []byte, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var uploaded []byte
		f, _, err := r.FormFile("contract")
		if err == nil {
			uploaded, _ = io.ReadAll(f)
			f.Close()
		}
		uploads <- uploaded
		io.WriteString(w, "fn decompiled() {}")
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "contract.wasm")
	require.NoError(t, os.WriteFile(path, wasm, 0o644))

	out, err := execute(t, "decompile", "--decompiler", srv.URL, "--file", path)
	require.NoError(t, err)

	assert.Equal(t, "fn decompiled() {}\n", out)
	assert.Equal(t, wasm, <-uploads)
}

// newRPCServer answers getLedgerEntries over JSON-RPC from an in-memory ledger
func newRPCServer(t *testing.T, entries *ledgertest.Client) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		var params protocol.GetLedgerEntriesRequest
		if req.Method != "getLedgerEntries" || json.Unmarshal(req.Params, &params) != nil {
			resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found"}
		} else {
			result, _ := entries.GetLedgerEntries(r.Context(), params)
			resp["result"] = result
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)

	return srv
}

type deployedContract struct {
	rpcURL   string
	strKey   string
	wasmHash xdr.Hash
	wasm     []byte
}

func deployContract(t *testing.T) deployedContract {
	t.Helper()

	entries := ledgertest.NewClient()
	id := ledgertest.ContractID(0x11)
	wasmHash := ledgertest.Hash(0x22)
	wasm := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, 0x01}

	sym := xdr.ScSymbol("owner")
	str := xdr.ScString("GOWNER")
	storage := &xdr.ScMap{{
		Key: xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &sym},
		Val: xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str},
	}}
	entries.PutWasmInstance(id, wasmHash, storage, 3100)
	entries.PutCode(wasmHash, wasm, 3000)

	strKey, err := ledger.EncodeContractID(id)
	require.NoError(t, err)

	return deployedContract{
		rpcURL:   newRPCServer(t, entries).URL,
		strKey:   strKey,
		wasmHash: wasmHash,
		wasm:     wasm,
	}
}

func TestLoadCommand(t *testing.T) {
	c := deployContract(t)

	out, err := execute(t, "load", "--rpc", c.rpcURL, c.strKey)
	require.NoError(t, err)

	var summary models.ContractSummary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, c.strKey, summary.ID)
	assert.Equal(t, hex.EncodeToString(c.wasmHash[:]), summary.WasmID)
	assert.Equal(t, "3100", summary.WasmIDLedger)
	assert.Equal(t, hex.EncodeToString(c.wasm), summary.WasmCode)
	assert.Equal(t, "3000", summary.WasmCodeLedger)
}

func TestLoadCommand_NotDeployed(t *testing.T) {
	c := deployContract(t)
	missing, err := ledger.EncodeContractID(ledgertest.ContractID(0x33))
	require.NoError(t, err)

	_, err = execute(t, "load", "--rpc", c.rpcURL, missing)

	absence, ok := contract.IsAbsence(err)
	require.True(t, ok)
	assert.Equal(t, contract.ReasonInstanceNotFound, absence.Reason)
}

func TestStorageCommand(t *testing.T) {
	c := deployContract(t)

	out, err := execute(t, "storage", "--rpc", c.rpcURL, c.strKey)
	require.NoError(t, err)

	var resp models.StorageResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, c.strKey, resp.ContractID)
	assert.Equal(t, uint32(3100), resp.LedgerSeq)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "owner", resp.Entries[0].Key)
	assert.Equal(t, "GOWNER", resp.Entries[0].Value)
}

func TestDecompileCommand_Contract(t *testing.T) {
	c := deployContract(t)
	uploads := make(chan []byte, 1)

	decompilerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var uploaded []byte
		f, _, err := r.FormFile("contract")
		if err == nil {
			uploaded, _ = io.ReadAll(f)
			f.Close()
		}
		uploads <- uploaded
		io.WriteString(w, "pub fn owner(env: Env) {}")
	}))
	defer decompilerSrv.Close()

	out, err := execute(t, "decompile", "--rpc", c.rpcURL, "--decompiler", decompilerSrv.URL, "--file", "", c.strKey)
	require.NoError(t, err)

	assert.Equal(t, "pub fn owner(env: Env) {}\n", out)
	assert.Equal(t, c.wasm, <-uploads)
}
