// Package ledgertest provides an in-memory ledger entries client for tests.
package ledgertest

import (
	"context"
	"fmt"
	"sync"

	"contractloader/internal/ledger"

	protocol "github.com/stellar/go/protocols/rpc"
	"github.com/stellar/go/xdr"
)

// Client serves getLedgerEntries from a map keyed by base64 ledger key
type Client struct {
	mu      sync.Mutex
	entries map[string]protocol.LedgerEntryResult
	calls   [][]string

	// Err, when set, is returned by every call
	Err error
}

func NewClient() *Client {
	return &Client{entries: make(map[string]protocol.LedgerEntryResult)}
}

// GetLedgerEntries implements ledger.EntriesClient
func (c *Client) GetLedgerEntries(ctx context.Context, request protocol.GetLedgerEntriesRequest) (protocol.GetLedgerEntriesResponse, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, request.Keys)
	if c.Err != nil {
		return protocol.GetLedgerEntriesResponse{}, c.Err
	}

	resp := protocol.GetLedgerEntriesResponse{LatestLedger: 1000}
	for _, key := range request.Keys {
		if entry, ok := c.entries[key]; ok {
			resp.Entries = append(resp.Entries, entry)
		}
	}
	return resp, nil
}

// Calls returns the keys of every request made so far
func (c *Client) Calls() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.calls...)
}

// Put stores data under key with the given last modified ledger
func (c *Client) Put(key xdr.LedgerKey, data xdr.LedgerEntryData, lastModified uint32) {
	keyB64 := mustBase64(key)
	dataB64 := mustBase64(data)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[keyB64] = protocol.LedgerEntryResult{
		KeyXDR:             keyB64,
		DataXDR:            dataB64,
		LastModifiedLedger: lastModified,
	}
}

// PutRaw stores an arbitrary base64 payload under key, for decode failure tests
func (c *Client) PutRaw(key xdr.LedgerKey, dataXDR string, lastModified uint32) {
	keyB64 := mustBase64(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[keyB64] = protocol.LedgerEntryResult{
		KeyXDR:             keyB64,
		DataXDR:            dataXDR,
		LastModifiedLedger: lastModified,
	}
}

// PutWasmInstance stores a WASM backed instance entry for the contract
func (c *Client) PutWasmInstance(id xdr.ContractId, wasmHash xdr.Hash, storage *xdr.ScMap, lastModified uint32) {
	c.PutInstance(id, xdr.ContractExecutable{
		Type:     xdr.ContractExecutableTypeContractExecutableWasm,
		WasmHash: &wasmHash,
	}, storage, lastModified)
}

// PutInstance stores an instance entry with an arbitrary executable
func (c *Client) PutInstance(id xdr.ContractId, executable xdr.ContractExecutable, storage *xdr.ScMap, lastModified uint32) {
	key := ledger.ContractInstanceKey(id)
	c.Put(key, xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeContractData,
		ContractData: &xdr.ContractDataEntry{
			Contract:   key.ContractData.Contract,
			Key:        key.ContractData.Key,
			Durability: key.ContractData.Durability,
			Val: xdr.ScVal{
				Type: xdr.ScValTypeScvContractInstance,
				Instance: &xdr.ScContractInstance{
					Executable: executable,
					Storage:    storage,
				},
			},
		},
	}, lastModified)
}

// PutCode stores a code entry for the WASM hash
func (c *Client) PutCode(wasmHash xdr.Hash, code []byte, lastModified uint32) {
	c.Put(ledger.ContractCodeKey(wasmHash), xdr.LedgerEntryData{
		Type: xdr.LedgerEntryTypeContractCode,
		ContractCode: &xdr.ContractCodeEntry{
			Hash: wasmHash,
			Code: code,
		},
	}, lastModified)
}

// ContractID returns a deterministic contract id whose bytes are all b
func ContractID(b byte) xdr.ContractId {
	var id xdr.ContractId
	for i := range id {
		id[i] = b
	}
	return id
}

// Hash returns a deterministic hash whose bytes are all b
func Hash(b byte) xdr.Hash {
	var h xdr.Hash
	for i := range h {
		h[i] = b
	}
	return h
}

func mustBase64(v interface{}) string {
	s, err := xdr.MarshalBase64(v)
	if err != nil {
		panic(fmt.Sprintf("ledgertest: failed to marshal %T: %v", v, err))
	}
	return s
}
