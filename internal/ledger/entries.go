package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contractloader/internal/models"

	protocol "github.com/stellar/go/protocols/rpc"
	"github.com/stellar/go/xdr"
)

// Absence conditions reported by the fetchers. They are expected outcomes, not failures,
// and callers tell them apart from transport errors with errors.Is.
var (
	ErrInstanceNotFound    = errors.New("contract instance not found")
	ErrMalformedExecutable = errors.New("contract executable is not a wasm hash")
	ErrCodeNotFound        = errors.New("contract code not found")
)

// EntriesClient is the part of the Stellar RPC client the fetchers need.
// *rpcclient.Client satisfies it.
type EntriesClient interface {
	GetLedgerEntries(ctx context.Context, request protocol.GetLedgerEntriesRequest) (protocol.GetLedgerEntriesResponse, error)
}

// GetContractInfo fetches the instance entry of a contract and extracts its WASM hash,
// ledger metadata and (undecoded) instance storage
func GetContractInfo(ctx context.Context, client EntriesClient, contractID xdr.ContractId) (*models.ContractInstance, error) {
	entry, err := fetchSingle(ctx, client, ContractInstanceKey(contractID))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contract instance: %w", err)
	}
	if entry == nil {
		return nil, ErrInstanceNotFound
	}

	data, err := decodeEntryData(entry)
	if err != nil {
		return nil, err
	}

	contractData, ok := data.GetContractData()
	if !ok {
		return nil, fmt.Errorf("unexpected ledger entry type %s, expected contract data", data.Type)
	}

	instance, ok := contractData.Val.GetInstance()
	if !ok {
		return nil, fmt.Errorf("unexpected instance value type %s", contractData.Val.Type)
	}

	executable := instance.Executable
	if executable.Type != xdr.ContractExecutableTypeContractExecutableWasm || executable.WasmHash == nil {
		return nil, fmt.Errorf("%w: executable type %s", ErrMalformedExecutable, executable.Type)
	}

	slog.Debug("Contract instance fetched",
		"wasm_hash", executable.WasmHash.HexString(),
		"last_modified_ledger", entry.LastModifiedLedger,
	)

	return &models.ContractInstance{
		ExecutableHash:     *executable.WasmHash,
		LastModifiedLedger: entry.LastModifiedLedger,
		LiveUntilLedger:    entry.LiveUntilLedgerSeq,
		Storage:            instance.Storage,
	}, nil
}

// GetContractCode fetches the code entry for a WASM hash
func GetContractCode(ctx context.Context, client EntriesClient, wasmHash xdr.Hash) (*models.ContractCode, error) {
	entry, err := fetchSingle(ctx, client, ContractCodeKey(wasmHash))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contract code: %w", err)
	}
	if entry == nil {
		return nil, ErrCodeNotFound
	}

	data, err := decodeEntryData(entry)
	if err != nil {
		return nil, err
	}

	code, ok := data.GetContractCode()
	if !ok {
		return nil, fmt.Errorf("unexpected ledger entry type %s, expected contract code", data.Type)
	}

	slog.Debug("Contract code fetched",
		"wasm_hash", wasmHash.HexString(),
		"size", len(code.Code),
		"last_modified_ledger", entry.LastModifiedLedger,
	)

	return &models.ContractCode{
		Hash:               code.Hash,
		Code:               code.Code,
		LastModifiedLedger: entry.LastModifiedLedger,
		LiveUntilLedger:    entry.LiveUntilLedgerSeq,
	}, nil
}

// fetchSingle looks up exactly one key. A nil entry with a nil error means the key is absent.
func fetchSingle(ctx context.Context, client EntriesClient, key xdr.LedgerKey) (*protocol.LedgerEntryResult, error) {
	keyB64, err := xdr.MarshalBase64(key)
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger key: %w", err)
	}

	resp, err := client.GetLedgerEntries(ctx, protocol.GetLedgerEntriesRequest{
		Keys: []string{keyB64},
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Entries) == 0 {
		slog.Debug("Ledger entry not found", "key", keyB64, "latest_ledger", resp.LatestLedger)
		return nil, nil
	}

	return &resp.Entries[0], nil
}

func decodeEntryData(entry *protocol.LedgerEntryResult) (xdr.LedgerEntryData, error) {
	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(entry.DataXDR, &data); err != nil {
		return data, fmt.Errorf("failed to decode ledger entry: %w", err)
	}
	return data, nil
}
