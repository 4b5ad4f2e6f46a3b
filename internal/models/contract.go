package models

import "github.com/stellar/go/xdr"

// ContractInstance is the decoded instance entry of a deployed contract
type ContractInstance struct {
	// Hash of the WASM executable the instance points at
	ExecutableHash xdr.Hash

	// Ledger metadata reported by RPC for the instance entry
	LastModifiedLedger uint32
	LiveUntilLedger    *uint32

	// Instance storage, kept undecoded until something renders it
	Storage *xdr.ScMap
}

// ContractCode is the decoded code entry holding the WASM bytecode
type ContractCode struct {
	Hash xdr.Hash
	Code []byte

	LastModifiedLedger uint32
	LiveUntilLedger    *uint32
}

// ContractSummary is the loaded view of a contract handed to callers
type ContractSummary struct {
	ID             string `json:"id"`             // Canonical C... strkey
	WasmID         string `json:"wasmId"`         // Hex executable hash
	WasmIDLedger   string `json:"wasmIdLedger"`   // Last modified ledger of the instance entry
	WasmCode       string `json:"wasmCode"`       // Hex WASM bytecode
	WasmCodeLedger string `json:"wasmCodeLedger"` // Last modified ledger of the code entry
}
