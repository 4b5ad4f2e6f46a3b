package models

// StorageResponse represents the rendered instance storage of a contract
type StorageResponse struct {
	ContractID string         `json:"contract_id"`
	WasmID     string         `json:"wasm_id"`
	LedgerSeq  uint32         `json:"ledger_seq"`
	Entries    []StorageEntry `json:"entries"`
	Total      int            `json:"total"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
	Reason  string `json:"reason,omitempty"` // Absence reason when the contract could not be loaded
}
