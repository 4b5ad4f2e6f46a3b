package debug

import (
	"encoding/json"
	"log/slog"

	"contractloader/internal/models"
)

// Hex characters of bytecode kept when printing a summary
const wasmPreviewLen = 64

// PrintContractSummary prints the loaded contract in JSON format, bytecode shortened
func PrintContractSummary(summary *models.ContractSummary) {
	preview := *summary
	if len(preview.WasmCode) > wasmPreviewLen {
		preview.WasmCode = preview.WasmCode[:wasmPreviewLen] + "..."
	}

	jsonData, err := json.MarshalIndent(preview, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal contract summary to JSON", "error", err)
		return
	}

	slog.Debug("Contract summary details",
		"json", string(jsonData),
		"wasm_bytes", len(summary.WasmCode)/2,
	)
}

// PrintStorage prints rendered instance storage in JSON format
func PrintStorage(contractID string, entries []models.StorageEntry) {
	jsonData, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal storage to JSON", "error", err)
		return
	}

	slog.Debug("Contract storage details", "contract_id", contractID, "json", string(jsonData))
}
