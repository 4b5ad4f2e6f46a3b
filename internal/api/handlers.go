package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"contractloader/internal/contract"
	"contractloader/internal/decompiler"
	"contractloader/internal/extraction"
	"contractloader/internal/models"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// handleIndex returns basic service information
// GET / - Returns service info and available endpoints
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	info := map[string]interface{}{
		"service":     "Soroban Contract Loader",
		"version":     "1.0.0",
		"description": "Loads Soroban contract WASM from Stellar RPC and decompiles it",
		"endpoints": map[string]string{
			"GET /":                           "This page - Service information",
			"GET /health":                     "Health check endpoint",
			"GET /metrics":                    "Prometheus metrics for monitoring",
			"GET /contracts/{id}":             "Contract summary with WASM hash and bytecode",
			"GET /contracts/{id}/storage":     "Rendered contract instance storage",
			"GET /contracts/{id}/decompiled": "Decompiled contract source (text/plain)",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(info)
}

// handleHealth returns health status
// GET /health - Health check for monitoring systems
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	if s.health != nil && !s.health.IsAvailable() {
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	health := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"service":   "contract-loader",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(health)
}

// handleMetrics returns Prometheus metrics
// GET /metrics - Prometheus scraping endpoint
func (s *Server) handleMetrics() http.Handler {
	return promhttp.Handler()
}

// =============================================================================
// CONTRACT ENDPOINTS
// =============================================================================

// handleGetContract returns the contract summary
// GET /contracts/{id}
func (s *Server) handleGetContract(w http.ResponseWriter, r *http.Request, contractID string) {
	summary, err := s.loader.Load(r.Context(), contractID)
	if err != nil {
		s.sendLoadError(w, contractID, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// handleGetStorage returns the rendered instance storage
// GET /contracts/{id}/storage
func (s *Server) handleGetStorage(w http.ResponseWriter, r *http.Request, contractID string) {
	ref, instance, err := s.loader.LoadInstance(r.Context(), contractID)
	if err != nil {
		s.sendLoadError(w, contractID, err)
		return
	}

	entries := extraction.RenderStorage(instance.Storage)
	response := models.StorageResponse{
		ContractID: ref.StrKey,
		WasmID:     instance.ExecutableHash.HexString(),
		LedgerSeq:  instance.LastModifiedLedger,
		Entries:    entries,
		Total:      len(entries),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleGetDecompiled loads the contract and returns the decompiler output as text
// GET /contracts/{id}/decompiled
func (s *Server) handleGetDecompiled(w http.ResponseWriter, r *http.Request, contractID string) {
	summary, err := s.loader.Load(r.Context(), contractID)
	if err != nil {
		s.sendLoadError(w, contractID, err)
		return
	}

	text, err := s.decompiler.Decompile(r.Context(), summary.WasmCode)
	if err != nil {
		slog.Error("Failed to decompile contract", "contract_id", summary.ID, "error", err)

		var statusErr *decompiler.StatusError
		if errors.As(err, &statusErr) {
			s.sendError(w, "Decompiler returned status "+http.StatusText(statusErr.StatusCode), http.StatusBadGateway)
			return
		}
		s.sendError(w, "Decompiler unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

// sendLoadError maps a loader error to an HTTP status
func (s *Server) sendLoadError(w http.ResponseWriter, contractID string, err error) {
	absence, ok := contract.IsAbsence(err)
	if !ok {
		slog.Error("Failed to load contract", "contract_id", contractID, "error", err)
		s.sendError(w, "Ledger RPC request failed", http.StatusBadGateway)
		return
	}

	code := http.StatusNotFound
	message := "Contract not found"
	switch absence.Reason {
	case contract.ReasonInvalidReference:
		code, message = http.StatusBadRequest, "Invalid contract ID"
	case contract.ReasonMalformedExecutable:
		code, message = http.StatusUnprocessableEntity, "Contract executable is not a WASM hash"
	case contract.ReasonCodeNotFound:
		message = "Contract code not found"
	}

	s.sendErrorWithReason(w, message, code, string(absence.Reason))
}

// sendError sends a JSON error response
func (s *Server) sendError(w http.ResponseWriter, message string, code int) {
	s.sendErrorWithReason(w, message, code, "")
}

func (s *Server) sendErrorWithReason(w http.ResponseWriter, message string, code int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
		Reason:  reason,
	})
}
