package contract

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"contractloader/internal/ledger"
	"contractloader/internal/metrics"
	"contractloader/internal/models"

	"github.com/stellar/go/xdr"
)

// Reference is a validated contract reference
type Reference struct {
	ID     xdr.ContractId
	StrKey string // Canonical C... form
}

// NormalizeReference parses a strkey or hex contract id into its canonical form
func NormalizeReference(ref string) (Reference, error) {
	id, err := ledger.ParseContractID(ref)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	strKey, err := ledger.EncodeContractID(id)
	if err != nil {
		return Reference{}, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	return Reference{ID: id, StrKey: strKey}, nil
}

// Loader loads contract summaries from the ledger. It holds no state besides the client,
// so one Loader can serve concurrent loads.
type Loader struct {
	client ledger.EntriesClient
}

// NewLoader creates a new Loader over the given ledger entries client
func NewLoader(client ledger.EntriesClient) *Loader {
	return &Loader{client: client}
}

// loadState carries values between pipeline steps of a single load
type loadState struct {
	input     string
	reference Reference
	instance  *models.ContractInstance
	code      *models.ContractCode
}

// step is one fallible stage of a load, the pipeline stops at the first error
type step struct {
	name string
	run  func(ctx context.Context, st *loadState) error
}

func (l *Loader) steps() []step {
	return []step{
		{"normalize", l.normalize},
		{"instance", l.fetchInstance},
		{"code", l.fetchCode},
	}
}

// Load runs the full pipeline and returns the contract summary.
// Expected absences come back as *AbsenceError, any other error is a transport or decode failure.
func (l *Loader) Load(ctx context.Context, reference string) (*models.ContractSummary, error) {
	st, err := l.run(ctx, reference)
	if err != nil {
		return nil, err
	}
	return summarize(st), nil
}

// LoadInstance stops after the instance step, for callers that only need instance data
func (l *Loader) LoadInstance(ctx context.Context, reference string) (Reference, *models.ContractInstance, error) {
	st, err := l.runSteps(ctx, reference, l.steps()[:2], "instance")
	if err != nil {
		return Reference{}, nil, err
	}
	return st.reference, st.instance, nil
}

func (l *Loader) run(ctx context.Context, reference string) (*loadState, error) {
	return l.runSteps(ctx, reference, l.steps(), "full")
}

func (l *Loader) runSteps(ctx context.Context, reference string, steps []step, kind string) (*loadState, error) {
	start := time.Now()
	st := &loadState{input: reference}

	for _, s := range steps {
		err := s.run(ctx, st)
		if err == nil {
			continue
		}

		if absence, ok := absenceFor(reference, err); ok {
			slog.Warn("Contract not loaded",
				"reference", reference,
				"step", s.name,
				"reason", absence.Reason,
				"error", err,
			)
			metrics.ContractLoads.WithLabelValues(kind, string(absence.Reason)).Inc()
			return nil, absence
		}

		slog.Error("Contract load failed",
			"reference", reference,
			"step", s.name,
			"error", err,
		)
		metrics.ContractLoads.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("%s step: %w", s.name, err)
	}

	metrics.ContractLoads.WithLabelValues(kind, "ok").Inc()
	metrics.ContractLoadDuration.Observe(time.Since(start).Seconds())
	return st, nil
}

func (l *Loader) normalize(ctx context.Context, st *loadState) error {
	ref, err := NormalizeReference(st.input)
	if err != nil {
		return err
	}
	st.reference = ref
	return nil
}

func (l *Loader) fetchInstance(ctx context.Context, st *loadState) error {
	instance, err := ledger.GetContractInfo(ctx, l.client, st.reference.ID)
	if err != nil {
		return err
	}
	st.instance = instance
	return nil
}

func (l *Loader) fetchCode(ctx context.Context, st *loadState) error {
	code, err := ledger.GetContractCode(ctx, l.client, st.instance.ExecutableHash)
	if err != nil {
		return err
	}
	st.code = code
	return nil
}

func summarize(st *loadState) *models.ContractSummary {
	return &models.ContractSummary{
		ID:             st.reference.StrKey,
		WasmID:         hex.EncodeToString(st.instance.ExecutableHash[:]),
		WasmIDLedger:   strconv.FormatUint(uint64(st.instance.LastModifiedLedger), 10),
		WasmCode:       hex.EncodeToString(st.code.Code),
		WasmCodeLedger: strconv.FormatUint(uint64(st.code.LastModifiedLedger), 10),
	}
}

// LoadContract returns the summary, or nil with a nil error when the contract could not be
// loaded for an expected reason (already logged). Transport and decode failures are returned.
func LoadContract(ctx context.Context, client ledger.EntriesClient, reference string) (*models.ContractSummary, error) {
	summary, err := NewLoader(client).Load(ctx, reference)
	if _, ok := IsAbsence(err); ok {
		return nil, nil
	}
	return summary, err
}
