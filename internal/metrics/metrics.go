package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Load metrics - Track contract loads by outcome
var (
	ContractLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractloader_loads_total",
			Help: "Total number of contract loads by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: full|instance, outcome: ok|error|<absence reason>
	)

	ContractLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "contractloader_load_duration_seconds",
		Help:    "Time taken by successful contract loads",
		Buckets: prometheus.DefBuckets,
	})
)

// Decompile metrics - Track calls to the decompilation service
var (
	DecompileRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractloader_decompile_requests_total",
			Help: "Total number of decompile requests by HTTP status class",
		},
		[]string{"status"},
	)

	DecompileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "contractloader_decompile_duration_seconds",
		Help:    "Time taken by the decompilation service to answer",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
	})

	DecompileWasmSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "contractloader_decompile_wasm_bytes",
		Help:    "Size of WASM blobs sent for decompilation",
		Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
	})
)

// State metrics - Track the RPC backend
var (
	RPCAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "contractloader_rpc_available",
		Help: "1 when the RPC client is started and usable, 0 otherwise",
	})

	RPCLatestLedger = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "contractloader_rpc_latest_ledger",
		Help: "Latest ledger reported by the RPC health check",
	})
)

// Error metrics - Track failures
var (
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contractloader_errors_total",
			Help: "Total number of errors by component",
		},
		[]string{"component"},
	)
)
