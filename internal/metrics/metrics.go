package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	operation = "operation"
	kind      = "kind"
	reason    = "reason"
	query     = "query"
	section   = "section"
)

var (
	// StoreWrites is the number of whole document writes per operation
	StoreWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "openclaw_store_writes_total",
		Help: "Number of document writes by operation",
	}, []string{operation})

	// StoreErrors is the number of failed store reads and writes per operation
	StoreErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "openclaw_store_errors_total",
		Help: "Number of failed store calls by operation",
	}, []string{operation})

	// RecordsCreated is the number of records created per kind slug
	RecordsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "openclaw_records_created_total",
		Help: "Number of records created by kind",
	}, []string{kind})

	// SnapshotsCaptured is the number of snapshots persisted
	SnapshotsCaptured = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "openclaw_snapshots_captured_total",
		Help: "Number of snapshots captured",
	})

	// HistoryFallbacks counts history calls that could not follow the snapshot chain
	HistoryFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "openclaw_history_fallbacks_total",
		Help: "Number of history calls ordered by creation time instead of the follows chain",
	}, []string{reason})

	// PresenceFailures is the number of gateway presence sub-queries that failed
	PresenceFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "openclaw_presence_failures_total",
		Help: "Number of failed presence sub-queries by method",
	}, []string{query})

	// DecomposeSkipped is the number of array items skipped because they were not objects
	DecomposeSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "openclaw_decompose_skipped_items_total",
		Help: "Number of config array items skipped during decomposition",
	}, []string{section})

	// PingLatency is the latency of gateway pings
	PingLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "openclaw_ping_latency_seconds",
		Help:    "Gateway connect latency in seconds",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	})
)

func init() {
	prometheus.MustRegister(
		StoreWrites,
		StoreErrors,
		RecordsCreated,
		SnapshotsCaptured,
		HistoryFallbacks,
		PresenceFailures,
		DecomposeSkipped,
		PingLatency,
	)
}

func Reset() {
	StoreWrites.Reset()
	StoreErrors.Reset()
	RecordsCreated.Reset()
	HistoryFallbacks.Reset()
	PresenceFailures.Reset()
	DecomposeSkipped.Reset()
}
