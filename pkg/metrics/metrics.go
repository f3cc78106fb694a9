// Package metrics provides Prometheus metrics for docframe reads.
//
// # Overview
//
// The metrics package provides:
//   - Pre-defined, auto-registered collectors for the read path
//   - A Timer for phase latencies
//   - Process memory sampling
//
// # Basic Usage
//
//	timer := metrics.NewTimer("infer_schema")
//	s, err := inferrer.Infer(sample)
//	timer.ObserveDuration()
//
//	metrics.DocumentsRead.WithLabelValues("shop.orders").Add(float64(n))
//
// # Exposition
//
// Handler serves every registered metric in the Prometheus text format.
package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/process"
)

// Read outcomes used as the status label of ReadsTotal.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	// DocumentsRead counts documents materialized into tables.
	// Labels: collection
	DocumentsRead = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docframe_documents_read_total",
			Help: "Total number of documents materialized",
		},
		[]string{"collection"},
	)

	// CoercionNulls counts values that could not be coerced to their column
	// type and were stored as null.
	// Labels: collection, type (column type)
	CoercionNulls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docframe_coercion_nulls_total",
			Help: "Values replaced by null because they did not fit the column type",
		},
		[]string{"collection", "type"},
	)

	// ReadPhaseDuration tracks how long each read phase takes.
	// Labels: phase (infer_schema/materialize/finalize)
	ReadPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "docframe_read_phase_duration_seconds",
			Help: "Duration of read phases in seconds",
			Buckets: []float64{
				0.001, // 1ms - small in-memory samples
				0.01,  // 10ms
				0.1,   // 100ms - typical sample round trip
				1,     // 1s
				10,    // 10s - large collections
				60,    // 1m
				600,   // 10m
			},
		},
		[]string{"phase"},
	)

	// SchemaFields reports the field count of the last inferred schema.
	// Labels: collection
	SchemaFields = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "docframe_schema_fields",
			Help: "Number of fields in the last inferred schema",
		},
		[]string{"collection"},
	)

	// ReadsTotal counts finished reads.
	// Labels: status (success/failure)
	ReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docframe_reads_total",
			Help: "Total number of reads",
		},
		[]string{"status"},
	)

	// ResidentMemory reports the process resident set size.
	ResidentMemory = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "docframe_process_resident_memory_bytes",
			Help: "Resident memory of the docframe process in bytes",
		},
	)
)

// Timer measures a read phase and reports it to ReadPhaseDuration.
type Timer struct {
	start time.Time
	phase string
}

// NewTimer creates a new timer and starts timing immediately.
func NewTimer(phase string) *Timer {
	return &Timer{
		start: time.Now(),
		phase: phase,
	}
}

// Stop returns the elapsed duration since creation without recording it.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// ObserveDuration records the elapsed time and returns it.
func (t *Timer) ObserveDuration() time.Duration {
	d := time.Since(t.start)
	ReadPhaseDuration.WithLabelValues(t.phase).Observe(d.Seconds())
	return d
}

// SampleMemory updates ResidentMemory from the operating system and
// returns the sampled value.
func SampleMemory() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, err
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	ResidentMemory.Set(float64(info.RSS))
	return info.RSS, nil
}

// Handler returns an HTTP handler exposing the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
