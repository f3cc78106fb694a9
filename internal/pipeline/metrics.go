package pipeline

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// StreamingMetrics collects per-run materialization counters. Counters are
// atomic so parallel column groups may report into the same collector.
type StreamingMetrics struct {
	name   string
	logger *zap.Logger

	documents     int64
	batches       int64
	batchDuration int64 // nanoseconds, summed

	startTime time.Time
	endTime   time.Time
}

// NewStreamingMetrics creates a new metrics collector
func NewStreamingMetrics(name string, logger *zap.Logger) *StreamingMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StreamingMetrics{
		name:   name,
		logger: logger.With(zap.String("component", "streaming_metrics")),
	}
}

func (m *StreamingMetrics) start() {
	m.startTime = time.Now()
}

func (m *StreamingMetrics) stop() {
	m.endTime = time.Now()
}

func (m *StreamingMetrics) recordDocuments(n int) {
	atomic.AddInt64(&m.documents, int64(n))
}

func (m *StreamingMetrics) recordBatch(d time.Duration) {
	atomic.AddInt64(&m.batches, 1)
	atomic.AddInt64(&m.batchDuration, int64(d))
}

// StreamingStats is a snapshot of a run.
type StreamingStats struct {
	Documents        int64         `json:"documents"`
	Batches          int64         `json:"batches"`
	Duration         time.Duration `json:"duration"`
	AvgBatchDuration time.Duration `json:"avg_batch_duration"`
	ThroughputDPS    float64       `json:"throughput_dps"`
}

// Stats returns the current snapshot.
func (m *StreamingMetrics) Stats() StreamingStats {
	end := m.endTime
	if end.IsZero() {
		end = time.Now()
	}

	s := StreamingStats{
		Documents: atomic.LoadInt64(&m.documents),
		Batches:   atomic.LoadInt64(&m.batches),
	}
	if !m.startTime.IsZero() {
		s.Duration = end.Sub(m.startTime)
	}
	if s.Batches > 0 {
		s.AvgBatchDuration = time.Duration(atomic.LoadInt64(&m.batchDuration) / s.Batches)
	}
	if secs := s.Duration.Seconds(); secs > 0 {
		s.ThroughputDPS = float64(s.Documents) / secs
	}
	return s
}

// LogSummary logs the snapshot at info level.
func (m *StreamingMetrics) LogSummary() {
	s := m.Stats()
	m.logger.Info("materialization summary",
		zap.String("name", m.name),
		zap.Int64("documents", s.Documents),
		zap.Int64("batches", s.Batches),
		zap.Duration("duration", s.Duration),
		zap.Duration("avg_batch_duration", s.AvgBatchDuration),
		zap.Float64("throughput_dps", s.ThroughputDPS))
}
