package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerObservesPhase(t *testing.T) {
	before := testutil.CollectAndCount(ReadPhaseDuration)

	timer := NewTimer("test_phase")
	d := timer.ObserveDuration()
	assert.GreaterOrEqual(t, d.Nanoseconds(), int64(0))

	assert.Equal(t, before+1, testutil.CollectAndCount(ReadPhaseDuration))
}

func TestCounters(t *testing.T) {
	DocumentsRead.WithLabelValues("test.metrics").Add(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(DocumentsRead.WithLabelValues("test.metrics")))

	ReadsTotal.WithLabelValues(StatusFailure).Inc()
	assert.GreaterOrEqual(t, testutil.ToFloat64(ReadsTotal.WithLabelValues(StatusFailure)), 1.0)
}

func TestSampleMemory(t *testing.T) {
	rss, err := SampleMemory()
	require.NoError(t, err)
	assert.Greater(t, rss, uint64(0))
	assert.Equal(t, float64(rss), testutil.ToFloat64(ResidentMemory))
}

func TestHandler(t *testing.T) {
	SchemaFields.WithLabelValues("test.handler").Set(4)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `docframe_schema_fields{collection="test.handler"} 4`))
}
