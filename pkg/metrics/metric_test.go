package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordSearch(t *testing.T) {
	r := NewRegistry()

	r.RecordSearch("aco", "graph", "success", 20*time.Millisecond, 50, 12)
	r.RecordSearch("aco", "graph", "success", 30*time.Millisecond, 50, 14)
	r.RecordSearch("aco", "graph", "partial", 10*time.Millisecond, 50, 3)

	counter, err := r.SearchesTotal.GetMetricWithLabelValues("aco", "graph", "success")
	require.NoError(t, err)
	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	assert.Equal(t, 2.0, metric.GetCounter().GetValue())

	families, err := r.GetPrometheusRegistry().Gather()
	require.NoError(t, err)

	var edges *dto.MetricFamily
	for _, mf := range families {
		if mf.GetName() == "swarmnav_route_length" {
			edges = mf
		}
	}
	require.NotNil(t, edges)
	require.Len(t, edges.GetMetric(), 1)
	h := edges.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(3), h.GetSampleCount())
	assert.Equal(t, 29.0, h.GetSampleSum())
}

func TestRecordCacheLookup(t *testing.T) {
	r := NewRegistry()
	r.RecordCacheLookup(true)
	r.RecordCacheLookup(false)
	r.RecordCacheLookup(false)

	var metric dto.Metric
	require.NoError(t, r.CacheHitsTotal.WithLabelValues("miss").Write(&metric))
	assert.Equal(t, 2.0, metric.GetCounter().GetValue())
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.SetMapStats(10, 24, 3)
	r.RecordHTTPRequest("GET", "/api/strategies", "200", time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "swarmnav_graph_edges 24")
	assert.Contains(t, string(body), `swarmnav_http_requests_total{method="GET",path="/api/strategies",status="200"} 1`)
}

func TestDefaultRegistry(t *testing.T) {
	assert.Same(t, DefaultRegistry(), DefaultRegistry())
}
