package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Exposition(t *testing.T) {
	m := New()
	m.Conversions.WithLabelValues("convert", "success").Inc()
	m.CacheHits.Inc()
	m.InFlight.Inc()
	m.Duration.WithLabelValues("convert").Observe(1.5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `convertd_conversions_total{outcome="success",route="convert"} 1`)
	assert.Contains(t, body, "convertd_cache_hits_total 1")
	assert.Contains(t, body, "convertd_conversions_in_flight 1")
	assert.Contains(t, body, "convertd_conversion_duration_seconds_count")
}

func TestMetrics_IndependentInstances(t *testing.T) {
	a := New()
	b := New()
	a.CacheHits.Inc()

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "convertd_cache_hits_total 0")
}
