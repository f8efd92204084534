package prometheus

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveIngest(t *testing.T) {
	m := New()

	m.ObserveIngest("ok", 120*time.Millisecond, 7)
	m.ObserveIngest("ok", 80*time.Millisecond, 3)
	m.ObserveIngest("corrupt_input", time.Millisecond, 0)

	assert.InDelta(t, 2, testutil.ToFloat64(m.documents.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.documents.WithLabelValues("corrupt_input")), 0)
	assert.InDelta(t, 10, testutil.ToFloat64(m.chunks), 0)
}

func TestMetrics_ObserveQuery(t *testing.T) {
	m := New()

	m.ObserveQuery(time.Millisecond, 5, nil)
	m.ObserveQuery(time.Millisecond, 0, errors.New("index unavailable"))

	assert.InDelta(t, 1, testutil.ToFloat64(m.queries.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.queries.WithLabelValues("error")), 0)
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveIngest("ok", time.Second, 4)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `jse_ingest_documents_total{result="ok"} 1`)
	assert.Contains(t, string(body), "jse_ingest_chunks_total 4")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestMetrics_IndependentRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	a, b := New(), New()
	a.ObserveIngest("ok", time.Second, 1)

	assert.InDelta(t, 0, testutil.ToFloat64(b.chunks), 0)
}
