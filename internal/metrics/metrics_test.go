package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	t.Parallel()

	r := NewRecorder(false)
	r.ObserveExpansion("MWF", 4)
	r.ObserveExpansion("MWF", 5)
	r.ObserveExpansion("manual", 2)
	r.ConflictDetected()
	r.SessionRescheduled()
	r.SessionRescheduled()
	r.SessionCacheLookup(true)
	r.SessionCacheLookup(false)
	r.SessionCacheLookup(false)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.expansions.WithLabelValues("MWF")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.expansions.WithLabelValues("manual")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.conflicts))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.reschedules))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
}

func TestRecorderRequests(t *testing.T) {
	t.Parallel()

	r := NewRecorder(false)
	r.ObserveRequest(http.MethodGet, "/batches/{batchID}", http.StatusOK, 5*time.Millisecond)
	r.ObserveRequest(http.MethodGet, "", http.StatusNotFound, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("GET", "/batches/{batchID}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("GET", "unmatched", "404")))
}

func TestRecorderHandlerExposesMetrics(t *testing.T) {
	t.Parallel()

	r := NewRecorder(true)
	r.ConflictDetected()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "batch_scheduler_session_conflicts_total 1"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestNilRecorderIsSafe(t *testing.T) {
	t.Parallel()

	var r *Recorder
	r.ObserveExpansion("MWF", 1)
	r.ConflictDetected()
	r.SessionRescheduled()
	r.SessionCacheLookup(true)
	r.ObserveRequest("GET", "/", 200, time.Second)
}
