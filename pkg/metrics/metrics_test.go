package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveFetch(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveFetch("posts", nil)
	m.ObserveFetch("posts", nil)
	m.ObserveFetch("posts", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.UpstreamFetches.WithLabelValues("posts", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFetches.WithLabelValues("posts", "error")))
}

func TestObserveLoad(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLoad(2, 1, 2, nil)
	m.ObserveLoad(0, 0, 0, errors.New("upstream down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadRuns.WithLabelValues("error")))
	// Failed runs leave the last successful counts in place
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoadedRecords.WithLabelValues("users")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoadedRecords.WithLabelValues("posts")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoadedRecords.WithLabelValues("comments")))
}

func TestObserveHTTP(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveHTTP("GET", "/users/:id", 404, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/users/:id", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.HTTPDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.ObserveFetch("users", nil)
		m.ObserveLoad(1, 1, 1, nil)
	})
}
