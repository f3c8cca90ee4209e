package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCollector(t *testing.T) {
	// Reset Prometheus registry to avoid duplicate registration
	prometheus.DefaultRegisterer = prometheus.NewRegistry()

	collector := NewCollector()

	assert.NotNil(t, collector, "NewCollector should return a non-nil collector")
	assert.NotNil(t, collector.jobsLive, "jobsLive gauge should be initialized")
	assert.NotNil(t, collector.jobsRunning, "jobsRunning gauge should be initialized")
	assert.NotNil(t, collector.jobsStopped, "jobsStopped gauge should be initialized")
	assert.NotNil(t, collector.reapEvents, "reapEvents counter should be initialized")
	assert.NotNil(t, collector.waitLatency, "waitLatency histogram should be initialized")
}

func TestUpdateJobStats(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	testCases := []struct {
		name    string
		live    int
		running int
		stopped int
	}{
		{"zero values", 0, 0, 0},
		{"normal values", 3, 1, 2},
		{"all running", 5, 5, 0},
		{"all stopped", 4, 0, 4},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				collector.UpdateJobStats(tc.live, tc.running, tc.stopped)
			}, "UpdateJobStats should not panic")
		})
	}
}

func TestRecordReap(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		collector.RecordReap(1)
	}, "RecordReap should not panic")

	for i := 0; i < 5; i++ {
		collector.RecordReap(1)
	}
}

func TestRecordWait(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	latencies := []float64{0.001, 0.01, 0.1, 1.0, 5.0}

	for _, latency := range latencies {
		assert.NotPanics(t, func() {
			collector.RecordWait(latency)
		}, "RecordWait should not panic with latency %f", latency)
	}
}

func TestConcurrentMetricUpdates(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	// Prometheus metrics should be thread-safe
	done := make(chan bool, 100)

	for i := 0; i < 100; i++ {
		go func() {
			collector.RecordReap(1)
			collector.RecordWait(0.1)
			collector.UpdateJobStats(3, 1, 2)
			done <- true
		}()
	}

	for i := 0; i < 100; i++ {
		<-done
	}
}

func TestCollectorIsolation(t *testing.T) {
	// A second collector cannot share a registry with the first
	prometheus.DefaultRegisterer = prometheus.NewRegistry()

	collector1 := NewCollector()
	require.NotNil(t, collector1)

	// Second collector will panic due to duplicate registration
	// This is expected: a process should have only one collector
	assert.Panics(t, func() {
		NewCollector()
	}, "Creating a second collector should panic due to duplicate registration")
}

func TestMetricOperationSequence(t *testing.T) {
	// Test a typical job-control sequence
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	assert.NotPanics(t, func() {
		// 1. A job is promoted, running
		collector.UpdateJobStats(1, 1, 0)

		// 2. It stops
		collector.UpdateJobStats(1, 0, 1)

		// 3. A reap folds its exit
		collector.RecordReap(1)
		collector.UpdateJobStats(0, 0, 0)

		// 4. Somebody waited on it
		collector.RecordWait(0.5)
	}, "Complete job-control lifecycle should not panic")
}

func TestZeroAndNegativeValues(t *testing.T) {
	prometheus.DefaultRegisterer = prometheus.NewRegistry()
	collector := NewCollector()

	// Test boundary values
	assert.NotPanics(t, func() {
		collector.RecordWait(0.0)          // zero latency
		collector.UpdateJobStats(0, 0, 0)  // empty table
		collector.UpdateJobStats(-1, -1, -1) // negative values (shouldn't happen)
	}, "Edge case values should not panic")
}
