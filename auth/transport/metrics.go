package transport

import "sync/atomic"

// MetricID identifies one refresh-cycle counter.
type MetricID uint8

const (
	MetricRefreshSuccess MetricID = iota
	MetricRefreshFailure
	MetricRefreshCoalesced
	MetricReplaySuccess
	MetricReplayFailure
	MetricSessionTerminated

	numMetrics
)

// MetricDef describes one counter for exporters.
type MetricDef struct {
	ID   MetricID
	Name string
	Help string
}

// MetricDefs lists every counter the coordinator maintains, in MetricID
// order.
var MetricDefs = []MetricDef{
	{MetricRefreshSuccess, "wanderly_refresh_success_total", "Refresh cycles that produced a new credential."},
	{MetricRefreshFailure, "wanderly_refresh_failure_total", "Refresh cycles that failed or timed out."},
	{MetricRefreshCoalesced, "wanderly_refresh_coalesced_total", "Authorization failures absorbed into an already running cycle."},
	{MetricReplaySuccess, "wanderly_replay_success_total", "Requests replayed after a refresh without a transport error."},
	{MetricReplayFailure, "wanderly_replay_failure_total", "Request replays that ended in a transport error."},
	{MetricSessionTerminated, "wanderly_session_terminated_total", "Sessions ended by an unrecoverable refresh failure."},
}

// Metrics counts refresh-cycle events with lock-free counters. Snapshot is
// safe to call from an exporter callback at any time.
type Metrics struct {
	counters [numMetrics]atomic.Uint64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) add(id MetricID, delta uint64) {
	if m == nil {
		return
	}
	m.counters[id].Add(delta)
}

// MetricsSnapshot is a point-in-time copy of every counter, indexed by
// MetricID.
type MetricsSnapshot struct {
	Counters []uint64
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	snapshot := MetricsSnapshot{Counters: make([]uint64, numMetrics)}
	if m == nil {
		return snapshot
	}
	for i := range m.counters {
		snapshot.Counters[i] = m.counters[i].Load()
	}
	return snapshot
}
