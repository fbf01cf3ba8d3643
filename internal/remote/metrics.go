package remote

import (
	"sync/atomic"
	"time"
)

// Metrics tracks remote call counters.
type Metrics struct {
	crudCalls      int64
	crudErrors     int64
	crudLatency    int64 // total latency in nanoseconds
	executeCalls   int64
	executeErrors  int64
	executeLatency int64
}

var globalMetrics = &Metrics{}

// GetMetrics returns the current metrics snapshot.
func GetMetrics() Metrics {
	return Metrics{
		crudCalls:      atomic.LoadInt64(&globalMetrics.crudCalls),
		crudErrors:     atomic.LoadInt64(&globalMetrics.crudErrors),
		crudLatency:    atomic.LoadInt64(&globalMetrics.crudLatency),
		executeCalls:   atomic.LoadInt64(&globalMetrics.executeCalls),
		executeErrors:  atomic.LoadInt64(&globalMetrics.executeErrors),
		executeLatency: atomic.LoadInt64(&globalMetrics.executeLatency),
	}
}

// ResetMetrics resets all counters (useful for testing).
func ResetMetrics() {
	atomic.StoreInt64(&globalMetrics.crudCalls, 0)
	atomic.StoreInt64(&globalMetrics.crudErrors, 0)
	atomic.StoreInt64(&globalMetrics.crudLatency, 0)
	atomic.StoreInt64(&globalMetrics.executeCalls, 0)
	atomic.StoreInt64(&globalMetrics.executeErrors, 0)
	atomic.StoreInt64(&globalMetrics.executeLatency, 0)
}

func recordCRUDCall(duration time.Duration, err error) {
	atomic.AddInt64(&globalMetrics.crudCalls, 1)
	atomic.AddInt64(&globalMetrics.crudLatency, duration.Nanoseconds())
	if err != nil {
		atomic.AddInt64(&globalMetrics.crudErrors, 1)
	}
}

func recordExecuteCall(duration time.Duration, err error) {
	atomic.AddInt64(&globalMetrics.executeCalls, 1)
	atomic.AddInt64(&globalMetrics.executeLatency, duration.Nanoseconds())
	if err != nil {
		atomic.AddInt64(&globalMetrics.executeErrors, 1)
	}
}

// CRUDCalls returns the number of CRUD calls in the snapshot.
func (m Metrics) CRUDCalls() int64 { return m.crudCalls }

// CRUDErrors returns the number of failed CRUD calls in the snapshot.
func (m Metrics) CRUDErrors() int64 { return m.crudErrors }

// ExecuteCalls returns the number of execute calls in the snapshot.
func (m Metrics) ExecuteCalls() int64 { return m.executeCalls }

// ExecuteErrors returns the number of failed execute calls in the snapshot.
func (m Metrics) ExecuteErrors() int64 { return m.executeErrors }

// AverageCRUDLatency returns the average CRUD latency in milliseconds.
func (m Metrics) AverageCRUDLatency() float64 {
	if m.crudCalls == 0 {
		return 0
	}
	return float64(m.crudLatency) / float64(m.crudCalls) / 1e6
}

// ExecuteErrorRate returns the execute error rate as a percentage.
func (m Metrics) ExecuteErrorRate() float64 {
	if m.executeCalls == 0 {
		return 0
	}
	return float64(m.executeErrors) / float64(m.executeCalls) * 100
}
