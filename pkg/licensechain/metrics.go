package licensechain

import "time"

// Metrics receives measurements from the request pipeline.
type Metrics interface {
	// RecordRequest records one HTTP attempt. status is 0 when no response was received.
	RecordRequest(method, route string, status int, duration time.Duration)

	// RecordRetry records that attempt (1-based) failed and another one is scheduled.
	RecordRetry(method, route string, attempt int)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordRequest(method, route string, status int, duration time.Duration) {}
func (n *NoopMetrics) RecordRetry(method, route string, attempt int)                          {}
