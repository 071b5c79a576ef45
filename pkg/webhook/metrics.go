package webhook

import "time"

// Metrics defines the interface for tracking webhook deliveries.
type Metrics interface {
	// RecordWebhookEvent records a processed delivery.
	// status: "success", "error", "ignored" or "duplicate"
	RecordWebhookEvent(eventType, status string)

	// RecordWebhookProcessingDuration records how long a delivery took to process.
	RecordWebhookProcessingDuration(eventType string, duration time.Duration)

	// RecordWebhookError records a rejected or failed delivery.
	// errorType: "validation", "authentication", "handler" or "internal"
	RecordWebhookError(errorType string)
}

// NoopMetrics is a no-op implementation of the Metrics interface.
type NoopMetrics struct{}

func (n *NoopMetrics) RecordWebhookEvent(_, _ string)                            {}
func (n *NoopMetrics) RecordWebhookProcessingDuration(_ string, _ time.Duration) {}
func (n *NoopMetrics) RecordWebhookError(_ string)                               {}
