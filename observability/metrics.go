// Package observability provides optional metrics and tracing for the
// hookstream delivery pipeline.
package observability

import (
	gu "github.com/xraph/go-utils/metrics"
)

// Metrics holds metric instruments for hookstream, backed by any go-utils
// MetricFactory.
type Metrics struct {
	DeliveriesTotal      gu.Counter
	BroadcastsTotal      gu.Counter
	BroadcastErrorsTotal gu.Counter
	ActiveSubscriptions  gu.Gauge
	FanoutLatency        gu.Histogram
}

// NewMetrics creates hookstream metric instruments using the supplied
// factory. Pass metrics.NewMetricsCollector() for standalone usage.
func NewMetrics(factory gu.MetricFactory) *Metrics {
	return &Metrics{
		DeliveriesTotal:      factory.Counter("hookstream_deliveries_total"),
		BroadcastsTotal:      factory.Counter("hookstream_broadcasts_total"),
		BroadcastErrorsTotal: factory.Counter("hookstream_broadcast_errors_total"),
		ActiveSubscriptions:  factory.Gauge("hookstream_active_subscriptions"),
		FanoutLatency:        factory.Histogram("hookstream_fanout_latency_seconds"),
	}
}

// RecordDelivery records one inbound delivery with its outcome.
func (m *Metrics) RecordDelivery(outcome string) {
	m.DeliveriesTotal.WithLabels(map[string]string{"outcome": outcome}).Inc()
}

// RecordFanout records one completed fanout with the number of subscriber
// sends and the elapsed time.
func (m *Metrics) RecordFanout(sends int, latencySeconds float64) {
	m.BroadcastsTotal.Add(float64(sends))
	m.FanoutLatency.Observe(latencySeconds)
}

// SubscriptionOpened increments the active subscription gauge.
func (m *Metrics) SubscriptionOpened() { m.ActiveSubscriptions.Add(1) }

// SubscriptionClosed decrements the active subscription gauge.
func (m *Metrics) SubscriptionClosed() { m.ActiveSubscriptions.Add(-1) }
