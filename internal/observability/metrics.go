package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the scheduler RPC instruments. A nil *Metrics records nothing.
type Metrics struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry

	RPCTotal    metric.Int64Counter
	RPCDuration metric.Float64Histogram
}

// NewMetrics creates the instruments on a private Prometheus registry.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	meter := provider.Meter("aurora-cli")
	m := &Metrics{provider: provider, registry: registry}

	m.RPCTotal, err = meter.Int64Counter(
		"scheduler_rpc",
		metric.WithDescription("Total number of scheduler calls"),
	)
	if err != nil {
		return nil, err
	}

	m.RPCDuration, err = meter.Float64Histogram(
		"scheduler_rpc_duration",
		metric.WithDescription("Scheduler call latency in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRPC records one scheduler call.
func (m *Metrics) RecordRPC(ctx context.Context, cluster, method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(clusterAttr(cluster), methodAttr(method), outcomeAttr(outcome))
	m.RPCTotal.Add(ctx, 1, attrs)
	m.RPCDuration.Record(ctx, d.Seconds(),
		metric.WithAttributes(clusterAttr(cluster), methodAttr(method)))
}

// Gatherer exposes the underlying registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes every metric to path in the Prometheus text format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

// Shutdown stops the meter provider.
func (m *Metrics) Shutdown(ctx context.Context) error {
	if m == nil {
		return nil
	}
	return m.provider.Shutdown(ctx)
}
