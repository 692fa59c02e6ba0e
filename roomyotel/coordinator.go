package roomyotel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/castaneai/roomy"
)

type coordinator struct {
	roomy.Coordinator
	reservedCount   metric.Int64Counter
	reservedLatency metric.Float64Histogram
}

// NewCoordinator records every Reserve call of inner by outcome.
func NewCoordinator(inner roomy.Coordinator, opts ...Option) (roomy.Coordinator, error) {
	meter := newOptions(opts).meterProvider.Meter(scopeName)
	reservedCount, err := meter.Int64Counter("roomy.reservation.count_total")
	if err != nil {
		return nil, err
	}
	reservedLatency, err := meter.Float64Histogram("roomy.reservation_latency_seconds",
		metric.WithUnit("s"), metric.WithExplicitBucketBoundaries(latencyHistogramBuckets...))
	if err != nil {
		return nil, err
	}
	return &coordinator{
		Coordinator:     inner,
		reservedCount:   reservedCount,
		reservedLatency: reservedLatency,
	}, nil
}

func (c *coordinator) Reserve(ctx context.Context, req roomy.ReserveRequest) (resp *roomy.ReserveResponse, err error) {
	start := time.Now()
	defer func() {
		attrs := metric.WithAttributes(statusAttr(err))
		c.reservedCount.Add(ctx, 1, attrs)
		c.reservedLatency.Record(ctx, time.Since(start).Seconds(), attrs)
	}()
	return c.Coordinator.Reserve(ctx, req)
}
