package roomyotel

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/castaneai/roomy"
)

const (
	scopeName = "github.com/castaneai/roomy"
)

var (
	latencyHistogramBuckets = []float64{
		.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10,
	}
)

const (
	statusKey = attribute.Key("status")
	roomKey   = attribute.Key("room")
)

type options struct {
	meterProvider metric.MeterProvider
}

type Option func(*options)

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

func newOptions(opts []Option) *options {
	o := &options{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func statusAttr(err error) attribute.KeyValue {
	if err == nil {
		return statusKey.String("ok")
	}
	return statusKey.String(string(roomy.StatusOf(err)))
}
