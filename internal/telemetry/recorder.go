package telemetry

import (
	"log/slog"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Recorder records traces, metrics and logs for a particular subsystem.
type Recorder struct {
	name   string
	attrs  attrSet
	tracer trace.Tracer
	meter  metric.Meter
	logger *slog.Logger

	errors metric.Int64Counter
}

// Logger returns the logger used by the recorder.
func (r *Recorder) Logger() *slog.Logger {
	return r.logger
}

// Int64Counter returns a new Int64Counter instrument.
func (r *Recorder) Int64Counter(
	name string,
	options ...metric.Int64CounterOption,
) metric.Int64Counter {
	c, err := r.meter.Int64Counter(r.metricName(name), options...)
	if err != nil {
		panic(err)
	}
	return c
}

// Int64UpDownCounter returns a new Int64UpDownCounter instrument.
func (r *Recorder) Int64UpDownCounter(
	name string,
	options ...metric.Int64UpDownCounterOption,
) metric.Int64UpDownCounter {
	c, err := r.meter.Int64UpDownCounter(r.metricName(name), options...)
	if err != nil {
		panic(err)
	}
	return c
}

// Int64Histogram returns a new Int64Histogram instrument.
func (r *Recorder) Int64Histogram(
	name string,
	options ...metric.Int64HistogramOption,
) metric.Int64Histogram {
	h, err := r.meter.Int64Histogram(r.metricName(name), options...)
	if err != nil {
		panic(err)
	}
	return h
}

// Float64Histogram returns a new Float64Histogram instrument.
func (r *Recorder) Float64Histogram(
	name string,
	options ...metric.Float64HistogramOption,
) metric.Float64Histogram {
	h, err := r.meter.Float64Histogram(r.metricName(name), options...)
	if err != nil {
		panic(err)
	}
	return h
}

func (r *Recorder) metricName(name string) string {
	return "eventing." + r.name + "." + name
}
