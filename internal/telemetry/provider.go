package telemetry

import (
	"log/slog"
	"runtime/debug"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/exp/slices"
)

// ReadDirection and WriteDirection tag byte and item counters with the
// direction of the transfer.
var (
	ReadDirection  = direction("read")
	WriteDirection = direction("write")
)

func direction(d string) metric.MeasurementOption {
	return metric.WithAttributeSet(attribute.NewSet(attribute.String("direction", d)))
}

// moduleVersion is the version of the eventing module linked into the binary,
// as reported by the build info.
var moduleVersion = sync.OnceValue(func() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	for _, dep := range info.Deps {
		if dep.Path == "github.com/saastack/eventing" {
			return dep.Version
		}
	}

	return "unknown"
})

// Provider hands out a [Recorder] for each instrumented subsystem.
//
// A nil or zero Provider records nothing and logs to [slog.Default].
type Provider struct {
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Logger         *slog.Logger
	Attrs          []Attr
}

// Recorder returns a recorder for the subsystem called name, implemented in
// the Go package pkg. name namespaces the subsystem's attributes.
func (p *Provider) Recorder(pkg, name string, attrs ...Attr) *Recorder {
	var (
		tp     trace.TracerProvider = nooptrace.NewTracerProvider()
		mp     metric.MeterProvider = noopmetric.NewMeterProvider()
		logger                      = slog.Default()
	)

	if p != nil {
		if p.TracerProvider != nil {
			tp = p.TracerProvider
		}
		if p.MeterProvider != nil {
			mp = p.MeterProvider
		}
		if p.Logger != nil {
			logger = p.Logger
		}
		attrs = append(slices.Clone(p.Attrs), attrs...)
	}

	set := attrSet{Namespace: name, Attrs: attrs}
	version := moduleVersion()

	r := &Recorder{
		name:  name,
		attrs: set,
		tracer: tp.Tracer(
			pkg,
			trace.WithInstrumentationVersion(version),
			trace.WithInstrumentationAttributes(set.ForSpan()...),
		),
		meter: mp.Meter(
			pkg,
			metric.WithInstrumentationVersion(version),
			metric.WithInstrumentationAttributes(set.ForSpan()...),
		),
		logger: logger.With(set.ForLogger()...),
	}

	r.errors = r.Int64Counter(
		"errors",
		metric.WithDescription("Errors reported by the subsystem."),
		metric.WithUnit("{error}"),
	)

	return r
}
