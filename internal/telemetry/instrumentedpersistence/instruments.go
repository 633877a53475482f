// Package instrumentedpersistence decorates journal and key/value stores with
// OpenTelemetry traces, metrics and structured logs.
package instrumentedpersistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/saastack/eventing/internal/telemetry"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationPackage = "github.com/saastack/eventing/persistence"

// instruments are the metrics shared by journals and keyspaces. unit names
// the thing being stored, such as "record" or "pair".
type instruments struct {
	open  metric.Int64UpDownCounter
	bytes metric.Int64Counter
	items metric.Int64Counter
	sizes metric.Int64Histogram
}

func newInstruments(r *telemetry.Recorder, kind, unit string) instruments {
	return instruments{
		open: r.Int64UpDownCounter(
			"open_"+kind+"s",
			metric.WithDescription("The number of "+kind+" handles that are currently open."),
			metric.WithUnit("{"+kind+"}"),
		),
		bytes: r.Int64Counter(
			"io",
			metric.WithDescription("The cumulative number of bytes read and written."),
			metric.WithUnit("By"),
		),
		items: r.Int64Counter(
			unit+".io",
			metric.WithDescription("The number of "+unit+"s read and written."),
			metric.WithUnit("{"+unit+"}"),
		),
		sizes: r.Int64Histogram(
			unit+".size",
			metric.WithDescription("The sizes of the "+unit+"s read and written."),
			metric.WithUnit("By"),
		),
	}
}

// transfer records the movement of a single item of the given size.
func (in instruments) transfer(ctx context.Context, size int, dir metric.MeasurementOption) {
	n := int64(size)
	in.bytes.Add(ctx, n, dir)
	in.items.Add(ctx, 1, dir)
	in.sizes.Record(ctx, n, dir)
}

// newRecorder returns a recorder for a newly opened handle.
func newRecorder(p *telemetry.Provider, kind string, store any, attrs ...telemetry.Attr) *telemetry.Recorder {
	attrs = append(
		attrs,
		telemetry.Type("store", store),
		telemetry.String("handle", uuid.NewString()),
	)
	return p.Recorder(instrumentationPackage, kind, attrs...)
}

// closeHandle calls closeNext, which is nil if the handle is already
// closed, and decrements the open handle count.
func closeHandle(r *telemetry.Recorder, in instruments, kind string, closeNext func() error) error {
	ctx, span := r.StartSpan(context.Background(), kind+".close")
	defer span.End()

	if closeNext == nil {
		span.Warn(kind + " is already closed")
		return nil
	}

	in.open.Add(ctx, -1)

	if err := closeNext(); err != nil {
		span.Error("could not close "+kind, err)
		return err
	}

	span.Debug("closed " + kind)
	return nil
}

// isShortASCII reports whether b is short, printable text that is safe to
// attach to a span.
func isShortASCII(b []byte) bool {
	if len(b) == 0 || len(b) > 128 {
		return false
	}

	for _, c := range b {
		if c < ' ' || c > '~' {
			return false
		}
	}

	return true
}

// bytesAttr returns an attribute containing b as text, if it is short ASCII.
func bytesAttr(k string, b []byte) telemetry.Attr {
	return telemetry.If(isShortASCII(b), telemetry.String(k, string(b)))
}
