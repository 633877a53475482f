package engineconfig

import (
	"log/slog"

	"github.com/dogmatiq/ferrite"
	"github.com/google/uuid"
	"github.com/saastack/eventing/internal/telemetry"
	"go.opentelemetry.io/otel"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
)

var nodeID = ferrite.
	String("EVENTING_NODE_ID", "identifies this process within the relay cluster").
	WithConstraint(
		"must be a UUID other than the nil UUID",
		func(v string) bool {
			id, err := uuid.Parse(v)
			return err == nil && id != uuid.Nil
		},
	).
	Optional(ferrite.WithRegistry(FerriteRegistry))

// finalizeNodeID picks the node ID from, in order, an explicit option, the
// environment, or a random UUID.
func (c *Config) finalizeNodeID() {
	if c.NodeID != uuid.Nil {
		return
	}

	c.NodeID = uuid.New()

	if c.UseEnv {
		if v, ok := nodeID.Value(); ok {
			c.NodeID = uuid.MustParse(v)
		}
	}
}

// finalizeTelemetry falls back to the global OpenTelemetry providers when the
// environment is in use, and to no-op providers otherwise.
func (c *Config) finalizeTelemetry() {
	t := c.Telemetry

	if t.TracerProvider == nil {
		t.TracerProvider = nooptrace.NewTracerProvider()
		if c.UseEnv {
			t.TracerProvider = otel.GetTracerProvider()
		}
	}

	if t.MeterProvider == nil {
		t.MeterProvider = noopmetric.NewMeterProvider()
		if c.UseEnv {
			t.MeterProvider = otel.GetMeterProvider()
		}
	}

	if t.Logger == nil {
		t.Logger = slog.Default()
	}

	t.Attrs = append(t.Attrs, telemetry.Stringer("node_id", c.NodeID))
}
