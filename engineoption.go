package eventing

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/internal/engineconfig"
	"github.com/saastack/eventing/notification"
	"github.com/saastack/eventing/persistence/journal"
	"github.com/saastack/eventing/persistence/kv"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// FerriteRegistry is a registry of the environment variables used by the
// engine.
//
// It can be used with the [ferrite] package.
var FerriteRegistry = engineconfig.FerriteRegistry

// An EngineOption configures the behavior of an [Engine].
type EngineOption func(*engineconfig.Config)

// WithOptionsFromEnvironment is an engine option that configures the engine
// using options specified via environment variables.
//
// Any explicit options passed to [New] take precedence over options from the
// environment.
func WithOptionsFromEnvironment() EngineOption {
	return func(cfg *engineconfig.Config) {
		cfg.UseEnv = true
	}
}

// WithNodeID is an [EngineOption] that sets the node ID of the engine.
func WithNodeID(id uuid.UUID) EngineOption {
	if id == uuid.Nil {
		panic("node ID must not be the nil UUID")
	}

	return func(cfg *engineconfig.Config) {
		cfg.NodeID = id
	}
}

// WithTracerProvider is an [EngineOption] that sets the OpenTelemetry tracer
// provider used by the engine.
func WithTracerProvider(p trace.TracerProvider) EngineOption {
	if p == nil {
		panic("tracer provider must not be nil")
	}

	return func(cfg *engineconfig.Config) {
		cfg.Telemetry.TracerProvider = p
	}
}

// WithMeterProvider is an [EngineOption] that sets the OpenTelemetry meter
// provider used by the engine.
func WithMeterProvider(p metric.MeterProvider) EngineOption {
	if p == nil {
		panic("meter provider must not be nil")
	}

	return func(cfg *engineconfig.Config) {
		cfg.Telemetry.MeterProvider = p
	}
}

// WithLogger is an [EngineOption] that sets the logger used by the engine.
func WithLogger(l *slog.Logger) EngineOption {
	if l == nil {
		panic("logger must not be nil")
	}

	return func(cfg *engineconfig.Config) {
		cfg.Telemetry.Logger = l
	}
}

// WithJournalStore is an [EngineOption] that sets the journal store used by the
// engine.
func WithJournalStore(s journal.Store) EngineOption {
	return func(cfg *engineconfig.Config) {
		cfg.Persistence.Journals = s
	}
}

// WithKeyValueStore is an [EngineOption] that sets the key/value store used by
// the engine.
func WithKeyValueStore(s kv.Store) EngineOption {
	return func(cfg *engineconfig.Config) {
		cfg.Persistence.Keyspaces = s
	}
}

// WithEventTypes is an [EngineOption] that registers the types of the given
// prototype values as event payload types.
//
// Every payload type raised by an aggregate must be registered.
func WithEventTypes(prototypes ...any) EngineOption {
	return func(cfg *engineconfig.Config) {
		if err := cfg.Codec.Register(prototypes...); err != nil {
			panic(err)
		}
	}
}

// WithMigrator is an [EngineOption] that adds a migrator that converts events
// with obsolete or unknown payload types as they are loaded.
func WithMigrator(m aggregate.Migrator) EngineOption {
	if m == nil {
		panic("migrator must not be nil")
	}

	return func(cfg *engineconfig.Config) {
		if cfg.Migrator == nil {
			cfg.Migrator = m
		} else {
			cfg.Migrator = aggregate.Migrators{cfg.Migrator, m}
		}
	}
}

// WithMessageBroker is an [EngineOption] that sets the broker to which
// integration events are published.
func WithMessageBroker(b notification.MessageBroker) EngineOption {
	if b == nil {
		panic("message broker must not be nil")
	}

	return func(cfg *engineconfig.Config) {
		cfg.Notification.Broker = b
	}
}

// WithConsumer is an [EngineOption] that adds a consumer of domain events.
//
// Consumers receive events in the order they are added.
func WithConsumer(c notification.Consumer) EngineOption {
	if c == nil {
		panic("consumer must not be nil")
	}

	return func(cfg *engineconfig.Config) {
		cfg.Notification.Consumers = append(cfg.Notification.Consumers, c)
	}
}

// WithTranslator is an [EngineOption] that adds a translator that produces
// integration events from the domain events of one aggregate type.
//
// It requires a message broker.
func WithTranslator(t notification.Translator) EngineOption {
	if t == nil {
		panic("translator must not be nil")
	}

	return func(cfg *engineconfig.Config) {
		cfg.Notification.Translators = append(cfg.Notification.Translators, t)
	}
}

// WithAsyncRelay is an [EngineOption] that delivers domain events to
// consumers asynchronously, via a durable queue with the given number of
// partitions.
//
// The events are delivered while [Engine.Run] is running. If partitions is
// non-positive a default is used.
func WithAsyncRelay(partitions int) EngineOption {
	return func(cfg *engineconfig.Config) {
		cfg.Relay.Async = true
		cfg.Relay.Partitions = partitions
	}
}

// WithSnapshotEvery is an [EngineOption] that snapshots aggregates each time
// n more events have been saved. Snapshots are disabled if n is zero.
func WithSnapshotEvery(n uint64) EngineOption {
	return func(cfg *engineconfig.Config) {
		cfg.SnapshotEvery = n
	}
}
