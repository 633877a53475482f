package engineconfig

import (
	"github.com/dogmatiq/ferrite"
	"github.com/google/uuid"
	"github.com/saastack/eventing/aggregate"
	"github.com/saastack/eventing/codec"
	"github.com/saastack/eventing/internal/telemetry"
	"github.com/saastack/eventing/notification"
	"github.com/saastack/eventing/persistence/journal"
	"github.com/saastack/eventing/persistence/kv"
)

// FerriteRegistry is a registry of the environment variables used by the
// eventing engine.
var FerriteRegistry = ferrite.NewRegistry(
	"saastack.eventing",
	"Eventing",
	ferrite.WithDocumentationURL("https://github.com/saastack/eventing#readme"),
)

// Config encapsulates the configuration of an [eventing.Engine], built by
// applying [eventing.EngineOption] functions.
type Config struct {
	UseEnv    bool
	NodeID    uuid.UUID
	Telemetry *telemetry.Provider

	Persistence struct {
		Journals  journal.Store
		Keyspaces kv.Store
	}

	Codec    *codec.Registry
	Migrator aggregate.Migrator

	Notification struct {
		Broker      notification.MessageBroker
		Consumers   []notification.Consumer
		Translators []notification.Translator
	}

	Relay struct {
		Async      bool
		Partitions int
	}

	SnapshotEvery uint64

	// Closers are called, in reverse order, when the engine is closed. They
	// release resources opened on behalf of the engine, such as connections
	// described by DSNs in the environment.
	Closers []func()
}

// New returns a new configuration for an [eventing.Engine].
func New[Option ~func(*Config)](options []Option) Config {
	c := Config{
		Telemetry: &telemetry.Provider{},
		Codec:     &codec.Registry{},
	}

	for _, opt := range options {
		opt(&c)
	}

	c.finalize()

	return c
}

// Close calls the closers in reverse order.
func (c *Config) Close() {
	for i := len(c.Closers) - 1; i >= 0; i-- {
		c.Closers[i]()
	}
	c.Closers = nil
}

func (c *Config) finalize() {
	c.finalizeNodeID()
	c.finalizeTelemetry()
	c.finalizePersistence()
	c.finalizeBroker()
	c.finalizeRelay()
}
