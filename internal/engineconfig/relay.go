package engineconfig

import (
	"github.com/dogmatiq/ferrite"
	"github.com/saastack/eventing/queue"
)

var (
	relayPartitions = ferrite.
			Unsigned[uint]("EVENTING_RELAY_PARTITIONS", "the number of partitions in the asynchronous relay queue, enables the asynchronous relay if set").
			WithMinimum(1).
			Optional(ferrite.WithRegistry(FerriteRegistry))

	snapshotEvery = ferrite.
			Unsigned[uint64]("EVENTING_SNAPSHOT_EVERY", "the number of events between aggregate snapshots, zero disables snapshots").
			Optional(ferrite.WithRegistry(FerriteRegistry))
)

func (c *Config) finalizeRelay() {
	if c.UseEnv {
		if !c.Relay.Async {
			if n, ok := relayPartitions.Value(); ok {
				c.Relay.Async = true
				c.Relay.Partitions = int(n)
			}
		}

		if c.SnapshotEvery == 0 {
			if n, ok := snapshotEvery.Value(); ok {
				c.SnapshotEvery = n
			}
		}
	}

	if c.Relay.Async && c.Relay.Partitions <= 0 {
		c.Relay.Partitions = queue.DefaultPartitions
	}
}
