package instrumentedpersistence_test

import (
	"testing"

	. "github.com/saastack/eventing/internal/telemetry/instrumentedpersistence"
	"github.com/saastack/eventing/internal/test"
	"github.com/saastack/eventing/persistence/driver/memory"
	"github.com/saastack/eventing/persistence/kv"
)

func TestKeyValueStore(t *testing.T) {
	kv.RunTests(
		t,
		func(t *testing.T) kv.Store {
			return &KeyValueStore{
				Next:      &memory.KeyValueStore{},
				Telemetry: test.NewTelemetryProvider(t),
			}
		},
	)
}
