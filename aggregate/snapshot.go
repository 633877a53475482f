package aggregate

import (
	"encoding/json"
	"time"
)

// Snapshot is a point-in-time representation of an aggregate's state.
type Snapshot struct {
	AggregateType string
	AggregateID   string

	// Version is the version of the aggregate when the snapshot was taken.
	Version uint64

	// Properties contains the named, JSON-encoded properties of the
	// aggregate.
	Properties Properties

	TakenAt time.Time
}

// Properties is a set of named, JSON-encoded aggregate properties.
type Properties map[string]json.RawMessage

// Get decodes the property with the given name into v.
//
// It returns false if there is no such property.
func (p Properties) Get(name string, v any) (bool, error) {
	data, ok := p[name]
	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(data, v)
}

// Dehydrator is implemented by aggregates that support snapshots.
type Dehydrator interface {
	// Dehydrate returns the named properties that describe the aggregate's
	// current state. Each value must be JSON-encodable.
	Dehydrate() (map[string]any, error)

	// Rehydrate restores the aggregate's state from the given properties.
	Rehydrate(Properties) error
}

func marshalProperty(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	return json.RawMessage(data), err
}
