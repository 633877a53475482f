package aggregate

// Migrator converts events of obsolete or unknown types into current payloads.
type Migrator interface {
	// Migrate returns the current payload for an event of the given type.
	//
	// If ok is false the migrator does not handle events of that type.
	Migrate(eventType string, data []byte, contentType string) (payload any, ok bool, err error)
}

// MigratorFunc is a function that implements [Migrator].
type MigratorFunc func(eventType string, data []byte, contentType string) (any, bool, error)

// Migrate calls fn(eventType, data, contentType).
func (fn MigratorFunc) Migrate(eventType string, data []byte, contentType string) (any, bool, error) {
	return fn(eventType, data, contentType)
}

// Migrators is a [Migrator] that tries each of its elements in order.
type Migrators []Migrator

// Migrate returns the payload produced by the first migrator that handles the
// event.
func (m Migrators) Migrate(eventType string, data []byte, contentType string) (any, bool, error) {
	for _, x := range m {
		if x == nil {
			continue
		}

		payload, ok, err := x.Migrate(eventType, data, contentType)
		if ok || err != nil {
			return payload, ok, err
		}
	}

	return nil, false, nil
}
