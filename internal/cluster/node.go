package cluster

import "github.com/google/uuid"

// Node is one engine process taking part in relay queue delivery.
type Node struct {
	// ID identifies the process within the cluster. It is usually random per
	// process, but may be pinned via configuration.
	ID uuid.UUID
}
