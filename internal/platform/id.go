package platform

import "github.com/google/uuid"

// IDGenerator creates opaque identifiers.
type IDGenerator interface {
	New() string
}

// UUIDGenerator issues random v4 UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string {
	return uuid.NewString()
}
