package identity

import "github.com/google/uuid"

// Actor identifies who is performing an operation. Authentication happens
// upstream; by the time an Actor reaches a service it is trusted.
type Actor struct {
	ID   uuid.UUID
	Role Role
}
