package service

import (
	"fmt"

	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

// DefaultDriverCapacity is the number of driver-PENDING requests a driver may hold.
const DefaultDriverCapacity = 10

// CapacityGuard decides whether a driver can take another pending request.
// The decision is only authoritative when the pending count was read inside the
// same transaction that performs the bind.
type CapacityGuard struct {
	capacity int
}

// NewCapacityGuard builds a guard. Non-positive capacities fall back to DefaultDriverCapacity.
func NewCapacityGuard(capacity int) CapacityGuard {
	if capacity <= 0 {
		capacity = DefaultDriverCapacity
	}
	return CapacityGuard{capacity: capacity}
}

// Capacity returns the configured limit.
func (g CapacityGuard) Capacity() int {
	if g.capacity <= 0 {
		return DefaultDriverCapacity
	}
	return g.capacity
}

// Admits reports whether one more request fits next to pending.
func (g CapacityGuard) Admits(pending int) bool {
	return pending < g.Capacity()
}

// Check returns ErrDriverAtCapacity when pending leaves no room.
func (g CapacityGuard) Check(pending int) error {
	if g.Admits(pending) {
		return nil
	}
	return appErrors.Clone(appErrors.ErrDriverAtCapacity, fmt.Sprintf("driver already holds %d pending requests", pending))
}
