package models

import "strings"

// AcceptanceStatus records the administrator's decision on a request.
type AcceptanceStatus string

const (
	AcceptancePending  AcceptanceStatus = "PENDING"
	AcceptanceAccepted AcceptanceStatus = "ACCEPTED"
	AcceptanceRejected AcceptanceStatus = "REJECTED"
)

// DriverStatus records whether the bound driver has taken responsibility for the pickup.
type DriverStatus string

const (
	DriverUnassigned DriverStatus = "UNASSIGNED"
	DriverPending    DriverStatus = "PENDING"
	DriverAccepted   DriverStatus = "ACCEPTED"
	DriverRejected   DriverStatus = "REJECTED"
)

// CollectionStatus tracks the physical pickup.
type CollectionStatus string

const (
	CollectionPending    CollectionStatus = "PENDING"
	CollectionProcessing CollectionStatus = "PROCESSING"
	CollectionCompleted  CollectionStatus = "COMPLETED"
	CollectionCancelled  CollectionStatus = "CANCELLED"
)

// PaymentStatus tracks settlement of the monetary obligation tied to a request.
type PaymentStatus string

const (
	PaymentPending     PaymentStatus = "PENDING"
	PaymentCompleted   PaymentStatus = "COMPLETED"
	PaymentCancelled   PaymentStatus = "CANCELLED"
	PaymentNotRequired PaymentStatus = "NOT_REQUIRED"
)

// AcceptanceStatuses lists every acceptance value in display order.
var AcceptanceStatuses = []AcceptanceStatus{AcceptancePending, AcceptanceAccepted, AcceptanceRejected}

// DriverStatuses lists every driver value in display order.
var DriverStatuses = []DriverStatus{DriverUnassigned, DriverPending, DriverAccepted, DriverRejected}

// CollectionStatuses lists every collection value in display order.
var CollectionStatuses = []CollectionStatus{CollectionPending, CollectionProcessing, CollectionCompleted, CollectionCancelled}

// PaymentStatuses lists every payment value in display order.
var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentCompleted, PaymentCancelled, PaymentNotRequired}

var acceptanceTransitions = map[AcceptanceStatus][]AcceptanceStatus{
	AcceptancePending: {AcceptanceAccepted, AcceptanceRejected},
}

// DriverRejected is reachable from PENDING but the request is immediately returned
// to UNASSIGNED, so nothing leaves REJECTED.
var driverTransitions = map[DriverStatus][]DriverStatus{
	DriverUnassigned: {DriverPending},
	DriverPending:    {DriverAccepted, DriverRejected},
}

var collectionTransitions = map[CollectionStatus][]CollectionStatus{
	CollectionPending:    {CollectionProcessing, CollectionCancelled},
	CollectionProcessing: {CollectionCompleted, CollectionCancelled},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentCompleted, PaymentCancelled},
}

func canTransition[S comparable](table map[S][]S, from, to S) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the acceptance transition is legal.
func (s AcceptanceStatus) CanTransitionTo(next AcceptanceStatus) bool {
	return canTransition(acceptanceTransitions, s, next)
}

// CanTransitionTo reports whether the driver transition is legal.
func (s DriverStatus) CanTransitionTo(next DriverStatus) bool {
	return canTransition(driverTransitions, s, next)
}

// CanTransitionTo reports whether the collection transition is legal.
func (s CollectionStatus) CanTransitionTo(next CollectionStatus) bool {
	return canTransition(collectionTransitions, s, next)
}

// CanTransitionTo reports whether the payment transition is legal.
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return canTransition(paymentTransitions, s, next)
}

// Valid reports whether s is a known value.
func (s AcceptanceStatus) Valid() bool { return contains(AcceptanceStatuses, s) }

// Valid reports whether s is a known value.
func (s DriverStatus) Valid() bool { return contains(DriverStatuses, s) }

// Valid reports whether s is a known value.
func (s CollectionStatus) Valid() bool { return contains(CollectionStatuses, s) }

// Valid reports whether s is a known value.
func (s PaymentStatus) Valid() bool { return contains(PaymentStatuses, s) }

func contains[S comparable](values []S, v S) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// NormalizeStatus upper-cases and trims raw query or payload values.
func NormalizeStatus(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
