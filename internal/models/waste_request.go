package models

import (
	"fmt"
	"time"

	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

const (
	MinRating = 1
	MaxRating = 5
)

// WasteRequest is a pickup request moving through four independent status dimensions.
// Status fields change only through the transition methods below.
type WasteRequest struct {
	ID                string           `db:"id" json:"id"`
	UserID            string           `db:"user_id" json:"userId"`
	DistrictID        string           `db:"district_id" json:"districtId"`
	City              string           `db:"city" json:"city"`
	Address           string           `db:"address" json:"address"`
	Latitude          float64          `db:"latitude" json:"latitude"`
	Longitude         float64          `db:"longitude" json:"longitude"`
	CategoryID        string           `db:"category_id" json:"categoryId"`
	Quantity          float64          `db:"quantity" json:"quantity"`
	PickupDate        time.Time        `db:"pickup_date" json:"pickupDate"`
	EstimatedPrice    float64          `db:"estimated_price" json:"estimatedPrice"`
	AcceptanceStatus  AcceptanceStatus `db:"acceptance_status" json:"acceptanceStatus"`
	DriverStatus      DriverStatus     `db:"driver_status" json:"driverStatus"`
	CollectionStatus  CollectionStatus `db:"collection_status" json:"collectionStatus"`
	PaymentStatus     PaymentStatus    `db:"payment_status" json:"paymentStatus"`
	DriverID          *string          `db:"driver_id" json:"driverId,omitempty"`
	PaymentID         *string          `db:"payment_id" json:"paymentId,omitempty"`
	PaymentResolvedAt *time.Time       `db:"payment_resolved_at" json:"paymentResolvedAt,omitempty"`
	Rating            *int             `db:"rating" json:"rating,omitempty"`
	FeedbackComment   *string          `db:"feedback_comment" json:"feedbackComment,omitempty"`
	FeedbackAt        *time.Time       `db:"feedback_at" json:"feedbackAt,omitempty"`
	Version           int              `db:"version" json:"version"`
	CreatedAt         time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updatedAt"`
	AcceptedAt        *time.Time       `db:"accepted_at" json:"acceptedAt,omitempty"`
	CompletedAt       *time.Time       `db:"completed_at" json:"completedAt,omitempty"`
}

// WasteRequestFilter constrains request listings. Empty fields are ignored and
// status slices match any of their values.
type WasteRequestFilter struct {
	UserID           string
	DriverID         string
	City             string
	DistrictID       string
	CategoryID       string
	AcceptanceStatus []AcceptanceStatus
	DriverStatus     []DriverStatus
	CollectionStatus []CollectionStatus
	PaymentStatus    []PaymentStatus
	Page             int
	PageSize         int
}

// WasteRequestDetail is the request with its references resolved, as read by report renderers.
type WasteRequestDetail struct {
	WasteRequest
	Category *WasteCategory `json:"category,omitempty"`
	District *District      `json:"district,omitempty"`
	Driver   *Driver        `json:"driver,omitempty"`
	User     *User          `json:"user,omitempty"`
	Payment  *Payment       `json:"payment,omitempty"`
}

// Clone returns a copy that shares no pointers with r.
func (r *WasteRequest) Clone() *WasteRequest {
	if r == nil {
		return nil
	}
	c := *r
	c.DriverID = cloneString(r.DriverID)
	c.PaymentID = cloneString(r.PaymentID)
	c.FeedbackComment = cloneString(r.FeedbackComment)
	c.PaymentResolvedAt = cloneTime(r.PaymentResolvedAt)
	c.FeedbackAt = cloneTime(r.FeedbackAt)
	c.AcceptedAt = cloneTime(r.AcceptedAt)
	c.CompletedAt = cloneTime(r.CompletedAt)
	if r.Rating != nil {
		v := *r.Rating
		c.Rating = &v
	}
	return &c
}

// EnsureEditable guards core field edits (quantity, category, address, pickup date, city, district).
func (r *WasteRequest) EnsureEditable() error {
	if r.AcceptanceStatus != AcceptancePending {
		return appErrors.Clone(appErrors.ErrImmutableField, fmt.Sprintf("request is %s and can no longer be edited", r.AcceptanceStatus))
	}
	return nil
}

// EnsureDeletable guards deletion: only requests still awaiting a decision may go.
func (r *WasteRequest) EnsureDeletable() error {
	if r.AcceptanceStatus != AcceptancePending {
		return appErrors.Clone(appErrors.ErrRequestNotDeletable, fmt.Sprintf("request is %s and can no longer be deleted", r.AcceptanceStatus))
	}
	return nil
}

// Decide records the administrator's acceptance decision.
func (r *WasteRequest) Decide(decision AcceptanceStatus, now time.Time) error {
	if !r.AcceptanceStatus.CanTransitionTo(decision) {
		return invalidTransition("acceptance", string(r.AcceptanceStatus), string(decision))
	}
	r.AcceptanceStatus = decision
	r.AcceptedAt = &now
	r.UpdatedAt = now
	return nil
}

// EnsureAssignable checks the request side of a driver bind.
func (r *WasteRequest) EnsureAssignable() error {
	if r.AcceptanceStatus != AcceptanceAccepted {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "request must be accepted before a driver is assigned")
	}
	if !r.DriverStatus.CanTransitionTo(DriverPending) {
		return invalidTransition("driver", string(r.DriverStatus), string(DriverPending))
	}
	return nil
}

// BindDriver moves the driver dimension from UNASSIGNED to PENDING.
func (r *WasteRequest) BindDriver(driverID string, now time.Time) error {
	if err := r.EnsureAssignable(); err != nil {
		return err
	}
	id := driverID
	r.DriverID = &id
	r.DriverStatus = DriverPending
	r.UpdatedAt = now
	return nil
}

// DriverDecide applies the bound driver's answer. A rejection releases the request
// back to UNASSIGNED so it can be assigned again.
func (r *WasteRequest) DriverDecide(decision DriverStatus, now time.Time) error {
	if r.AcceptanceStatus != AcceptanceAccepted {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "driver decisions require an accepted request")
	}
	if decision != DriverAccepted && decision != DriverRejected {
		return appErrors.Clone(appErrors.ErrValidation, "decision must be ACCEPTED or REJECTED")
	}
	if !r.DriverStatus.CanTransitionTo(decision) {
		return invalidTransition("driver", string(r.DriverStatus), string(decision))
	}
	if decision == DriverRejected {
		r.DriverStatus = DriverUnassigned
		r.DriverID = nil
	} else {
		r.DriverStatus = DriverAccepted
	}
	r.UpdatedAt = now
	return nil
}

// AdvanceCollection moves collection to PROCESSING or CANCELLED. COMPLETED is only
// reachable through ConfirmCollection.
func (r *WasteRequest) AdvanceCollection(next CollectionStatus, now time.Time) error {
	if next == CollectionCompleted {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "collection completion requires confirmation")
	}
	return r.moveCollection(next, now)
}

// ConfirmCollection marks the pickup COMPLETED. Callers must resolve the payment
// obligation in the same unit of work.
func (r *WasteRequest) ConfirmCollection(now time.Time) error {
	if err := r.moveCollection(CollectionCompleted, now); err != nil {
		return err
	}
	r.CompletedAt = &now
	return nil
}

func (r *WasteRequest) moveCollection(next CollectionStatus, now time.Time) error {
	if r.CollectionStatus == CollectionPending && r.DriverStatus != DriverAccepted {
		return appErrors.Clone(appErrors.ErrInvalidTransition, "collection cannot start before a driver accepts")
	}
	if !r.CollectionStatus.CanTransitionTo(next) {
		return invalidTransition("collection", string(r.CollectionStatus), string(next))
	}
	r.CollectionStatus = next
	r.UpdatedAt = now
	return nil
}

// PaymentResolved reports whether the payment obligation has been decided.
func (r *WasteRequest) PaymentResolved() bool {
	return r.PaymentResolvedAt != nil
}

// ApplyPaymentObligation records the resolver outcome: NOT_REQUIRED without a payment,
// or PENDING with the created payment id.
func (r *WasteRequest) ApplyPaymentObligation(status PaymentStatus, paymentID *string, now time.Time) error {
	if r.CollectionStatus != CollectionCompleted {
		return appErrors.ErrCollectionNotComplete
	}
	if r.PaymentResolved() {
		return appErrors.Clone(appErrors.ErrConflict, "payment obligation already resolved")
	}
	switch status {
	case PaymentNotRequired:
		if paymentID != nil {
			return appErrors.Clone(appErrors.ErrValidation, "payment record not allowed when payment is not required")
		}
	case PaymentPending:
		if paymentID == nil {
			return appErrors.Clone(appErrors.ErrValidation, "payment record required")
		}
	default:
		return invalidTransition("payment", "UNRESOLVED", string(status))
	}
	r.PaymentStatus = status
	r.PaymentID = cloneString(paymentID)
	r.PaymentResolvedAt = &now
	r.UpdatedAt = now
	return nil
}

// SettlePayment applies the external settlement outcome.
func (r *WasteRequest) SettlePayment(next PaymentStatus, now time.Time) error {
	if !r.PaymentResolved() {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "payment obligation not resolved yet")
	}
	if !r.PaymentStatus.CanTransitionTo(next) {
		return invalidTransition("payment", string(r.PaymentStatus), string(next))
	}
	r.PaymentStatus = next
	r.UpdatedAt = now
	return nil
}

// ValidateRating checks the 1-5 range.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return appErrors.ErrInvalidRating
	}
	return nil
}

// HasFeedback reports whether feedback was already recorded.
func (r *WasteRequest) HasFeedback() bool {
	return r.Rating != nil
}

// RecordFeedback sets rating and comment together, once, after completion.
func (r *WasteRequest) RecordFeedback(rating int, comment string, now time.Time) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	if r.CollectionStatus != CollectionCompleted {
		return appErrors.ErrCollectionNotComplete
	}
	if r.HasFeedback() {
		return appErrors.ErrFeedbackAlreadyRecorded
	}
	rt := rating
	cm := comment
	r.Rating = &rt
	r.FeedbackComment = &cm
	r.FeedbackAt = &now
	r.UpdatedAt = now
	return nil
}

// FullyCompleted reports whether every dimension reached its success terminal state.
func (r *WasteRequest) FullyCompleted() bool {
	return r.AcceptanceStatus == AcceptanceAccepted &&
		r.DriverStatus == DriverAccepted &&
		r.CollectionStatus == CollectionCompleted &&
		(r.PaymentStatus == PaymentCompleted || r.PaymentStatus == PaymentNotRequired)
}

func invalidTransition(dimension, from, to string) error {
	return appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("%s status cannot change from %s to %s", dimension, from, to))
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
