package dto

import (
	"encoding/json"
	"sort"
	"strings"
)

// CreateWasteRequest is the payload for filing a pickup request. UserID is honoured
// only for administrators filing on behalf of a resident.
type CreateWasteRequest struct {
	UserID     string  `json:"userId"`
	DistrictID string  `json:"districtId" validate:"required"`
	City       string  `json:"city" validate:"required,max=120"`
	Address    string  `json:"address" validate:"required,max=500"`
	Latitude   float64 `json:"latitude" validate:"latitude"`
	Longitude  float64 `json:"longitude" validate:"longitude"`
	CategoryID string  `json:"categoryId" validate:"required"`
	Quantity   float64 `json:"quantity"`
	PickupDate string  `json:"pickupDate" validate:"required,datetime=2006-01-02"`
}

// UpdateWasteRequest carries the core fields to change. Nil fields are left as is.
// Version, when set, must match the stored version.
type UpdateWasteRequest struct {
	DistrictID *string  `json:"districtId" validate:"omitempty,min=1"`
	City       *string  `json:"city" validate:"omitempty,min=1,max=120"`
	Address    *string  `json:"address" validate:"omitempty,min=1,max=500"`
	Latitude   *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude  *float64 `json:"longitude" validate:"omitempty,longitude"`
	CategoryID *string  `json:"categoryId" validate:"omitempty,min=1"`
	Quantity   *float64 `json:"quantity"`
	PickupDate *string  `json:"pickupDate" validate:"omitempty,datetime=2006-01-02"`
	Version    *int     `json:"version"`

	// Immutable lists lifecycle-owned keys present in the body.
	Immutable []string `json:"-"`
}

var immutableRequestKeys = map[string]struct{}{
	"id": {}, "userid": {}, "estimatedprice": {},
	"acceptancestatus": {}, "driverstatus": {}, "collectionstatus": {}, "paymentstatus": {},
	"driverid": {}, "paymentid": {}, "paymentresolvedat": {},
	"rating": {}, "feedbackcomment": {}, "feedbackat": {},
	"createdat": {}, "updatedat": {}, "acceptedat": {}, "completedat": {},
}

// UnmarshalJSON decodes the editable fields and records any immutable key in Immutable.
func (u *UpdateWasteRequest) UnmarshalJSON(data []byte) error {
	type plain UpdateWasteRequest
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	for key := range keys {
		if _, ok := immutableRequestKeys[strings.ToLower(key)]; ok {
			decoded.Immutable = append(decoded.Immutable, key)
		}
	}
	sort.Strings(decoded.Immutable)
	*u = UpdateWasteRequest(decoded)
	return nil
}

// DecisionRequest carries an ACCEPTED or REJECTED decision.
type DecisionRequest struct {
	Decision string `json:"decision" validate:"required,oneof=ACCEPTED REJECTED"`
}

// AssignDriverRequest selects the driver to bind.
type AssignDriverRequest struct {
	DriverID string `json:"driverId" validate:"required"`
}

// CollectionUpdateRequest moves the pickup forward or cancels it.
type CollectionUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=PROCESSING CANCELLED"`
}

// SettlePaymentRequest applies the external settlement outcome.
type SettlePaymentRequest struct {
	Status string `json:"status" validate:"required,oneof=COMPLETED CANCELLED"`
}

// FeedbackRequest records the resident's rating. The 1-5 range is enforced by the domain.
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=1000"`
}

// WasteRequestQuery mirrors the supported listing filters.
type WasteRequestQuery struct {
	UserID           string
	DriverID         string
	City             string
	DistrictID       string
	CategoryID       string
	AcceptanceStatus []string
	DriverStatus     []string
	CollectionStatus []string
	PaymentStatus    []string
	Page             int
	PageSize         int
}
