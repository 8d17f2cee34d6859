package models

import "time"

// Driver is a collector bound to a city. Its assigned requests are looked up by id,
// the driver does not own them.
type Driver struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"userId"`
	Name       string    `db:"name" json:"name"`
	Phone      string    `db:"phone" json:"phone"`
	DistrictID string    `db:"district_id" json:"districtId"`
	City       string    `db:"city" json:"city"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// DriverLoad pairs a driver with its current count of driver-PENDING requests.
type DriverLoad struct {
	Driver
	PendingCount int  `db:"pending_count" json:"pendingCount"`
	AtCapacity   bool `db:"-" json:"atCapacity"`
}

// DriverFilter constrains driver listings.
type DriverFilter struct {
	City       string
	DistrictID string
	UserID     string
	Active     *bool
}
