package models

import "time"

// Payment is the obligation created when a completed collection requires the user to pay.
// Settlement itself happens outside this service.
type Payment struct {
	ID        string        `db:"id" json:"id"`
	RequestID string        `db:"request_id" json:"requestId"`
	Amount    float64       `db:"amount" json:"amount"`
	DueDate   time.Time     `db:"due_date" json:"dueDate"`
	Method    string        `db:"method" json:"method"`
	Status    PaymentStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
	SettledAt *time.Time    `db:"settled_at" json:"settledAt,omitempty"`
}
