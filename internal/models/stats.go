package models

// CountAndQuantity aggregates the number of requests and their summed kilograms.
type CountAndQuantity struct {
	Count    int     `json:"count"`
	Quantity float64 `json:"quantity"`
}

// WasteRequestStats is the dashboard summary folded from a set of requests.
type WasteRequestStats struct {
	Total          int                         `json:"total"`
	ByAcceptance   map[AcceptanceStatus]int    `json:"byAcceptanceStatus"`
	ByDriver       map[DriverStatus]int        `json:"byDriverStatus"`
	ByCollection   map[CollectionStatus]int    `json:"byCollectionStatus"`
	ByPayment      map[PaymentStatus]int       `json:"byPaymentStatus"`
	ByCity         map[string]CountAndQuantity `json:"byCity"`
	ByCategory     map[string]CountAndQuantity `json:"byCategory"`
	FullyCompleted int                         `json:"fullyCompleted"`
}
