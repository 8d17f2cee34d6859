package models

// NotificationMessage is handed to the outbound email dispatcher.
type NotificationMessage struct {
	RequestID      string `json:"requestId"`
	RecipientEmail string `json:"recipientEmail"`
	Subject        string `json:"subject"`
	Message        string `json:"message"`
}
