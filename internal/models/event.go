package models

// RequestEvent names a committed change to a waste request.
type RequestEvent string

const (
	EventRequestCreated      RequestEvent = "request.created"
	EventRequestUpdated      RequestEvent = "request.updated"
	EventRequestDeleted      RequestEvent = "request.deleted"
	EventRequestDecided      RequestEvent = "request.decided"
	EventDriverAssigned      RequestEvent = "driver.assigned"
	EventDriverDecided       RequestEvent = "driver.decided"
	EventCollectionUpdated   RequestEvent = "collection.updated"
	EventCollectionCompleted RequestEvent = "collection.completed"
	EventPaymentResolved     RequestEvent = "payment.resolved"
	EventPaymentSettled      RequestEvent = "payment.settled"
	EventFeedbackRecorded    RequestEvent = "feedback.recorded"
)
