package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the error category exposed to clients alongside the code.
type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindPrecondition Kind = "PRECONDITION"
	KindCapacity     Kind = "CAPACITY"
	KindNotFound     Kind = "NOT_FOUND"
	KindAuth         Kind = "AUTH"
	KindInternal     Kind = "INTERNAL"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches by code, so clones of a predefined error satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Kind: kindForStatus(status), Status: status, Message: message}
}

// NewKind creates an Error with an explicit kind.
func NewKind(code string, kind Kind, status int, message string) *Error {
	return &Error{Code: code, Kind: kind, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Kind: kindForStatus(status), Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = NewKind("CONFLICT", KindPrecondition, http.StatusConflict, "conflict")
	ErrPreconditionFailed = New("PRECONDITION_FAILED", http.StatusPreconditionFailed, "precondition failed")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// Waste request workflow errors.
var (
	ErrInvalidQuantity         = NewKind("INVALID_QUANTITY", KindValidation, http.StatusBadRequest, "quantity must be greater than zero")
	ErrInvalidRating           = NewKind("INVALID_RATING", KindValidation, http.StatusBadRequest, "rating must be between 1 and 5")
	ErrInvalidPickupDate       = NewKind("INVALID_PICKUP_DATE", KindValidation, http.StatusBadRequest, "pickup date is too early")
	ErrCityNotInDistrict       = NewKind("CITY_NOT_IN_DISTRICT", KindValidation, http.StatusUnprocessableEntity, "city does not belong to district")
	ErrCategoryInactive        = NewKind("CATEGORY_INACTIVE", KindValidation, http.StatusUnprocessableEntity, "waste category is not active")
	ErrImmutableField          = NewKind("IMMUTABLE_FIELD", KindPrecondition, http.StatusConflict, "request can no longer be edited")
	ErrRequestNotDeletable     = NewKind("REQUEST_NOT_DELETABLE", KindPrecondition, http.StatusConflict, "request can no longer be deleted")
	ErrInvalidTransition       = NewKind("INVALID_TRANSITION", KindPrecondition, http.StatusConflict, "status transition not allowed")
	ErrNotAligned              = NewKind("NOT_ALIGNED", KindPrecondition, http.StatusUnprocessableEntity, "driver is not available for the request city")
	ErrDriverAtCapacity        = NewKind("DRIVER_AT_CAPACITY", KindCapacity, http.StatusConflict, "driver has reached the pending request limit")
	ErrFeedbackAlreadyRecorded = NewKind("FEEDBACK_ALREADY_RECORDED", KindPrecondition, http.StatusConflict, "feedback already recorded")
	ErrCollectionNotComplete   = NewKind("COLLECTION_NOT_COMPLETE", KindPrecondition, http.StatusPreconditionFailed, "collection is not completed")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// KindOf reports the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) && e.Kind != "" {
		return e.Kind
	}
	return KindInternal
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return KindValidation
	case status == http.StatusConflict || status == http.StatusPreconditionFailed:
		return KindPrecondition
	default:
		return KindInternal
	}
}
