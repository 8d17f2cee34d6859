package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/waste-collection-api/pkg/errors"
)

func newPendingRequest() *WasteRequest {
	return &WasteRequest{
		ID:               "req-1",
		UserID:           "user-1",
		City:             "Bandung",
		Quantity:         10,
		EstimatedPrice:   500,
		AcceptanceStatus: AcceptancePending,
		DriverStatus:     DriverUnassigned,
		CollectionStatus: CollectionPending,
		PaymentStatus:    PaymentPending,
	}
}

func acceptedWithDriver(t *testing.T, now time.Time) *WasteRequest {
	t.Helper()
	req := newPendingRequest()
	require.NoError(t, req.Decide(AcceptanceAccepted, now))
	require.NoError(t, req.BindDriver("drv-1", now))
	require.NoError(t, req.DriverDecide(DriverAccepted, now))
	return req
}

func TestAcceptanceIsTerminal(t *testing.T) {
	now := time.Now()
	req := newPendingRequest()
	require.NoError(t, req.Decide(AcceptanceRejected, now))

	err := req.Decide(AcceptanceAccepted, now)
	require.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
	assert.Equal(t, AcceptanceRejected, req.AcceptanceStatus)
}

func TestBindDriverRequiresAcceptance(t *testing.T) {
	req := newPendingRequest()
	err := req.BindDriver("drv-1", time.Now())
	require.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
	assert.Nil(t, req.DriverID)
	assert.Equal(t, DriverUnassigned, req.DriverStatus)
}

func TestDriverRejectionReturnsToUnassigned(t *testing.T) {
	now := time.Now()
	req := newPendingRequest()
	require.NoError(t, req.Decide(AcceptanceAccepted, now))
	require.NoError(t, req.BindDriver("drv-1", now))

	require.NoError(t, req.DriverDecide(DriverRejected, now))
	assert.Equal(t, DriverUnassigned, req.DriverStatus)
	assert.Nil(t, req.DriverID)

	require.NoError(t, req.BindDriver("drv-2", now))
	assert.Equal(t, "drv-2", *req.DriverID)
}

func TestDriverDecisionOnlyFromPending(t *testing.T) {
	now := time.Now()
	req := acceptedWithDriver(t, now)
	err := req.DriverDecide(DriverRejected, now)
	require.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
	assert.Equal(t, DriverAccepted, req.DriverStatus)
}

func TestCollectionCannotLeavePendingWithoutDriver(t *testing.T) {
	now := time.Now()
	req := newPendingRequest()
	require.NoError(t, req.Decide(AcceptanceAccepted, now))
	require.NoError(t, req.BindDriver("drv-1", now))

	for _, next := range []CollectionStatus{CollectionProcessing, CollectionCancelled} {
		err := req.AdvanceCollection(next, now)
		require.True(t, errors.Is(err, appErrors.ErrInvalidTransition), next)
		assert.Equal(t, CollectionPending, req.CollectionStatus)
	}
}

func TestCollectionCompletionRequiresConfirmation(t *testing.T) {
	now := time.Now()
	req := acceptedWithDriver(t, now)
	require.NoError(t, req.AdvanceCollection(CollectionProcessing, now))

	err := req.AdvanceCollection(CollectionCompleted, now)
	require.True(t, errors.Is(err, appErrors.ErrInvalidTransition))

	require.NoError(t, req.ConfirmCollection(now))
	assert.Equal(t, CollectionCompleted, req.CollectionStatus)
	require.NotNil(t, req.CompletedAt)
}

func TestConfirmFromPendingIsRejected(t *testing.T) {
	now := time.Now()
	req := acceptedWithDriver(t, now)
	err := req.ConfirmCollection(now)
	require.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
}

func TestEditAndDeleteGuards(t *testing.T) {
	req := newPendingRequest()
	require.NoError(t, req.EnsureEditable())
	require.NoError(t, req.EnsureDeletable())

	require.NoError(t, req.Decide(AcceptanceAccepted, time.Now()))
	assert.True(t, errors.Is(req.EnsureEditable(), appErrors.ErrImmutableField))
	assert.True(t, errors.Is(req.EnsureDeletable(), appErrors.ErrRequestNotDeletable))
}

func TestPaymentObligationAndSettlement(t *testing.T) {
	now := time.Now()
	req := acceptedWithDriver(t, now)
	paymentID := "pay-1"

	err := req.ApplyPaymentObligation(PaymentPending, &paymentID, now)
	require.True(t, errors.Is(err, appErrors.ErrCollectionNotComplete))

	require.NoError(t, req.AdvanceCollection(CollectionProcessing, now))
	require.NoError(t, req.ConfirmCollection(now))

	err = req.SettlePayment(PaymentCompleted, now)
	require.True(t, errors.Is(err, appErrors.ErrPreconditionFailed))

	require.NoError(t, req.ApplyPaymentObligation(PaymentPending, &paymentID, now))
	require.True(t, req.PaymentResolved())
	require.True(t, errors.Is(req.ApplyPaymentObligation(PaymentPending, &paymentID, now), appErrors.ErrConflict))

	assert.False(t, req.FullyCompleted())
	require.NoError(t, req.SettlePayment(PaymentCompleted, now))
	assert.True(t, req.FullyCompleted())
}

func TestNotRequiredPaymentCannotSettle(t *testing.T) {
	now := time.Now()
	req := acceptedWithDriver(t, now)
	require.NoError(t, req.AdvanceCollection(CollectionProcessing, now))
	require.NoError(t, req.ConfirmCollection(now))
	require.NoError(t, req.ApplyPaymentObligation(PaymentNotRequired, nil, now))

	assert.True(t, req.FullyCompleted())
	err := req.SettlePayment(PaymentCompleted, now)
	require.True(t, errors.Is(err, appErrors.ErrInvalidTransition))
}

func TestRecordFeedbackOnce(t *testing.T) {
	now := time.Now()
	req := acceptedWithDriver(t, now)

	require.True(t, errors.Is(req.RecordFeedback(4, "ok", now), appErrors.ErrCollectionNotComplete))

	require.NoError(t, req.AdvanceCollection(CollectionProcessing, now))
	require.NoError(t, req.ConfirmCollection(now))

	for _, rating := range []int{0, 6, -1} {
		require.True(t, errors.Is(req.RecordFeedback(rating, "", now), appErrors.ErrInvalidRating))
	}
	require.False(t, req.HasFeedback())

	require.NoError(t, req.RecordFeedback(5, "great", now))
	require.True(t, errors.Is(req.RecordFeedback(1, "changed", now), appErrors.ErrFeedbackAlreadyRecorded))
	assert.Equal(t, 5, *req.Rating)
	assert.Equal(t, "great", *req.FeedbackComment)
}

func TestCloneDoesNotShareState(t *testing.T) {
	now := time.Now()
	req := acceptedWithDriver(t, now)
	clone := req.Clone()
	*clone.DriverID = "other"
	assert.Equal(t, "drv-1", *req.DriverID)
}

func TestDistrictHasCity(t *testing.T) {
	d := &District{Cities: []string{"Bandung", " Cimahi "}}
	assert.True(t, d.HasCity("bandung"))
	assert.True(t, d.HasCity("Cimahi"))
	assert.False(t, d.HasCity("Jakarta"))
}
