package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/waste-collection-api/internal/models"
	"github.com/noah-isme/waste-collection-api/pkg/jobs"
)

// NotificationJobType is the queue job type handled by NotificationService.
const NotificationJobType = "notification.email"

// Notification outcomes reported to metrics.
const (
	NotificationSent    = "sent"
	NotificationSkipped = "skipped"
	NotificationDropped = "dropped"
	NotificationFailed  = "failed"
)

// Mailer delivers a finished message.
type Mailer interface {
	Send(ctx context.Context, msg models.NotificationMessage) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	From   string
	Logger *zap.Logger
}

// Send implements Mailer.
func (m LogMailer) Send(ctx context.Context, msg models.NotificationMessage) error {
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("email notification",
		zap.String("from", m.From),
		zap.String("to", msg.RecipientEmail),
		zap.String("subject", msg.Subject),
		zap.String("request_id", msg.RequestID),
	)
	return nil
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

type notificationRecipients struct {
	users   userReader
	drivers driverReader
}

type notificationJob struct {
	Event   models.RequestEvent
	Request models.WasteRequest
}

// NotificationService turns committed request changes into emails. Messages are built
// and sent by queue workers so request handling never waits on delivery.
type NotificationService struct {
	queue      jobEnqueuer
	mailer     Mailer
	recipients notificationRecipients
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewNotificationService constructs the service. Register HandleJob on the queue under
// NotificationJobType before starting it.
func NewNotificationService(queue jobEnqueuer, mailer Mailer, users userReader, drivers driverReader, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if mailer == nil {
		mailer = LogMailer{Logger: logger}
	}
	return &NotificationService{
		queue:      queue,
		mailer:     mailer,
		recipients: notificationRecipients{users: users, drivers: drivers},
		metrics:    metrics,
		logger:     logger,
	}
}

// Notify implements RequestNotifier.
func (s *NotificationService) Notify(ctx context.Context, event models.RequestEvent, req *models.WasteRequest) {
	if s == nil || req == nil || !notifiable(event) {
		return
	}
	if s.queue == nil {
		s.metrics.RecordNotification(NotificationDropped)
		return
	}
	job := jobs.Job{Type: NotificationJobType, Payload: notificationJob{Event: event, Request: *req.Clone()}}
	if err := s.queue.Enqueue(job); err != nil {
		s.metrics.RecordNotification(NotificationDropped)
		s.logger.Warn("notification not queued",
			zap.String("event", string(event)),
			zap.String("request_id", req.ID),
			zap.Error(err),
		)
	}
}

// HandleJob is the queue handler for NotificationJobType.
func (s *NotificationService) HandleJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(notificationJob)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}

	msg, err := s.Compose(ctx, payload.Event, &payload.Request)
	if err != nil {
		s.metrics.RecordNotification(NotificationFailed)
		return err
	}
	if msg == nil {
		s.metrics.RecordNotification(NotificationSkipped)
		return nil
	}
	if err := s.mailer.Send(ctx, *msg); err != nil {
		s.metrics.RecordNotification(NotificationFailed)
		return fmt.Errorf("send notification: %w", err)
	}
	s.metrics.RecordNotification(NotificationSent)
	return nil
}

// Compose builds the message for event from the request's final state. It returns nil
// when the event has no audience or the recipient has no address.
func (s *NotificationService) Compose(ctx context.Context, event models.RequestEvent, req *models.WasteRequest) (*models.NotificationMessage, error) {
	var (
		recipient string
		subject   string
		body      string
		err       error
	)

	switch event {
	case models.EventRequestDecided:
		recipient, err = s.userEmail(ctx, req.UserID)
		subject = fmt.Sprintf("Your pickup request was %s", strings.ToLower(string(req.AcceptanceStatus)))
		body = fmt.Sprintf("Your waste pickup request %s for %s was %s.", req.ID, req.PickupDate.Format(pickupDateLayout), strings.ToLower(string(req.AcceptanceStatus)))
	case models.EventDriverAssigned:
		if req.DriverID == nil {
			return nil, nil
		}
		recipient, err = s.driverEmail(ctx, *req.DriverID)
		subject = "New pickup assigned to you"
		body = fmt.Sprintf("Pickup %s at %s, %s on %s is waiting for your decision.", req.ID, req.Address, req.City, req.PickupDate.Format(pickupDateLayout))
	case models.EventDriverDecided:
		recipient, err = s.userEmail(ctx, req.UserID)
		if req.DriverStatus == models.DriverAccepted {
			subject = "A driver accepted your pickup"
			body = fmt.Sprintf("A driver will collect request %s on %s.", req.ID, req.PickupDate.Format(pickupDateLayout))
		} else {
			subject = "Your pickup is being reassigned"
			body = fmt.Sprintf("The assigned driver declined request %s. A new driver will be assigned.", req.ID)
		}
	case models.EventCollectionCompleted:
		recipient, err = s.userEmail(ctx, req.UserID)
		subject = "Your waste was collected"
		if req.PaymentStatus == models.PaymentNotRequired {
			body = fmt.Sprintf("Request %s is complete. No payment is required.", req.ID)
		} else {
			body = fmt.Sprintf("Request %s is complete. Amount due: %.2f.", req.ID, req.EstimatedPrice)
		}
	case models.EventPaymentSettled:
		recipient, err = s.userEmail(ctx, req.UserID)
		subject = "Payment " + strings.ToLower(string(req.PaymentStatus))
		body = fmt.Sprintf("The payment for request %s is now %s.", req.ID, strings.ToLower(string(req.PaymentStatus)))
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if recipient == "" {
		return nil, nil
	}

	return &models.NotificationMessage{
		RequestID:      req.ID,
		RecipientEmail: recipient,
		Subject:        subject,
		Message:        body,
	}, nil
}

func (s *NotificationService) userEmail(ctx context.Context, userID string) (string, error) {
	if s.recipients.users == nil || userID == "" {
		return "", nil
	}
	user, err := s.recipients.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load recipient: %w", err)
	}
	return user.Email, nil
}

func (s *NotificationService) driverEmail(ctx context.Context, driverID string) (string, error) {
	if s.recipients.drivers == nil {
		return "", nil
	}
	driver, err := s.recipients.drivers.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load driver: %w", err)
	}
	return s.userEmail(ctx, driver.UserID)
}

func notifiable(event models.RequestEvent) bool {
	switch event {
	case models.EventRequestDecided, models.EventDriverAssigned, models.EventDriverDecided,
		models.EventCollectionCompleted, models.EventPaymentSettled:
		return true
	default:
		return false
	}
}
