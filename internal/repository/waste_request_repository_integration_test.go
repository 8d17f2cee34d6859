//go:build integration

package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/noah-isme/waste-collection-api/internal/models"
	"github.com/noah-isme/waste-collection-api/pkg/database"
)

type WasteRequestRepositoryIntegrationSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *sqlx.DB
	repo      *WasteRequestRepository

	userID     string
	districtID string
	categoryID string
	driverID   string
}

func TestWasteRequestRepositoryIntegration(t *testing.T) {
	suite.Run(t, new(WasteRequestRepositoryIntegrationSuite))
}

func (s *WasteRequestRepositoryIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("waste_test"),
		postgres.WithUsername("waste"),
		postgres.WithPassword("waste"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := sqlx.Connect("postgres", dsn)
	s.Require().NoError(err)
	s.db = db

	_, err = database.Migrate(ctx, db)
	s.Require().NoError(err)

	s.repo = NewWasteRequestRepository(db)
}

func (s *WasteRequestRepositoryIntegrationSuite) TearDownSuite() {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.container != nil {
		s.Require().NoError(s.container.Terminate(context.Background()))
	}
}

func (s *WasteRequestRepositoryIntegrationSuite) SetupTest() {
	ctx := context.Background()
	_, err := s.db.ExecContext(ctx, `TRUNCATE payments, waste_requests, drivers, waste_categories, districts, users CASCADE`)
	s.Require().NoError(err)

	s.userID = uuid.NewString()
	_, err = s.db.ExecContext(ctx, `INSERT INTO users (id, email, full_name, role) VALUES ($1, $2, 'Resident', 'USER')`,
		s.userID, s.userID+"@example.com")
	s.Require().NoError(err)

	district := &models.District{Name: "Bandung Raya", Cities: []string{"Bandung"}, IsActive: true}
	s.Require().NoError(NewDistrictRepository(s.db).Create(ctx, district))
	s.districtID = district.ID

	category := &models.WasteCategory{Name: "Plastic", PricePerKg: 50, IsUserPaymentRequired: true, IsActive: true}
	s.Require().NoError(NewCategoryRepository(s.db).Create(ctx, category))
	s.categoryID = category.ID

	driverUser := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `INSERT INTO users (id, email, full_name, role) VALUES ($1, $2, 'Driver', 'DRIVER')`,
		driverUser, driverUser+"@example.com")
	s.Require().NoError(err)
	driver := &models.Driver{UserID: driverUser, Name: "Asep", DistrictID: s.districtID, City: "Bandung", Active: true}
	s.Require().NoError(NewDriverRepository(s.db).Create(ctx, driver))
	s.driverID = driver.ID
}

// acceptedRequest stores an ACCEPTED, unassigned request.
func (s *WasteRequestRepositoryIntegrationSuite) acceptedRequest() *models.WasteRequest {
	ctx := context.Background()
	req := &models.WasteRequest{
		UserID:           s.userID,
		DistrictID:       s.districtID,
		City:             "Bandung",
		Address:          "Jl. Asia Afrika",
		CategoryID:       s.categoryID,
		Quantity:         10,
		PickupDate:       time.Now().UTC().AddDate(0, 0, 3),
		EstimatedPrice:   500,
		AcceptanceStatus: models.AcceptancePending,
		DriverStatus:     models.DriverUnassigned,
		CollectionStatus: models.CollectionPending,
		PaymentStatus:    models.PaymentPending,
	}
	s.Require().NoError(s.repo.Create(ctx, req))
	s.Require().NoError(req.Decide(models.AcceptanceAccepted, time.Now().UTC()))
	s.Require().NoError(s.repo.UpdateState(ctx, req))
	return req
}

func (s *WasteRequestRepositoryIntegrationSuite) fillDriver(n int) {
	for i := 0; i < n; i++ {
		req := s.acceptedRequest()
		s.Require().NoError(s.repo.AssignDriver(context.Background(), AssignDriverParams{
			RequestID: req.ID, DriverID: s.driverID, ExpectedVersion: req.Version, Capacity: 10, At: time.Now().UTC(),
		}))
	}
}

func (s *WasteRequestRepositoryIntegrationSuite) assignConcurrently(requests ...*models.WasteRequest) []error {
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, len(requests))
	for i, req := range requests {
		wg.Add(1)
		go func(i int, req *models.WasteRequest) {
			defer wg.Done()
			<-start
			errs[i] = s.repo.AssignDriver(context.Background(), AssignDriverParams{
				RequestID: req.ID, DriverID: s.driverID, ExpectedVersion: req.Version, Capacity: 10, At: time.Now().UTC(),
			})
		}(i, req)
	}
	close(start)
	wg.Wait()
	return errs
}

func (s *WasteRequestRepositoryIntegrationSuite) TestConcurrentAssignFillsLastSlotOnce() {
	s.fillDriver(9)
	errs := s.assignConcurrently(s.acceptedRequest(), s.acceptedRequest())

	succeeded, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrCapacityReached):
			full++
		default:
			s.Failf("unexpected error", "%v", err)
		}
	}
	s.Equal(1, succeeded)
	s.Equal(1, full)

	count, err := s.repo.CountPendingByDriver(context.Background(), s.driverID)
	s.Require().NoError(err)
	s.Equal(10, count)
}

func (s *WasteRequestRepositoryIntegrationSuite) TestConcurrentAssignOnFullDriverFails() {
	s.fillDriver(10)
	errs := s.assignConcurrently(s.acceptedRequest(), s.acceptedRequest())
	for _, err := range errs {
		s.True(errors.Is(err, ErrCapacityReached), "%v", err)
	}

	count, err := s.repo.CountPendingByDriver(context.Background(), s.driverID)
	s.Require().NoError(err)
	s.Equal(10, count)
}

func (s *WasteRequestRepositoryIntegrationSuite) TestPaymentResolutionIsIdempotent() {
	ctx := context.Background()
	req := s.acceptedRequest()
	now := time.Now().UTC()
	s.Require().NoError(s.repo.AssignDriver(ctx, AssignDriverParams{
		RequestID: req.ID, DriverID: s.driverID, ExpectedVersion: req.Version, Capacity: 10, At: now,
	}))

	req, err := s.repo.GetByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Require().NoError(req.DriverDecide(models.DriverAccepted, now))
	s.Require().NoError(req.AdvanceCollection(models.CollectionProcessing, now))
	s.Require().NoError(s.repo.UpdateState(ctx, req))

	s.Require().NoError(req.ConfirmCollection(now))
	first := req.Clone()
	paymentID := uuid.NewString()
	s.Require().NoError(first.ApplyPaymentObligation(models.PaymentPending, &paymentID, now))
	payment := &models.Payment{ID: paymentID, RequestID: req.ID, Amount: 500, DueDate: now.Add(72 * time.Hour), Method: "CASH",
		Status: models.PaymentPending, CreatedAt: now, UpdatedAt: now}
	s.Require().NoError(s.repo.SaveWithPayment(ctx, first, payment))

	// A replay with a stale version inserts nothing and fails the request write.
	second := req.Clone()
	otherID := uuid.NewString()
	s.Require().NoError(second.ApplyPaymentObligation(models.PaymentPending, &otherID, now))
	err = s.repo.SaveWithPayment(ctx, second, &models.Payment{ID: otherID, RequestID: req.ID, Amount: 500, DueDate: now,
		Method: "CASH", Status: models.PaymentPending, CreatedAt: now, UpdatedAt: now})
	s.Require().Error(err)

	var payments int
	s.Require().NoError(s.db.GetContext(ctx, &payments, `SELECT COUNT(*) FROM payments WHERE request_id = $1`, req.ID))
	s.Equal(1, payments)

	stored, err := s.repo.GetByID(ctx, req.ID)
	s.Require().NoError(err)
	s.Require().NotNil(stored.PaymentID)
	s.Equal(paymentID, *stored.PaymentID)
	s.Equal(models.CollectionCompleted, stored.CollectionStatus)
}
