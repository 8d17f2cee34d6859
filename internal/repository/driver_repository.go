package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/waste-collection-api/internal/models"
)

const driverColumns = `d.id, d.user_id, d.name, d.phone, d.district_id, d.city, d.active, d.created_at, d.updated_at`

// DriverRepository persists drivers and computes their pending load.
type DriverRepository struct {
	db *sqlx.DB
}

// NewDriverRepository constructs the repository.
func NewDriverRepository(db *sqlx.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// Create inserts a driver.
func (r *DriverRepository) Create(ctx context.Context, driver *models.Driver) error {
	if driver.ID == "" {
		driver.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	driver.CreatedAt = now
	driver.UpdatedAt = now
	const query = `INSERT INTO drivers (id, user_id, name, phone, district_id, city, active, created_at, updated_at)
	VALUES (:id, :user_id, :name, :phone, :district_id, :city, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, driver); err != nil {
		return fmt.Errorf("create driver: %w", mapUniqueViolation(err))
	}
	return nil
}

// Update overwrites the mutable driver columns.
func (r *DriverRepository) Update(ctx context.Context, driver *models.Driver) error {
	driver.UpdatedAt = time.Now().UTC()
	const query = `UPDATE drivers SET name = :name, phone = :phone, district_id = :district_id, city = :city,
	active = :active, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, driver)
	if err != nil {
		return fmt.Errorf("update driver: %w", mapUniqueViolation(err))
	}
	return expectOneRow(result, "update driver")
}

// FindByID returns a driver by identifier.
func (r *DriverRepository) FindByID(ctx context.Context, id string) (*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers d WHERE d.id = $1`
	var driver models.Driver
	if err := r.db.GetContext(ctx, &driver, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find driver: %w", err)
	}
	return &driver, nil
}

// FindByUserID returns the driver profile owned by an account.
func (r *DriverRepository) FindByUserID(ctx context.Context, userID string) (*models.Driver, error) {
	query := `SELECT ` + driverColumns + ` FROM drivers d WHERE d.user_id = $1`
	var driver models.Driver
	if err := r.db.GetContext(ctx, &driver, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find driver by user: %w", err)
	}
	return &driver, nil
}

// List returns drivers matching the filter ordered by name.
func (r *DriverRepository) List(ctx context.Context, filter models.DriverFilter) ([]models.Driver, error) {
	where, args := buildDriverFilter(filter)
	query := `SELECT ` + driverColumns + ` FROM drivers d` + where + ` ORDER BY d.name`
	drivers := make([]models.Driver, 0)
	if err := r.db.SelectContext(ctx, &drivers, query, args...); err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}
	return drivers, nil
}

// ListWithLoad returns drivers matching the filter with their driver-PENDING counts,
// least loaded first.
func (r *DriverRepository) ListWithLoad(ctx context.Context, filter models.DriverFilter) ([]models.DriverLoad, error) {
	where, args := buildDriverFilter(filter)
	query := `SELECT ` + driverColumns + `, COALESCE(p.pending_count, 0) AS pending_count
	FROM drivers d
	LEFT JOIN (
		SELECT driver_id, COUNT(*) AS pending_count FROM waste_requests
		WHERE driver_status = 'PENDING' GROUP BY driver_id
	) p ON p.driver_id = d.id` + where + ` ORDER BY pending_count, d.name`
	loads := make([]models.DriverLoad, 0)
	if err := r.db.SelectContext(ctx, &loads, query, args...); err != nil {
		return nil, fmt.Errorf("list driver load: %w", err)
	}
	return loads, nil
}

func buildDriverFilter(filter models.DriverFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.City != "" {
		args = append(args, filter.City)
		conditions = append(conditions, fmt.Sprintf("LOWER(d.city) = LOWER($%d)", len(args)))
	}
	if filter.DistrictID != "" {
		args = append(args, filter.DistrictID)
		conditions = append(conditions, fmt.Sprintf("d.district_id = $%d", len(args)))
	}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conditions = append(conditions, fmt.Sprintf("d.user_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("d.active = $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
