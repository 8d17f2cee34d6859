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

const districtColumns = `id, name, cities, is_active, created_at, updated_at`

// DistrictRepository persists districts and their city lists.
type DistrictRepository struct {
	db *sqlx.DB
}

// NewDistrictRepository constructs the repository.
func NewDistrictRepository(db *sqlx.DB) *DistrictRepository {
	return &DistrictRepository{db: db}
}

// Create inserts a district.
func (r *DistrictRepository) Create(ctx context.Context, district *models.District) error {
	if district.ID == "" {
		district.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	district.CreatedAt = now
	district.UpdatedAt = now
	const query = `INSERT INTO districts (id, name, cities, is_active, created_at, updated_at)
	VALUES (:id, :name, :cities, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, district); err != nil {
		return fmt.Errorf("create district: %w", mapUniqueViolation(err))
	}
	return nil
}

// Update overwrites name, cities and the active flag. Existing requests are not revalidated.
func (r *DistrictRepository) Update(ctx context.Context, district *models.District) error {
	district.UpdatedAt = time.Now().UTC()
	const query = `UPDATE districts SET name = :name, cities = :cities, is_active = :is_active, updated_at = :updated_at
	WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, district)
	if err != nil {
		return fmt.Errorf("update district: %w", mapUniqueViolation(err))
	}
	return expectOneRow(result, "update district")
}

// FindByID returns a district by identifier.
func (r *DistrictRepository) FindByID(ctx context.Context, id string) (*models.District, error) {
	query := `SELECT ` + districtColumns + ` FROM districts WHERE id = $1`
	var district models.District
	if err := r.db.GetContext(ctx, &district, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find district: %w", err)
	}
	return &district, nil
}

// List returns districts ordered by name.
func (r *DistrictRepository) List(ctx context.Context, filter models.DistrictFilter) ([]models.District, error) {
	var conditions []string
	var args []interface{}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		args = append(args, city)
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM unnest(cities) AS c WHERE LOWER(c) = LOWER($%d))", len(args)))
	}
	query := `SELECT ` + districtColumns + ` FROM districts`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY name`

	districts := make([]models.District, 0)
	if err := r.db.SelectContext(ctx, &districts, query, args...); err != nil {
		return nil, fmt.Errorf("list districts: %w", err)
	}
	return districts, nil
}
