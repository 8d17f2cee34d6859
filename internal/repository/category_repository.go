package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/waste-collection-api/internal/models"
)

const categoryColumns = `id, name, price_per_kg, is_user_payment_required, is_active, created_at, updated_at`

// CategoryRepository persists waste categories.
type CategoryRepository struct {
	db *sqlx.DB
}

// NewCategoryRepository constructs the repository.
func NewCategoryRepository(db *sqlx.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, category *models.WasteCategory) error {
	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	category.CreatedAt = now
	category.UpdatedAt = now
	const query = `INSERT INTO waste_categories (id, name, price_per_kg, is_user_payment_required, is_active, created_at, updated_at)
	VALUES (:id, :name, :price_per_kg, :is_user_payment_required, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, category); err != nil {
		return fmt.Errorf("create category: %w", mapUniqueViolation(err))
	}
	return nil
}

// Update overwrites the mutable category columns.
func (r *CategoryRepository) Update(ctx context.Context, category *models.WasteCategory) error {
	category.UpdatedAt = time.Now().UTC()
	const query = `UPDATE waste_categories SET name = :name, price_per_kg = :price_per_kg,
	is_user_payment_required = :is_user_payment_required, is_active = :is_active, updated_at = :updated_at
	WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, category)
	if err != nil {
		return fmt.Errorf("update category: %w", mapUniqueViolation(err))
	}
	return expectOneRow(result, "update category")
}

// FindByID returns a category by identifier.
func (r *CategoryRepository) FindByID(ctx context.Context, id string) (*models.WasteCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM waste_categories WHERE id = $1`
	var category models.WasteCategory
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &category, nil
}

// List returns categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context, filter models.CategoryFilter) ([]models.WasteCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM waste_categories`
	var args []interface{}
	if filter.Active != nil {
		query += ` WHERE is_active = $1`
		args = append(args, *filter.Active)
	}
	query += ` ORDER BY name`
	categories := make([]models.WasteCategory, 0)
	if err := r.db.SelectContext(ctx, &categories, query, args...); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
