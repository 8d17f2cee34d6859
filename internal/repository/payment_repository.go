package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/waste-collection-api/internal/models"
)

// PaymentRepository reads payment obligations. Writes happen inside the waste request
// transactions.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// FindByRequestID returns the payment created for a request.
func (r *PaymentRepository) FindByRequestID(ctx context.Context, requestID string) (*models.Payment, error) {
	const query = `SELECT id, request_id, amount, due_date, method, status, created_at, updated_at, settled_at
	FROM payments WHERE request_id = $1`
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return &payment, nil
}
