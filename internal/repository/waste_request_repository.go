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
	"github.com/lib/pq"

	"github.com/noah-isme/waste-collection-api/internal/models"
)

// ErrCapacityReached is returned by AssignDriver when the driver already holds the
// maximum number of driver-PENDING requests.
var ErrCapacityReached = errors.New("driver pending capacity reached")

const wasteRequestColumns = `id, user_id, district_id, city, address, latitude, longitude, category_id, quantity,
       pickup_date, estimated_price, acceptance_status, driver_status, collection_status, payment_status,
       driver_id, payment_id, payment_resolved_at, rating, feedback_comment, feedback_at, version,
       created_at, updated_at, accepted_at, completed_at`

// updateStateQuery rewrites every mutable column when the caller's version is current.
const updateStateQuery = `UPDATE waste_requests SET
	district_id = :district_id,
	city = :city,
	address = :address,
	latitude = :latitude,
	longitude = :longitude,
	category_id = :category_id,
	quantity = :quantity,
	pickup_date = :pickup_date,
	estimated_price = :estimated_price,
	acceptance_status = :acceptance_status,
	driver_status = :driver_status,
	collection_status = :collection_status,
	payment_status = :payment_status,
	driver_id = :driver_id,
	payment_id = :payment_id,
	payment_resolved_at = :payment_resolved_at,
	rating = :rating,
	feedback_comment = :feedback_comment,
	feedback_at = :feedback_at,
	updated_at = :updated_at,
	accepted_at = :accepted_at,
	completed_at = :completed_at,
	version = version + 1
WHERE id = :id AND version = :version`

// WasteRequestRepository persists waste requests. Every state change is a conditional
// write keyed on the row version.
type WasteRequestRepository struct {
	db *sqlx.DB
}

// NewWasteRequestRepository constructs the repository.
func NewWasteRequestRepository(db *sqlx.DB) *WasteRequestRepository {
	return &WasteRequestRepository{db: db}
}

// Create inserts a new request.
func (r *WasteRequestRepository) Create(ctx context.Context, req *models.WasteRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if req.CreatedAt.IsZero() {
		req.CreatedAt = now
	}
	req.UpdatedAt = req.CreatedAt
	req.Version = 1
	const query = `INSERT INTO waste_requests
	(id, user_id, district_id, city, address, latitude, longitude, category_id, quantity, pickup_date, estimated_price,
	 acceptance_status, driver_status, collection_status, payment_status, version, created_at, updated_at)
	VALUES (:id, :user_id, :district_id, :city, :address, :latitude, :longitude, :category_id, :quantity, :pickup_date, :estimated_price,
	 :acceptance_status, :driver_status, :collection_status, :payment_status, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, req); err != nil {
		return fmt.Errorf("create waste request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *WasteRequestRepository) GetByID(ctx context.Context, id string) (*models.WasteRequest, error) {
	query := `SELECT ` + wasteRequestColumns + ` FROM waste_requests WHERE id = $1`
	var req models.WasteRequest
	if err := r.db.GetContext(ctx, &req, query, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns one page of requests matching the filter and the total match count.
func (r *WasteRequestRepository) List(ctx context.Context, filter models.WasteRequestFilter) ([]models.WasteRequest, int, error) {
	where, args := buildWasteRequestFilter(filter)

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM waste_requests`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count waste requests: %w", err)
	}

	page, size := normalizePage(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM waste_requests%s ORDER BY created_at DESC, id LIMIT %d OFFSET %d`,
		wasteRequestColumns, where, size, (page-1)*size)

	requests := make([]models.WasteRequest, 0)
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list waste requests: %w", err)
	}
	return requests, total, nil
}

// ListAll returns every request matching the filter, ignoring pagination.
func (r *WasteRequestRepository) ListAll(ctx context.Context, filter models.WasteRequestFilter) ([]models.WasteRequest, error) {
	where, args := buildWasteRequestFilter(filter)
	query := `SELECT ` + wasteRequestColumns + ` FROM waste_requests` + where + ` ORDER BY created_at DESC, id`
	requests := make([]models.WasteRequest, 0)
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("list all waste requests: %w", err)
	}
	return requests, nil
}

// UpdateState writes req when the stored version still equals req.Version. On success
// req.Version is advanced; a stale version yields sql.ErrNoRows.
func (r *WasteRequestRepository) UpdateState(ctx context.Context, req *models.WasteRequest) error {
	return updateState(ctx, r.db, req)
}

// Delete removes a request that is still awaiting a decision. sql.ErrNoRows means the
// row is missing or no longer PENDING.
func (r *WasteRequestRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM waste_requests WHERE id = $1 AND acceptance_status = 'PENDING'`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete waste request: %w", err)
	}
	return expectOneRow(result, "delete waste request")
}

// CountPendingByDriver returns the driver's current driver-PENDING load.
func (r *WasteRequestRepository) CountPendingByDriver(ctx context.Context, driverID string) (int, error) {
	const query = `SELECT COUNT(*) FROM waste_requests WHERE driver_id = $1 AND driver_status = 'PENDING'`
	var count int
	if err := r.db.GetContext(ctx, &count, query, driverID); err != nil {
		return 0, fmt.Errorf("count pending requests for driver: %w", err)
	}
	return count, nil
}

// AssignDriverParams describes a capacity-checked driver bind.
type AssignDriverParams struct {
	RequestID       string
	DriverID        string
	ExpectedVersion int
	Capacity        int
	At              time.Time
}

// AssignDriver binds the driver inside one transaction. The driver row is locked first
// so concurrent binds for the same driver serialise on the pending count. It returns
// ErrCapacityReached when the driver is full and sql.ErrNoRows when the request moved.
func (r *WasteRequestRepository) AssignDriver(ctx context.Context, params AssignDriverParams) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var lockedID string
	const lockQuery = `SELECT id FROM drivers WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &lockedID, lockQuery, params.DriverID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("lock driver: %w", err)
	}

	var pending int
	const countQuery = `SELECT COUNT(*) FROM waste_requests WHERE driver_id = $1 AND driver_status = 'PENDING'`
	if err = tx.GetContext(ctx, &pending, countQuery, params.DriverID); err != nil {
		return fmt.Errorf("count driver pending requests: %w", err)
	}
	if pending >= params.Capacity {
		err = ErrCapacityReached
		return err
	}

	const updateQuery = `UPDATE waste_requests
	SET driver_id = $1, driver_status = 'PENDING', updated_at = $2, version = version + 1
	WHERE id = $3 AND version = $4 AND acceptance_status = 'ACCEPTED' AND driver_status = 'UNASSIGNED'`
	result, err := tx.ExecContext(ctx, updateQuery, params.DriverID, params.At, params.RequestID, params.ExpectedVersion)
	if err != nil {
		return fmt.Errorf("bind driver: %w", err)
	}
	if err = expectOneRow(result, "bind driver"); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment: %w", err)
	}
	return nil
}

// SaveWithPayment writes the request state and, when payment is non-nil, the payment
// obligation in a single transaction. The payment insert is a no-op when the request
// already owns one; req.PaymentID is set to the stored payment id either way.
func (r *WasteRequestRepository) SaveWithPayment(ctx context.Context, req *models.WasteRequest, payment *models.Payment) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment resolution transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if payment != nil {
		if payment.ID == "" {
			payment.ID = uuid.NewString()
		}
		const insertQuery = `INSERT INTO payments (id, request_id, amount, due_date, method, status, created_at, updated_at)
	VALUES (:id, :request_id, :amount, :due_date, :method, :status, :created_at, :updated_at)
	ON CONFLICT (request_id) DO NOTHING`
		if _, err = tx.NamedExecContext(ctx, insertQuery, payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		var storedID string
		if err = tx.GetContext(ctx, &storedID, `SELECT id FROM payments WHERE request_id = $1`, payment.RequestID); err != nil {
			return fmt.Errorf("read payment id: %w", err)
		}
		payment.ID = storedID
		req.PaymentID = &storedID
	}

	if err = updateState(ctx, tx, req); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit payment resolution: %w", err)
	}
	return nil
}

// SettlePayment moves the PENDING payment row to status and writes the request state
// in one transaction.
func (r *WasteRequestRepository) SettlePayment(ctx context.Context, req *models.WasteRequest, status models.PaymentStatus, at time.Time) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin settlement transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const paymentQuery = `UPDATE payments SET status = $1, settled_at = $2, updated_at = $2
	WHERE request_id = $3 AND status = 'PENDING'`
	result, err := tx.ExecContext(ctx, paymentQuery, status, at, req.ID)
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}
	if err = expectOneRow(result, "settle payment"); err != nil {
		return err
	}

	if err = updateState(ctx, tx, req); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit settlement: %w", err)
	}
	return nil
}

// RecordFeedback stores rating and comment only while none exist and the collection is
// complete. sql.ErrNoRows means another writer got there first or the state moved.
func (r *WasteRequestRepository) RecordFeedback(ctx context.Context, req *models.WasteRequest) error {
	const query = `UPDATE waste_requests
	SET rating = $1, feedback_comment = $2, feedback_at = $3, updated_at = $3, version = version + 1
	WHERE id = $4 AND rating IS NULL AND collection_status = 'COMPLETED'
	RETURNING version`
	var version int
	if err := r.db.GetContext(ctx, &version, query, req.Rating, req.FeedbackComment, req.FeedbackAt, req.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("record feedback: %w", err)
	}
	req.Version = version
	return nil
}

type namedExecer interface {
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

func updateState(ctx context.Context, db namedExecer, req *models.WasteRequest) error {
	result, err := db.NamedExecContext(ctx, updateStateQuery, req)
	if err != nil {
		return fmt.Errorf("update waste request: %w", err)
	}
	if err := expectOneRow(result, "update waste request"); err != nil {
		return err
	}
	req.Version++
	return nil
}

func expectOneRow(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func buildWasteRequestFilter(filter models.WasteRequestFilter) (string, []interface{}) {
	args := make([]interface{}, 0, 9)
	conditions := make([]string, 0, 9)

	eq := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	in := func(column string, values []string) {
		if len(values) == 0 {
			return
		}
		args = append(args, pq.StringArray(values))
		conditions = append(conditions, fmt.Sprintf("%s = ANY($%d)", column, len(args)))
	}

	eq("user_id", filter.UserID)
	eq("driver_id", filter.DriverID)
	eq("district_id", filter.DistrictID)
	eq("category_id", filter.CategoryID)
	if filter.City != "" {
		args = append(args, filter.City)
		conditions = append(conditions, fmt.Sprintf("LOWER(city) = LOWER($%d)", len(args)))
	}
	in("acceptance_status", toStrings(filter.AcceptanceStatus))
	in("driver_status", toStrings(filter.DriverStatus))
	in("collection_status", toStrings(filter.CollectionStatus))
	in("payment_status", toStrings(filter.PaymentStatus))

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func toStrings[S ~string](values []S) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func normalizePage(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
