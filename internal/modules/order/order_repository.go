package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"pickle-storefront/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepositoryInterface interface {
	CreateOrder(ctx context.Context, o *models.Order) error
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error)
	ListAll(ctx context.Context, page, limit int) ([]models.Order, int, error)
	ListByStatus(ctx context.Context, status string) ([]models.Order, error)
	// Update writes back every admin- or driver-mutable field of the order.
	Update(ctx context.Context, o *models.Order) error
	// HasDeliveredOrderWithProduct reports whether the user has a delivered
	// order containing the product. Used to gate reviews.
	HasDeliveredOrderWithProduct(ctx context.Context, userID, productID string) (bool, error)
}

// Repository implements RepositoryInterface over PostgreSQL. Order lines and
// the delivery address are stored as JSONB snapshots; they are frozen at
// checkout and never joined against the live catalog.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const orderColumns = `id, user_id, user_name, user_email, user_phone, items, total, discount,
	final_amount, COALESCE(coupon_code, ''), address, status, payment_status, payment_method,
	COALESCE(transaction_id, ''), COALESCE(tracking_id, ''), COALESCE(carrier, ''),
	COALESCE(driver_id, ''), created_at, updated_at`

func (r *Repository) CreateOrder(ctx context.Context, o *models.Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("repository.CreateOrder marshal items: %w", err)
	}
	address, err := json.Marshal(o.Address)
	if err != nil {
		return fmt.Errorf("repository.CreateOrder marshal address: %w", err)
	}

	const query = `
		INSERT INTO orders (
			id, user_id, user_name, user_email, user_phone, items, total, discount,
			final_amount, coupon_code, address, status, payment_status, payment_method,
			transaction_id, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, NULLIF($10, ''), $11, $12, $13, $14,
			NULLIF($15, ''), $16, $17
		)`
	_, err = r.db.Exec(ctx, query,
		o.ID, o.UserID, o.UserName, o.UserEmail, o.UserPhone, items, o.Total, o.Discount,
		o.FinalAmount, o.CouponCode, address, o.Status, o.PaymentStatus, o.PaymentMethod,
		o.TransactionID, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository.CreateOrder: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return o, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string, page, limit int) ([]models.Order, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUser count: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM orders WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUser: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUser: %w", err)
	}
	return orders, total, nil
}

func (r *Repository) ListAll(ctx context.Context, page, limit int) ([]models.Order, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repository.ListAll count: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListAll: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListAll: %w", err)
	}
	return orders, total, nil
}

func (r *Repository) ListByStatus(ctx context.Context, status string) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + `
		FROM orders WHERE status = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByStatus: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByStatus: %w", err)
	}
	return orders, nil
}

func (r *Repository) Update(ctx context.Context, o *models.Order) error {
	const query = `
		UPDATE orders
		SET status = $2, payment_status = $3, transaction_id = NULLIF($4, ''),
			tracking_id = NULLIF($5, ''), carrier = NULLIF($6, ''),
			driver_id = NULLIF($7, ''), updated_at = $8
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		o.ID, o.Status, o.PaymentStatus, o.TransactionID,
		o.TrackingID, o.Carrier, o.DriverID, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) HasDeliveredOrderWithProduct(ctx context.Context, userID, productID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM orders,
				jsonb_array_elements(items) AS line
			WHERE user_id = $1
				AND status = $2
				AND line -> 'product' ->> 'id' = $3
		)`
	var ok bool
	if err := r.db.QueryRow(ctx, query, userID, models.StatusDelivered, productID).Scan(&ok); err != nil {
		return false, fmt.Errorf("repository.HasDeliveredOrderWithProduct: %w", err)
	}
	return ok, nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	var items, address []byte
	err := row.Scan(
		&o.ID, &o.UserID, &o.UserName, &o.UserEmail, &o.UserPhone, &items, &o.Total, &o.Discount,
		&o.FinalAmount, &o.CouponCode, &address, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&o.TransactionID, &o.TrackingID, &o.Carrier, &o.DriverID, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(address, &o.Address); err != nil {
		return nil, fmt.Errorf("unmarshal address: %w", err)
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
