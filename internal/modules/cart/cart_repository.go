package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"pickle-storefront/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface covers the persisted side of carts and the coupon
// catalog.
type RepositoryInterface interface {
	// SaveCart mirrors the in-memory cart for a user. Items are stored as a
	// JSONB document; an empty cart clears the row.
	SaveCart(ctx context.Context, userID string, items []models.CartItem, couponCode string) error
	// LoadCart restores a user's mirrored cart, e.g. after a sign-in on a new
	// device. Returns ErrNotFound when no row exists.
	LoadCart(ctx context.Context, userID string) ([]models.CartItem, string, error)

	// ListActiveCoupons returns all coupons currently toggled on.
	ListActiveCoupons(ctx context.Context) ([]models.Coupon, error)
	// ListCoupons returns every coupon, active or not (admin view).
	ListCoupons(ctx context.Context) ([]models.Coupon, error)
	// CreateCoupon inserts a coupon; a duplicate code maps to ErrConflict.
	CreateCoupon(ctx context.Context, c *models.Coupon) error
	// ToggleCoupon flips a coupon's active flag. Coupons are never deleted.
	ToggleCoupon(ctx context.Context, code string) (*models.Coupon, error)
}

// Repository implements RepositoryInterface over PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) SaveCart(ctx context.Context, userID string, items []models.CartItem, couponCode string) error {
	if len(items) == 0 {
		_, err := r.db.Exec(ctx, `DELETE FROM carts WHERE user_id = $1`, userID)
		if err != nil {
			return fmt.Errorf("repository.SaveCart delete: %w", err)
		}
		return nil
	}

	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("repository.SaveCart marshal: %w", err)
	}
	const query = `
		INSERT INTO carts (user_id, items, coupon_code, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), now())
		ON CONFLICT (user_id)
		DO UPDATE SET items = $2, coupon_code = NULLIF($3, ''), updated_at = now()`
	if _, err := r.db.Exec(ctx, query, userID, payload, couponCode); err != nil {
		return fmt.Errorf("repository.SaveCart upsert: %w", err)
	}
	return nil
}

func (r *Repository) LoadCart(ctx context.Context, userID string) ([]models.CartItem, string, error) {
	const query = `SELECT items, COALESCE(coupon_code, '') FROM carts WHERE user_id = $1`
	var payload []byte
	var code string
	if err := r.db.QueryRow(ctx, query, userID).Scan(&payload, &code); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", models.ErrNotFound
		}
		return nil, "", fmt.Errorf("repository.LoadCart: %w", err)
	}
	var items []models.CartItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, "", fmt.Errorf("repository.LoadCart unmarshal: %w", err)
	}
	return items, code, nil
}

func (r *Repository) ListActiveCoupons(ctx context.Context) ([]models.Coupon, error) {
	return r.listCoupons(ctx, `SELECT code, discount, type, min_order, active, created_at FROM coupons WHERE active`)
}

func (r *Repository) ListCoupons(ctx context.Context) ([]models.Coupon, error) {
	return r.listCoupons(ctx, `SELECT code, discount, type, min_order, active, created_at FROM coupons ORDER BY created_at`)
}

func (r *Repository) listCoupons(ctx context.Context, query string) ([]models.Coupon, error) {
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.listCoupons: %w", err)
	}
	defer rows.Close()

	var coupons []models.Coupon
	for rows.Next() {
		var c models.Coupon
		if err := rows.Scan(&c.Code, &c.Discount, &c.Type, &c.MinOrder, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository.listCoupons Scan: %w", err)
		}
		coupons = append(coupons, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.listCoupons rows: %w", err)
	}
	return coupons, nil
}

func (r *Repository) CreateCoupon(ctx context.Context, c *models.Coupon) error {
	const query = `
		INSERT INTO coupons (code, discount, type, min_order, active)
		VALUES ($1, $2, $3, $4, true)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		strings.ToUpper(c.Code), c.Discount, c.Type, c.MinOrder,
	).Scan(&c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrConflict
		}
		return fmt.Errorf("repository.CreateCoupon: %w", err)
	}
	c.Code = strings.ToUpper(c.Code)
	c.Active = true
	return nil
}

func (r *Repository) ToggleCoupon(ctx context.Context, code string) (*models.Coupon, error) {
	const query = `
		UPDATE coupons
		SET active = NOT active
		WHERE code = $1
		RETURNING code, discount, type, min_order, active, created_at`
	var c models.Coupon
	err := r.db.QueryRow(ctx, query, strings.ToUpper(code)).Scan(
		&c.Code, &c.Discount, &c.Type, &c.MinOrder, &c.Active, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.ToggleCoupon: %w", err)
	}
	return &c, nil
}
