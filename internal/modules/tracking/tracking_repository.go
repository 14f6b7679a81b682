package tracking

import (
	"context"
	"errors"
	"fmt"

	"pickle-storefront/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepositoryInterface interface {
	// UpsertLocation writes the latest position for an order, one row per
	// order.
	UpsertLocation(ctx context.Context, loc models.DriverLocation) error
	// Deactivate marks an order's location record inactive with a fresh
	// timestamp. The record itself is kept. Missing rows are not an error:
	// deactivation is called defensively from the order lifecycle.
	Deactivate(ctx context.Context, orderID string) error
	// FindByOrderID returns the latest location record, active or not.
	FindByOrderID(ctx context.Context, orderID string) (*models.DriverLocation, error)
	// ListActive returns every currently active location record.
	ListActive(ctx context.Context) ([]models.DriverLocation, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) UpsertLocation(ctx context.Context, loc models.DriverLocation) error {
	const query = `
		INSERT INTO driver_locations (order_id, driver_id, driver_name, driver_phone, lat, lng, timestamp, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (order_id)
		DO UPDATE SET driver_id = $2, driver_name = $3, driver_phone = $4,
			lat = $5, lng = $6, timestamp = $7, is_active = $8`
	_, err := r.db.Exec(ctx, query,
		loc.OrderID, loc.DriverID, loc.DriverName, loc.DriverPhone,
		loc.Lat, loc.Lng, loc.Timestamp, loc.IsActive,
	)
	if err != nil {
		return fmt.Errorf("repository.UpsertLocation: %w", err)
	}
	return nil
}

func (r *Repository) Deactivate(ctx context.Context, orderID string) error {
	const query = `UPDATE driver_locations SET is_active = false, timestamp = now() WHERE order_id = $1`
	if _, err := r.db.Exec(ctx, query, orderID); err != nil {
		return fmt.Errorf("repository.Deactivate: %w", err)
	}
	return nil
}

func (r *Repository) FindByOrderID(ctx context.Context, orderID string) (*models.DriverLocation, error) {
	const query = `
		SELECT order_id, driver_id, driver_name, driver_phone, lat, lng, timestamp, is_active
		FROM driver_locations WHERE order_id = $1`
	var loc models.DriverLocation
	err := r.db.QueryRow(ctx, query, orderID).Scan(
		&loc.OrderID, &loc.DriverID, &loc.DriverName, &loc.DriverPhone,
		&loc.Lat, &loc.Lng, &loc.Timestamp, &loc.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByOrderID: %w", err)
	}
	return &loc, nil
}

func (r *Repository) ListActive(ctx context.Context) ([]models.DriverLocation, error) {
	const query = `
		SELECT order_id, driver_id, driver_name, driver_phone, lat, lng, timestamp, is_active
		FROM driver_locations WHERE is_active`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.ListActive: %w", err)
	}
	defer rows.Close()

	var locs []models.DriverLocation
	for rows.Next() {
		var loc models.DriverLocation
		if err := rows.Scan(
			&loc.OrderID, &loc.DriverID, &loc.DriverName, &loc.DriverPhone,
			&loc.Lat, &loc.Lng, &loc.Timestamp, &loc.IsActive,
		); err != nil {
			return nil, fmt.Errorf("repository.ListActive Scan: %w", err)
		}
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListActive rows: %w", err)
	}
	return locs, nil
}
