package settings

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
	// Get returns the single settings row, or ErrNotFound before first save.
	Get(ctx context.Context) (*models.StoreSettings, error)
	// Save upserts the single settings row.
	Save(ctx context.Context, s *models.StoreSettings) error
}

// Repository stores the settings as one row with a fixed key.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) Get(ctx context.Context) (*models.StoreSettings, error) {
	const query = `SELECT upi_id, business_address, enable_cod, enable_bank_transfer FROM store_settings WHERE id = 1`
	var s models.StoreSettings
	var address []byte
	err := r.db.QueryRow(ctx, query).Scan(&s.UPIID, &address, &s.EnableCOD, &s.EnableBankTransfer)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Get: %w", err)
	}
	if err := json.Unmarshal(address, &s.BusinessAddress); err != nil {
		return nil, fmt.Errorf("repository.Get unmarshal: %w", err)
	}
	return &s, nil
}

func (r *Repository) Save(ctx context.Context, s *models.StoreSettings) error {
	address, err := json.Marshal(s.BusinessAddress)
	if err != nil {
		return fmt.Errorf("repository.Save marshal: %w", err)
	}
	const query = `
		INSERT INTO store_settings (id, upi_id, business_address, enable_cod, enable_bank_transfer)
		VALUES (1, $1, $2, $3, $4)
		ON CONFLICT (id)
		DO UPDATE SET upi_id = $1, business_address = $2, enable_cod = $3, enable_bank_transfer = $4`
	if _, err := r.db.Exec(ctx, query, s.UPIID, address, s.EnableCOD, s.EnableBankTransfer); err != nil {
		return fmt.Errorf("repository.Save: %w", err)
	}
	return nil
}
