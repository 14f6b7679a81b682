package user

import (
	"context"
	"errors"
	"fmt"

	"pickle-storefront/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepositoryInterface interface {
	CreateUser(ctx context.Context, u *models.User, passwordHash string) error
	FindByID(ctx context.Context, userID string) (*models.User, error)
	// FindByEmail also returns the stored password hash for login.
	FindByEmail(ctx context.Context, email string) (*models.User, string, error)
	UpdateProfile(ctx context.Context, userID, name, phone string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error

	ListAddresses(ctx context.Context, userID string) ([]models.UserAddress, error)
	CreateAddress(ctx context.Context, a *models.UserAddress) error
	UpdateAddress(ctx context.Context, a *models.UserAddress) error
	DeleteAddress(ctx context.Context, userID, addressID string) error
	// SetDefaultAddress clears the user's default flag and sets it on one
	// address, atomically.
	SetDefaultAddress(ctx context.Context, userID, addressID string) error

	CreateResetToken(ctx context.Context, t *models.PasswordResetToken) error
	FindResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error)
	MarkTokenUsed(ctx context.Context, token string) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) CreateUser(ctx context.Context, u *models.User, passwordHash string) error {
	const query = `
		INSERT INTO users (id, name, email, phone, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query, u.ID, u.Name, u.Email, u.Phone, u.Role, passwordHash).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrConflict
		}
		return fmt.Errorf("repository.CreateUser: %w", err)
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	const query = `SELECT id, name, email, COALESCE(phone, ''), role, created_at FROM users WHERE id = $1`
	var u models.User
	err := r.db.QueryRow(ctx, query, userID).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return &u, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, string, error) {
	const query = `SELECT id, name, email, COALESCE(phone, ''), role, password_hash, created_at FROM users WHERE email = $1`
	var u models.User
	var hash string
	err := r.db.QueryRow(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &hash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", models.ErrNotFound
		}
		return nil, "", fmt.Errorf("repository.FindByEmail: %w", err)
	}
	return &u, hash, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, userID, name, phone string) (*models.User, error) {
	const query = `
		UPDATE users SET name = $2, phone = $3
		WHERE id = $1
		RETURNING id, name, email, COALESCE(phone, ''), role, created_at`
	var u models.User
	err := r.db.QueryRow(ctx, query, userID, name, phone).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.UpdateProfile: %w", err)
	}
	return &u, nil
}

func (r *Repository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return fmt.Errorf("repository.UpdatePassword: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

const addressColumns = `id, user_id, label, name, phone, street, city, state, pincode, country, is_default, created_at, updated_at`

func (r *Repository) ListAddresses(ctx context.Context, userID string) ([]models.UserAddress, error) {
	query := `SELECT ` + addressColumns + ` FROM user_addresses WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListAddresses: %w", err)
	}
	defer rows.Close()

	var addresses []models.UserAddress
	for rows.Next() {
		var a models.UserAddress
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Label, &a.Name, &a.Phone, &a.Street, &a.City,
			&a.State, &a.Pincode, &a.Country, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("repository.ListAddresses Scan: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListAddresses rows: %w", err)
	}
	return addresses, nil
}

func (r *Repository) CreateAddress(ctx context.Context, a *models.UserAddress) error {
	const query = `
		INSERT INTO user_addresses (id, user_id, label, name, phone, street, city, state, pincode, country, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		a.ID, a.UserID, a.Label, a.Name, a.Phone, a.Street, a.City, a.State, a.Pincode, a.Country, a.IsDefault,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository.CreateAddress: %w", err)
	}
	return nil
}

func (r *Repository) UpdateAddress(ctx context.Context, a *models.UserAddress) error {
	const query = `
		UPDATE user_addresses
		SET label = $3, name = $4, phone = $5, street = $6, city = $7,
			state = $8, pincode = $9, country = $10, updated_at = now()
		WHERE id = $1 AND user_id = $2`
	tag, err := r.db.Exec(ctx, query,
		a.ID, a.UserID, a.Label, a.Name, a.Phone, a.Street, a.City, a.State, a.Pincode, a.Country,
	)
	if err != nil {
		return fmt.Errorf("repository.UpdateAddress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteAddress(ctx context.Context, userID, addressID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_addresses WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		return fmt.Errorf("repository.DeleteAddress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repository.SetDefaultAddress begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE user_addresses SET is_default = false WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("repository.SetDefaultAddress clear: %w", err)
	}
	tag, err := tx.Exec(ctx, `UPDATE user_addresses SET is_default = true WHERE id = $1 AND user_id = $2`, addressID, userID)
	if err != nil {
		return fmt.Errorf("repository.SetDefaultAddress set: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repository.SetDefaultAddress commit: %w", err)
	}
	return nil
}

func (r *Repository) CreateResetToken(ctx context.Context, t *models.PasswordResetToken) error {
	const query = `
		INSERT INTO password_reset_tokens (token, user_id, expires_at, used)
		VALUES ($1, $2, $3, false)
		RETURNING created_at`
	if err := r.db.QueryRow(ctx, query, t.Token, t.UserID, t.ExpiresAt).Scan(&t.CreatedAt); err != nil {
		return fmt.Errorf("repository.CreateResetToken: %w", err)
	}
	return nil
}

func (r *Repository) FindResetToken(ctx context.Context, token string) (*models.PasswordResetToken, error) {
	const query = `SELECT token, user_id, expires_at, used, created_at FROM password_reset_tokens WHERE token = $1`
	var t models.PasswordResetToken
	err := r.db.QueryRow(ctx, query, token).Scan(&t.Token, &t.UserID, &t.ExpiresAt, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrInvalidToken
		}
		return nil, fmt.Errorf("repository.FindResetToken: %w", err)
	}
	return &t, nil
}

func (r *Repository) MarkTokenUsed(ctx context.Context, token string) error {
	tag, err := r.db.Exec(ctx, `UPDATE password_reset_tokens SET used = true WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("repository.MarkTokenUsed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrInvalidToken
	}
	return nil
}
