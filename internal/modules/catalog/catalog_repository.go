package catalog

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
	ListProducts(ctx context.Context, category string) ([]models.Product, error)
	FindProduct(ctx context.Context, productID string) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, productID string) error

	ListCombos(ctx context.Context, activeOnly bool) ([]models.ComboProduct, error)
	FindCombo(ctx context.Context, comboID string) (*models.ComboProduct, error)
	CreateCombo(ctx context.Context, cb *models.ComboProduct) error
	UpdateCombo(ctx context.Context, cb *models.ComboProduct) error
	DeleteCombo(ctx context.Context, comboID string) error

	ListReviews(ctx context.Context, productID string) ([]models.Review, error)
	CreateReview(ctx context.Context, rv *models.Review) error
	// RefreshRating recomputes and stores a product's rating and review count.
	RefreshRating(ctx context.Context, productID string) error
}

// Repository implements RepositoryInterface over PostgreSQL. Variants and
// combo item refs live as JSONB columns on their parent rows.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const productColumns = `id, name, description, COALESCE(image, ''), category, variants,
	in_stock, rating, review_count, best_seller, created_at, updated_at`

func (r *Repository) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []interface{}{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("repository.ListProducts: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListProducts: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListProducts rows: %w", err)
	}
	return products, nil
}

func (r *Repository) FindProduct(ctx context.Context, productID string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.db.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindProduct: %w", err)
	}
	return p, nil
}

func (r *Repository) CreateProduct(ctx context.Context, p *models.Product) error {
	variants, err := json.Marshal(p.Variants)
	if err != nil {
		return fmt.Errorf("repository.CreateProduct marshal: %w", err)
	}
	const query = `
		INSERT INTO products (id, name, description, image, category, variants, in_stock, rating, review_count, best_seller)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, 0, $8)
		RETURNING created_at, updated_at`
	err = r.db.QueryRow(ctx, query,
		p.ID, p.Name, p.Description, p.Image, p.Category, variants, p.InStock, p.BestSeller,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository.CreateProduct: %w", err)
	}
	return nil
}

func (r *Repository) UpdateProduct(ctx context.Context, p *models.Product) error {
	variants, err := json.Marshal(p.Variants)
	if err != nil {
		return fmt.Errorf("repository.UpdateProduct marshal: %w", err)
	}
	const query = `
		UPDATE products
		SET name = $2, description = $3, image = $4, category = $5, variants = $6,
			in_stock = $7, best_seller = $8, updated_at = now()
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Image, p.Category, variants, p.InStock, p.BestSeller,
	)
	if err != nil {
		return fmt.Errorf("repository.UpdateProduct: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteProduct(ctx context.Context, productID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return fmt.Errorf("repository.DeleteProduct: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

const comboColumns = `id, name, description, COALESCE(image, ''), products,
	original_price, combo_price, stock, active, created_at, updated_at`

func (r *Repository) ListCombos(ctx context.Context, activeOnly bool) ([]models.ComboProduct, error) {
	query := `SELECT ` + comboColumns + ` FROM combo_products`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("repository.ListCombos: %w", err)
	}
	defer rows.Close()

	var combos []models.ComboProduct
	for rows.Next() {
		cb, err := scanCombo(rows)
		if err != nil {
			return nil, fmt.Errorf("repository.ListCombos: %w", err)
		}
		combos = append(combos, *cb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListCombos rows: %w", err)
	}
	return combos, nil
}

func (r *Repository) FindCombo(ctx context.Context, comboID string) (*models.ComboProduct, error) {
	query := `SELECT ` + comboColumns + ` FROM combo_products WHERE id = $1`
	cb, err := scanCombo(r.db.QueryRow(ctx, query, comboID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindCombo: %w", err)
	}
	return cb, nil
}

func (r *Repository) CreateCombo(ctx context.Context, cb *models.ComboProduct) error {
	refs, err := json.Marshal(cb.Products)
	if err != nil {
		return fmt.Errorf("repository.CreateCombo marshal: %w", err)
	}
	const query = `
		INSERT INTO combo_products (id, name, description, image, products, original_price, combo_price, stock, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`
	err = r.db.QueryRow(ctx, query,
		cb.ID, cb.Name, cb.Description, cb.Image, refs, cb.OriginalPrice, cb.ComboPrice, cb.Stock, cb.Active,
	).Scan(&cb.CreatedAt, &cb.UpdatedAt)
	if err != nil {
		return fmt.Errorf("repository.CreateCombo: %w", err)
	}
	return nil
}

func (r *Repository) UpdateCombo(ctx context.Context, cb *models.ComboProduct) error {
	refs, err := json.Marshal(cb.Products)
	if err != nil {
		return fmt.Errorf("repository.UpdateCombo marshal: %w", err)
	}
	const query = `
		UPDATE combo_products
		SET name = $2, description = $3, image = $4, products = $5,
			original_price = $6, combo_price = $7, stock = $8, active = $9, updated_at = now()
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		cb.ID, cb.Name, cb.Description, cb.Image, refs, cb.OriginalPrice, cb.ComboPrice, cb.Stock, cb.Active,
	)
	if err != nil {
		return fmt.Errorf("repository.UpdateCombo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteCombo(ctx context.Context, comboID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM combo_products WHERE id = $1`, comboID)
	if err != nil {
		return fmt.Errorf("repository.DeleteCombo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *Repository) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	const query = `
		SELECT id, product_id, user_id, user_name, rating, COALESCE(comment, ''), created_at
		FROM reviews WHERE product_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListReviews: %w", err)
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		var rv models.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("repository.ListReviews Scan: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository.ListReviews rows: %w", err)
	}
	return reviews, nil
}

func (r *Repository) CreateReview(ctx context.Context, rv *models.Review) error {
	const query = `
		INSERT INTO reviews (id, product_id, user_id, user_name, rating, comment)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING created_at`
	err := r.db.QueryRow(ctx, query,
		rv.ID, rv.ProductID, rv.UserID, rv.UserName, rv.Rating, rv.Comment,
	).Scan(&rv.CreatedAt)
	if err != nil {
		return fmt.Errorf("repository.CreateReview: %w", err)
	}
	return nil
}

func (r *Repository) RefreshRating(ctx context.Context, productID string) error {
	const query = `
		UPDATE products
		SET rating = COALESCE((SELECT ROUND(AVG(rating)::numeric, 1) FROM reviews WHERE product_id = $1), 0),
			review_count = (SELECT COUNT(*) FROM reviews WHERE product_id = $1),
			updated_at = now()
		WHERE id = $1`
	if _, err := r.db.Exec(ctx, query, productID); err != nil {
		return fmt.Errorf("repository.RefreshRating: %w", err)
	}
	return nil
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	var variants []byte
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Image, &p.Category, &variants,
		&p.InStock, &p.Rating, &p.ReviewCount, &p.BestSeller, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(variants, &p.Variants); err != nil {
		return nil, fmt.Errorf("unmarshal variants: %w", err)
	}
	return &p, nil
}

func scanCombo(row pgx.Row) (*models.ComboProduct, error) {
	var cb models.ComboProduct
	var refs []byte
	err := row.Scan(
		&cb.ID, &cb.Name, &cb.Description, &cb.Image, &refs,
		&cb.OriginalPrice, &cb.ComboPrice, &cb.Stock, &cb.Active, &cb.CreatedAt, &cb.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(refs, &cb.Products); err != nil {
		return nil, fmt.Errorf("unmarshal products: %w", err)
	}
	return &cb, nil
}
