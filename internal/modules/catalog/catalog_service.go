package catalog

import (
	"context"
	"fmt"

	"pickle-storefront/internal/models"

	"github.com/google/uuid"
)

// PurchaseChecker gates reviews: only a customer with a delivered order
// containing the product may review it.
type PurchaseChecker interface {
	HasDeliveredOrderWithProduct(ctx context.Context, userID, productID string) (bool, error)
}

// UserFinder resolves the display name stamped on a review.
type UserFinder interface {
	FindUser(ctx context.Context, userID string) (*models.User, error)
}

type ServiceInterface interface {
	ListProducts(ctx context.Context, category string) ([]models.Product, error)
	FindProduct(ctx context.Context, productID string) (*models.Product, error)
	CreateProduct(ctx context.Context, req models.UpsertProductRequest) (*models.Product, error)
	UpdateProduct(ctx context.Context, productID string, req models.UpsertProductRequest) (*models.Product, error)
	DeleteProduct(ctx context.Context, productID string) error

	ListCombos(ctx context.Context, includeInactive bool) ([]models.ComboProduct, error)
	FindCombo(ctx context.Context, comboID string) (*models.ComboProduct, error)
	CreateCombo(ctx context.Context, req models.UpsertComboRequest) (*models.ComboProduct, error)
	UpdateCombo(ctx context.Context, comboID string, req models.UpsertComboRequest) (*models.ComboProduct, error)
	DeleteCombo(ctx context.Context, comboID string) error

	ListReviews(ctx context.Context, productID string) ([]models.Review, error)
	AddReview(ctx context.Context, userID, productID string, req models.ReviewRequest) (*models.Review, error)
}

type service struct {
	repo      RepositoryInterface
	purchases PurchaseChecker
	users     UserFinder
}

func NewService(repo RepositoryInterface, purchases PurchaseChecker, users UserFinder) ServiceInterface {
	return &service{repo: repo, purchases: purchases, users: users}
}

func (s *service) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	products, err := s.repo.ListProducts(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("service.ListProducts: %w", err)
	}
	return products, nil
}

func (s *service) FindProduct(ctx context.Context, productID string) (*models.Product, error) {
	p, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("service.FindProduct: %w", err)
	}
	return p, nil
}

func (s *service) CreateProduct(ctx context.Context, req models.UpsertProductRequest) (*models.Product, error) {
	p := models.Product{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Category:    req.Category,
		Variants:    req.Variants,
		InStock:     anyStock(req.Variants),
		BestSeller:  req.BestSeller,
	}
	if err := s.repo.CreateProduct(ctx, &p); err != nil {
		return nil, fmt.Errorf("service.CreateProduct: %w", err)
	}
	return &p, nil
}

func (s *service) UpdateProduct(ctx context.Context, productID string, req models.UpsertProductRequest) (*models.Product, error) {
	p, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateProduct: %w", err)
	}
	p.Name = req.Name
	p.Description = req.Description
	p.Image = req.Image
	p.Category = req.Category
	p.Variants = req.Variants
	p.InStock = anyStock(req.Variants)
	p.BestSeller = req.BestSeller

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("service.UpdateProduct: %w", err)
	}
	return p, nil
}

func (s *service) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.repo.DeleteProduct(ctx, productID); err != nil {
		if err == models.ErrNotFound {
			return err
		}
		return fmt.Errorf("service.DeleteProduct: %w", err)
	}
	return nil
}

func (s *service) ListCombos(ctx context.Context, includeInactive bool) ([]models.ComboProduct, error) {
	combos, err := s.repo.ListCombos(ctx, !includeInactive)
	if err != nil {
		return nil, fmt.Errorf("service.ListCombos: %w", err)
	}
	return combos, nil
}

func (s *service) FindCombo(ctx context.Context, comboID string) (*models.ComboProduct, error) {
	cb, err := s.repo.FindCombo(ctx, comboID)
	if err != nil {
		if err == models.ErrNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("service.FindCombo: %w", err)
	}
	return cb, nil
}

// validateRefs checks that every combo item points at an existing product
// variant.
func (s *service) validateRefs(ctx context.Context, refs []models.ComboItemRef) error {
	for _, ref := range refs {
		p, err := s.repo.FindProduct(ctx, ref.ProductID)
		if err != nil {
			return err
		}
		if _, ok := p.Variant(ref.VariantWeight); !ok {
			return models.ErrVariantUnknown
		}
	}
	return nil
}

func (s *service) CreateCombo(ctx context.Context, req models.UpsertComboRequest) (*models.ComboProduct, error) {
	if err := s.validateRefs(ctx, req.Products); err != nil {
		return nil, err
	}
	cb := models.ComboProduct{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Description:   req.Description,
		Image:         req.Image,
		Products:      req.Products,
		OriginalPrice: req.OriginalPrice,
		ComboPrice:    req.ComboPrice,
		Stock:         req.Stock,
		Active:        req.Active,
	}
	if err := s.repo.CreateCombo(ctx, &cb); err != nil {
		return nil, fmt.Errorf("service.CreateCombo: %w", err)
	}
	return &cb, nil
}

func (s *service) UpdateCombo(ctx context.Context, comboID string, req models.UpsertComboRequest) (*models.ComboProduct, error) {
	if err := s.validateRefs(ctx, req.Products); err != nil {
		return nil, err
	}
	cb, err := s.repo.FindCombo(ctx, comboID)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateCombo: %w", err)
	}
	cb.Name = req.Name
	cb.Description = req.Description
	cb.Image = req.Image
	cb.Products = req.Products
	cb.OriginalPrice = req.OriginalPrice
	cb.ComboPrice = req.ComboPrice
	cb.Stock = req.Stock
	cb.Active = req.Active

	if err := s.repo.UpdateCombo(ctx, cb); err != nil {
		return nil, fmt.Errorf("service.UpdateCombo: %w", err)
	}
	return cb, nil
}

func (s *service) DeleteCombo(ctx context.Context, comboID string) error {
	if err := s.repo.DeleteCombo(ctx, comboID); err != nil {
		if err == models.ErrNotFound {
			return err
		}
		return fmt.Errorf("service.DeleteCombo: %w", err)
	}
	return nil
}

func (s *service) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	reviews, err := s.repo.ListReviews(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("service.ListReviews: %w", err)
	}
	return reviews, nil
}

func (s *service) AddReview(ctx context.Context, userID, productID string, req models.ReviewRequest) (*models.Review, error) {
	if _, err := s.repo.FindProduct(ctx, productID); err != nil {
		return nil, err
	}

	allowed, err := s.purchases.HasDeliveredOrderWithProduct(ctx, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("service.AddReview: %w", err)
	}
	if !allowed {
		return nil, models.ErrReviewNotAllowed
	}

	user, err := s.users.FindUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.AddReview: %w", err)
	}

	rv := models.Review{
		ID:        uuid.NewString(),
		ProductID: productID,
		UserID:    userID,
		UserName:  user.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.repo.CreateReview(ctx, &rv); err != nil {
		return nil, fmt.Errorf("service.AddReview: %w", err)
	}
	if err := s.repo.RefreshRating(ctx, productID); err != nil {
		return nil, fmt.Errorf("service.AddReview: %w", err)
	}
	return &rv, nil
}

func anyStock(variants []models.ProductVariant) bool {
	for _, v := range variants {
		if v.Stock > 0 {
			return true
		}
	}
	return false
}
