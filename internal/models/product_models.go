package models

import "time"

// ProductVariant is one weight/price/stock combination of a product. Within a
// product, the weight label is the variant's identity.
type ProductVariant struct {
	Weight string  `json:"weight"`
	Price  float64 `json:"price"`
	MRP    float64 `json:"mrp,omitempty"`
	Stock  int     `json:"stock"`
}

// Product represents a catalog item with its sellable variants.
type Product struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Category    string           `json:"category"`
	Variants    []ProductVariant `json:"variants"`
	InStock     bool             `json:"in_stock"`
	Rating      float64          `json:"rating"`
	ReviewCount int              `json:"review_count"`
	BestSeller  bool             `json:"best_seller,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// Variant looks up a variant by its weight label.
func (p *Product) Variant(weight string) (ProductVariant, bool) {
	for _, v := range p.Variants {
		if v.Weight == weight {
			return v, true
		}
	}
	return ProductVariant{}, false
}

// ComboItemRef points at one variant of another product included in a combo.
type ComboItemRef struct {
	ProductID     string `json:"product_id"`
	VariantWeight string `json:"variant_weight"`
}

// ComboProduct is a presentation and pricing bundle over existing product
// variants. It does not own the referenced products.
type ComboProduct struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Image         string         `json:"image"`
	Products      []ComboItemRef `json:"products"`
	OriginalPrice float64        `json:"original_price"`
	ComboPrice    float64        `json:"combo_price"`
	Stock         int            `json:"stock"`
	Active        bool           `json:"active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// Review is a purchase-gated product review.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UpsertProductRequest is the admin payload for creating or editing a product.
type UpsertProductRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	Category    string           `json:"category" validate:"required"`
	Variants    []ProductVariant `json:"variants" validate:"required,min=1,dive"`
	BestSeller  bool             `json:"best_seller"`
}

// UpsertComboRequest is the admin payload for creating or editing a combo.
type UpsertComboRequest struct {
	Name          string         `json:"name" validate:"required"`
	Description   string         `json:"description"`
	Image         string         `json:"image"`
	Products      []ComboItemRef `json:"products" validate:"required,min=1"`
	OriginalPrice float64        `json:"original_price" validate:"required,gt=0"`
	ComboPrice    float64        `json:"combo_price" validate:"required,gt=0"`
	Stock         int            `json:"stock" validate:"gte=0"`
	Active        bool           `json:"active"`
}

// ReviewRequest is the payload for posting a product review.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment,omitempty"`
}
