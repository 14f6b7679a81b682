package catalog

import (
	"context"
	"testing"
	"time"

	"pickle-storefront/internal/models"
)

type fakeRepo struct {
	products map[string]models.Product
	combos   map[string]models.ComboProduct
	reviews  map[string][]models.Review
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		products: make(map[string]models.Product),
		combos:   make(map[string]models.ComboProduct),
		reviews:  make(map[string][]models.Review),
	}
}

func (f *fakeRepo) ListProducts(ctx context.Context, category string) ([]models.Product, error) {
	var out []models.Product
	for _, p := range f.products {
		if category == "" || p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindProduct(ctx context.Context, productID string) (*models.Product, error) {
	p, ok := f.products[productID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (f *fakeRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	f.products[p.ID] = *p
	return nil
}

func (f *fakeRepo) UpdateProduct(ctx context.Context, p *models.Product) error {
	if _, ok := f.products[p.ID]; !ok {
		return models.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	f.products[p.ID] = *p
	return nil
}

func (f *fakeRepo) DeleteProduct(ctx context.Context, productID string) error {
	if _, ok := f.products[productID]; !ok {
		return models.ErrNotFound
	}
	delete(f.products, productID)
	return nil
}

func (f *fakeRepo) ListCombos(ctx context.Context, activeOnly bool) ([]models.ComboProduct, error) {
	var out []models.ComboProduct
	for _, cb := range f.combos {
		if !activeOnly || cb.Active {
			out = append(out, cb)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindCombo(ctx context.Context, comboID string) (*models.ComboProduct, error) {
	cb, ok := f.combos[comboID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := cb
	return &cp, nil
}

func (f *fakeRepo) CreateCombo(ctx context.Context, cb *models.ComboProduct) error {
	cb.CreatedAt = time.Now()
	cb.UpdatedAt = cb.CreatedAt
	f.combos[cb.ID] = *cb
	return nil
}

func (f *fakeRepo) UpdateCombo(ctx context.Context, cb *models.ComboProduct) error {
	if _, ok := f.combos[cb.ID]; !ok {
		return models.ErrNotFound
	}
	f.combos[cb.ID] = *cb
	return nil
}

func (f *fakeRepo) DeleteCombo(ctx context.Context, comboID string) error {
	if _, ok := f.combos[comboID]; !ok {
		return models.ErrNotFound
	}
	delete(f.combos, comboID)
	return nil
}

func (f *fakeRepo) ListReviews(ctx context.Context, productID string) ([]models.Review, error) {
	return append([]models.Review{}, f.reviews[productID]...), nil
}

func (f *fakeRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	rv.CreatedAt = time.Now()
	f.reviews[rv.ProductID] = append(f.reviews[rv.ProductID], *rv)
	return nil
}

func (f *fakeRepo) RefreshRating(ctx context.Context, productID string) error {
	p, ok := f.products[productID]
	if !ok {
		return nil
	}
	reviews := f.reviews[productID]
	p.ReviewCount = len(reviews)
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
	}
	if len(reviews) > 0 {
		p.Rating = float64(sum) / float64(len(reviews))
	} else {
		p.Rating = 0
	}
	f.products[productID] = p
	return nil
}

type fakePurchases struct {
	delivered map[string]bool // userID|productID
}

func (f *fakePurchases) HasDeliveredOrderWithProduct(ctx context.Context, userID, productID string) (bool, error) {
	return f.delivered[userID+"|"+productID], nil
}

type fakeUsers struct{}

func (fakeUsers) FindUser(ctx context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID, Name: "Asha", Email: "asha@example.com"}, nil
}

func newTestService() (ServiceInterface, *fakeRepo, *fakePurchases) {
	repo := newFakeRepo()
	purchases := &fakePurchases{delivered: make(map[string]bool)}
	return NewService(repo, purchases, fakeUsers{}), repo, purchases
}

func productRequest() models.UpsertProductRequest {
	return models.UpsertProductRequest{
		Name:     "Mango Avakaya",
		Category: "veg-pickles",
		Variants: []models.ProductVariant{
			{Weight: "250g", Price: 149, Stock: 50},
			{Weight: "500g", Price: 299, Stock: 0},
		},
	}
}

func TestCreateProductDerivesStockFlag(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, productRequest())
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	if p.ID == "" {
		t.Errorf("product id not assigned")
	}
	if !p.InStock {
		t.Errorf("InStock = false; a variant has stock")
	}

	req := productRequest()
	req.Variants = []models.ProductVariant{{Weight: "250g", Price: 149, Stock: 0}}
	updated, err := svc.UpdateProduct(ctx, p.ID, req)
	if err != nil {
		t.Fatalf("UpdateProduct: %v", err)
	}
	if updated.InStock {
		t.Errorf("InStock = true; all variants are out of stock")
	}
}

func TestListProductsFiltersByCategory(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	svc.CreateProduct(ctx, productRequest())
	other := productRequest()
	other.Name = "Chicken Pickle"
	other.Category = "non-veg-pickles"
	svc.CreateProduct(ctx, other)

	veg, err := svc.ListProducts(ctx, "veg-pickles")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(veg) != 1 || veg[0].Category != "veg-pickles" {
		t.Errorf("veg = %v; want only the veg pickle", veg)
	}

	all, _ := svc.ListProducts(ctx, "")
	if len(all) != 2 {
		t.Errorf("all = %d products; want 2", len(all))
	}
}

func TestCreateComboValidatesReferences(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	p, _ := svc.CreateProduct(ctx, productRequest())

	req := models.UpsertComboRequest{
		Name:          "Starter Pack",
		Products:      []models.ComboItemRef{{ProductID: p.ID, VariantWeight: "1kg"}},
		OriginalPrice: 448,
		ComboPrice:    399,
		Stock:         10,
		Active:        true,
	}
	if _, err := svc.CreateCombo(ctx, req); err != models.ErrVariantUnknown {
		t.Errorf("err = %v; want ErrVariantUnknown for a missing weight", err)
	}

	req.Products = []models.ComboItemRef{{ProductID: "missing", VariantWeight: "250g"}}
	if _, err := svc.CreateCombo(ctx, req); err != models.ErrNotFound {
		t.Errorf("err = %v; want ErrNotFound for a missing product", err)
	}

	req.Products = []models.ComboItemRef{{ProductID: p.ID, VariantWeight: "250g"}}
	cb, err := svc.CreateCombo(ctx, req)
	if err != nil {
		t.Fatalf("CreateCombo: %v", err)
	}
	if !cb.Active || cb.ComboPrice != 399 {
		t.Errorf("combo = %+v; want active at 399", cb)
	}
}

func TestListCombosHidesInactiveFromPublic(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	p, _ := svc.CreateProduct(ctx, productRequest())

	ref := []models.ComboItemRef{{ProductID: p.ID, VariantWeight: "250g"}}
	svc.CreateCombo(ctx, models.UpsertComboRequest{Name: "Live", Products: ref, OriginalPrice: 300, ComboPrice: 250, Active: true})
	svc.CreateCombo(ctx, models.UpsertComboRequest{Name: "Draft", Products: ref, OriginalPrice: 300, ComboPrice: 250, Active: false})

	public, _ := svc.ListCombos(ctx, false)
	if len(public) != 1 || public[0].Name != "Live" {
		t.Errorf("public = %v; want only the active combo", public)
	}
	admin, _ := svc.ListCombos(ctx, true)
	if len(admin) != 2 {
		t.Errorf("admin sees %d combos; want 2", len(admin))
	}
	if len(repo.combos) != 2 {
		t.Errorf("stored %d combos; want 2", len(repo.combos))
	}
}

func TestAddReviewRequiresDeliveredPurchase(t *testing.T) {
	svc, repo, purchases := newTestService()
	ctx := context.Background()
	p, _ := svc.CreateProduct(ctx, productRequest())

	_, err := svc.AddReview(ctx, "u1", p.ID, models.ReviewRequest{Rating: 5, Comment: "Tangy!"})
	if err != models.ErrReviewNotAllowed {
		t.Fatalf("err = %v; want ErrReviewNotAllowed before delivery", err)
	}

	purchases.delivered["u1|"+p.ID] = true
	rv, err := svc.AddReview(ctx, "u1", p.ID, models.ReviewRequest{Rating: 5, Comment: "Tangy!"})
	if err != nil {
		t.Fatalf("AddReview: %v", err)
	}
	if rv.UserName != "Asha" {
		t.Errorf("UserName = %q; want the account name stamped on", rv.UserName)
	}

	stored := repo.products[p.ID]
	if stored.ReviewCount != 1 || stored.Rating != 5 {
		t.Errorf("rating/count = %v/%d; want 5/1 after refresh", stored.Rating, stored.ReviewCount)
	}
}

func TestAddReviewUnknownProduct(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.AddReview(context.Background(), "u1", "missing", models.ReviewRequest{Rating: 4})
	if err != models.ErrNotFound {
		t.Errorf("err = %v; want ErrNotFound", err)
	}
}
