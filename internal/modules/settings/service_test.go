package settings

import (
	"context"
	"testing"

	"pickle-storefront/internal/models"
	"pickle-storefront/internal/store"
)

type fakeRepo struct {
	saved *models.StoreSettings
}

func (f *fakeRepo) Get(ctx context.Context) (*models.StoreSettings, error) {
	if f.saved == nil {
		return nil, models.ErrNotFound
	}
	cp := *f.saved
	return &cp, nil
}

func (f *fakeRepo) Save(ctx context.Context, s *models.StoreSettings) error {
	cp := *s
	f.saved = &cp
	return nil
}

func TestUpdateRefreshesCache(t *testing.T) {
	repo := &fakeRepo{}
	state := store.New(nil)
	svc := NewService(repo, state)
	ctx := context.Background()

	want := models.StoreSettings{
		UPIID:           "store@upi",
		BusinessAddress: models.BusinessAddress{Name: "Amma's Pickles"},
		EnableCOD:       true,
	}
	if _, err := svc.Update(ctx, want); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if got := state.Settings(); got.UPIID != "store@upi" || !got.EnableCOD {
		t.Errorf("cache = %+v; want the saved settings", got)
	}
	if repo.saved == nil || repo.saved.BusinessAddress.Name != "Amma's Pickles" {
		t.Errorf("settings not persisted: %+v", repo.saved)
	}
}

func TestLoadPrimesCacheAndToleratesFreshInstall(t *testing.T) {
	repo := &fakeRepo{}
	state := store.New(nil)
	svc := NewService(repo, state)
	ctx := context.Background()

	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Load on fresh install: %v", err)
	}

	repo.saved = &models.StoreSettings{UPIID: "store@upi", EnableBankTransfer: true}
	if err := svc.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := state.Settings(); got.UPIID != "store@upi" || !got.EnableBankTransfer {
		t.Errorf("cache = %+v; want the stored settings", got)
	}
}
