package settings

import (
	"context"
	"fmt"

	"pickle-storefront/internal/models"
	"pickle-storefront/internal/store"
)

type ServiceInterface interface {
	Get(ctx context.Context) (models.StoreSettings, error)
	Update(ctx context.Context, s models.StoreSettings) (models.StoreSettings, error)
	// Load primes the in-memory settings cache at startup.
	Load(ctx context.Context) error
}

type service struct {
	repo  RepositoryInterface
	state *store.Store
}

func NewService(repo RepositoryInterface, state *store.Store) ServiceInterface {
	return &service{repo: repo, state: state}
}

func (s *service) Get(ctx context.Context) (models.StoreSettings, error) {
	return s.state.Settings(), nil
}

// Update persists first, then refreshes the cache that checkout and payment
// links read from.
func (s *service) Update(ctx context.Context, settings models.StoreSettings) (models.StoreSettings, error) {
	if err := s.repo.Save(ctx, &settings); err != nil {
		return models.StoreSettings{}, fmt.Errorf("service.Update: %w", err)
	}
	s.state.SetSettings(settings)
	return settings, nil
}

func (s *service) Load(ctx context.Context) error {
	settings, err := s.repo.Get(ctx)
	if err != nil {
		if err == models.ErrNotFound {
			// Fresh install: keep zero-value settings until the admin saves.
			return nil
		}
		return fmt.Errorf("service.Load: %w", err)
	}
	s.state.SetSettings(*settings)
	return nil
}
