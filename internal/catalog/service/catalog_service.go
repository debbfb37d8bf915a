package service

import (
	"context"

	"tablepos/internal/domain"
)

type Repository interface {
	FindByIDs(ctx context.Context, restaurantID int, ids []int) ([]domain.MenuItem, error)
}

type CatalogService struct {
	repo Repository
}

func NewCatalogService(repo Repository) *CatalogService {
	return &CatalogService{repo: repo}
}

// LookupItems returns the found items keyed by id. Missing ids are simply
// absent from the map.
func (s *CatalogService) LookupItems(ctx context.Context, restaurantID int, ids []int) (map[int]domain.MenuItem, error) {
	found, err := s.repo.FindByIDs(ctx, restaurantID, ids)
	if err != nil {
		return nil, err
	}

	items := make(map[int]domain.MenuItem, len(found))
	for _, m := range found {
		items[m.ID] = m
	}
	return items, nil
}

func (s *CatalogService) SearchItems(ctx context.Context, restaurantID int, ids []int) ([]domain.MenuItem, []int, error) {
	found, err := s.repo.FindByIDs(ctx, restaurantID, ids)
	if err != nil {
		return nil, nil, err
	}

	foundSet := make(map[int]struct{}, len(found))
	for _, m := range found {
		foundSet[m.ID] = struct{}{}
	}

	var notFoundIDs []int
	for _, id := range ids {
		if _, ok := foundSet[id]; !ok {
			notFoundIDs = append(notFoundIDs, id)
		}
	}

	return found, notFoundIDs, nil
}
