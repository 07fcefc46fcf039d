package service

import (
	"context"
	"fmt"
	"strings"

	"grocerytracker/internal/events"
	"grocerytracker/internal/models"
)

func (s *PriceService) Stores(ctx context.Context) ([]models.Store, error) {
	return cached(ctx, s, keyStores, s.repo.GetStores)
}

func (s *PriceService) AddStore(ctx context.Context, store *models.Store) error {
	if err := s.repo.CreateStore(ctx, store); err != nil {
		return err
	}
	s.invalidate(ctx, keyStores, keyComparison, keySummary)
	s.publish(events.EventCatalogChanged, events.CatalogPayload{Kind: "store", ID: store.ID, Name: store.Name})
	return nil
}

func (s *PriceService) Categories(ctx context.Context) ([]models.Category, error) {
	return cached(ctx, s, keyCategories, s.repo.GetCategories)
}

func (s *PriceService) AddCategory(ctx context.Context, category *models.Category) error {
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return err
	}
	s.invalidate(ctx, keyCategories)
	s.publish(events.EventCatalogChanged, events.CatalogPayload{Kind: "category", ID: category.ID, Name: category.Name})
	return nil
}

func (s *PriceService) Items(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	key := fmt.Sprintf("%s%s|%s|%s", keyItems,
		strings.ToLower(strings.TrimSpace(filter.Category)),
		strings.ToLower(strings.TrimSpace(filter.Query)),
		strings.TrimSpace(filter.Store))
	return cached(ctx, s, key, func(ctx context.Context) ([]models.Item, error) {
		return s.repo.GetItems(ctx, filter)
	})
}

func (s *PriceService) AddItem(ctx context.Context, item *models.Item) error {
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return err
	}
	s.invalidate(ctx, keyItems, keySummary)
	s.publish(events.EventCatalogChanged, events.CatalogPayload{Kind: "item", ID: item.ID, Name: item.Name})
	return nil
}
