package services

import (
	"context"

	"digital-store-bot/internal/models"
)

// CatalogService - витрина: читающие запросы по категориям и товарам
type CatalogService struct {
	store      TxRunner
	products   ProductStore
	categories CategoryStore
}

// NewCatalogService создает новый сервис витрины
func NewCatalogService(store TxRunner, products ProductStore, categories CategoryStore) *CatalogService {
	return &CatalogService{
		store:      store,
		products:   products,
		categories: categories,
	}
}

// Categories возвращает активные категории в порядке сортировки
func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.ListActive(ctx, s.store.DB())
}

// Products возвращает доступные товары категории
func (s *CatalogService) Products(ctx context.Context, categoryID int64, limit, offset int) ([]models.Product, error) {
	return s.products.ListAvailableByCategory(ctx, s.store.DB(), categoryID, limit, offset)
}
