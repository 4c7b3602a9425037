package services

import (
	"context"
	"errors"

	"digital-store-bot/internal/database"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// StockService отвечает за остатки: проверка доступности, резерв,
// возврат и счетчик продаж. Каждому успешному Reserve соответствует
// ровно один Release (отмена или откат) либо один IncrementSold
// (доставка); за парность отвечает сервис заказов.
type StockService struct {
	store    TxRunner
	products ProductStore
	logger   *zap.Logger
}

// NewStockService создает новый сервис остатков
func NewStockService(store TxRunner, products ProductStore, logger *zap.Logger) *StockService {
	return &StockService{
		store:    store,
		products: products,
		logger:   logger,
	}
}

// CheckAvailability сообщает, можно ли продать qty единиц товара,
// и причину отказа, если нельзя
func (s *StockService) CheckAvailability(ctx context.Context, productID int64, qty int) (bool, string, error) {
	product, err := s.products.GetByID(ctx, s.store.DB(), productID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return false, "товар не найден", nil
		}
		return false, "", err
	}

	if !product.IsActive {
		return false, "товар снят с продажи", nil
	}
	if !product.HasStock(qty) {
		return false, "товара нет в наличии", nil
	}

	return true, "", nil
}

// Reserve атомарно списывает qty со склада в рамках переданной транзакции.
// Для безлимитного товара ничего не меняет и возвращает true.
func (s *StockService) Reserve(ctx context.Context, q sqlx.ExtContext, productID int64, qty int) (bool, error) {
	ok, err := s.products.Reserve(ctx, q, productID, qty)
	if err != nil {
		return false, err
	}

	if !ok {
		s.logger.Info("Резерв не прошел: остатка не хватило",
			zap.Int64("product_id", productID),
			zap.Int("quantity", qty),
		)
	}

	return ok, nil
}

// Release возвращает qty на склад
func (s *StockService) Release(ctx context.Context, q sqlx.ExtContext, productID int64, qty int) error {
	return s.products.Release(ctx, q, productID, qty)
}

// IncrementSold увеличивает счетчик проданного
func (s *StockService) IncrementSold(ctx context.Context, q sqlx.ExtContext, productID int64, qty int) error {
	return s.products.IncrementSold(ctx, q, productID, qty)
}
