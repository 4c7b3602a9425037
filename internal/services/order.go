package services

import (
	"context"
	"errors"
	"fmt"

	"digital-store-bot/internal/database"
	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// StockKeeper - операции над остатками, нужные жизненному циклу заказа
type StockKeeper interface {
	Reserve(ctx context.Context, q sqlx.ExtContext, productID int64, qty int) (bool, error)
	Release(ctx context.Context, q sqlx.ExtContext, productID int64, qty int) error
	IncrementSold(ctx context.Context, q sqlx.ExtContext, productID int64, qty int) error
}

// Accruer начисляет реферальную награду при оплате заказа
type Accruer interface {
	Accrue(ctx context.Context, q sqlx.ExtContext, order *models.Order) error
}

// OrderService ведет заказ по конечному автомату
// pending -> paid -> delivered с отменой из pending и paid.
// Каждый переход - одна транзакция; конкурентные переходы сериализуются
// через условный UPDATE статуса, проигравший получает ErrIllegalTransition.
type OrderService struct {
	store    TxRunner
	users    UserStore
	products ProductStore
	orders   OrderStore
	stock    StockKeeper
	referral Accruer
	logger   *zap.Logger
}

// NewOrderService создает новый сервис заказов
func NewOrderService(store TxRunner, users UserStore, products ProductStore, orders OrderStore, stock StockKeeper, referral Accruer, logger *zap.Logger) *OrderService {
	return &OrderService{
		store:    store,
		users:    users,
		products: products,
		orders:   orders,
		stock:    stock,
		referral: referral,
		logger:   logger,
	}
}

// CreateOrder создает заказ в статусе pending: резервирует остаток,
// списывает баланс по снимку цены и обновляет счетчики покупателя.
// Всё - в одной транзакции; любая ошибка после резерва откатывает его.
func (s *OrderService) CreateOrder(ctx context.Context, userID, productID int64, qty int) (*models.Order, error) {
	if qty < 1 {
		return nil, validationErr("количество должно быть не меньше 1")
	}

	user, err := s.users.GetByID(ctx, s.store.DB(), userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	product, err := s.products.GetByID(ctx, s.store.DB(), productID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if !product.IsActive || !product.HasStock(qty) {
		return nil, ErrUnavailable
	}

	total := roundMoney(product.Price * float64(qty))
	if user.Balance < total {
		return nil, ErrInsufficientFunds
	}

	var orderID int64
	err = s.store.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		reserved, err := s.stock.Reserve(ctx, tx, productID, qty)
		if err != nil {
			return err
		}
		if !reserved {
			return ErrReservationFailed
		}

		debited, err := s.users.AdjustBalance(ctx, tx, userID, -total)
		if err != nil {
			return err
		}
		if !debited {
			return ErrInsufficientFunds
		}

		orderID, err = s.orders.Create(ctx, tx, &models.Order{
			UserID:     userID,
			ProductID:  productID,
			Quantity:   qty,
			UnitPrice:  product.Price,
			TotalPrice: total,
			Status:     models.OrderStatusPending,
		})
		if err != nil {
			return err
		}

		return s.users.AddOrderStats(ctx, tx, userID, total)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("создан новый заказ",
		zap.Int64("order_id", orderID),
		zap.Int64("user_id", userID),
		zap.Int64("product_id", productID),
		zap.Float64("total_price", total),
	)

	return s.getOrder(ctx, orderID)
}

// ProcessPayment переводит заказ pending -> paid и начисляет
// реферальную награду в той же транзакции: оплата либо проходит
// целиком вместе с начислением, либо не проходит вовсе.
func (s *OrderService) ProcessPayment(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		paid, err := s.orders.MarkPaid(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if !paid {
			return ErrIllegalTransition
		}

		return s.referral.Accrue(ctx, tx, order)
	})
	if err != nil {
		if errors.Is(err, ErrIllegalTransition) {
			s.logger.Warn("Попытка оплатить заказ не в статусе pending",
				zap.Int64("order_id", orderID),
				zap.String("current_status", string(order.Status)),
			)
		}
		return nil, err
	}

	s.logger.Info("заказ оплачен", zap.Int64("order_id", orderID))

	return s.getOrder(ctx, orderID)
}

// Cancel отменяет заказ из pending или paid: возвращает остаток на склад
// и полную стоимость на баланс, фиксирует причину. Пожизненные счетчики
// покупателя не уменьшаются. Реферальное начисление оплаченного заказа
// не откатывается - оно часть снимка оплаты.
func (s *OrderService) Cancel(ctx context.Context, orderID int64, reason string) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		cancelled, err := s.orders.MarkCancelled(ctx, tx, orderID, reason)
		if err != nil {
			return err
		}
		if !cancelled {
			return ErrIllegalTransition
		}

		if err := s.stock.Release(ctx, tx, order.ProductID, order.Quantity); err != nil {
			return err
		}

		refunded, err := s.users.AdjustBalance(ctx, tx, order.UserID, order.TotalPrice)
		if err != nil {
			return err
		}
		if !refunded {
			return fmt.Errorf("не удалось вернуть средства пользователю %d", order.UserID)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("заказ отменен",
		zap.Int64("order_id", orderID),
		zap.String("reason", reason),
	)

	return s.getOrder(ctx, orderID)
}

// Deliver переводит заказ paid -> delivered: записывает выданный контент,
// время доставки и увеличивает счетчик продаж товара
func (s *OrderService) Deliver(ctx context.Context, orderID int64, content string, adminID int64) (*models.Order, error) {
	if content == "" {
		return nil, validationErr("контент для доставки не может быть пустым")
	}

	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	err = s.store.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		delivered, err := s.orders.MarkDelivered(ctx, tx, orderID, content)
		if err != nil {
			return err
		}
		if !delivered {
			return ErrIllegalTransition
		}

		return s.stock.IncrementSold(ctx, tx, order.ProductID, order.Quantity)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("заказ доставлен",
		zap.Int64("order_id", orderID),
		zap.Int64("admin_id", adminID),
	)

	return s.getOrder(ctx, orderID)
}

// GetUserOrder возвращает заказ, только если он принадлежит пользователю.
// Чужой заказ неотличим от несуществующего: идентификаторы заказов
// приходят из данных кнопок и могут быть подделаны.
func (s *OrderService) GetUserOrder(ctx context.Context, userID, orderID int64) (*models.Order, error) {
	order, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		s.logger.Warn("Попытка обратиться к чужому заказу",
			zap.Int64("order_id", orderID),
			zap.Int64("owner_id", order.UserID),
			zap.Int64("caller_id", userID),
		)
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListUserOrders возвращает историю заказов пользователя
func (s *OrderService) ListUserOrders(ctx context.Context, userID int64, limit, offset int) ([]models.Order, error) {
	return s.orders.ListByUser(ctx, s.store.DB(), userID, limit, offset)
}

func (s *OrderService) getOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, s.store.DB(), orderID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}
