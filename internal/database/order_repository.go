package database

import (
	"context"
	"database/sql"
	"errors"

	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// OrderRepository представляет репозиторий для работы с заказами.
// Статус меняется только условными UPDATE с проверкой затронутых строк:
// проигравший из двух конкурентных переходов получает ноль строк.
type OrderRepository struct {
	logger *zap.Logger
}

// NewOrderRepository создает новый репозиторий заказов
func NewOrderRepository(logger *zap.Logger) *OrderRepository {
	return &OrderRepository{logger: logger}
}

const orderColumns = `id, user_id, product_id, quantity, unit_price, total_price,
	status, delivered_content, delivered_at, COALESCE(notes, '') AS notes, created_at, updated_at`

func (r *OrderRepository) GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Order, error) {
	var order models.Order
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	err := sqlx.GetContext(ctx, q, &order, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Ошибка при получении заказа",
			zap.Error(err),
			zap.Int64("order_id", id),
		)
		return nil, mapError(err)
	}

	return &order, nil
}

// ListByUser возвращает заказы пользователя, свежие первыми
func (r *OrderRepository) ListByUser(ctx context.Context, q sqlx.ExtContext, userID int64, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	query := `
        SELECT ` + orderColumns + `
        FROM orders
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `

	err := sqlx.SelectContext(ctx, q, &orders, query, userID, limit, offset)
	if err != nil {
		r.logger.Error("Ошибка при получении заказов пользователя",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return nil, mapError(err)
	}

	return orders, nil
}

// Create вставляет заказ в статусе pending и возвращает его ID.
// Цены - снимок на момент создания, дальше они не пересчитываются.
func (r *OrderRepository) Create(ctx context.Context, q sqlx.ExtContext, order *models.Order) (int64, error) {
	query := `
        INSERT INTO orders (user_id, product_id, quantity, unit_price, total_price, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `

	var id int64
	err := sqlx.GetContext(ctx, q, &id, query,
		order.UserID, order.ProductID, order.Quantity,
		order.UnitPrice, order.TotalPrice, order.Status,
	)
	if err != nil {
		r.logger.Error("Ошибка при создании заказа",
			zap.Error(err),
			zap.Int64("user_id", order.UserID),
			zap.Int64("product_id", order.ProductID),
		)
		return 0, mapError(err)
	}

	return id, nil
}

// MarkPaid переводит pending -> paid.
// Возвращает false, если заказ уже не в статусе pending.
func (r *OrderRepository) MarkPaid(ctx context.Context, q sqlx.ExtContext, id int64) (bool, error) {
	query := `
        UPDATE orders
        SET status = $2, updated_at = NOW()
        WHERE id = $1 AND status = $3
    `

	result, err := q.ExecContext(ctx, query, id, models.OrderStatusPaid, models.OrderStatusPending)
	if err != nil {
		r.logger.Error("Ошибка при отметке заказа оплаченным",
			zap.Error(err),
			zap.Int64("order_id", id),
		)
		return false, mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}

	return rows > 0, nil
}

// MarkDelivered переводит paid -> delivered и записывает выданный контент
func (r *OrderRepository) MarkDelivered(ctx context.Context, q sqlx.ExtContext, id int64, content string) (bool, error) {
	query := `
        UPDATE orders
        SET status = $2, delivered_content = $3, delivered_at = NOW(), updated_at = NOW()
        WHERE id = $1 AND status = $4
    `

	result, err := q.ExecContext(ctx, query, id, models.OrderStatusDelivered, content, models.OrderStatusPaid)
	if err != nil {
		r.logger.Error("Ошибка при отметке заказа доставленным",
			zap.Error(err),
			zap.Int64("order_id", id),
		)
		return false, mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}

	return rows > 0, nil
}

// MarkCancelled переводит pending|paid -> cancelled с причиной отмены.
// Из терминальных статусов перехода нет - условие не совпадет.
func (r *OrderRepository) MarkCancelled(ctx context.Context, q sqlx.ExtContext, id int64, reason string) (bool, error) {
	query := `
        UPDATE orders
        SET status = $2, notes = $3, updated_at = NOW()
        WHERE id = $1 AND status IN ($4, $5)
    `

	result, err := q.ExecContext(ctx, query, id,
		models.OrderStatusCancelled, reason,
		models.OrderStatusPending, models.OrderStatusPaid,
	)
	if err != nil {
		r.logger.Error("Ошибка при отмене заказа",
			zap.Error(err),
			zap.Int64("order_id", id),
		)
		return false, mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}

	return rows > 0, nil
}
