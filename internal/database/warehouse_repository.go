package database

import (
	"context"

	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// WarehouseRepository представляет журнал складских действий.
// Журнал только пополняется; записи не редактируются и не удаляются.
type WarehouseRepository struct {
	logger *zap.Logger
}

// NewWarehouseRepository создает новый репозиторий складского журнала
func NewWarehouseRepository(logger *zap.Logger) *WarehouseRepository {
	return &WarehouseRepository{logger: logger}
}

// Create добавляет запись в журнал
func (r *WarehouseRepository) Create(ctx context.Context, q sqlx.ExtContext, entry *models.WarehouseLog) error {
	query := `
        INSERT INTO warehouse_logs (product_id, admin_id, admin_username, recipient_id,
                                    recipient_username, action, quantity, delivered_content, description)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	_, err := q.ExecContext(ctx, query,
		entry.ProductID, entry.AdminID, entry.AdminUsername,
		entry.RecipientID, entry.RecipientUsername,
		entry.Action, entry.Quantity, entry.DeliveredContent, entry.Description,
	)
	if err != nil {
		r.logger.Error("Ошибка при записи в журнал склада",
			zap.Error(err),
			zap.String("action", string(entry.Action)),
			zap.Int64("product_id", entry.ProductID),
		)
		return mapError(err)
	}

	return nil
}

// ListRecent возвращает последние записи журнала для просмотра администратором
func (r *WarehouseRepository) ListRecent(ctx context.Context, q sqlx.ExtContext, limit int) ([]models.WarehouseLog, error) {
	var entries []models.WarehouseLog
	query := `
        SELECT id, product_id, admin_id, COALESCE(admin_username, '') AS admin_username,
               recipient_id, COALESCE(recipient_username, '') AS recipient_username,
               action, quantity, COALESCE(delivered_content, '') AS delivered_content,
               COALESCE(description, '') AS description, created_at
        FROM warehouse_logs
        ORDER BY created_at DESC
        LIMIT $1
    `

	err := sqlx.SelectContext(ctx, q, &entries, query, limit)
	if err != nil {
		r.logger.Error("Ошибка при чтении журнала склада", zap.Error(err))
		return nil, mapError(err)
	}

	return entries, nil
}
