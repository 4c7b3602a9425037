package database

import (
	"context"

	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ReferralRepository представляет репозиторий реферальных начислений.
// Начисления только добавляются, изменение и удаление не предусмотрены.
type ReferralRepository struct {
	logger *zap.Logger
}

// NewReferralRepository создает новый репозиторий начислений
func NewReferralRepository(logger *zap.Logger) *ReferralRepository {
	return &ReferralRepository{logger: logger}
}

// Create записывает начисление рефереру
func (r *ReferralRepository) Create(ctx context.Context, q sqlx.ExtContext, accrual *models.ReferralAccrual) error {
	query := `
        INSERT INTO referral_accruals (user_id, order_id, reward_amount, reward_percent)
        VALUES ($1, $2, $3, $4)
    `

	_, err := q.ExecContext(ctx, query,
		accrual.UserID, accrual.OrderID, accrual.RewardAmount, accrual.RewardPercent,
	)
	if err != nil {
		r.logger.Error("Ошибка при записи реферального начисления",
			zap.Error(err),
			zap.Int64("user_id", accrual.UserID),
			zap.Int64("order_id", accrual.OrderID),
		)
		return mapError(err)
	}

	return nil
}

// ListByBeneficiary возвращает начисления реферера, свежие первыми
func (r *ReferralRepository) ListByBeneficiary(ctx context.Context, q sqlx.ExtContext, userID int64, limit, offset int) ([]models.ReferralAccrual, error) {
	var accruals []models.ReferralAccrual
	query := `
        SELECT id, user_id, order_id, reward_amount, reward_percent, created_at
        FROM referral_accruals
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2 OFFSET $3
    `

	err := sqlx.SelectContext(ctx, q, &accruals, query, userID, limit, offset)
	if err != nil {
		r.logger.Error("Ошибка при получении реферальных начислений",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return nil, mapError(err)
	}

	return accruals, nil
}

// SumByBeneficiary считает суммарные начисления реферера
func (r *ReferralRepository) SumByBeneficiary(ctx context.Context, q sqlx.ExtContext, userID int64) (float64, error) {
	var sum float64
	query := `SELECT COALESCE(SUM(reward_amount), 0) FROM referral_accruals WHERE user_id = $1`

	err := sqlx.GetContext(ctx, q, &sum, query, userID)
	if err != nil {
		r.logger.Error("Ошибка при подсчете реферальных начислений",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return 0, mapError(err)
	}

	return sum, nil
}
