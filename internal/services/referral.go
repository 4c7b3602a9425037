package services

import (
	"context"
	"errors"

	"digital-store-bot/internal/database"
	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ReferralService начисляет награду рефереру при оплате заказа.
// Начисление выполняется в транзакции перехода pending -> paid,
// поэтому оплата и награда либо фиксируются вместе, либо никак.
type ReferralService struct {
	users         UserStore
	accruals      AccrualStore
	rewardPercent float64
	logger        *zap.Logger
}

// NewReferralService создает новый реферальный сервис
func NewReferralService(users UserStore, accruals AccrualStore, rewardPercent float64, logger *zap.Logger) *ReferralService {
	return &ReferralService{
		users:         users,
		accruals:      accruals,
		rewardPercent: rewardPercent,
		logger:        logger,
	}
}

// Accrue начисляет награду рефереру покупателя в рамках переданной транзакции.
// Покупатель без реферера или с исчезнувшим реферером - no-op.
func (s *ReferralService) Accrue(ctx context.Context, q sqlx.ExtContext, order *models.Order) error {
	buyer, err := s.users.GetByID(ctx, q, order.UserID)
	if err != nil {
		return err
	}

	if buyer.ReferrerID == nil {
		return nil
	}

	referrer, err := s.users.GetByID(ctx, q, *buyer.ReferrerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.logger.Warn("Реферер покупателя не найден, начисление пропущено",
				zap.Int64("buyer_id", buyer.ID),
				zap.Int64("referrer_id", *buyer.ReferrerID),
			)
			return nil
		}
		return err
	}

	reward := roundMoney(order.TotalPrice * s.rewardPercent / 100)
	if reward <= 0 {
		return nil
	}

	if err := s.users.AddReferralEarnings(ctx, q, referrer.ID, reward); err != nil {
		return err
	}

	if err := s.accruals.Create(ctx, q, &models.ReferralAccrual{
		UserID:        referrer.ID,
		OrderID:       order.ID,
		RewardAmount:  reward,
		RewardPercent: s.rewardPercent,
	}); err != nil {
		return err
	}

	s.logger.Info("начислена реферальная награда",
		zap.Int64("referrer_id", referrer.ID),
		zap.Int64("order_id", order.ID),
		zap.Float64("reward", reward),
	)

	return nil
}
