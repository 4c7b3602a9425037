package bot

import (
	"fmt"

	"digital-store-bot/internal/models"
	"digital-store-bot/internal/utils"

	"go.uber.org/zap"
)

// Исходящие уведомления. Доставка или отмена уже зафиксированы в базе,
// поэтому сбой отправки не возвращается как ошибка - только логируется.

func (s *Service) notifyOrderDelivered(order *models.Order) {
	content := ""
	if order.DeliveredContent != nil {
		content = *order.DeliveredContent
	}

	text := fmt.Sprintf(
		"📦 *Заказ #%d доставлен!*\n\nВаш товар:\n`%s`",
		order.ID,
		utils.EscapeMarkdownV2(content),
	)

	if err := s.telegram.SendMarkdownMessage(order.UserID, text); err != nil {
		s.logger.Error("не удалось уведомить покупателя о доставке",
			zap.Error(err),
			zap.Int64("order_id", order.ID),
			zap.Int64("user_id", order.UserID),
		)
	}
}

func (s *Service) notifyOrderCancelled(order *models.Order) {
	text := fmt.Sprintf(
		"❌ Заказ #%d отменен. Средства возвращены на баланс.\nПричина: %s",
		order.ID,
		order.Notes,
	)

	if err := s.telegram.SendMessage(order.UserID, text); err != nil {
		s.logger.Error("не удалось уведомить покупателя об отмене",
			zap.Error(err),
			zap.Int64("order_id", order.ID),
			zap.Int64("user_id", order.UserID),
		)
	}
}

func (s *Service) notifyProductGiven(userID int64, content string) {
	text := fmt.Sprintf(
		"🎁 *Вам выдан товар!*\n\n`%s`",
		utils.EscapeMarkdownV2(content),
	)

	if err := s.telegram.SendMarkdownMessage(userID, text); err != nil {
		s.logger.Error("не удалось уведомить получателя о выдаче товара",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}
}
