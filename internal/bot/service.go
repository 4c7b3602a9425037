package bot

import (
	"digital-store-bot/internal/config"
	"digital-store-bot/internal/services"
	"digital-store-bot/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender - интерфейс для взаимодействия с Telegram API
type Sender interface {
	SendMessage(chatID int64, text string) error
	SendMarkdownMessage(chatID int64, text string) error
	SendMessageWithInlineKeyboard(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error
	Start() (chan telegram.Message, chan telegram.Callback, error)
}

// Service - основной сервис бота: принимает события чата, зовет
// доменные сервисы и рассылает исходящие уведомления.
// Ядро никогда не узнает об ошибках доставки уведомлений - они
// только логируются.
type Service struct {
	telegram  Sender
	logger    *zap.Logger
	cfg       *config.AppConfig
	users     *services.UserService
	orders    *services.OrderService
	warehouse *services.WarehouseService
	catalog   *services.CatalogService
}

// NewService создает новый сервис бота
func NewService(sender Sender, logger *zap.Logger, cfg *config.AppConfig, users *services.UserService, orders *services.OrderService, warehouse *services.WarehouseService, catalog *services.CatalogService) *Service {
	return &Service{
		telegram:  sender,
		logger:    logger,
		cfg:       cfg,
		users:     users,
		orders:    orders,
		warehouse: warehouse,
		catalog:   catalog,
	}
}

// Start - запускает обработку сообщений и callback-запросов
func (s *Service) Start() error {
	messages, callbacks, err := s.telegram.Start()
	if err != nil {
		s.logger.Error("ошибка при запуске бота", zap.Error(err))
		return err
	}

	// Callback-запросы обрабатываем в отдельной горутине
	go func() {
		for callback := range callbacks {
			s.logger.Info("получен callback-запрос",
				zap.String("data", callback.Data),
				zap.Int64("user_id", callback.UserID),
			)

			if err := s.HandleCallback(callback); err != nil {
				s.logger.Error("ошибка при обработке callback-запроса",
					zap.Error(err),
					zap.String("data", callback.Data),
					zap.Int64("user_id", callback.UserID),
				)
			}
		}
	}()

	for message := range messages {
		s.logger.Info("получено сообщение",
			zap.Int64("chat_id", message.ChatID),
			zap.String("text", message.Text),
		)

		if err := s.HandleMessage(message); err != nil {
			s.logger.Error("ошибка при обработке сообщения",
				zap.Error(err),
				zap.Int64("chat_id", message.ChatID),
			)
		}
	}

	return nil
}
