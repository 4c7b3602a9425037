package app

import (
	"digital-store-bot/internal/bot"
	"digital-store-bot/internal/config"
	"digital-store-bot/internal/database"
	"digital-store-bot/internal/logger"
	"digital-store-bot/internal/services"
	"digital-store-bot/internal/telegram"

	"go.uber.org/zap"
)

// Run собирает приложение и запускает цикл обработки обновлений
func Run(configPath string) error {
	// Загружаем конфигурацию
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return err
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logger)
	if err != nil {
		zap.L().Error("не удалось создать логгер", zap.Error(err))
		return err
	}

	// Подключаемся к базе данных
	store, err := database.NewConnection(cfg.Database, log)
	if err != nil {
		log.Error("не удалось подключиться к базе данных", zap.Error(err))
		return err
	}
	defer store.Close()

	// Инициализируем репозитории
	userRepo := database.NewUserRepository(log)
	productRepo := database.NewProductRepository(log)
	orderRepo := database.NewOrderRepository(log)
	categoryRepo := database.NewCategoryRepository(log)
	referralRepo := database.NewReferralRepository(log)
	warehouseRepo := database.NewWarehouseRepository(log)

	// Инициализируем доменные сервисы
	userService := services.NewUserService(store, userRepo, log)
	stockService := services.NewStockService(store, productRepo, log)
	referralService := services.NewReferralService(userRepo, referralRepo, cfg.Referral.RewardPercent, log)
	orderService := services.NewOrderService(store, userRepo, productRepo, orderRepo, stockService, referralService, log)
	warehouseService := services.NewWarehouseService(store, productRepo, categoryRepo, userRepo, warehouseRepo, log)
	catalogService := services.NewCatalogService(store, productRepo, categoryRepo)

	// Инициализируем Telegram клиент
	tgClient, err := telegram.NewClient(cfg.Telegram.Token)
	if err != nil {
		log.Error("ошибка создания Telegram клиента", zap.Error(err))
		return err
	}

	// Запускаем бота
	botService := bot.NewService(tgClient, log, cfg, userService, orderService, warehouseService, catalogService)
	if err := botService.Start(); err != nil {
		log.Error("ошибка запуска бота", zap.Error(err))
		return err
	}

	return nil
}
