package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"digital-store-bot/internal/models"
	"digital-store-bot/internal/services"
	"digital-store-bot/internal/telegram"
	"digital-store-bot/internal/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const ordersPageSize = 5

// HandleMessage - основной обработчик входящих сообщений
func (s *Service) HandleMessage(msg telegram.Message) error {
	ctx := context.Background()

	switch {
	case strings.HasPrefix(msg.Text, "/start"):
		return s.handleStart(ctx, msg)
	case msg.Text == "/catalog":
		return s.handleCatalog(ctx, msg.ChatID)
	case msg.Text == "/balance":
		return s.handleBalance(ctx, msg.ChatID)
	case msg.Text == "/orders":
		return s.handleOrders(ctx, msg.ChatID)
	case strings.HasPrefix(msg.Text, "/deliver "):
		return s.handleAdminDeliver(ctx, msg)
	case strings.HasPrefix(msg.Text, "/give "):
		return s.handleAdminGive(ctx, msg)
	case strings.HasPrefix(msg.Text, "/cancel "):
		return s.handleAdminCancel(ctx, msg)
	}

	return s.telegram.SendMessage(msg.ChatID,
		"Команды: /catalog - каталог, /balance - баланс, /orders - мои заказы. Поддержка: "+s.cfg.Telegram.SupportHandle)
}

// HandleCallback обрабатывает нажатия на инлайн-кнопки
func (s *Service) HandleCallback(cb telegram.Callback) error {
	ctx := context.Background()

	action, arg, found := strings.Cut(cb.Data, ":")
	if !found {
		return nil
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil
	}

	switch action {
	case "cat":
		return s.handleCategory(ctx, cb.UserID, id)
	case "buy":
		return s.handleBuy(ctx, cb.UserID, id)
	case "confirm":
		return s.handleConfirm(ctx, cb.UserID, id)
	case "cancel":
		return s.handleUserCancel(ctx, cb.UserID, id)
	}

	return nil
}

// handleStart регистрирует пользователя и привязывает реферера,
// если в команде пришел чужой реферальный код
func (s *Service) handleStart(ctx context.Context, msg telegram.Message) error {
	user, err := s.users.GetOrCreate(ctx, msg.ChatID, services.Profile{
		Username:  msg.Username,
		FirstName: msg.FirstName,
		LastName:  msg.LastName,
		Language:  msg.Language,
	})
	if err != nil {
		s.logger.Error("ошибка при создании пользователя", zap.Error(err), zap.Int64("chat_id", msg.ChatID))
		return s.telegram.SendMessage(msg.ChatID, "Произошла ошибка. Попробуйте позже.")
	}

	parts := strings.Fields(msg.Text)
	if len(parts) > 1 {
		if err := s.users.SetReferrer(ctx, user.ID, parts[1]); err != nil {
			// Кривой или чужой код не мешает пользоваться ботом
			s.logger.Info("реферальный код не привязан",
				zap.Error(err),
				zap.Int64("user_id", user.ID),
				zap.String("code", parts[1]),
			)
		}
	}

	text := fmt.Sprintf(
		"👋 Добро пожаловать в магазин!\n\n"+
			"💰 Баланс: %s\n"+
			"🎁 Ваш реферальный код: %s\n\n"+
			"Каталог: /catalog",
		utils.FormatPrice(user.Balance),
		user.ReferralCode,
	)

	return s.telegram.SendMessage(msg.ChatID, text)
}

func (s *Service) handleCatalog(ctx context.Context, chatID int64) error {
	categories, err := s.catalog.Categories(ctx)
	if err != nil {
		s.logger.Error("ошибка при получении категорий", zap.Error(err))
		return s.telegram.SendMessage(chatID, "Произошла ошибка. Попробуйте позже.")
	}

	if len(categories) == 0 {
		return s.telegram.SendMessage(chatID, "Каталог пока пуст.")
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, category := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(category.Name, fmt.Sprintf("cat:%d", category.ID)),
		))
	}

	return s.telegram.SendMessageWithInlineKeyboard(chatID, "Выберите категорию:",
		tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (s *Service) handleCategory(ctx context.Context, chatID, categoryID int64) error {
	products, err := s.catalog.Products(ctx, categoryID, 10, 0)
	if err != nil {
		s.logger.Error("ошибка при получении товаров", zap.Error(err), zap.Int64("category_id", categoryID))
		return s.telegram.SendMessage(chatID, "Произошла ошибка. Попробуйте позже.")
	}

	if len(products) == 0 {
		return s.telegram.SendMessage(chatID, "В этой категории пока нет товаров.")
	}

	rows := [][]tgbotapi.InlineKeyboardButton{}
	for _, product := range products {
		label := fmt.Sprintf("%s - %s", product.Name, utils.FormatPrice(product.Price))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("buy:%d", product.ID)),
		))
	}

	return s.telegram.SendMessageWithInlineKeyboard(chatID, "Доступные товары:",
		tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func (s *Service) handleBalance(ctx context.Context, chatID int64) error {
	user, err := s.users.GetByID(ctx, chatID)
	if err != nil {
		return s.telegram.SendMessage(chatID, errorText(err))
	}

	text := fmt.Sprintf(
		"💰 Баланс: %s\n🛒 Покупок: %d\n💸 Потрачено: %s\n🎁 Реферальный доход: %s",
		utils.FormatPrice(user.Balance),
		user.TotalOrders,
		utils.FormatPrice(user.TotalSpent),
		utils.FormatPrice(user.ReferralEarnings),
	)

	return s.telegram.SendMessage(chatID, text)
}

func (s *Service) handleOrders(ctx context.Context, chatID int64) error {
	orders, err := s.orders.ListUserOrders(ctx, chatID, ordersPageSize, 0)
	if err != nil {
		s.logger.Error("ошибка при получении заказов", zap.Error(err), zap.Int64("user_id", chatID))
		return s.telegram.SendMessage(chatID, "Произошла ошибка. Попробуйте позже.")
	}

	if len(orders) == 0 {
		return s.telegram.SendMessage(chatID, "У вас пока нет заказов.")
	}

	var b strings.Builder
	b.WriteString("Ваши заказы:\n\n")
	for _, order := range orders {
		fmt.Fprintf(&b, "#%d - %s - %s\n",
			order.ID, utils.FormatPrice(order.TotalPrice), statusText(order.Status))
	}

	return s.telegram.SendMessage(chatID, b.String())
}

// handleBuy создает заказ и предлагает подтвердить или отменить его
func (s *Service) handleBuy(ctx context.Context, userID, productID int64) error {
	order, err := s.orders.CreateOrder(ctx, userID, productID, 1)
	if err != nil {
		return s.telegram.SendMessage(userID, errorText(err))
	}

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Подтвердить", fmt.Sprintf("confirm:%d", order.ID)),
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", fmt.Sprintf("cancel:%d", order.ID)),
		),
	)

	text := fmt.Sprintf("Заказ #%d создан, с баланса удержано %s. Подтвердить покупку?",
		order.ID, utils.FormatPrice(order.TotalPrice))

	return s.telegram.SendMessageWithInlineKeyboard(userID, text, keyboard)
}

func (s *Service) handleConfirm(ctx context.Context, userID, orderID int64) error {
	// Id заказа пришел из данных кнопки - сначала проверяем владельца
	if _, err := s.orders.GetUserOrder(ctx, userID, orderID); err != nil {
		return s.telegram.SendMessage(userID, errorText(err))
	}

	order, err := s.orders.ProcessPayment(ctx, orderID)
	if err != nil {
		return s.telegram.SendMessage(userID, errorText(err))
	}

	return s.telegram.SendMessage(userID,
		fmt.Sprintf("✅ Заказ #%d оплачен. Ожидайте доставку.", order.ID))
}

func (s *Service) handleUserCancel(ctx context.Context, userID, orderID int64) error {
	if _, err := s.orders.GetUserOrder(ctx, userID, orderID); err != nil {
		return s.telegram.SendMessage(userID, errorText(err))
	}

	order, err := s.orders.Cancel(ctx, orderID, "отменен покупателем")
	if err != nil {
		return s.telegram.SendMessage(userID, errorText(err))
	}

	s.notifyOrderCancelled(order)
	return nil
}

// handleAdminDeliver - команда администратора: /deliver <id заказа> <контент>
func (s *Service) handleAdminDeliver(ctx context.Context, msg telegram.Message) error {
	if !s.cfg.IsAdmin(msg.ChatID) {
		return nil
	}

	parts := strings.SplitN(msg.Text, " ", 3)
	if len(parts) < 3 {
		return s.telegram.SendMessage(msg.ChatID, "Формат: /deliver <id заказа> <контент>")
	}

	orderID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return s.telegram.SendMessage(msg.ChatID, "Некорректный id заказа")
	}

	order, err := s.orders.Deliver(ctx, orderID, parts[2], msg.ChatID)
	if err != nil {
		return s.telegram.SendMessage(msg.ChatID, errorText(err))
	}

	s.notifyOrderDelivered(order)
	return s.telegram.SendMessage(msg.ChatID, fmt.Sprintf("Заказ #%d доставлен.", order.ID))
}

// handleAdminGive - команда администратора: /give <id товара> <пользователь>
func (s *Service) handleAdminGive(ctx context.Context, msg telegram.Message) error {
	if !s.cfg.IsAdmin(msg.ChatID) {
		return nil
	}

	parts := strings.Fields(msg.Text)
	if len(parts) != 3 {
		return s.telegram.SendMessage(msg.ChatID, "Формат: /give <id товара> <id или username>")
	}

	productID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return s.telegram.SendMessage(msg.ChatID, "Некорректный id товара")
	}

	content, recipient, err := s.warehouse.GiveProduct(ctx, productID, parts[2], services.Admin{
		ID:       msg.ChatID,
		Username: msg.Username,
	})
	if err != nil {
		return s.telegram.SendMessage(msg.ChatID, errorText(err))
	}

	s.notifyProductGiven(recipient.ID, content)
	return s.telegram.SendMessage(msg.ChatID,
		fmt.Sprintf("Товар выдан пользователю %d.", recipient.ID))
}

// handleAdminCancel - команда администратора: /cancel <id заказа> <причина>
func (s *Service) handleAdminCancel(ctx context.Context, msg telegram.Message) error {
	if !s.cfg.IsAdmin(msg.ChatID) {
		return nil
	}

	parts := strings.SplitN(msg.Text, " ", 3)
	if len(parts) < 3 {
		return s.telegram.SendMessage(msg.ChatID, "Формат: /cancel <id заказа> <причина>")
	}

	orderID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return s.telegram.SendMessage(msg.ChatID, "Некорректный id заказа")
	}

	order, err := s.orders.Cancel(ctx, orderID, parts[2])
	if err != nil {
		return s.telegram.SendMessage(msg.ChatID, errorText(err))
	}

	s.notifyOrderCancelled(order)
	return s.telegram.SendMessage(msg.ChatID, fmt.Sprintf("Заказ #%d отменен.", order.ID))
}

func statusText(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusPending:
		return "ожидает оплаты"
	case models.OrderStatusPaid:
		return "оплачен"
	case models.OrderStatusDelivered:
		return "доставлен"
	case models.OrderStatusCancelled:
		return "отменен"
	}
	return string(status)
}

// errorText переводит типизированные ошибки ядра в сообщение пользователю
func errorText(err error) string {
	var validation *services.ValidationError
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return "Пользователь не найден."
	case errors.Is(err, services.ErrProductNotFound):
		return "Товар не найден."
	case errors.Is(err, services.ErrOrderNotFound):
		return "Заказ не найден."
	case errors.Is(err, services.ErrCategoryNotFound):
		return "Категория не найдена."
	case errors.Is(err, services.ErrUnavailable):
		return "Товар закончился или снят с продажи."
	case errors.Is(err, services.ErrInsufficientFunds):
		return "Недостаточно средств на балансе."
	case errors.Is(err, services.ErrIllegalTransition):
		return "Операция недоступна для текущего статуса заказа."
	case errors.Is(err, services.ErrDuplicateContent):
		return "Такой товар уже есть на складе."
	case errors.As(err, &validation):
		return "Ошибка: " + validation.Reason
	}
	return "Произошла ошибка. Попробуйте позже."
}
