package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"digital-store-bot/internal/database"
	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	minProductNameLen = 3
	maxProductPrice   = 100000.0
	searchLimit       = 10
)

// Admin - администратор, от имени которого выполняется складское действие
type Admin struct {
	ID       int64
	Username string
}

// WarehouseService отвечает за приемку товара на склад, прямую выдачу
// и журнал складских действий
type WarehouseService struct {
	store      TxRunner
	products   ProductStore
	categories CategoryStore
	users      UserStore
	warehouse  WarehouseStore
	logger     *zap.Logger
}

// NewWarehouseService создает новый сервис склада
func NewWarehouseService(store TxRunner, products ProductStore, categories CategoryStore, users UserStore, warehouse WarehouseStore, logger *zap.Logger) *WarehouseService {
	return &WarehouseService{
		store:      store,
		products:   products,
		categories: categories,
		users:      users,
		warehouse:  warehouse,
		logger:     logger,
	}
}

// AddProductInput - данные одиночной приемки товара
type AddProductInput struct {
	Name        string
	CategoryID  int64
	ProductType models.ProductType
	Duration    string
	Content     string
	Price       float64
}

// AddProduct принимает один товар на склад: проверяет поля, нормализует
// контент аккаунта, отсекает дубликат и вставляет товар с остатком 1
// вместе со строкой журнала в одной транзакции.
func (s *WarehouseService) AddProduct(ctx context.Context, in AddProductInput, admin Admin) (*models.Product, error) {
	if err := s.validateIngestion(ctx, in.Name, in.CategoryID, in.ProductType, in.Price); err != nil {
		return nil, err
	}

	content := strings.TrimSpace(in.Content)
	if in.ProductType == models.ProductTypeAccount {
		normalized, err := NormalizeAccountContent(content)
		if err != nil {
			return nil, validationErr("контент аккаунта: %v", err)
		}
		content = normalized
	}
	if content == "" {
		return nil, validationErr("контент товара не может быть пустым")
	}

	product := &models.Product{
		Name:           strings.TrimSpace(in.Name),
		Price:          roundMoney(in.Price),
		CategoryID:     in.CategoryID,
		ProductType:    in.ProductType,
		Duration:       in.Duration,
		DigitalContent: content,
		StockQuantity:  1,
		IsActive:       true,
	}

	// Проверка дубликата и вставка идут одной транзакцией
	err := s.store.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		duplicate, err := s.products.ActiveContentExists(ctx, tx, content, in.ProductType)
		if err != nil {
			return err
		}
		if duplicate {
			return ErrDuplicateContent
		}

		id, err := s.products.Create(ctx, tx, product)
		if err != nil {
			return err
		}
		product.ID = id

		return s.warehouse.Create(ctx, tx, &models.WarehouseLog{
			ProductID:        id,
			AdminID:          admin.ID,
			AdminUsername:    admin.Username,
			Action:           models.ActionAddProduct,
			Quantity:         1,
			DeliveredContent: content,
			Description:      fmt.Sprintf("добавлен товар %q", product.Name),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("товар принят на склад",
		zap.Int64("product_id", product.ID),
		zap.String("name", product.Name),
		zap.Int64("admin_id", admin.ID),
	)

	return product, nil
}

// MassAddInput - данные массовой приемки
type MassAddInput struct {
	BaseName    string
	CategoryID  int64
	ProductType models.ProductType
	Duration    string
	Price       float64
	Lines       []string
}

// MassAddReport - итог массовой приемки.
// Вставлено ровно Total - EmptyLines - InvalidFormat - Duplicates - len(Errors).
type MassAddReport struct {
	Total         int
	Successful    int
	Duplicates    int
	EmptyLines    int
	InvalidFormat int
	Errors        []string
}

// MassAdd принимает пачку строк: нормализует контент, отсекает дубликаты
// внутри пачки и против активных товаров того же типа, вставляет каждую
// уцелевшую строку отдельным товаром с остатком 1 под именем "база #N".
func (s *WarehouseService) MassAdd(ctx context.Context, in MassAddInput, admin Admin) (*MassAddReport, error) {
	if err := s.validateIngestion(ctx, in.BaseName, in.CategoryID, in.ProductType, in.Price); err != nil {
		return nil, err
	}

	report := &MassAddReport{Total: len(in.Lines)}
	seen := make(map[string]struct{}, len(in.Lines))

	for idx, raw := range in.Lines {
		line := strings.TrimSpace(raw)
		if line == "" {
			report.EmptyLines++
			continue
		}

		content := line
		if in.ProductType == models.ProductTypeAccount {
			normalized, err := NormalizeAccountContent(line)
			if err != nil {
				report.InvalidFormat++
				continue
			}
			content = normalized
		}

		if _, dup := seen[content]; dup {
			report.Duplicates++
			continue
		}

		product := &models.Product{
			Name:           fmt.Sprintf("%s #%d", strings.TrimSpace(in.BaseName), report.Successful+1),
			Price:          roundMoney(in.Price),
			CategoryID:     in.CategoryID,
			ProductType:    in.ProductType,
			Duration:       in.Duration,
			DigitalContent: content,
			StockQuantity:  1,
			IsActive:       true,
		}

		err := s.store.WithTransaction(ctx, func(tx *sqlx.Tx) error {
			existing, err := s.products.ActiveContentExists(ctx, tx, content, in.ProductType)
			if err != nil {
				return err
			}
			if existing {
				return ErrDuplicateContent
			}

			id, err := s.products.Create(ctx, tx, product)
			if err != nil {
				return err
			}

			return s.warehouse.Create(ctx, tx, &models.WarehouseLog{
				ProductID:        id,
				AdminID:          admin.ID,
				AdminUsername:    admin.Username,
				Action:           models.ActionMassAddProduct,
				Quantity:         1,
				DeliveredContent: content,
				Description:      fmt.Sprintf("массовая приемка, товар %q", product.Name),
			})
		})
		if errors.Is(err, ErrDuplicateContent) {
			report.Duplicates++
			seen[content] = struct{}{}
			continue
		}
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("строка %d: %v", idx+1, err))
			continue
		}

		seen[content] = struct{}{}
		report.Successful++
	}

	s.logger.Info("массовая приемка завершена",
		zap.Int("total", report.Total),
		zap.Int("successful", report.Successful),
		zap.Int("duplicates", report.Duplicates),
		zap.Int64("admin_id", admin.ID),
	)

	return report, nil
}

// UpdateProduct применяет частичное изменение товара и пишет в журнал
// разницу до/после по измененным полям
func (s *WarehouseService) UpdateProduct(ctx context.Context, productID int64, patch database.ProductPatch, admin Admin) (*models.Product, error) {
	before, err := s.products.GetByID(ctx, s.store.DB(), productID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if patch.Name != nil && len(strings.TrimSpace(*patch.Name)) < minProductNameLen {
		return nil, validationErr("название товара должно быть не короче %d символов", minProductNameLen)
	}
	if patch.Price != nil && (*patch.Price <= 0 || *patch.Price > maxProductPrice) {
		return nil, validationErr("цена должна быть в пределах (0, %.0f]", maxProductPrice)
	}
	if patch.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, s.store.DB(), *patch.CategoryID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, ErrCategoryNotFound
			}
			return nil, err
		}
	}

	diff := describePatch(before, patch)
	if diff == "" {
		return before, nil
	}

	err = s.store.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		if err := s.products.Update(ctx, tx, productID, patch); err != nil {
			return err
		}

		return s.warehouse.Create(ctx, tx, &models.WarehouseLog{
			ProductID:     productID,
			AdminID:       admin.ID,
			AdminUsername: admin.Username,
			Action:        models.ActionEditProduct,
			Description:   diff,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("товар изменен",
		zap.Int64("product_id", productID),
		zap.String("diff", diff),
		zap.Int64("admin_id", admin.ID),
	)

	return s.products.GetByID(ctx, s.store.DB(), productID)
}

// GiveProduct - прямая выдача товара пользователю мимо заказа.
// Атомарно перечитывает товар, проверяет доступность, для лимитного
// списывает единицу остатка и поднимает счетчик продаж, пишет строку
// журнала со снимком контента. Возвращает контент для пересылки.
func (s *WarehouseService) GiveProduct(ctx context.Context, productID int64, identifier string, admin Admin) (string, *models.User, error) {
	recipient, err := s.FindUser(ctx, identifier)
	if err != nil {
		return "", nil, err
	}

	var content string
	err = s.store.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		product, err := s.products.GetByID(ctx, tx, productID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		if !product.Available() {
			return ErrUnavailable
		}
		content = product.DigitalContent

		if !product.IsUnlimited {
			reserved, err := s.products.Reserve(ctx, tx, productID, 1)
			if err != nil {
				return err
			}
			if !reserved {
				return ErrUnavailable
			}
			if err := s.products.IncrementSold(ctx, tx, productID, 1); err != nil {
				return err
			}
		}

		recipientID := recipient.ID
		return s.warehouse.Create(ctx, tx, &models.WarehouseLog{
			ProductID:         productID,
			AdminID:           admin.ID,
			AdminUsername:     admin.Username,
			RecipientID:       &recipientID,
			RecipientUsername: recipient.Username,
			Action:            models.ActionGiveProduct,
			Quantity:          1,
			DeliveredContent:  content,
			Description:       fmt.Sprintf("выдача товара пользователю %d", recipient.ID),
		})
	})
	if err != nil {
		return "", nil, err
	}

	s.logger.Info("товар выдан напрямую",
		zap.Int64("product_id", productID),
		zap.Int64("recipient_id", recipient.ID),
		zap.Int64("admin_id", admin.ID),
	)

	return content, recipient, nil
}

// CreateCategory создает категорию и пишет действие в журнал.
// Дубликат имени поднимается как ErrConflict из слоя хранения.
func (s *WarehouseService) CreateCategory(ctx context.Context, name, description string, admin Admin) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if len(name) < minProductNameLen {
		return nil, validationErr("название категории должно быть не короче %d символов", minProductNameLen)
	}

	category := &models.Category{
		Name:        name,
		Description: description,
		IsActive:    true,
	}

	err := s.store.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		id, err := s.categories.Create(ctx, tx, category)
		if err != nil {
			return err
		}
		category.ID = id

		// Для действий уровня категории product_id остается нулевым
		return s.warehouse.Create(ctx, tx, &models.WarehouseLog{
			AdminID:       admin.ID,
			AdminUsername: admin.Username,
			Action:        models.ActionCreateCategory,
			Description:   fmt.Sprintf("создана категория %q", name),
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("создана категория",
		zap.Int64("category_id", category.ID),
		zap.String("name", name),
		zap.Int64("admin_id", admin.ID),
	)

	return category, nil
}

// RecentLogs возвращает последние записи складского журнала
func (s *WarehouseService) RecentLogs(ctx context.Context, limit int) ([]models.WarehouseLog, error) {
	return s.warehouse.ListRecent(ctx, s.store.DB(), limit)
}

// FindUser разрешает идентификатор получателя в пользователя.
// Стратегии по порядку: числовой ID, точный username, username без учета
// регистра, частичное вхождение в username, частичное вхождение в имя.
// Первый непустой результат побеждает.
func (s *WarehouseService) FindUser(ctx context.Context, identifier string) (*models.User, error) {
	token := normalizeIdentifier(identifier)
	if token == "" {
		return nil, validationErr("идентификатор пользователя содержит недопустимые символы")
	}

	if id, err := strconv.ParseInt(token, 10, 64); err == nil {
		user, err := s.users.GetByID(ctx, s.store.DB(), id)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		// ID не нашелся - падаем на поиск по имени
	}

	if user, err := s.users.GetByUsername(ctx, s.store.DB(), token); err == nil {
		return user, nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	if user, err := s.users.GetByUsernameCI(ctx, s.store.DB(), token); err == nil {
		return user, nil
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	matches, err := s.users.SearchByUsername(ctx, s.store.DB(), token, searchLimit)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		return &matches[0], nil
	}

	matches, err = s.users.SearchByFirstName(ctx, s.store.DB(), token, searchLimit)
	if err != nil {
		return nil, err
	}
	if len(matches) > 0 {
		return &matches[0], nil
	}

	return nil, ErrUserNotFound
}

// validateIngestion - общие проверки одиночной и массовой приемки
func (s *WarehouseService) validateIngestion(ctx context.Context, name string, categoryID int64, productType models.ProductType, price float64) error {
	if len(strings.TrimSpace(name)) < minProductNameLen {
		return validationErr("название товара должно быть не короче %d символов", minProductNameLen)
	}
	if !models.ValidProductType(productType) {
		return validationErr("неизвестный тип товара: %s", productType)
	}
	if price <= 0 || price > maxProductPrice {
		return validationErr("цена должна быть в пределах (0, %.0f]", maxProductPrice)
	}

	if _, err := s.categories.GetByID(ctx, s.store.DB(), categoryID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	return nil
}

// normalizeIdentifier чистит идентификатор: убирает @, обрезает пробелы,
// допускает только буквы, цифры и подчеркивание
func normalizeIdentifier(identifier string) string {
	token := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(identifier), "@"))
	for _, r := range token {
		alnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_'
		if !alnum {
			return ""
		}
	}
	return token
}

// describePatch собирает человекочитаемую разницу до/после для журнала
func describePatch(before *models.Product, patch database.ProductPatch) string {
	parts := []string{}

	changed := func(field, oldValue, newValue string) {
		if oldValue != newValue {
			parts = append(parts, fmt.Sprintf("%s: %s -> %s", field, oldValue, newValue))
		}
	}

	if patch.Name != nil {
		changed("название", before.Name, *patch.Name)
	}
	if patch.Description != nil {
		changed("описание", before.Description, *patch.Description)
	}
	if patch.Price != nil {
		changed("цена", fmt.Sprintf("%.2f", before.Price), fmt.Sprintf("%.2f", *patch.Price))
	}
	if patch.CategoryID != nil {
		changed("категория", strconv.FormatInt(before.CategoryID, 10), strconv.FormatInt(*patch.CategoryID, 10))
	}
	if patch.Duration != nil {
		changed("срок", before.Duration, *patch.Duration)
	}
	if patch.DigitalContent != nil {
		changed("контент", before.DigitalContent, *patch.DigitalContent)
	}
	if patch.StockQuantity != nil {
		changed("остаток", strconv.Itoa(before.StockQuantity), strconv.Itoa(*patch.StockQuantity))
	}
	if patch.IsUnlimited != nil {
		changed("безлимитный", strconv.FormatBool(before.IsUnlimited), strconv.FormatBool(*patch.IsUnlimited))
	}
	if patch.IsActive != nil {
		changed("активен", strconv.FormatBool(before.IsActive), strconv.FormatBool(*patch.IsActive))
	}

	return strings.Join(parts, "; ")
}
