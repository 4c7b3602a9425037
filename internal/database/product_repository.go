package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// ProductRepository представляет репозиторий для работы с товарами
type ProductRepository struct {
	logger *zap.Logger
}

// NewProductRepository создает новый репозиторий товаров
func NewProductRepository(logger *zap.Logger) *ProductRepository {
	return &ProductRepository{logger: logger}
}

const productColumns = `id, name, description, price, category_id, product_type,
	COALESCE(duration, '') AS duration, COALESCE(digital_content, '') AS digital_content,
	stock_quantity, is_unlimited, is_active, total_sold, created_at, updated_at`

func (r *ProductRepository) GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Product, error) {
	var product models.Product
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	err := sqlx.GetContext(ctx, q, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Ошибка при получении товара",
			zap.Error(err),
			zap.Int64("product_id", id),
		)
		return nil, mapError(err)
	}

	return &product, nil
}

// ListAvailableByCategory возвращает активные товары категории с пагинацией
func (r *ProductRepository) ListAvailableByCategory(ctx context.Context, q sqlx.ExtContext, categoryID int64, limit, offset int) ([]models.Product, error) {
	var products []models.Product
	query := `
        SELECT ` + productColumns + `
        FROM products
        WHERE category_id = $1 AND is_active = true AND (is_unlimited = true OR stock_quantity > 0)
        ORDER BY name
        LIMIT $2 OFFSET $3
    `

	err := sqlx.SelectContext(ctx, q, &products, query, categoryID, limit, offset)
	if err != nil {
		r.logger.Error("Ошибка при получении товаров категории",
			zap.Error(err),
			zap.Int64("category_id", categoryID),
		)
		return nil, mapError(err)
	}

	return products, nil
}

// Create вставляет товар и возвращает его ID
func (r *ProductRepository) Create(ctx context.Context, q sqlx.ExtContext, product *models.Product) (int64, error) {
	query := `
        INSERT INTO products (name, description, price, category_id, product_type,
                              duration, digital_content, stock_quantity, is_unlimited, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `

	var id int64
	err := sqlx.GetContext(ctx, q, &id, query,
		product.Name, product.Description, product.Price, product.CategoryID,
		product.ProductType, product.Duration, product.DigitalContent,
		product.StockQuantity, product.IsUnlimited, product.IsActive,
	)
	if err != nil {
		r.logger.Error("Ошибка при создании товара",
			zap.Error(err),
			zap.String("name", product.Name),
		)
		return 0, mapError(err)
	}

	return id, nil
}

// ProductPatch описывает частичное изменение товара.
// nil-поля не трогаются.
type ProductPatch struct {
	Name           *string
	Description    *string
	Price          *float64
	CategoryID     *int64
	Duration       *string
	DigitalContent *string
	StockQuantity  *int
	IsUnlimited    *bool
	IsActive       *bool
}

// Update применяет частичное изменение к товару
func (r *ProductRepository) Update(ctx context.Context, q sqlx.ExtContext, id int64, patch ProductPatch) error {
	set := []string{}
	args := []interface{}{id}

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.CategoryID != nil {
		add("category_id", *patch.CategoryID)
	}
	if patch.Duration != nil {
		add("duration", *patch.Duration)
	}
	if patch.DigitalContent != nil {
		add("digital_content", *patch.DigitalContent)
	}
	if patch.StockQuantity != nil {
		add("stock_quantity", *patch.StockQuantity)
	}
	if patch.IsUnlimited != nil {
		add("is_unlimited", *patch.IsUnlimited)
	}
	if patch.IsActive != nil {
		add("is_active", *patch.IsActive)
	}

	if len(set) == 0 {
		return nil
	}

	query := fmt.Sprintf(
		`UPDATE products SET %s, updated_at = NOW() WHERE id = $1`,
		strings.Join(set, ", "),
	)

	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Ошибка при обновлении товара",
			zap.Error(err),
			zap.Int64("product_id", id),
		)
		return mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Reserve атомарно списывает qty со склада.
// Для безлимитных товаров остаток не трогается, условие всегда истинно.
// Возвращает false, если остатка не хватило: проигравший в гонке
// конкурентных покупок увидит именно это.
func (r *ProductRepository) Reserve(ctx context.Context, q sqlx.ExtContext, id int64, qty int) (bool, error) {
	query := `
        UPDATE products
        SET stock_quantity = CASE WHEN is_unlimited THEN stock_quantity ELSE stock_quantity - $2 END,
            updated_at = NOW()
        WHERE id = $1 AND (is_unlimited = true OR stock_quantity >= $2)
    `

	result, err := q.ExecContext(ctx, query, id, qty)
	if err != nil {
		r.logger.Error("Ошибка при резервировании товара",
			zap.Error(err),
			zap.Int64("product_id", id),
			zap.Int("quantity", qty),
		)
		return false, mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}

	return rows > 0, nil
}

// Release возвращает qty на склад - компенсация резерва при отмене или откате
func (r *ProductRepository) Release(ctx context.Context, q sqlx.ExtContext, id int64, qty int) error {
	query := `
        UPDATE products
        SET stock_quantity = stock_quantity + $2, updated_at = NOW()
        WHERE id = $1 AND is_unlimited = false
    `

	_, err := q.ExecContext(ctx, query, id, qty)
	if err != nil {
		r.logger.Error("Ошибка при возврате товара на склад",
			zap.Error(err),
			zap.Int64("product_id", id),
			zap.Int("quantity", qty),
		)
		return mapError(err)
	}

	return nil
}

// IncrementSold увеличивает счетчик проданного; остаток не трогает
func (r *ProductRepository) IncrementSold(ctx context.Context, q sqlx.ExtContext, id int64, qty int) error {
	query := `UPDATE products SET total_sold = total_sold + $2, updated_at = NOW() WHERE id = $1`

	_, err := q.ExecContext(ctx, query, id, qty)
	if err != nil {
		r.logger.Error("Ошибка при обновлении счетчика продаж",
			zap.Error(err),
			zap.Int64("product_id", id),
			zap.Int("quantity", qty),
		)
		return mapError(err)
	}

	return nil
}

// ActiveContentExists проверяет, есть ли активный товар с таким же
// содержимым и типом. Пара (digital_content, product_type) - ключ
// уникальности при приемке на склад.
func (r *ProductRepository) ActiveContentExists(ctx context.Context, q sqlx.ExtContext, content string, productType models.ProductType) (bool, error) {
	var count int
	query := `
        SELECT COUNT(*) FROM products
        WHERE digital_content = $1 AND product_type = $2 AND is_active = true
    `

	err := sqlx.GetContext(ctx, q, &count, query, content, productType)
	if err != nil {
		r.logger.Error("Ошибка при проверке дубликата контента",
			zap.Error(err),
			zap.String("product_type", string(productType)),
		)
		return false, mapError(err)
	}

	return count > 0, nil
}
