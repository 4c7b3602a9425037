package database

import (
	"context"
	"database/sql"
	"errors"

	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// CategoryRepository представляет репозиторий для работы с категориями
type CategoryRepository struct {
	logger *zap.Logger
}

// NewCategoryRepository создает новый репозиторий категорий
func NewCategoryRepository(logger *zap.Logger) *CategoryRepository {
	return &CategoryRepository{logger: logger}
}

func (r *CategoryRepository) GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Category, error) {
	var category models.Category
	query := `SELECT id, name, COALESCE(description, '') AS description, is_active, sort_order, created_at
	          FROM categories WHERE id = $1`

	err := sqlx.GetContext(ctx, q, &category, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Ошибка при получении категории",
			zap.Error(err),
			zap.Int64("category_id", id),
		)
		return nil, mapError(err)
	}

	return &category, nil
}

// ListActive возвращает активные категории в порядке сортировки
func (r *CategoryRepository) ListActive(ctx context.Context, q sqlx.ExtContext) ([]models.Category, error) {
	var categories []models.Category
	query := `SELECT id, name, COALESCE(description, '') AS description, is_active, sort_order, created_at
	          FROM categories WHERE is_active = true ORDER BY sort_order, name`

	err := sqlx.SelectContext(ctx, q, &categories, query)
	if err != nil {
		r.logger.Error("Ошибка при получении списка категорий", zap.Error(err))
		return nil, mapError(err)
	}

	return categories, nil
}

// Create вставляет категорию; дубликат имени дает ErrConflict
func (r *CategoryRepository) Create(ctx context.Context, q sqlx.ExtContext, category *models.Category) (int64, error) {
	query := `
        INSERT INTO categories (name, description, is_active, sort_order)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `

	var id int64
	err := sqlx.GetContext(ctx, q, &id, query,
		category.Name, category.Description, category.IsActive, category.SortOrder,
	)
	if err != nil {
		r.logger.Error("Ошибка при создании категории",
			zap.Error(err),
			zap.String("name", category.Name),
		)
		return 0, mapError(err)
	}

	return id, nil
}
