package database

import (
	"context"
	"database/sql"
	"errors"

	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// UserRepository представляет репозиторий для работы с пользователями.
// Все методы принимают sqlx.ExtContext, чтобы работать как на пуле,
// так и внутри транзакции.
type UserRepository struct {
	logger *zap.Logger
}

// NewUserRepository создает новый репозиторий пользователей
func NewUserRepository(logger *zap.Logger) *UserRepository {
	return &UserRepository{logger: logger}
}

const userColumns = `id, username, first_name, last_name, language, balance,
	total_orders, total_spent, referrer_id, COALESCE(referral_code, '') AS referral_code,
	COALESCE(promo_code, '') AS promo_code, referral_earnings, created_at, updated_at`

func (r *UserRepository) GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := sqlx.GetContext(ctx, q, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Ошибка при получении пользователя",
			zap.Error(err),
			zap.Int64("user_id", id),
		)
		return nil, mapError(err)
	}

	return &user, nil
}

func (r *UserRepository) GetByReferralCode(ctx context.Context, q sqlx.ExtContext, code string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE referral_code = $1`

	err := sqlx.GetContext(ctx, q, &user, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("Ошибка при получении пользователя по реферальному коду",
			zap.Error(err),
			zap.String("referral_code", code),
		)
		return nil, mapError(err)
	}

	return &user, nil
}

// Create вставляет пользователя; при повторной вставке обновляет профиль.
// Реферальный код и промокод задаются один раз и не перетираются.
func (r *UserRepository) Create(ctx context.Context, q sqlx.ExtContext, user *models.User) error {
	query := `
        INSERT INTO users (id, username, first_name, last_name, language, referral_code, promo_code)
        VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
        ON CONFLICT (id) DO UPDATE SET
            username = EXCLUDED.username,
            first_name = EXCLUDED.first_name,
            last_name = EXCLUDED.last_name,
            language = EXCLUDED.language,
            updated_at = NOW()
    `

	_, err := q.ExecContext(ctx, query,
		user.ID, user.Username, user.FirstName, user.LastName,
		user.Language, user.ReferralCode, user.PromoCode,
	)
	if err != nil {
		r.logger.Error("Ошибка при создании/обновлении пользователя",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
		)
		return mapError(err)
	}

	return nil
}

// UpdateProfile обновляет поля профиля при повторном обращении пользователя
func (r *UserRepository) UpdateProfile(ctx context.Context, q sqlx.ExtContext, user *models.User) error {
	query := `
        UPDATE users
        SET username = $2, first_name = $3, last_name = $4, language = $5, updated_at = NOW()
        WHERE id = $1
    `

	_, err := q.ExecContext(ctx, query,
		user.ID, user.Username, user.FirstName, user.LastName, user.Language,
	)
	if err != nil {
		r.logger.Error("Ошибка при обновлении профиля пользователя",
			zap.Error(err),
			zap.Int64("user_id", user.ID),
		)
		return mapError(err)
	}

	return nil
}

// AdjustBalance атомарно изменяет баланс на delta.
// Условие balance + delta >= 0 не дает балансу уйти в минус;
// возвращает false, если средств не хватило.
func (r *UserRepository) AdjustBalance(ctx context.Context, q sqlx.ExtContext, id int64, delta float64) (bool, error) {
	query := `
        UPDATE users
        SET balance = balance + $2, updated_at = NOW()
        WHERE id = $1 AND balance + $2 >= 0
    `

	result, err := q.ExecContext(ctx, query, id, delta)
	if err != nil {
		r.logger.Error("Ошибка при изменении баланса",
			zap.Error(err),
			zap.Int64("user_id", id),
			zap.Float64("delta", delta),
		)
		return false, mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}

	return rows > 0, nil
}

// AddOrderStats увеличивает пожизненные счетчики покупателя
func (r *UserRepository) AddOrderStats(ctx context.Context, q sqlx.ExtContext, id int64, total float64) error {
	query := `
        UPDATE users
        SET total_orders = total_orders + 1, total_spent = total_spent + $2, updated_at = NOW()
        WHERE id = $1
    `

	_, err := q.ExecContext(ctx, query, id, total)
	if err != nil {
		r.logger.Error("Ошибка при обновлении счетчиков пользователя",
			zap.Error(err),
			zap.Int64("user_id", id),
		)
		return mapError(err)
	}

	return nil
}

// AddReferralEarnings зачисляет награду рефереру: и на баланс, и в накопленный итог
func (r *UserRepository) AddReferralEarnings(ctx context.Context, q sqlx.ExtContext, id int64, reward float64) error {
	query := `
        UPDATE users
        SET balance = balance + $2, referral_earnings = referral_earnings + $2, updated_at = NOW()
        WHERE id = $1
    `

	_, err := q.ExecContext(ctx, query, id, reward)
	if err != nil {
		r.logger.Error("Ошибка при начислении реферальной награды",
			zap.Error(err),
			zap.Int64("user_id", id),
			zap.Float64("reward", reward),
		)
		return mapError(err)
	}

	return nil
}

// SetReferrer привязывает реферера, только если он еще не задан
// и не совпадает с самим пользователем. Возвращает false, если условие не выполнено.
func (r *UserRepository) SetReferrer(ctx context.Context, q sqlx.ExtContext, id, referrerID int64) (bool, error) {
	query := `
        UPDATE users
        SET referrer_id = $2, updated_at = NOW()
        WHERE id = $1 AND referrer_id IS NULL AND id <> $2
    `

	result, err := q.ExecContext(ctx, query, id, referrerID)
	if err != nil {
		r.logger.Error("Ошибка при установке реферера",
			zap.Error(err),
			zap.Int64("user_id", id),
			zap.Int64("referrer_id", referrerID),
		)
		return false, mapError(err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, mapError(err)
	}

	return rows > 0, nil
}

// ReferralCodeExists проверяет занятость кода при генерации
func (r *UserRepository) ReferralCodeExists(ctx context.Context, q sqlx.ExtContext, code string) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, `SELECT COUNT(*) FROM users WHERE referral_code = $1`, code)
	if err != nil {
		r.logger.Error("Ошибка проверки уникальности кода", zap.Error(err), zap.String("code", code))
		return false, mapError(err)
	}
	return count > 0, nil
}

// PromoCodeExists проверяет занятость персонального промокода
func (r *UserRepository) PromoCodeExists(ctx context.Context, q sqlx.ExtContext, code string) (bool, error) {
	var count int
	err := sqlx.GetContext(ctx, q, &count, `SELECT COUNT(*) FROM users WHERE promo_code = $1`, code)
	if err != nil {
		r.logger.Error("Ошибка проверки уникальности промокода", zap.Error(err), zap.String("code", code))
		return false, mapError(err)
	}
	return count > 0, nil
}

// GetByUsername ищет пользователя по точному username
func (r *UserRepository) GetByUsername(ctx context.Context, q sqlx.ExtContext, username string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	err := sqlx.GetContext(ctx, q, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapError(err)
	}

	return &user, nil
}

// GetByUsernameCI ищет пользователя по username без учета регистра
func (r *UserRepository) GetByUsernameCI(ctx context.Context, q sqlx.ExtContext, username string) (*models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = LOWER($1) LIMIT 1`

	err := sqlx.GetContext(ctx, q, &user, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, mapError(err)
	}

	return &user, nil
}

// SearchByUsername ищет пользователей, username которых содержит токен.
// Точное совпадение без учета регистра поднимается в начало списка.
func (r *UserRepository) SearchByUsername(ctx context.Context, q sqlx.ExtContext, token string, limit int) ([]models.User, error) {
	var users []models.User
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE username ILIKE '%' || $1 || '%'
        ORDER BY (LOWER(username) = LOWER($1)) DESC, id
        LIMIT $2
    `

	err := sqlx.SelectContext(ctx, q, &users, query, token, limit)
	if err != nil {
		r.logger.Error("Ошибка при поиске пользователей по username",
			zap.Error(err),
			zap.String("token", token),
		)
		return nil, mapError(err)
	}

	return users, nil
}

// SearchByFirstName ищет пользователей по вхождению в имя
func (r *UserRepository) SearchByFirstName(ctx context.Context, q sqlx.ExtContext, token string, limit int) ([]models.User, error) {
	var users []models.User
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE first_name ILIKE '%' || $1 || '%'
        ORDER BY id
        LIMIT $2
    `

	err := sqlx.SelectContext(ctx, q, &users, query, token, limit)
	if err != nil {
		r.logger.Error("Ошибка при поиске пользователей по имени",
			zap.Error(err),
			zap.String("token", token),
		)
		return nil, mapError(err)
	}

	return users, nil
}
