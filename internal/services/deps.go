// Package services содержит бизнес-логику магазина: жизненный цикл заказа,
// склад, рефералы и пользователей. Всё разделяемое состояние лежит в базе;
// записи, затрагивающие несколько сущностей, идут через одну транзакцию.
package services

import (
	"context"
	"math"

	"digital-store-bot/internal/database"
	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
)

// TxRunner дает доступ к пулу и транзакционному примитиву хранилища
type TxRunner interface {
	DB() *sqlx.DB
	WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

// UserStore определяет методы работы с пользователями в хранилище
type UserStore interface {
	GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.User, error)
	GetByReferralCode(ctx context.Context, q sqlx.ExtContext, code string) (*models.User, error)
	Create(ctx context.Context, q sqlx.ExtContext, user *models.User) error
	UpdateProfile(ctx context.Context, q sqlx.ExtContext, user *models.User) error
	AdjustBalance(ctx context.Context, q sqlx.ExtContext, id int64, delta float64) (bool, error)
	AddOrderStats(ctx context.Context, q sqlx.ExtContext, id int64, total float64) error
	AddReferralEarnings(ctx context.Context, q sqlx.ExtContext, id int64, reward float64) error
	SetReferrer(ctx context.Context, q sqlx.ExtContext, id, referrerID int64) (bool, error)
	ReferralCodeExists(ctx context.Context, q sqlx.ExtContext, code string) (bool, error)
	PromoCodeExists(ctx context.Context, q sqlx.ExtContext, code string) (bool, error)
	GetByUsername(ctx context.Context, q sqlx.ExtContext, username string) (*models.User, error)
	GetByUsernameCI(ctx context.Context, q sqlx.ExtContext, username string) (*models.User, error)
	SearchByUsername(ctx context.Context, q sqlx.ExtContext, token string, limit int) ([]models.User, error)
	SearchByFirstName(ctx context.Context, q sqlx.ExtContext, token string, limit int) ([]models.User, error)
}

// ProductStore определяет методы работы с товарами в хранилище
type ProductStore interface {
	GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Product, error)
	ListAvailableByCategory(ctx context.Context, q sqlx.ExtContext, categoryID int64, limit, offset int) ([]models.Product, error)
	Create(ctx context.Context, q sqlx.ExtContext, product *models.Product) (int64, error)
	Update(ctx context.Context, q sqlx.ExtContext, id int64, patch database.ProductPatch) error
	Reserve(ctx context.Context, q sqlx.ExtContext, id int64, qty int) (bool, error)
	Release(ctx context.Context, q sqlx.ExtContext, id int64, qty int) error
	IncrementSold(ctx context.Context, q sqlx.ExtContext, id int64, qty int) error
	ActiveContentExists(ctx context.Context, q sqlx.ExtContext, content string, productType models.ProductType) (bool, error)
}

// OrderStore определяет методы работы с заказами в хранилище
type OrderStore interface {
	GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Order, error)
	ListByUser(ctx context.Context, q sqlx.ExtContext, userID int64, limit, offset int) ([]models.Order, error)
	Create(ctx context.Context, q sqlx.ExtContext, order *models.Order) (int64, error)
	MarkPaid(ctx context.Context, q sqlx.ExtContext, id int64) (bool, error)
	MarkDelivered(ctx context.Context, q sqlx.ExtContext, id int64, content string) (bool, error)
	MarkCancelled(ctx context.Context, q sqlx.ExtContext, id int64, reason string) (bool, error)
}

// CategoryStore определяет методы работы с категориями в хранилище
type CategoryStore interface {
	GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Category, error)
	ListActive(ctx context.Context, q sqlx.ExtContext) ([]models.Category, error)
	Create(ctx context.Context, q sqlx.ExtContext, category *models.Category) (int64, error)
}

// AccrualStore определяет методы работы с реферальными начислениями
type AccrualStore interface {
	Create(ctx context.Context, q sqlx.ExtContext, accrual *models.ReferralAccrual) error
	ListByBeneficiary(ctx context.Context, q sqlx.ExtContext, userID int64, limit, offset int) ([]models.ReferralAccrual, error)
	SumByBeneficiary(ctx context.Context, q sqlx.ExtContext, userID int64) (float64, error)
}

// WarehouseStore определяет методы работы с журналом склада
type WarehouseStore interface {
	Create(ctx context.Context, q sqlx.ExtContext, entry *models.WarehouseLog) error
	ListRecent(ctx context.Context, q sqlx.ExtContext, limit int) ([]models.WarehouseLog, error)
}

// Проверки соответствия репозиториев интерфейсам
var (
	_ TxRunner       = (*database.Store)(nil)
	_ UserStore      = (*database.UserRepository)(nil)
	_ ProductStore   = (*database.ProductRepository)(nil)
	_ OrderStore     = (*database.OrderRepository)(nil)
	_ CategoryStore  = (*database.CategoryRepository)(nil)
	_ AccrualStore   = (*database.ReferralRepository)(nil)
	_ WarehouseStore = (*database.WarehouseRepository)(nil)
)

// roundMoney приводит сумму к копейкам
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
