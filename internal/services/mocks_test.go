package services

import (
	"context"

	"digital-store-bot/internal/database"
	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"
)

// storeMock выполняет fn сразу, без настоящей транзакции
type storeMock struct{}

func (m *storeMock) DB() *sqlx.DB { return nil }

func (m *storeMock) WithTransaction(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

type userStoreMock struct{ mock.Mock }

func (m *userStoreMock) GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *userStoreMock) GetByReferralCode(ctx context.Context, q sqlx.ExtContext, code string) (*models.User, error) {
	args := m.Called(ctx, q, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *userStoreMock) Create(ctx context.Context, q sqlx.ExtContext, user *models.User) error {
	return m.Called(ctx, q, user).Error(0)
}

func (m *userStoreMock) UpdateProfile(ctx context.Context, q sqlx.ExtContext, user *models.User) error {
	return m.Called(ctx, q, user).Error(0)
}

func (m *userStoreMock) AdjustBalance(ctx context.Context, q sqlx.ExtContext, id int64, delta float64) (bool, error) {
	args := m.Called(ctx, q, id, delta)
	return args.Bool(0), args.Error(1)
}

func (m *userStoreMock) AddOrderStats(ctx context.Context, q sqlx.ExtContext, id int64, total float64) error {
	return m.Called(ctx, q, id, total).Error(0)
}

func (m *userStoreMock) AddReferralEarnings(ctx context.Context, q sqlx.ExtContext, id int64, reward float64) error {
	return m.Called(ctx, q, id, reward).Error(0)
}

func (m *userStoreMock) SetReferrer(ctx context.Context, q sqlx.ExtContext, id, referrerID int64) (bool, error) {
	args := m.Called(ctx, q, id, referrerID)
	return args.Bool(0), args.Error(1)
}

func (m *userStoreMock) ReferralCodeExists(ctx context.Context, q sqlx.ExtContext, code string) (bool, error) {
	args := m.Called(ctx, q, code)
	return args.Bool(0), args.Error(1)
}

func (m *userStoreMock) PromoCodeExists(ctx context.Context, q sqlx.ExtContext, code string) (bool, error) {
	args := m.Called(ctx, q, code)
	return args.Bool(0), args.Error(1)
}

func (m *userStoreMock) GetByUsername(ctx context.Context, q sqlx.ExtContext, username string) (*models.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *userStoreMock) GetByUsernameCI(ctx context.Context, q sqlx.ExtContext, username string) (*models.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *userStoreMock) SearchByUsername(ctx context.Context, q sqlx.ExtContext, token string, limit int) ([]models.User, error) {
	args := m.Called(ctx, q, token, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *userStoreMock) SearchByFirstName(ctx context.Context, q sqlx.ExtContext, token string, limit int) ([]models.User, error) {
	args := m.Called(ctx, q, token, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

type productStoreMock struct{ mock.Mock }

func (m *productStoreMock) GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Product, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *productStoreMock) ListAvailableByCategory(ctx context.Context, q sqlx.ExtContext, categoryID int64, limit, offset int) ([]models.Product, error) {
	args := m.Called(ctx, q, categoryID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *productStoreMock) Create(ctx context.Context, q sqlx.ExtContext, product *models.Product) (int64, error) {
	args := m.Called(ctx, q, product)
	return args.Get(0).(int64), args.Error(1)
}

func (m *productStoreMock) Update(ctx context.Context, q sqlx.ExtContext, id int64, patch database.ProductPatch) error {
	return m.Called(ctx, q, id, patch).Error(0)
}

func (m *productStoreMock) Reserve(ctx context.Context, q sqlx.ExtContext, id int64, qty int) (bool, error) {
	args := m.Called(ctx, q, id, qty)
	return args.Bool(0), args.Error(1)
}

func (m *productStoreMock) Release(ctx context.Context, q sqlx.ExtContext, id int64, qty int) error {
	return m.Called(ctx, q, id, qty).Error(0)
}

func (m *productStoreMock) IncrementSold(ctx context.Context, q sqlx.ExtContext, id int64, qty int) error {
	return m.Called(ctx, q, id, qty).Error(0)
}

func (m *productStoreMock) ActiveContentExists(ctx context.Context, q sqlx.ExtContext, content string, productType models.ProductType) (bool, error) {
	args := m.Called(ctx, q, content, productType)
	return args.Bool(0), args.Error(1)
}

type orderStoreMock struct{ mock.Mock }

func (m *orderStoreMock) GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Order, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *orderStoreMock) ListByUser(ctx context.Context, q sqlx.ExtContext, userID int64, limit, offset int) ([]models.Order, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *orderStoreMock) Create(ctx context.Context, q sqlx.ExtContext, order *models.Order) (int64, error) {
	args := m.Called(ctx, q, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *orderStoreMock) MarkPaid(ctx context.Context, q sqlx.ExtContext, id int64) (bool, error) {
	args := m.Called(ctx, q, id)
	return args.Bool(0), args.Error(1)
}

func (m *orderStoreMock) MarkDelivered(ctx context.Context, q sqlx.ExtContext, id int64, content string) (bool, error) {
	args := m.Called(ctx, q, id, content)
	return args.Bool(0), args.Error(1)
}

func (m *orderStoreMock) MarkCancelled(ctx context.Context, q sqlx.ExtContext, id int64, reason string) (bool, error) {
	args := m.Called(ctx, q, id, reason)
	return args.Bool(0), args.Error(1)
}

type categoryStoreMock struct{ mock.Mock }

func (m *categoryStoreMock) GetByID(ctx context.Context, q sqlx.ExtContext, id int64) (*models.Category, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *categoryStoreMock) ListActive(ctx context.Context, q sqlx.ExtContext) ([]models.Category, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Category), args.Error(1)
}

func (m *categoryStoreMock) Create(ctx context.Context, q sqlx.ExtContext, category *models.Category) (int64, error) {
	args := m.Called(ctx, q, category)
	return args.Get(0).(int64), args.Error(1)
}

type accrualStoreMock struct{ mock.Mock }

func (m *accrualStoreMock) Create(ctx context.Context, q sqlx.ExtContext, accrual *models.ReferralAccrual) error {
	return m.Called(ctx, q, accrual).Error(0)
}

func (m *accrualStoreMock) ListByBeneficiary(ctx context.Context, q sqlx.ExtContext, userID int64, limit, offset int) ([]models.ReferralAccrual, error) {
	args := m.Called(ctx, q, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReferralAccrual), args.Error(1)
}

func (m *accrualStoreMock) SumByBeneficiary(ctx context.Context, q sqlx.ExtContext, userID int64) (float64, error) {
	args := m.Called(ctx, q, userID)
	return args.Get(0).(float64), args.Error(1)
}

type warehouseStoreMock struct{ mock.Mock }

func (m *warehouseStoreMock) Create(ctx context.Context, q sqlx.ExtContext, entry *models.WarehouseLog) error {
	return m.Called(ctx, q, entry).Error(0)
}

func (m *warehouseStoreMock) ListRecent(ctx context.Context, q sqlx.ExtContext, limit int) ([]models.WarehouseLog, error) {
	args := m.Called(ctx, q, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WarehouseLog), args.Error(1)
}

// accruerMock - заглушка реферального начисления для тестов заказов
type accruerMock struct{ mock.Mock }

func (m *accruerMock) Accrue(ctx context.Context, q sqlx.ExtContext, order *models.Order) error {
	return m.Called(ctx, q, order).Error(0)
}
