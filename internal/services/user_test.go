package services

import (
	"context"
	"testing"

	"digital-store-bot/internal/database"
	"digital-store-bot/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetOrCreateNewUser(t *testing.T) {
	ctx := context.Background()
	users := &userStoreMock{}
	svc := NewUserService(&storeMock{}, users, zap.NewNop())

	users.On("GetByID", mock.Anything, mock.Anything, int64(10)).Return(nil, database.ErrNotFound).Once()
	users.On("ReferralCodeExists", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	users.On("PromoCodeExists", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

	var created *models.User
	users.On("Create", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(2).(*models.User)
	}).Return(nil)
	users.On("GetByID", mock.Anything, mock.Anything, int64(10)).Return(&models.User{ID: 10, Username: "buyer"}, nil).Once()

	user, err := svc.GetOrCreate(ctx, 10, Profile{Username: "buyer", FirstName: "Иван"})

	require.NoError(t, err)
	assert.Equal(t, int64(10), user.ID)

	require.NotNil(t, created)
	assert.Len(t, created.ReferralCode, codeLength)
	assert.Len(t, created.PromoCode, codeLength)
	assert.NotEqual(t, created.ReferralCode, created.PromoCode)
	assert.Equal(t, "ru", created.Language)
}

func TestGetOrCreateExistingUser(t *testing.T) {
	ctx := context.Background()
	users := &userStoreMock{}
	svc := NewUserService(&storeMock{}, users, zap.NewNop())

	existing := &models.User{ID: 10, Username: "old_name", Balance: 150, ReferralCode: "ABCDEF12"}

	users.On("GetByID", mock.Anything, mock.Anything, int64(10)).Return(existing, nil)
	users.On("UpdateProfile", mock.Anything, mock.Anything, mock.MatchedBy(func(u *models.User) bool {
		return u.ID == 10 && u.Username == "new_name"
	})).Return(nil)

	user, err := svc.GetOrCreate(ctx, 10, Profile{Username: "new_name"})

	require.NoError(t, err)
	assert.Equal(t, "new_name", user.Username)
	assert.Equal(t, 150.0, user.Balance)
	assert.Equal(t, "ABCDEF12", user.ReferralCode)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateUniqueCodeFallback(t *testing.T) {
	// Все десять случайных попыток заняты: запасной код с временным
	// суффиксом все равно ровно восемь символов и проверяется еще раз
	users := &userStoreMock{}
	svc := NewUserService(&storeMock{}, users, zap.NewNop())

	calls := 0
	exists := func(context.Context, sqlx.ExtContext, string) (bool, error) {
		calls++
		return calls <= 10, nil
	}

	code := svc.generateUniqueCode(context.Background(), exists)

	assert.Len(t, code, codeLength)
	assert.Equal(t, 11, calls)
}

func TestSetReferrer(t *testing.T) {
	ctx := context.Background()
	users := &userStoreMock{}
	svc := NewUserService(&storeMock{}, users, zap.NewNop())

	users.On("GetByReferralCode", mock.Anything, mock.Anything, "ABCDEF12").Return(&models.User{ID: 100}, nil)
	users.On("SetReferrer", mock.Anything, mock.Anything, int64(10), int64(100)).Return(true, nil)

	err := svc.SetReferrer(ctx, 10, "ABCDEF12")

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestSetReferrerSelf(t *testing.T) {
	ctx := context.Background()
	users := &userStoreMock{}
	svc := NewUserService(&storeMock{}, users, zap.NewNop())

	users.On("GetByReferralCode", mock.Anything, mock.Anything, "ABCDEF12").Return(&models.User{ID: 10}, nil)

	err := svc.SetReferrer(ctx, 10, "ABCDEF12")

	assert.ErrorIs(t, err, ErrSelfReferral)
	users.AssertNotCalled(t, "SetReferrer", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSetReferrerAlreadySet(t *testing.T) {
	ctx := context.Background()
	users := &userStoreMock{}
	svc := NewUserService(&storeMock{}, users, zap.NewNop())

	users.On("GetByReferralCode", mock.Anything, mock.Anything, "ABCDEF12").Return(&models.User{ID: 100}, nil)
	users.On("SetReferrer", mock.Anything, mock.Anything, int64(10), int64(100)).Return(false, nil)

	err := svc.SetReferrer(ctx, 10, "ABCDEF12")

	assert.ErrorIs(t, err, ErrReferrerAlreadySet)
}

func TestSetReferrerUnknownCode(t *testing.T) {
	ctx := context.Background()
	users := &userStoreMock{}
	svc := NewUserService(&storeMock{}, users, zap.NewNop())

	users.On("GetByReferralCode", mock.Anything, mock.Anything, "NOPE").Return(nil, database.ErrNotFound)

	err := svc.SetReferrer(ctx, 10, "NOPE")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAdjustBalance(t *testing.T) {
	ctx := context.Background()
	users := &userStoreMock{}
	svc := NewUserService(&storeMock{}, users, zap.NewNop())

	users.On("GetByID", mock.Anything, mock.Anything, int64(10)).Return(&models.User{ID: 10, Balance: 100}, nil)
	users.On("AdjustBalance", mock.Anything, mock.Anything, int64(10), 250.5).Return(true, nil)

	err := svc.AdjustBalance(ctx, 10, 250.501)

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestAdjustBalanceInsufficient(t *testing.T) {
	ctx := context.Background()
	users := &userStoreMock{}
	svc := NewUserService(&storeMock{}, users, zap.NewNop())

	users.On("GetByID", mock.Anything, mock.Anything, int64(10)).Return(&models.User{ID: 10, Balance: 100}, nil)
	users.On("AdjustBalance", mock.Anything, mock.Anything, int64(10), -500.0).Return(false, nil)

	err := svc.AdjustBalance(ctx, 10, -500)

	assert.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestAdjustBalanceUnknownUser(t *testing.T) {
	ctx := context.Background()
	users := &userStoreMock{}
	svc := NewUserService(&storeMock{}, users, zap.NewNop())

	users.On("GetByID", mock.Anything, mock.Anything, int64(10)).Return(nil, database.ErrNotFound)

	err := svc.AdjustBalance(ctx, 10, 100)

	assert.ErrorIs(t, err, ErrUserNotFound)
}
