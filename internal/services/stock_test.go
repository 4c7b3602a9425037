package services

import (
	"context"
	"testing"

	"digital-store-bot/internal/database"
	"digital-store-bot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckAvailability(t *testing.T) {
	ctx := context.Background()

	cases := []struct {
		name    string
		product *models.Product
		qty     int
		want    bool
		reason  string
	}{
		{"в наличии", &models.Product{IsActive: true, StockQuantity: 5}, 3, true, ""},
		{"безлимитный", &models.Product{IsActive: true, IsUnlimited: true}, 100, true, ""},
		{"снят с продажи", &models.Product{IsActive: false, StockQuantity: 5}, 1, false, "товар снят с продажи"},
		{"нет остатка", &models.Product{IsActive: true, StockQuantity: 2}, 3, false, "товара нет в наличии"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			products := &productStoreMock{}
			svc := NewStockService(&storeMock{}, products, zap.NewNop())
			products.On("GetByID", mock.Anything, mock.Anything, int64(3)).Return(tc.product, nil)

			ok, reason, err := svc.CheckAvailability(ctx, 3, tc.qty)

			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
			assert.Equal(t, tc.reason, reason)
		})
	}
}

func TestCheckAvailabilityMissingProduct(t *testing.T) {
	products := &productStoreMock{}
	svc := NewStockService(&storeMock{}, products, zap.NewNop())
	products.On("GetByID", mock.Anything, mock.Anything, int64(3)).Return(nil, database.ErrNotFound)

	ok, reason, err := svc.CheckAvailability(context.Background(), 3, 1)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "товар не найден", reason)
}
