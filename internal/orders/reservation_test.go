package orders

import (
	"testing"

	"github.com/coursebay/coursebay-backend/pkg/db/models"
	pkgerrors "github.com/coursebay/coursebay-backend/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestReserveStock(t *testing.T) {
	t.Parallel()

	stock := 5
	product := &models.Product{ID: 1, StockQuantity: &stock}

	require.NoError(t, reserveStock(product, 3))
	require.Equal(t, 2, *product.StockQuantity)
	require.Equal(t, 3, product.SoldQuantity)

	err := reserveStock(product, 3)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeInsufficientStock, typed.Code())
	require.Equal(t, 2, *product.StockQuantity)
	require.Equal(t, 3, product.SoldQuantity)
}

func TestReserveStockUntracked(t *testing.T) {
	t.Parallel()

	product := &models.Product{ID: 1}
	require.NoError(t, reserveStock(product, 4))
	require.Nil(t, product.StockQuantity)
	require.Equal(t, 4, product.SoldQuantity)
}

func TestReserveStockInvalidQty(t *testing.T) {
	t.Parallel()

	stock := 5
	product := &models.Product{ID: 1, StockQuantity: &stock}

	err := reserveStock(product, 0)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestRestockFloorsSoldAtZero(t *testing.T) {
	t.Parallel()

	stock := 2
	product := &models.Product{ID: 1, StockQuantity: &stock, SoldQuantity: 1}

	restock(product, 3)
	require.Equal(t, 5, *product.StockQuantity)
	require.Equal(t, 0, product.SoldQuantity)
}

func TestRestockUntracked(t *testing.T) {
	t.Parallel()

	product := &models.Product{ID: 1, SoldQuantity: 6}
	restock(product, 2)
	require.Nil(t, product.StockQuantity)
	require.Equal(t, 4, product.SoldQuantity)
}
