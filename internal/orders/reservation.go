package orders

import (
	"github.com/coursebay/coursebay-backend/pkg/db/models"
	pkgerrors "github.com/coursebay/coursebay-backend/pkg/errors"
)

// reserveStock decrements tracked stock and bumps sold_quantity on a product
// the caller already holds a row lock on. A nil StockQuantity means the
// seller does not track inventory, so only sold_quantity moves.
func reserveStock(product *models.Product, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	if product.StockQuantity != nil {
		available := *product.StockQuantity
		if available < qty {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for product").
				WithDetails(map[string]any{
					"product_id": product.ID,
					"requested":  qty,
					"available":  available,
				})
		}
		remaining := available - qty
		product.StockQuantity = &remaining
	}

	product.SoldQuantity += qty
	return nil
}

// restock reverses a reservation on a locked product row. sold_quantity never
// goes below zero even if bookkeeping drifted.
func restock(product *models.Product, qty int) {
	if qty <= 0 {
		return
	}

	if product.StockQuantity != nil {
		replenished := *product.StockQuantity + qty
		product.StockQuantity = &replenished
	}

	sold := product.SoldQuantity - qty
	if sold < 0 {
		sold = 0
	}
	product.SoldQuantity = sold
}
