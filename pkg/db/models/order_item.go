package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem snapshots one line of an order. UnitPrice is copied from the
// product at order time and does not track later price changes.
type OrderItem struct {
	ID        int64           `gorm:"column:id;primaryKey;autoIncrement"`
	OrderID   int64           `gorm:"column:order_id;not null;index"`
	ProductID int64           `gorm:"column:product_id;not null;index"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Quantity  int             `gorm:"column:quantity;not null"`
	SoldAt    time.Time       `gorm:"column:sold_at;autoCreateTime"`
}
