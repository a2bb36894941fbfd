package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a seller listing. StockQuantity is nullable: nil means the
// seller does not track inventory for it and orders never decrement it.
type Product struct {
	ID            int64           `gorm:"column:id;primaryKey;autoIncrement"`
	SellerID      int64           `gorm:"column:seller_id;not null;index"`
	Title         string          `gorm:"column:title;not null"`
	Description   *string         `gorm:"column:description"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	StockQuantity *int            `gorm:"column:stock_quantity"`
	SoldQuantity  int             `gorm:"column:sold_quantity;not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
