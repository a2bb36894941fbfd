package models

import (
	"time"

	"github.com/coursebay/coursebay-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// Order is one purchase transaction against a single seller.
//
// TotalAmount is fixed at creation as the sum of item snapshots and is never
// recomputed. PaymentReference is the idempotency key payment providers echo
// back in webhook notifications.
type Order struct {
	ID               int64             `gorm:"column:id;primaryKey;autoIncrement"`
	BuyerID          int64             `gorm:"column:buyer_id;not null;index"`
	SellerID         int64             `gorm:"column:seller_id;not null;index"`
	TotalAmount      decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Status           enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	PaymentReference string            `gorm:"column:payment_reference;not null;uniqueIndex"`
	ShippingAddress  *string           `gorm:"column:shipping_address"`
	Items            []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
