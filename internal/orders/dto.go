package orders

import (
	"time"

	"github.com/coursebay/coursebay-backend/pkg/db/models"
	"github.com/coursebay/coursebay-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// CreateItemInput is one requested line in a new order.
type CreateItemInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CreateInput carries everything needed to place an order.
type CreateInput struct {
	BuyerID         int64
	ShippingAddress *string
	Items           []CreateItemInput
}

// Actor identifies who is performing a mutation on an order.
type Actor struct {
	UserID int64
	Role   enums.UserRole
}

// ListPage is a simple offset/limit window over a list query.
type ListPage struct {
	Offset int
	Limit  int
}

func (p ListPage) normalize() ListPage {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

// OrderItemDTO exposes one order line.
type OrderItemDTO struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	SoldAt    time.Time       `json:"sold_at"`
}

// OrderDTO is the order representation returned by the service.
type OrderDTO struct {
	ID               int64             `json:"id"`
	BuyerID          int64             `json:"buyer_id"`
	SellerID         int64             `json:"seller_id"`
	TotalAmount      decimal.Decimal   `json:"total_amount"`
	Status           enums.OrderStatus `json:"status"`
	PaymentReference string            `json:"payment_reference"`
	ShippingAddress  *string           `json:"shipping_address,omitempty"`
	Items            []OrderItemDTO    `json:"items"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

func toOrderDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}

	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			SoldAt:    item.SoldAt,
		})
	}

	return &OrderDTO{
		ID:               order.ID,
		BuyerID:          order.BuyerID,
		SellerID:         order.SellerID,
		TotalAmount:      order.TotalAmount,
		Status:           order.Status,
		PaymentReference: order.PaymentReference,
		ShippingAddress:  order.ShippingAddress,
		Items:            items,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}

func toOrderDTOs(orders []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, *toOrderDTO(&orders[i]))
	}
	return out
}
