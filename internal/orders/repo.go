package orders

import (
	"context"

	"github.com/coursebay/coursebay-backend/pkg/db/models"
	"github.com/coursebay/coursebay-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders and their items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	FindByPaymentReference(ctx context.Context, ref string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID int64, page ListPage) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID int64, page ListPage) ([]models.Order, error)
	SellerHasItems(ctx context.Context, orderID, sellerID int64) (bool, error)
	UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByPaymentReference(ctx context.Context, ref string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("payment_reference = ?", ref).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID int64, page ListPage) ([]models.Order, error) {
	page = page.normalize()

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// ListBySeller returns orders containing at least one product owned by the
// seller, joined through order_items rather than the denormalized seller_id
// so the authorization rule and the listing agree.
func (r *repository) ListBySeller(ctx context.Context, sellerID int64, page ListPage) ([]models.Order, error) {
	page = page.normalize()

	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("products.seller_id = ?", sellerID).
		Distinct("orders.*").
		Order("orders.created_at DESC").
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) SellerHasItems(ctx context.Context, orderID, sellerID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Table("order_items").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id = ? AND products.seller_id = ?", orderID, sellerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}
