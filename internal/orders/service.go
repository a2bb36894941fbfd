package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/coursebay/coursebay-backend/internal/products"
	"github.com/coursebay/coursebay-backend/pkg/db/models"
	"github.com/coursebay/coursebay-backend/pkg/enums"
	pkgerrors "github.com/coursebay/coursebay-backend/pkg/errors"
	"github.com/coursebay/coursebay-backend/pkg/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the order fulfillment operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*OrderDTO, error)
	Get(ctx context.Context, orderID int64) (*OrderDTO, error)
	ListByBuyer(ctx context.Context, buyerID int64, page ListPage) ([]OrderDTO, error)
	ListBySeller(ctx context.Context, sellerID int64, page ListPage) ([]OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus, actor Actor) (*OrderDTO, error)
	Refund(ctx context.Context, orderID int64, actor Actor) (*OrderDTO, error)
}

type service struct {
	repo     Repository
	products products.Repository
	tx       txRunner
	metrics  *metrics.OrderMetrics
}

// NewService builds an order service with the required dependencies.
// Metrics may be nil; recording becomes a no-op.
func NewService(repo Repository, productsRepo products.Repository, tx txRunner, m *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		products: productsRepo,
		tx:       tx,
		metrics:  m,
	}, nil
}

// Create places an order inside a single transaction. Product rows are
// locked in ascending id order so concurrent checkouts cannot deadlock, and
// stock is decremented while the lock is held so the engine never oversells.
func (s *service) Create(ctx context.Context, input CreateInput) (*OrderDTO, error) {
	if input.BuyerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required on every item")
		}
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive").
				WithDetails(map[string]any{"product_id": item.ProductID})
		}
	}

	items := make([]CreateItemInput, len(input.Items))
	copy(items, input.Items)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ProductID < items[j].ProductID
	})

	started := time.Now()

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		productsRepo := s.products.WithTx(tx)

		var sellerID int64
		total := decimal.Zero
		lines := make([]models.OrderItem, 0, len(items))

		for _, item := range items {
			product, err := productsRepo.FindByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %d not found", item.ProductID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock product row")
			}

			if sellerID == 0 {
				sellerID = product.SellerID
			} else if product.SellerID != sellerID {
				return pkgerrors.New(pkgerrors.CodeMultiSeller, "orders containing items from multiple sellers are not supported").
					WithDetails(map[string]any{"seller_ids": []int64{sellerID, product.SellerID}})
			}

			if err := reserveStock(product, item.Quantity); err != nil {
				return err
			}
			if err := productsRepo.Save(ctx, product); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist stock reservation")
			}

			total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			lines = append(lines, models.OrderItem{
				ProductID: product.ID,
				UnitPrice: product.Price,
				Quantity:  item.Quantity,
			})
		}

		created, err := s.repo.WithTx(tx).Create(ctx, &models.Order{
			BuyerID:          input.BuyerID,
			SellerID:         sellerID,
			TotalAmount:      total,
			Status:           enums.OrderStatusPending,
			PaymentReference: uuid.NewString(),
			ShippingAddress:  input.ShippingAddress,
			Items:            lines,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
		}

		order = created
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeInsufficientStock {
			s.metrics.IncInsufficientStock()
		}
		return nil, err
	}

	s.metrics.IncCreated()
	s.metrics.ObserveCreationDuration(time.Since(started))

	ensureTimestamps(order)
	return toOrderDTO(order), nil
}

func (s *service) Get(ctx context.Context, orderID int64) (*OrderDTO, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	ensureTimestamps(order)
	return toOrderDTO(order), nil
}

func (s *service) ListByBuyer(ctx context.Context, buyerID int64, page ListPage) ([]OrderDTO, error) {
	if buyerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "buyer id required")
	}

	orders, err := s.repo.ListByBuyer(ctx, buyerID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders")
	}

	for i := range orders {
		ensureTimestamps(&orders[i])
	}
	return toOrderDTOs(orders), nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID int64, page ListPage) ([]OrderDTO, error) {
	if sellerID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}

	orders, err := s.repo.ListBySeller(ctx, sellerID, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders")
	}

	for i := range orders {
		ensureTimestamps(&orders[i])
	}
	return toOrderDTOs(orders), nil
}

// UpdateStatus sets an arbitrary status on the order. There is no transition
// table; admins may move any order anywhere and sellers may move orders that
// contain their products.
func (s *service) UpdateStatus(ctx context.Context, orderID int64, status enums.OrderStatus, actor Actor) (*OrderDTO, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(status.String()) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		found, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if err := authorizeMutation(ctx, repo, found.ID, actor); err != nil {
			return err
		}

		if err := repo.UpdateStatus(ctx, found.ID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		found.Status = status
		found.UpdatedAt = time.Now().UTC()
		order = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	ensureTimestamps(order)
	return toOrderDTO(order), nil
}

// Refund marks the order refunded and returns its quantities to inventory.
// Each product row is locked before restocking; sold_quantity is floored at
// zero rather than allowed to go negative.
func (s *service) Refund(ctx context.Context, orderID int64, actor Actor) (*OrderDTO, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productsRepo := s.products.WithTx(tx)

		found, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if err := authorizeMutation(ctx, repo, found.ID, actor); err != nil {
			return err
		}

		items := make([]models.OrderItem, len(found.Items))
		copy(items, found.Items)
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].ProductID < items[j].ProductID
		})

		for _, item := range items {
			product, err := productsRepo.FindByIDForUpdate(ctx, item.ProductID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock product row")
			}

			restock(product, item.Quantity)
			if err := productsRepo.Save(ctx, product); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist restock")
			}
		}

		if err := repo.UpdateStatus(ctx, found.ID, enums.OrderStatusRefunded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		found.Status = enums.OrderStatusRefunded
		found.UpdatedAt = time.Now().UTC()
		order = found
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncRefunded()

	ensureTimestamps(order)
	return toOrderDTO(order), nil
}

// authorizeMutation allows admins unconditionally and sellers only when the
// order contains at least one of their products.
func authorizeMutation(ctx context.Context, repo Repository, orderID int64, actor Actor) error {
	if actor.UserID <= 0 {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if actor.Role == enums.UserRoleAdmin {
		return nil
	}

	ok, err := repo.SellerHasItems(ctx, orderID, actor.UserID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check seller items")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to modify this order")
	}
	return nil
}

// ensureTimestamps backfills zero timestamps before the order leaves the
// service. Some drivers do not echo server defaults back into the model.
func ensureTimestamps(order *models.Order) {
	if order == nil {
		return
	}

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	for i := range order.Items {
		if order.Items[i].SoldAt.IsZero() {
			order.Items[i].SoldAt = now
		}
	}
}
