package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/coursebay/coursebay-backend/api/middleware"
	"github.com/coursebay/coursebay-backend/api/responses"
	"github.com/coursebay/coursebay-backend/api/validators"
	internalorders "github.com/coursebay/coursebay-backend/internal/orders"
	"github.com/coursebay/coursebay-backend/pkg/enums"
	pkgerrors "github.com/coursebay/coursebay-backend/pkg/errors"
	"github.com/coursebay/coursebay-backend/pkg/logger"
)

type createOrderRequest struct {
	ShippingAddress *string                  `json:"shipping_address,omitempty"`
	Items           []createOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type createOrderItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Create places a new order for the authenticated buyer.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]internalorders.CreateItemInput, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, internalorders.CreateItemInput{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			})
		}

		created, err := svc.Create(r.Context(), internalorders.CreateInput{
			BuyerID:         middleware.UserIDFromContext(r.Context()),
			ShippingAddress: req.ShippingAddress,
			Items:           items,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

// Detail returns one order by id.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// List returns the authenticated buyer's orders.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		page, err := parsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListByBuyer(r.Context(), middleware.UserIDFromContext(r.Context()), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}

// SellerList returns orders containing the authenticated seller's products.
func SellerList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		role := middleware.RoleFromContext(r.Context())
		if role != enums.UserRoleSeller && role != enums.UserRoleAdmin {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "seller or admin role required"))
			return
		}

		page, err := parsePage(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListBySeller(r.Context(), middleware.UserIDFromContext(r.Context()), page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, orders)
	}
}

// UpdateStatus sets a new status on an order.
func UpdateStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req updateStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := enums.OrderStatus(strings.TrimSpace(req.Status))
		actor := internalorders.Actor{
			UserID: middleware.UserIDFromContext(r.Context()),
			Role:   middleware.RoleFromContext(r.Context()),
		}

		updated, err := svc.UpdateStatus(r.Context(), orderID, status, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, updated)
	}
}

// Refund initiates a refund on an order.
func Refund(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := validators.ParsePathID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor := internalorders.Actor{
			UserID: middleware.UserIDFromContext(r.Context()),
			Role:   middleware.RoleFromContext(r.Context()),
		}

		refunded, err := svc.Refund(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, refunded)
	}
}

func parsePage(r *http.Request) (internalorders.ListPage, error) {
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
	if err != nil {
		return internalorders.ListPage{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
	if err != nil {
		return internalorders.ListPage{}, err
	}
	return internalorders.ListPage{Offset: offset, Limit: limit}, nil
}
