package paymentwebhook

import (
	"context"
	"strings"

	"github.com/coursebay/coursebay-backend/internal/orders"
	"github.com/coursebay/coursebay-backend/pkg/enums"
	pkgerrors "github.com/coursebay/coursebay-backend/pkg/errors"
	"github.com/coursebay/coursebay-backend/pkg/metrics"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Payload is the provider notification body. EventID is optional; when the
// provider sends one the transport layer can deduplicate deliveries with it.
type Payload struct {
	PaymentReference string `json:"payment_reference"`
	Status           string `json:"status"`
	EventID          string `json:"event_id,omitempty"`
}

// Result is what the provider gets back as acknowledgment.
type Result struct {
	OrderID int64             `json:"order_id"`
	Status  enums.OrderStatus `json:"status"`
}

// Service reconciles payment provider notifications onto orders.
type Service struct {
	repo     orders.Repository
	txRunner txRunner
	metrics  *metrics.OrderMetrics
}

// NewService builds a payment webhook service. Metrics may be nil.
func NewService(repo orders.Repository, tx txRunner, m *metrics.OrderMetrics) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repo required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{repo: repo, txRunner: tx, metrics: m}, nil
}

// Process looks up the order by payment reference and persists the mapped
// status unconditionally. The current status is never consulted, so replayed
// or out-of-order deliveries simply converge on the latest notification.
func (s *Service) Process(ctx context.Context, payload Payload) (*Result, error) {
	ref := strings.TrimSpace(payload.PaymentReference)
	if ref == "" {
		s.metrics.IncWebhook("invalid")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing payment_reference")
	}

	mapped := mapProviderStatus(payload.Status)

	var result *Result
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByPaymentReference(ctx, ref)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found for payment reference")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order by payment reference")
		}

		if err := repo.UpdateStatus(ctx, order.ID, mapped); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order status")
		}

		result = &Result{OrderID: order.ID, Status: mapped}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			s.metrics.IncWebhook("unknown_reference")
		} else {
			s.metrics.IncWebhook("error")
		}
		return nil, err
	}

	s.metrics.IncWebhook(string(mapped))
	return result, nil
}

// mapProviderStatus normalizes provider vocabulary onto the order lifecycle.
// Unrecognized statuses are stored verbatim so no provider signal is lost.
func mapProviderStatus(raw string) enums.OrderStatus {
	switch raw {
	case "success", "paid", "completed":
		return enums.OrderStatusPaid
	case "failed", "declined":
		return enums.OrderStatusPaymentFailed
	case "refunded":
		return enums.OrderStatusRefunded
	default:
		return enums.OrderStatus(raw)
	}
}
