package webhooks

import (
	"context"
	"net/http"

	"github.com/coursebay/coursebay-backend/api/responses"
	"github.com/coursebay/coursebay-backend/api/validators"
	paymentwebhook "github.com/coursebay/coursebay-backend/internal/webhooks/payment"
	pkgerrors "github.com/coursebay/coursebay-backend/pkg/errors"
	"github.com/coursebay/coursebay-backend/pkg/logger"
)

type PaymentWebhookService interface {
	Process(ctx context.Context, payload paymentwebhook.Payload) (*paymentwebhook.Result, error)
}

type deliveryGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type paymentWebhookRequest struct {
	PaymentReference string `json:"payment_reference"`
	Status           string `json:"status"`
	EventID          string `json:"event_id,omitempty"`
}

// PaymentWebhook ingests payment provider notifications. The guard is
// optional and only consulted when the provider sends an event id; the
// reconciler itself is replay-safe without it.
func PaymentWebhook(svc PaymentWebhookService, guard deliveryGuard, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		var req paymentWebhookRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if guard != nil && req.EventID != "" {
			alreadyProcessed, err := guard.CheckAndMark(ctx, req.EventID)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
				return
			}
			if alreadyProcessed {
				responses.WriteSuccess(w, nil)
				return
			}
		}

		result, err := svc.Process(ctx, paymentwebhook.Payload{
			PaymentReference: req.PaymentReference,
			Status:           req.Status,
			EventID:          req.EventID,
		})
		if err != nil {
			if guard != nil && req.EventID != "" {
				_ = guard.Delete(ctx, req.EventID)
			}
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
