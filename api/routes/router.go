package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coursebay/coursebay-backend/api/controllers"
	ordercontrollers "github.com/coursebay/coursebay-backend/api/controllers/orders"
	webhookcontrollers "github.com/coursebay/coursebay-backend/api/controllers/webhooks"
	"github.com/coursebay/coursebay-backend/api/middleware"
	"github.com/coursebay/coursebay-backend/internal/orders"
	paymentwebhook "github.com/coursebay/coursebay-backend/internal/webhooks/payment"
	"github.com/coursebay/coursebay-backend/pkg/config"
	"github.com/coursebay/coursebay-backend/pkg/db"
	"github.com/coursebay/coursebay-backend/pkg/logger"
	"github.com/coursebay/coursebay-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	ordersSvc orders.Service,
	webhookSvc *paymentwebhook.Service,
	webhookGuard *paymentwebhook.DeliveryGuard,
	metricsRegistry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		// The guard may be nil when redis is not configured; the handler
		// degrades to relying on the reconciler's replay safety.
		if webhookGuard != nil {
			r.Post("/payment", webhookcontrollers.PaymentWebhook(webhookSvc, webhookGuard, logg))
		} else {
			r.Post("/payment", webhookcontrollers.PaymentWebhook(webhookSvc, nil, logg))
		}
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(ordersSvc, logg))
			r.Get("/", ordercontrollers.List(ordersSvc, logg))
			r.Get("/{orderID}", ordercontrollers.Detail(ordersSvc, logg))
			r.Put("/{orderID}/status", ordercontrollers.UpdateStatus(ordersSvc, logg))
			r.Post("/{orderID}/refund", ordercontrollers.Refund(ordersSvc, logg))
		})

		r.Route("/seller", func(r chi.Router) {
			r.Get("/orders", ordercontrollers.SellerList(ordersSvc, logg))
		})
	})

	return r
}
