package rest

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Dhoini/personalized-gospels/internal/api/rest/handlers"
	"github.com/Dhoini/personalized-gospels/internal/api/rest/middleware"
	"github.com/Dhoini/personalized-gospels/internal/service"
	"github.com/Dhoini/personalized-gospels/pkg/logger"
)

// Services сервисы, обслуживаемые HTTP API
type Services struct {
	Checkout service.CheckoutService
	Webhook  service.WebhookService
	Books    service.BookService
	Admin    service.AdminService
}

// SetupRouter настраивает маршрутизатор Gin с маршрутами и middleware.
// Пустой jwtSecret отключает административное API.
func SetupRouter(svc Services, gatherer prometheus.Gatherer, jwtSecret string, log *logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(middleware.RequestID())
	r.Use(middleware.LoggerMiddleware(log))
	r.Use(gin.Recovery())

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	checkoutHandler := handlers.NewCheckoutHandler(svc.Checkout, log)
	bookHandler := handlers.NewBookHandler(svc.Books, log)
	webhookHandler := handlers.NewWebhookHandler(svc.Webhook, log)

	v1 := r.Group("/api/v1")
	{
		checkout := v1.Group("/checkout")
		{
			checkout.POST("", checkoutHandler.CreateCheckout)
			checkout.GET("/session", checkoutHandler.GetSession)
		}

		v1.POST("/samples", bookHandler.CreateSample)
		v1.POST("/preview", bookHandler.Preview)
		v1.GET("/books/:type", bookHandler.GetDocument)
		v1.GET("/formats", bookHandler.GetFormats)
	}

	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/stripe", webhookHandler.HandleStripeWebhook)
	}

	if jwtSecret == "" {
		log.Warn("Auth JWT secret is not set, admin API disabled")
		return r
	}

	auth := middleware.NewJWTMiddleware(&middleware.HMACTokenValidator{Secret: []byte(jwtSecret)}, log)
	adminHandler := handlers.NewAdminHandler(svc.Admin, log)

	admin := r.Group("/admin/v1", auth.RequireAuth(middleware.ScopeAdmin))
	{
		orders := admin.Group("/orders")
		{
			orders.GET("/:id", adminHandler.GetOrder)
			orders.GET("/:id/events", adminHandler.ListEvents)
			orders.POST("/:id/fulfill", adminHandler.Fulfill)
			orders.PUT("/:id/status", adminHandler.UpdateStatus)
		}
	}
	return r
}
