package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mesafacil/backoffice-api/internal/config"
	domainRepo "github.com/mesafacil/backoffice-api/internal/domain/repository"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/handler"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/middleware"
	"github.com/rs/zerolog"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Invoice  *handler.InvoiceHandler
	Payment  *handler.PaymentHandler
	CashBox  *handler.CashBoxHandler
	Customer *handler.CustomerHandler
	Product  *handler.ProductHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Log             zerolog.Logger
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	router.Use(middleware.ActorMiddleware())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		rateLimiter := middleware.NewActorRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		v1.Use(rateLimiter.Middleware())

		registerInvoiceRoutes(v1, h, deps)
		registerCashBoxRoutes(v1, h, deps)
		registerCustomerRoutes(v1, h)
		registerProductRoutes(v1, h)
	}

	return router
}

func registerInvoiceRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	invoices := v1.Group("/invoices")
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", h.Invoice.Create)
		invoices.GET("/due", h.Invoice.ListDue)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id", h.Invoice.Update)
		invoices.POST("/:id/issue", middleware.ActorRequired(), h.Invoice.Issue)
		invoices.POST("/:id/cancel", middleware.ActorRequired(), h.Invoice.Cancel)
		invoices.GET("/:id/receipt", h.Invoice.Receipt)

		// Payment registration uses idempotency middleware so a retried
		// request cannot commit a second payment.
		invoices.GET("/:id/payments", h.Payment.List)
		invoices.POST("/:id/payments/preview", middleware.ActorRequired(), h.Payment.Preview)
		invoices.POST("/:id/payments", middleware.ActorRequired(), middleware.IdempotencyRequired(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.Payment.Register)
	}

	v1.GET("/payments/:id", h.Payment.Get)
	v1.GET("/series", h.Invoice.ListSeries)
}

func registerCashBoxRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	cashboxes := v1.Group("/cashboxes")
	{
		cashboxes.GET("", h.CashBox.List)
		cashboxes.POST("", middleware.ActorRequired(), h.CashBox.Create)
		cashboxes.GET("/:id", h.CashBox.Get)
		cashboxes.POST("/:id/open", middleware.ActorRequired(), h.CashBox.OpenSession)
		cashboxes.POST("/:id/movements", middleware.ActorRequired(), middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
		}), h.CashBox.AddMovement)
		cashboxes.POST("/:id/close", middleware.ActorRequired(), h.CashBox.CloseSession)
		cashboxes.GET("/:id/sessions", h.CashBox.ListSessions)
	}

	v1.GET("/sessions/:session_id", h.CashBox.GetSession)
}

func registerCustomerRoutes(v1 *gin.RouterGroup, h *Handlers) {
	customers := v1.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
	}
}

func registerProductRoutes(v1 *gin.RouterGroup, h *Handlers) {
	products := v1.Group("/products")
	{
		products.GET("", h.Product.List)
		products.POST("", h.Product.Create)
		products.GET("/:id", h.Product.Get)
		products.PUT("/:id", h.Product.Update)
		products.DELETE("/:id", h.Product.Delete)
	}
}
