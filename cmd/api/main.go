package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mesafacil/backoffice-api/internal/application/service"
	"github.com/mesafacil/backoffice-api/internal/config"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	domainRepo "github.com/mesafacil/backoffice-api/internal/domain/repository"
	"github.com/mesafacil/backoffice-api/internal/infrastructure/database"
	"github.com/mesafacil/backoffice-api/internal/infrastructure/repository"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/handler"
	"github.com/mesafacil/backoffice-api/internal/presentation/http/routes"
	"github.com/mesafacil/backoffice-api/pkg/keyedmutex"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger := setupLogger(&cfg.Log)
	zlog.Logger = logger

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to run migrations")
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		logger.Warn().Err(err).Msg("failed to seed default data")
	}

	// Initialize repositories
	invoiceRepo := repository.NewInvoiceRepository(db)
	seriesRepo := repository.NewSeriesRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	cashBoxRepo := repository.NewCashBoxRepository(db)
	sessionRepo := repository.NewCashBoxSessionRepository(db)
	movementRepo := repository.NewCashBoxMovementRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	transactor := repository.NewTransactor(db)
	locks := keyedmutex.New()

	receiptHeader := entity.ReceiptHeader{
		StoreName: cfg.Receipt.BusinessName,
		Address:   cfg.Receipt.Address,
		Phone:     cfg.Receipt.Phone,
		TaxID:     cfg.Receipt.TaxID,
		Footer:    cfg.Receipt.FooterNote,
	}

	// Initialize services
	invoiceService := service.NewInvoiceService(
		invoiceRepo, seriesRepo, customerRepo, productRepo,
		transactor, locks, receiptHeader, logger)
	paymentService := service.NewPaymentService(
		invoiceRepo, paymentRepo, cashBoxRepo, movementRepo,
		transactor, locks, logger)
	cashBoxService := service.NewCashBoxService(
		cashBoxRepo, sessionRepo, movementRepo,
		transactor, locks, logger)
	customerService := service.NewCustomerService(customerRepo)
	productService := service.NewProductService(productRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Invoice:  handler.NewInvoiceHandler(invoiceService),
		Payment:  handler.NewPaymentHandler(paymentService),
		CashBox:  handler.NewCashBoxHandler(cashBoxService),
		Customer: handler.NewCustomerHandler(customerService),
		Product:  handler.NewProductHandler(productService),
	}

	// Expired idempotency keys accumulate forever otherwise.
	go cleanupIdempotencyKeys(idempotencyRepo, logger)

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		Log:             logger,
		IdempotencyRepo: idempotencyRepo,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	logger.Info().
		Str("service", cfg.App.Name).
		Str("env", cfg.App.Env).
		Str("port", port).
		Msg("starting server")

	if err := router.Run(":" + port); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

func cleanupIdempotencyKeys(repo domainRepo.IdempotencyRepository, logger zerolog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		if err := repo.DeleteExpired(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("idempotency key cleanup failed")
		}
	}
}

func setupLogger(cfg *config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}
