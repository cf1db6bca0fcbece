package database

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/mesafacil/backoffice-api/internal/config"
	"github.com/mesafacil/backoffice-api/internal/domain/entity"
	"github.com/mesafacil/backoffice-api/internal/domain/enum"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens a database connection for the configured driver.
// Postgres is the production driver; sqlite backs single-terminal
// deployments and tests.
func Connect(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	var db *gorm.DB
	var err error

	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DSN(),
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}), gormCfg)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Driver == "sqlite" {
		// sqlite serializes writers; a single connection avoids
		// database-is-locked errors under concurrent requests.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
	}

	log.Info().Str("driver", cfg.Driver).Msg("database connection established")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Info().Msg("running database migrations")

	err := db.AutoMigrate(
		// Catalog entities
		&entity.Customer{},
		&entity.Product{},

		// Billing entities
		&entity.InvoiceSeries{},
		&entity.Invoice{},
		&entity.InvoiceLine{},
		&entity.Payment{},

		// Cash session entities
		&entity.CashBox{},
		&entity.CashBoxSession{},
		&entity.CashBoxMovement{},

		// System entities
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("database migrations completed")
	return nil
}

// SeedDefaultData creates the default invoice series and cash box when
// the database is empty, so a fresh install can issue invoices and
// open a session without any setup calls.
func SeedDefaultData(db *gorm.DB) error {
	var seriesCount int64
	if err := db.Model(&entity.InvoiceSeries{}).Count(&seriesCount).Error; err != nil {
		return err
	}
	if seriesCount == 0 {
		series := &entity.InvoiceSeries{Code: "A", Prefix: "A", LastValue: 0}
		if err := db.Create(series).Error; err != nil {
			return fmt.Errorf("failed to seed default series: %w", err)
		}
		log.Info().Str("series", series.Code).Msg("seeded default invoice series")
	}

	var boxCount int64
	if err := db.Model(&entity.CashBox{}).Count(&boxCount).Error; err != nil {
		return err
	}
	if boxCount == 0 {
		box := &entity.CashBox{
			Code:   "MAIN",
			Name:   "Main register",
			Status: enum.CashBoxStatusClosed,
		}
		if err := db.Create(box).Error; err != nil {
			return fmt.Errorf("failed to seed default cash box: %w", err)
		}
		log.Info().Str("cash_box", box.Code).Msg("seeded default cash box")
	}

	return nil
}
