// Package v1 wires the ImportIQ API's database layer.
package v1

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/raven2t2/importiq-backend/v1/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseConfig holds the Postgres connection settings
type DatabaseConfig struct {
	Host            string
	Port            string
	Username        string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NewDatabaseConfig builds a config from environment variables with sane defaults
func NewDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Host:            getEnvOrDefault("IMPORTIQ_DB_HOSTNAME", "localhost"),
		Port:            getEnvOrDefault("IMPORTIQ_DB_PORT", "5432"),
		Username:        getEnvOrDefault("IMPORTIQ_DB_USERNAME", "postgres"),
		Password:        getEnvOrDefault("IMPORTIQ_DB_PASSWORD", "password"),
		Database:        getEnvOrDefault("IMPORTIQ_DB_DATABASENAME", "importiq"),
		SSLMode:         getEnvOrDefault("DB_SSLMODE", "require"),
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 30 * time.Minute,
	}
}

// ConnectGormDB opens a GORM Postgres connection with pooling configured
func ConnectGormDB(config *DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.Username, config.Password, config.Database, config.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(config.ConnMaxIdleTime)

	slog.Info("Connected to database", "host", config.Host, "database", config.Database)
	return db, nil
}

// AutoMigrate creates or updates all ImportIQ tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.VehicleAuction{},
		&models.ComplianceRule{},
		&models.DutyRate{},
		&models.PortInformation{},
		&models.ModShopPartner{},
		&models.ServiceArea{},
		&models.ShopReview{},
		&models.SavedReport{},
		&models.Booking{},
		&models.AffiliatePartner{},
	)
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
