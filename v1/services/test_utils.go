package services

import (
	"testing"

	"github.com/raven2t2/importiq-backend/v1/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupSQLiteTestDB creates an in-memory SQLite database for testing
func SetupSQLiteTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to SQLite test database: %v", err)
	}

	err = db.AutoMigrate(
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
	if err != nil {
		t.Fatalf("Failed to migrate SQLite test database: %v", err)
	}

	return db
}
