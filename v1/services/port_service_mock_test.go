package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupMockDB creates a sqlmock-backed GORM connection for error-path tests
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	var db *sql.DB
	var mock sqlmock.Sqlmock
	var err error

	db, mock, err = sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	dialector := postgres.New(postgres.Config{
		Conn:       db,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open gorm db: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return gormDB, mock, cleanup
}

func TestGetPortByCode_Success_Mock(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	service := NewPortService(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM "port_information"`).
		WithArgs("USLAX", 1).
		WillReturnRows(sqlmock.NewRows([]string{
			"port_id", "port_name", "port_code", "country", "region",
			"vehicle_processing_capable", "processing_days_min", "processing_days_max",
			"base_handling_fee", "storage_fee_per_day", "customs_clearance_fee", "notes",
			"created_at", "updated_at",
		}).AddRow("prt_123", "Port of Los Angeles", "USLAX", "US", "WEST COAST",
			true, 7, 14, 450.0, 25.0, 150.0, "", now, now))

	port, err := service.GetPortByCode(context.Background(), "uslax")

	assert.NoError(t, err)
	assert.NotNil(t, port)
	assert.Equal(t, "Port of Los Angeles", port.PortName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPortByCode_NotFound_Mock(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	service := NewPortService(db)

	mock.ExpectQuery(`SELECT .* FROM "port_information"`).
		WithArgs("USXXX", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := service.GetPortByCode(context.Background(), "USXXX")

	assert.ErrorIs(t, err, ErrPortNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPortByCode_DatabaseError(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	service := NewPortService(db)

	mock.ExpectQuery(`SELECT .* FROM "port_information"`).
		WithArgs("USLAX", 1).
		WillReturnError(errors.New("connection reset by peer"))

	_, err := service.GetPortByCode(context.Background(), "USLAX")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPortNotFound, "transport errors must not be reported as a missing port")
	assert.Contains(t, err.Error(), "failed to load port")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPorts_DatabaseError(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	service := NewPortService(db)

	mock.ExpectQuery(`SELECT .* FROM "port_information"`).
		WillReturnError(errors.New("server closed the connection unexpectedly"))

	_, err := service.ListPorts(context.Background(), "US", "")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list ports")
	assert.NoError(t, mock.ExpectationsWereMet())
}
