// internal/database/database.go
package database

import (
	"fmt"
	"time"

	"github.com/IvanBrasilico/apirecintos/config"
	"github.com/IvanBrasilico/apirecintos/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is an interface for database operations
type DB interface {
	DB() (*gorm.DB, error)
	Close() error
}

// GormDatabase implements the DB interface for GORM
type GormDatabase struct {
	db *gorm.DB
}

// Connect establishes a connection to the database. TranslateError is
// enabled so unique-index violations surface as gorm.ErrDuplicatedKey
// regardless of driver.
func Connect(cfg config.DatabaseConfig) (DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get DB instance: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return &GormDatabase{db: db}, nil
}

// DB returns the underlying gorm.DB instance
func (d *GormDatabase) DB() (*gorm.DB, error) {
	return d.db, nil
}

// Close closes the database connection
func (d *GormDatabase) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// AutoMigrate creates or updates every event, child and support table.
func AutoMigrate(db DB) error {
	gormDB, err := db.DB()
	if err != nil {
		return err
	}

	err = gormDB.AutoMigrate(
		&models.ContainerPosition{},
		&models.TruckWeighing{},
		&models.TruckWeighingTrailer{},
		&models.TruckWeighingContainer{},
		&models.NonIntrusiveInspection{},
		&models.InspectionContainer{},
		&models.InspectionTrailer{},
		&models.InspectionManifest{},
		&models.InspectionAttachment{},
		&models.InspectionAlert{},
		&models.InspectionCargoIdentifier{},
		&models.VehicleAccess{},
		&models.VehicleAccessContainer{},
		&models.VehicleAccessTrailer{},
		&models.VehicleAccessInvoice{},
		&models.CargoUnitization{},
		&models.UnitizationLot{},
		&models.LotPosition{},
		&models.LotDamage{},
		&models.PersonAccreditation{},
		&models.PersonPhoto{},
		&models.FacilityArtifact{},
		&models.ArtifactCoordinate{},
		&models.APIKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate table structures: %w", err)
	}

	return nil
}
