package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/reporthub-io/reporthub/internal/config"
	"github.com/reporthub-io/reporthub/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return nil
}

// MigrateCore runs AutoMigrate for the core models.
func MigrateCore() error {
	return MigrateCoreOn(DB)
}

// MigrateCoreOn migrates the core schema on an arbitrary connection
// (the test suite passes an in-memory SQLite handle).
func MigrateCoreOn(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Space{}, "SpaceAdmins", &models.SpaceAdminAssignment{}); err != nil {
		return fmt.Errorf("failed to set up space admin join table: %w", err)
	}
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Organization{},
		&models.Space{},
		&models.SpaceSettings{},
		&models.Session{},
		&models.SystemLog{},
	)
}

// MigrateModels runs AutoMigrate for arbitrary models (used by feature
// modules).
func MigrateModels(db *gorm.DB, modelList []interface{}) error {
	if len(modelList) == 0 {
		return nil
	}
	return db.AutoMigrate(modelList...)
}

func Ping() error {
	if DB == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
