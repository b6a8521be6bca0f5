package database

import (
	"fmt"
	"log/slog"

	"github.com/crewbase/crewbase/internal/database/models"
	"github.com/crewbase/crewbase/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func Connect(cfg *config.DatabaseConfig, log *slog.Logger) (*gorm.DB, error) {
	gormLogger := logger.Default.LogMode(logger.Warn)
	if cfg.SSLMode == "disable" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("getting underlying db: %w", err)
	}

	// Connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Info("connected to database", "host", cfg.Host, "database", cfg.Name)

	return db, nil
}

// AutoMigrate sets up the schema. It runs once at process start; the
// returned handle is injected into every service and handler.
func AutoMigrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Employee{}, "Teams", &models.EmployeeTeam{}); err != nil {
		return fmt.Errorf("setting up employee join table: %w", err)
	}
	if err := db.SetupJoinTable(&models.Team{}, "Employees", &models.EmployeeTeam{}); err != nil {
		return fmt.Errorf("setting up team join table: %w", err)
	}
	return db.AutoMigrate(
		&models.Organisation{},
		&models.User{},
		&models.Employee{},
		&models.Team{},
		&models.EmployeeTeam{},
		&models.Log{},
	)
}
