package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/appforge-backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// GormConfig is shared by the server, the CLI and tests. Foreign keys are
// created after all tables exist because apps and subscriptions reference
// each other.
func GormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Warn),
		DisableForeignKeyConstraintWhenMigrating: true,
	}
}

func Connect(cfg *config.Config) error {
	var err error
	DB, err = gorm.Open(postgres.Open(cfg.DSN()), GormConfig())
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

type constraint struct {
	model interface{}
	name  string
}

var constraints = []constraint{
	{&models.App{}, "User"},
	{&models.App{}, "Subscription"},
	{&models.Subscription{}, "App"},
	{&models.Subscription{}, "Plan"},
	{&models.Subscription{}, "User"},
	{&models.RefreshToken{}, "User"},
}

// Migrate creates or updates every table, then adds the foreign keys on
// dialects that support ALTER TABLE ... ADD CONSTRAINT.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Plan{},
		&models.App{},
		&models.Subscription{},
		&models.SystemLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	m := db.Migrator()
	for _, c := range constraints {
		if m.HasConstraint(c.model, c.name) {
			continue
		}
		if err := m.CreateConstraint(c.model, c.name); err != nil {
			return fmt.Errorf("create constraint %s: %w", c.name, err)
		}
	}
	return nil
}

func Close() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
