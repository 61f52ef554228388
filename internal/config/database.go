package config

import (
	"fmt"
	"time"

	_ "github.com/lib/pq"
	logrus "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"waste_tracker/internal/logger"
	"waste_tracker/internal/models"
)

var (
	// DB is the globally accessible database handle
	DB *gorm.DB
)

// GormConfig is shared by the server and the tests so timestamps are always
// written in UTC.
func GormConfig(logLevel string) *gorm.Config {
	return &gorm.Config{
		Logger:         logger.NewGormLogger(logrus.StandardLogger(), logger.GormLevel(logLevel), 200*time.Millisecond),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	}
}

// InitDB connects to Postgres through the lib/pq driver, migrates the schema
// and assigns the global handle.
func InitDB(s Settings) error {
	dialector := postgres.New(postgres.Config{
		DriverName: "postgres",
		DSN:        s.Database.DSN(),
	})
	db, err := gorm.Open(dialector, GormConfig(s.Log.Level))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return err
	}

	DB = db
	return nil
}

// Migrate creates or updates every table the handlers touch.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.LocalBody{},
		&models.User{},
		&models.CustomerInfo{},
		&models.WasteCollection{},
	)
	if err != nil {
		return fmt.Errorf("auto-migration failed: %w", err)
	}
	return nil
}

// GetDB returns the initialized DB handle
func GetDB() *gorm.DB {
	return DB
}
