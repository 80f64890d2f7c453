package db

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"servewise-backend/internal/config"
	"servewise-backend/internal/model"
)

var (
	instance *gorm.DB
	mu       sync.RWMutex
)

// Open connects with the configured driver and applies pool settings.
func Open(c config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.Driver {
	case "sqlite":
		dialector = sqlite.Open(c.DSN())
	default:
		dialector = postgres.Open(c.DSN())
	}
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Driver, err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, err
	}
	if c.Driver == "sqlite" {
		// One connection serializes writers and keeps the pragma in effect.
		sqlDB.SetMaxOpenConns(1)
		if err := conn.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
		return conn, nil
	}
	if c.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.Pool.MaxOpenConns)
	}
	if c.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.Pool.MaxIdleConns)
	}
	if c.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(c.Pool.ConnMaxLifetime) * time.Second)
	}
	return conn, nil
}

// InitDBFromConfig opens the database described by cfg and keeps it as the
// process-wide handle returned by GetDB.
func InitDBFromConfig(cfg *config.APIConfig) error {
	conn, err := Open(cfg.DB)
	if err != nil {
		return err
	}
	mu.Lock()
	instance = conn
	mu.Unlock()
	return nil
}

func GetDB() *gorm.DB {
	mu.RLock()
	defer mu.RUnlock()
	return instance
}

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&model.Restaurant{},
		&model.Employee{},
		&model.Dish{},
		&model.Wine{},
		&model.LessonTemplate{},
		&model.Lesson{},
		&model.LessonMenuItem{},
		&model.GeneratedQuestion{},
		&model.Progress{},
	)
}
