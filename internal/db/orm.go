package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"marathon-readiness/toolkit/internal/logging"
	"marathon-readiness/toolkit/internal/models/entities"
)

// InitORM opens the remote state store on the configured driver and runs
// migrations. driver is "sqlite" or "postgres".
func InitORM(driver, sqlitePath, postgresDSN string) (*gorm.DB, error) {
	var (
		conn *gorm.DB
		err  error
	)

	switch driver {
	case "postgres":
		conn, err = gorm.Open(postgres.Open(postgresDSN), &gorm.Config{})
	case "sqlite":
		conn, err = gorm.Open(sqlite.Open(sqlitePath), &gorm.Config{})
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	if err := conn.AutoMigrate(&entities.TrendState{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	logging.Info("connected to state store", "driver", driver)
	return conn, nil
}
