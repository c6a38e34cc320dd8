// Package postgres opens the GORM connection used by the Postgres ledger
// mirror and migrates its schema.
package postgres

import (
	"fmt"

	"supplychain/internal/adapters/out/postgres/ledgerrepo"

	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds a libpq-style connection string.
func DSN(host, port, user, password, dbName, sslMode string) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbName, sslMode)
}

// Open connects to dsn and migrates the ledger tables.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err = Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ledgerrepo.OrderDTO{}, &ledgerrepo.RecordDTO{}); err != nil {
		return fmt.Errorf("migrate ledger schema: %w", err)
	}
	return nil
}
