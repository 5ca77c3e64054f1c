// Package repo implements the data persistence layer for the three
// collaborator services, backed by GORM. This file contains database
// bootstrapping helpers for SQLite (pure Go driver), schema migrations,
// and catalog seeding.
package repo

import (
	"os"
	"path/filepath"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA foreign_keys=ON;")
	db.Exec("PRAGMA busy_timeout=5000;")

	// Pool
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// EnableTracing registers the OpenTelemetry GORM plugin so queries emit
// spans under the active trace. Call after the global tracer provider is
// installed.
func EnableTracing(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin(tracing.WithoutMetrics()))
}

// AutoMigrate creates or updates the schema for all collaborator tables.
// Each binary persists only its own tables, but migrating the full set is
// harmless and keeps the helper shared.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Airport{},
		&domain.Flight{},
		&domain.Ticket{},
		&domain.Privilege{},
		&domain.PrivilegeHistory{},
	)
}

// SeedFlights inserts the demo catalog (Sheremetyevo and Pulkovo airports
// plus flight AFL031) when the flight table is empty. Re-running against a
// populated database is a no-op.
func SeedFlights(db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.Flight{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	svo := domain.Airport{Name: "Шереметьево", City: "Москва", Country: "Россия"}
	led := domain.Airport{Name: "Пулково", City: "Санкт-Петербург", Country: "Россия"}
	if err := db.Create(&svo).Error; err != nil {
		return err
	}
	if err := db.Create(&led).Error; err != nil {
		return err
	}

	flight := domain.Flight{
		FlightNumber:  "AFL031",
		Datetime:      time.Date(2021, 10, 8, 20, 0, 0, 0, time.UTC),
		FromAirportID: led.ID,
		ToAirportID:   svo.ID,
		Price:         1500,
	}
	return db.Create(&flight).Error
}
