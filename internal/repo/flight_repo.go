// This file provides repository functions for the flight catalog.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.

package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the API layers.
var ErrNotFound = gorm.ErrRecordNotFound

// CountFlights returns the total number of flights in the catalog.
func CountFlights(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Flight{}).
		Count(&total).Error
	return total, err
}

// ListFlightsPage returns a page of flights ordered by ID, with both airport
// associations preloaded. The caller computes offset and limit
// (e.g. (page-1)*pageSize).
func ListFlightsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Flight, error) {
	var out []domain.Flight
	err := db.WithContext(ctx).
		Preload("FromAirport").
		Preload("ToAirport").
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetFlightByNumber fetches a flight by its flight number with airports
// preloaded. Returns ErrNotFound when the flight does not exist.
func GetFlightByNumber(ctx context.Context, db *gorm.DB, number string) (*domain.Flight, error) {
	var f domain.Flight
	err := db.WithContext(ctx).
		Preload("FromAirport").
		Preload("ToAirport").
		Where("flight_number = ?", number).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}
