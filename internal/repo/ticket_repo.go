// This file provides repository functions for the Ticket model.
//
// Error semantics:
//   - When a ticket is not found, functions return ErrNotFound
//     (gorm.ErrRecordNotFound).
//   - When an insert would reuse an existing ticket UID, CreateTicket
//     returns ErrDuplicate and leaves the table unchanged.

package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
)

// ErrDuplicate is returned when a ticket UID is already present.
var ErrDuplicate = errors.New("ticket uid already exists")

// ListTicketsByUsername returns all tickets owned by username, ordered by ID.
// Returns an empty slice when the user has none.
func ListTicketsByUsername(ctx context.Context, db *gorm.DB, username string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := db.WithContext(ctx).
		Where("username = ?", username).
		Order("id").
		Find(&out).Error
	return out, err
}

// GetTicketByUID fetches a single ticket by its UID, or ErrNotFound.
func GetTicketByUID(ctx context.Context, db *gorm.DB, uid uuid.UUID) (*domain.Ticket, error) {
	var t domain.Ticket
	err := db.WithContext(ctx).
		Where("ticket_uid = ?", uid).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTicket inserts t. The UID must be unique; inserting an existing UID
// returns ErrDuplicate without mutating the table.
func CreateTicket(ctx context.Context, db *gorm.DB, t *domain.Ticket) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Ticket
		err := tx.Where("ticket_uid = ?", t.TicketUID).First(&existing).Error
		switch {
		case err == nil:
			return ErrDuplicate
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}
		return tx.Create(t).Error
	})
}

// DeleteTicketByUID removes a ticket row entirely. Returns ErrNotFound when
// no row matches.
func DeleteTicketByUID(ctx context.Context, db *gorm.DB, uid uuid.UUID) error {
	res := db.WithContext(ctx).
		Where("ticket_uid = ?", uid).
		Delete(&domain.Ticket{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
