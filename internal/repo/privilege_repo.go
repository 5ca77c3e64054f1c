// This file provides repository functions for loyalty accounts and their
// ledger history. Balance mutations and history writes happen inside a
// single transaction so the invariant "balance = opening + signed sum of
// present entries" holds under concurrent appends and reverts.

package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
)

// GetPrivilegeByUsername fetches a loyalty account, or ErrNotFound.
func GetPrivilegeByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.Privilege, error) {
	var p domain.Privilege
	err := db.WithContext(ctx).
		Where("username = ?", username).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListHistory returns all ledger entries of the account, oldest first.
func ListHistory(ctx context.Context, db *gorm.DB, privilegeID int) ([]domain.PrivilegeHistory, error) {
	var out []domain.PrivilegeHistory
	err := db.WithContext(ctx).
		Where("privilege_id = ?", privilegeID).
		Order("id").
		Find(&out).Error
	return out, err
}

// GetHistoryItem fetches the account's entry for a ticket UID, or ErrNotFound.
func GetHistoryItem(ctx context.Context, db *gorm.DB, privilegeID int, uid uuid.UUID) (*domain.PrivilegeHistory, error) {
	var h domain.PrivilegeHistory
	err := db.WithContext(ctx).
		Where("privilege_id = ? AND ticket_uid = ?", privilegeID, uid).
		First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// AppendHistory inserts a ledger entry for the named account and applies its
// signed diff to the balance, atomically. entry.PrivilegeID is set from the
// resolved account. Returns ErrNotFound when the account does not exist.
func AppendHistory(ctx context.Context, db *gorm.DB, username string, entry *domain.PrivilegeHistory) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Privilege
		if err := tx.Where("username = ?", username).First(&p).Error; err != nil {
			return err
		}
		entry.PrivilegeID = p.ID
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		diff := entry.OperationType.Signed(entry.BalanceDiff)
		return tx.Model(&domain.Privilege{}).
			Where("id = ?", p.ID).
			Update("balance", gorm.Expr("balance + ?", diff)).Error
	})
}

// RevertHistory deletes the account's entry for a ticket UID and undoes its
// balance effect, atomically. Returns ErrNotFound when either the account or
// the entry is missing.
func RevertHistory(ctx context.Context, db *gorm.DB, username string, uid uuid.UUID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Privilege
		if err := tx.Where("username = ?", username).First(&p).Error; err != nil {
			return err
		}
		var h domain.PrivilegeHistory
		err := tx.Where("privilege_id = ? AND ticket_uid = ?", p.ID, uid).First(&h).Error
		if err != nil {
			return err
		}
		if err := tx.Delete(&h).Error; err != nil {
			return err
		}
		diff := h.OperationType.Signed(h.BalanceDiff)
		return tx.Model(&domain.Privilege{}).
			Where("id = ?", p.ID).
			Update("balance", gorm.Expr("balance - ?", diff)).Error
	})
}

// CreatePrivilege inserts a new loyalty account. Used by tests and seeding.
func CreatePrivilege(ctx context.Context, db *gorm.DB, p *domain.Privilege) error {
	err := db.WithContext(ctx).Create(p).Error
	if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}
