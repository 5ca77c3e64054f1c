package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
)

func seedAccount(t *testing.T, db *gorm.DB, balance int) *domain.Privilege {
	t.Helper()
	p := &domain.Privilege{Username: "Test Max", Status: domain.StatusGold, Balance: balance}
	if err := CreatePrivilege(context.Background(), db, p); err != nil {
		t.Fatalf("CreatePrivilege: %v", err)
	}
	return p
}

func TestAppendHistory_AppliesSignedDiff(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedAccount(t, db, 500)

	debit := domain.PrivilegeHistory{
		TicketUID:     uuid.New(),
		Datetime:      time.Now().UTC(),
		BalanceDiff:   150,
		OperationType: domain.OpDebitTheAccount,
	}
	if err := AppendHistory(ctx, db, "Test Max", &debit); err != nil {
		t.Fatalf("AppendHistory debit: %v", err)
	}
	p, err := GetPrivilegeByUsername(ctx, db, "Test Max")
	if err != nil {
		t.Fatalf("GetPrivilegeByUsername: %v", err)
	}
	if p.Balance != 350 {
		t.Fatalf("balance after debit = %d, want 350", p.Balance)
	}

	fill := domain.PrivilegeHistory{
		TicketUID:     uuid.New(),
		Datetime:      time.Now().UTC(),
		BalanceDiff:   40,
		OperationType: domain.OpFillInBalance,
	}
	if err := AppendHistory(ctx, db, "Test Max", &fill); err != nil {
		t.Fatalf("AppendHistory fill: %v", err)
	}
	p, _ = GetPrivilegeByUsername(ctx, db, "Test Max")
	if p.Balance != 390 {
		t.Fatalf("balance after fill = %d, want 390", p.Balance)
	}

	entries, err := ListHistory(ctx, db, p.ID)
	if err != nil {
		t.Fatalf("ListHistory: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("history len = %d, want 2", len(entries))
	}
	if entries[0].PrivilegeID != p.ID {
		t.Fatalf("entry not linked to account: %+v", entries[0])
	}
}

func TestAppendHistory_UnknownAccount(t *testing.T) {
	db := openTestDB(t)
	entry := domain.PrivilegeHistory{
		TicketUID:     uuid.New(),
		Datetime:      time.Now().UTC(),
		BalanceDiff:   10,
		OperationType: domain.OpFillInBalance,
	}
	err := AppendHistory(context.Background(), db, "nobody", &entry)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRevertHistory_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	seedAccount(t, db, 500)
	uid := uuid.New()

	entry := domain.PrivilegeHistory{
		TicketUID:     uid,
		Datetime:      time.Now().UTC(),
		BalanceDiff:   400,
		OperationType: domain.OpDebitTheAccount,
	}
	if err := AppendHistory(ctx, db, "Test Max", &entry); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}
	p, _ := GetPrivilegeByUsername(ctx, db, "Test Max")
	if p.Balance != 100 {
		t.Fatalf("balance after debit = %d, want 100", p.Balance)
	}

	if err := RevertHistory(ctx, db, "Test Max", uid); err != nil {
		t.Fatalf("RevertHistory: %v", err)
	}
	p, _ = GetPrivilegeByUsername(ctx, db, "Test Max")
	if p.Balance != 500 {
		t.Fatalf("balance after revert = %d, want 500 (round trip)", p.Balance)
	}
	if _, err := GetHistoryItem(ctx, db, p.ID, uid); !errors.Is(err, ErrNotFound) {
		t.Fatalf("entry after revert: err = %v, want ErrNotFound", err)
	}

	if err := RevertHistory(ctx, db, "Test Max", uid); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second revert: err = %v, want ErrNotFound", err)
	}
}

func TestGetHistoryItem(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	p := seedAccount(t, db, 0)
	uid := uuid.New()

	entry := domain.PrivilegeHistory{
		TicketUID:     uid,
		Datetime:      time.Now().UTC(),
		BalanceDiff:   200,
		OperationType: domain.OpFillInBalance,
	}
	if err := AppendHistory(ctx, db, "Test Max", &entry); err != nil {
		t.Fatalf("AppendHistory: %v", err)
	}

	got, err := GetHistoryItem(ctx, db, p.ID, uid)
	if err != nil {
		t.Fatalf("GetHistoryItem: %v", err)
	}
	if got.BalanceDiff != 200 || got.OperationType != domain.OpFillInBalance {
		t.Fatalf("entry = %+v", got)
	}

	if _, err := GetHistoryItem(ctx, db, p.ID, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing entry: err = %v, want ErrNotFound", err)
	}
}
