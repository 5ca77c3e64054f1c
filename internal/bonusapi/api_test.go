package bonusapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BlackLightinger/rsoi-lab-03/internal/domain"
	"github.com/BlackLightinger/rsoi-lab-03/internal/repo"
)

func setup(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "privileges.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	r := gin.New()
	Register(r, db)
	return r, db
}

func seedAccount(t *testing.T, db *gorm.DB, balance int) *domain.Privilege {
	t.Helper()
	p := &domain.Privilege{Username: "test_client", Status: domain.StatusGold, Balance: balance}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create privilege: %v", err)
	}
	return p
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAccountLookup(t *testing.T) {
	r, db := setup(t)
	seedAccount(t, db, 500)

	w := do(t, r, http.MethodGet, "/privilege/test_client", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var p domain.Privilege
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Username != "test_client" || p.Status != domain.StatusGold || p.Balance != 500 {
		t.Fatalf("account = %+v", p)
	}

	w = do(t, r, http.MethodGet, "/privilege/nonexistent", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing account status = %d, want 404", w.Code)
	}
}

func TestAppendHistory_MutatesBalance(t *testing.T) {
	r, db := setup(t)
	seedAccount(t, db, 500)
	uid := uuid.New()

	w := do(t, r, http.MethodPost, "/privilege/test_client/history", domain.TransactionRequest{
		TicketUID:     uid,
		Datetime:      time.Now().UTC(),
		BalanceDiff:   150,
		OperationType: domain.OpDebitTheAccount,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("append status = %d, body = %s", w.Code, w.Body.String())
	}

	acc := do(t, r, http.MethodGet, "/privilege/test_client", nil)
	var p domain.Privilege
	if err := json.Unmarshal(acc.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Balance != 350 {
		t.Fatalf("balance = %d, want 350", p.Balance)
	}

	item := do(t, r, http.MethodGet, "/privilege/test_client/history/"+uid.String(), nil)
	if item.Code != http.StatusOK {
		t.Fatalf("item status = %d", item.Code)
	}
	var entry domain.PrivilegeHistory
	if err := json.Unmarshal(item.Body.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal entry: %v", err)
	}
	if entry.TicketUID != uid || entry.OperationType != domain.OpDebitTheAccount || entry.BalanceDiff != 150 {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestAppendHistory_UnknownOperation(t *testing.T) {
	r, db := setup(t)
	seedAccount(t, db, 500)

	w := do(t, r, http.MethodPost, "/privilege/test_client/history", map[string]any{
		"ticket_uid":     uuid.NewString(),
		"balance_diff":   100,
		"operation_type": "INVALID_OPERATION",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	// Balance untouched.
	acc := do(t, r, http.MethodGet, "/privilege/test_client", nil)
	var p domain.Privilege
	if err := json.Unmarshal(acc.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Balance != 500 {
		t.Fatalf("balance = %d, want 500", p.Balance)
	}
}

func TestAppendHistory_UnknownAccount(t *testing.T) {
	r, _ := setup(t)
	w := do(t, r, http.MethodPost, "/privilege/nobody/history", domain.TransactionRequest{
		TicketUID:     uuid.New(),
		BalanceDiff:   10,
		OperationType: domain.OpFillInBalance,
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestRevertHistory_RoundTrip(t *testing.T) {
	r, db := setup(t)
	seedAccount(t, db, 500)
	uid := uuid.New()

	do(t, r, http.MethodPost, "/privilege/test_client/history", domain.TransactionRequest{
		TicketUID:     uid,
		Datetime:      time.Now().UTC(),
		BalanceDiff:   400,
		OperationType: domain.OpDebitTheAccount,
	})

	w := do(t, r, http.MethodDelete, "/privilege/test_client/history/"+uid.String(), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("revert status = %d, want 204", w.Code)
	}

	// Append/delete pair leaves the balance where it started.
	acc := do(t, r, http.MethodGet, "/privilege/test_client", nil)
	var p domain.Privilege
	if err := json.Unmarshal(acc.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Balance != 500 {
		t.Fatalf("balance = %d, want 500", p.Balance)
	}

	w = do(t, r, http.MethodGet, "/privilege/test_client/history/"+uid.String(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("item after revert status = %d, want 404", w.Code)
	}
	w = do(t, r, http.MethodDelete, "/privilege/test_client/history/"+uid.String(), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("second revert status = %d, want 404", w.Code)
	}
}

func TestHistoryList(t *testing.T) {
	r, db := setup(t)
	seedAccount(t, db, 0)

	for i := 0; i < 3; i++ {
		do(t, r, http.MethodPost, "/privilege/test_client/history", domain.TransactionRequest{
			TicketUID:     uuid.New(),
			Datetime:      time.Now().UTC(),
			BalanceDiff:   10,
			OperationType: domain.OpFillInBalance,
		})
	}

	w := do(t, r, http.MethodGet, "/privilege/test_client/history", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var entries []domain.PrivilegeHistory
	if err := json.Unmarshal(w.Body.Bytes(), &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
}
