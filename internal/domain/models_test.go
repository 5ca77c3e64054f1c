package domain

import "testing"

func TestTicketStatusValid(t *testing.T) {
	for _, s := range []TicketStatus{TicketPaid, TicketCanceled} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if TicketStatus("REFUNDED").Valid() {
		t.Error("unknown status must not validate")
	}
}

func TestPrivilegeStatusValid(t *testing.T) {
	for _, s := range []PrivilegeStatus{StatusBronze, StatusSilver, StatusGold} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if PrivilegeStatus("PLATINUM").Valid() {
		t.Error("unknown tier must not validate")
	}
}

func TestOperationTypeSigned(t *testing.T) {
	if got := OpFillInBalance.Signed(50); got != 50 {
		t.Errorf("fill: got %d, want 50", got)
	}
	if got := OpDebitTheAccount.Signed(50); got != -50 {
		t.Errorf("debit: got %d, want -50", got)
	}
	if OperationType("TRANSFER").Valid() {
		t.Error("unknown operation must not validate")
	}
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		Airport{}.TableName():          "airport",
		Flight{}.TableName():           "flight",
		Ticket{}.TableName():           "ticket",
		Privilege{}.TableName():        "privilege",
		PrivilegeHistory{}.TableName(): "privilege_history",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("table name %q, want %q", got, want)
		}
	}
}
