package chapter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"alumni", RoleAlumni, false},
		{" Alum ", RoleAlumni, false},
		{"active_member", RoleActiveMember, false},
		{"active", RoleActiveMember, false},
		{"ADMIN", RoleAdmin, false},
		{"", RoleOther, false},
		{"other", RoleOther, false},
		{"pledge-master", "", true},
	}
	for _, tc := range tests {
		got, err := ParseRole(tc.in)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseRole(%q) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if tc.wantErr && !errors.Is(err, ErrInvalid) {
			t.Errorf("ParseRole(%q) error should wrap ErrInvalid, got %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseRole(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDuesAssignment_Outstanding(t *testing.T) {
	tests := []struct {
		name string
		a    DuesAssignment
		want float64
	}{
		{"unpaid", DuesAssignment{AmountDue: 200, Status: DuesPending}, 200},
		{"partial", DuesAssignment{AmountDue: 200, AmountPaid: 50, Status: DuesPartial}, 150},
		{"overpaid", DuesAssignment{AmountDue: 200, AmountPaid: 250, Status: DuesPaid}, 0},
		{"exempt", DuesAssignment{AmountDue: 200, Status: DuesExempt}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Outstanding(); got != tc.want {
				t.Errorf("Outstanding() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEvent_OverBudget(t *testing.T) {
	if (Event{Budget: 0, Spent: 10}).OverBudget() {
		t.Error("unbudgeted event should not count as over budget")
	}
	if !(Event{Budget: 100, Spent: 120}).OverBudget() {
		t.Error("expected over budget")
	}
	if got := (Event{Budget: 100, Spent: 120}).Remaining(); got != -20 {
		t.Errorf("Remaining() = %v, want -20", got)
	}
}

func TestConnection_Validate(t *testing.T) {
	if err := (Connection{RequesterID: "a", RecipientID: "a", Status: ConnectionPending}).Validate(); err == nil {
		t.Error("self connection should be rejected")
	}
	if err := (Connection{RequesterID: "a", RecipientID: "b", Status: "maybe"}).Validate(); err == nil {
		t.Error("unknown status should be rejected")
	}
	if err := (Connection{RequesterID: "a", RecipientID: "b", Status: ConnectionBlocked}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPage_NormalizeAndOffset(t *testing.T) {
	p := Page{}.Normalize(20, 100)
	if p.Number != 1 || p.Limit != 20 {
		t.Errorf("Normalize() = %+v, want page 1 limit 20", p)
	}
	p = Page{Number: 3, Limit: 500}.Normalize(20, 100)
	if p.Limit != 100 {
		t.Errorf("limit = %d, want capped 100", p.Limit)
	}
	if p.Offset() != 200 {
		t.Errorf("Offset() = %d, want 200", p.Offset())
	}
}

func TestNewPaged_HasMore(t *testing.T) {
	p := Page{Number: 2, Limit: 10}
	got := NewPaged([]int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 25, p)
	if !got.HasMore {
		t.Error("expected HasMore with 20 of 25 seen")
	}
	last := NewPaged([]int{1, 2, 3, 4, 5}, 25, Page{Number: 3, Limit: 10})
	if last.HasMore {
		t.Error("expected no more results on the last page")
	}
	empty := NewPaged[int](nil, 0, p)
	if empty.Items == nil {
		t.Error("items should never be nil")
	}
}

func TestAnnouncement_Active(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	if !(Announcement{}).Active(now) {
		t.Error("announcement without expiry should be active")
	}
	if (Announcement{ExpiresAt: now.Add(-time.Hour)}).Active(now) {
		t.Error("expired announcement should be inactive")
	}
}

func TestLoadFixture_FillsChapterAndNormalises(t *testing.T) {
	data := `{
		"chapter": {"id": "ch-1", "name": "Alpha Beta"},
		"members": [
			{"id": "m1", "full_name": "Ada", "role": "alum"},
			{"id": "m2", "full_name": "Ben", "role": "active"}
		],
		"connections": [{"requester_id": "m1", "recipient_id": "m2"}],
		"events": [{"id": "e1", "title": "Formal", "start_at": "2026-11-01T19:00:00Z", "budget": 500}],
		"dues_cycles": [{"id": "d1", "name": "Fall", "amount": 150, "due_date": "2026-09-30T00:00:00Z"}],
		"dues_assignments": [{"id": "a1", "cycle_id": "d1", "member_id": "m2", "amount_due": 150}]
	}`
	path := filepath.Join(t.TempDir(), "chapter.json")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Members[0].ChapterID != "ch-1" || f.Members[0].Role != RoleAlumni {
		t.Errorf("member not normalised: %+v", f.Members[0])
	}
	if f.Members[1].Role != RoleActiveMember {
		t.Errorf("role = %q, want active_member", f.Members[1].Role)
	}
	if f.Connections[0].Status != ConnectionPending {
		t.Errorf("connection status = %q, want pending", f.Connections[0].Status)
	}
	if f.Events[0].ChapterID != "ch-1" {
		t.Errorf("event chapter = %q", f.Events[0].ChapterID)
	}
	if f.DuesAssignments[0].Status != DuesPending {
		t.Errorf("dues status = %q, want pending", f.DuesAssignments[0].Status)
	}
}

func TestParseFixture_RejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"missing chapter": `{"members": []}`,
		"bad role":        `{"chapter": {"id": "c"}, "members": [{"id": "m", "full_name": "X", "role": "wizard"}]}`,
		"event no title":  `{"chapter": {"id": "c"}, "events": [{"id": "e", "start_at": "2026-01-01T00:00:00Z"}]}`,
		"malformed":       `{`,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseFixture([]byte(data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
