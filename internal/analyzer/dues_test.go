package analyzer

import (
	"testing"
	"time"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

func TestAnalyzeDues(t *testing.T) {
	cycle := chapter.DuesCycle{ID: "c1", Name: "Fall", Amount: 100, DueDate: now.AddDate(0, 0, -10)}
	assignments := []chapter.DuesAssignment{
		{ID: "1", MemberID: "paid", AmountDue: 100, AmountPaid: 100, Status: chapter.DuesPaid},
		{ID: "2", MemberID: "partial", AmountDue: 100, AmountPaid: 40, Status: chapter.DuesPartial},
		{ID: "3", MemberID: "pending", AmountDue: 100, Status: chapter.DuesPending},
		{ID: "4", MemberID: "exempt", Status: chapter.DuesExempt},
	}

	tests := []struct {
		name        string
		grace       int
		wantOverdue int
	}{
		{"no grace", 0, 2},
		{"inside grace", 14, 0},
		{"grace elapsed", 7, 2},
		{"negative grace treated as zero", -5, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := AnalyzeDues(cycle, assignments, now, tt.grace)
			if len(s.Overdue) != tt.wantOverdue {
				t.Errorf("Overdue = %d, want %d", len(s.Overdue), tt.wantOverdue)
			}
		})
	}

	s := AnalyzeDues(cycle, assignments, now, 0)
	if s.Assigned != 4 || s.Exempt != 1 {
		t.Errorf("Assigned/Exempt = %d/%d, want 4/1", s.Assigned, s.Exempt)
	}
	if !approx(s.Expected, 300) || !approx(s.Collected, 140) || !approx(s.Outstanding, 160) {
		t.Errorf("amounts = %.2f/%.2f/%.2f, want 300/140/160", s.Expected, s.Collected, s.Outstanding)
	}
	if !approx(s.CollectionRate, 140.0/300.0) {
		t.Errorf("CollectionRate = %.3f", s.CollectionRate)
	}
	if s.StatusCounts[chapter.DuesPaid] != 1 || s.StatusCounts[chapter.DuesExempt] != 1 {
		t.Errorf("StatusCounts = %v", s.StatusCounts)
	}
	if s.Overdue[0].MemberID != "pending" || s.Overdue[0].DaysOverdue != 10 {
		t.Errorf("first overdue = %+v, want pending at 10 days", s.Overdue[0])
	}
}

func TestAnalyzeDues_EmptyCycleFullyCollected(t *testing.T) {
	s := AnalyzeDues(chapter.DuesCycle{ID: "c", DueDate: now}, nil, now.Add(time.Hour), 0)
	if s.CollectionRate != 1 {
		t.Errorf("CollectionRate = %.2f, want 1", s.CollectionRate)
	}
	if s.Overdue == nil {
		t.Error("Overdue should be non-nil")
	}
}

func TestAnalyzeDues_OverpaymentCapsCollected(t *testing.T) {
	cycle := chapter.DuesCycle{ID: "c", DueDate: now}
	s := AnalyzeDues(cycle, []chapter.DuesAssignment{
		{ID: "1", MemberID: "m", AmountDue: 50, AmountPaid: 80, Status: chapter.DuesPaid},
	}, now, 0)
	if !approx(s.Collected, 50) || s.CollectionRate != 1 {
		t.Errorf("Collected/Rate = %.2f/%.2f, want 50/1", s.Collected, s.CollectionRate)
	}
}
