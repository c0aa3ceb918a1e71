package analyzer

import (
	"cmp"
	"slices"
	"time"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// DuesSummary describes collection progress for one billing cycle.
type DuesSummary struct {
	CycleID   string    `json:"cycle_id"`
	CycleName string    `json:"cycle_name"`
	DueDate   time.Time `json:"due_date"`

	Assigned    int     `json:"assigned"`
	Exempt      int     `json:"exempt"`
	Expected    float64 `json:"expected"`
	Collected   float64 `json:"collected"`
	Outstanding float64 `json:"outstanding"`

	// CollectionRate is collected over expected in [0, 1]. A cycle with
	// nothing expected counts as fully collected.
	CollectionRate float64 `json:"collection_rate"`

	StatusCounts map[chapter.DuesStatus]int `json:"status_counts"`

	// Overdue lists unsettled assignments past the due date plus the grace
	// period, longest overdue first.
	Overdue []OverdueMember `json:"overdue"`
}

// OverdueMember is one member who owes money past the grace period.
type OverdueMember struct {
	AssignmentID string  `json:"assignment_id"`
	MemberID     string  `json:"member_id"`
	Outstanding  float64 `json:"outstanding"`
	DaysOverdue  int     `json:"days_overdue"`
}

// AnalyzeDues summarises a cycle's assignments as of now. An assignment
// becomes overdue once now is after DueDate + graceDays.
func AnalyzeDues(cycle chapter.DuesCycle, assignments []chapter.DuesAssignment, now time.Time, graceDays int) DuesSummary {
	s := DuesSummary{
		CycleID:      cycle.ID,
		CycleName:    cycle.Name,
		DueDate:      cycle.DueDate,
		StatusCounts: make(map[chapter.DuesStatus]int),
		Overdue:      []OverdueMember{},
	}
	if graceDays < 0 {
		graceDays = 0
	}
	cutoff := cycle.DueDate.AddDate(0, 0, graceDays)

	for _, a := range assignments {
		s.Assigned++
		s.StatusCounts[a.Status]++
		if a.Status == chapter.DuesExempt {
			s.Exempt++
			continue
		}
		s.Expected += a.AmountDue
		s.Collected += min(a.AmountPaid, a.AmountDue)
		s.Outstanding += a.Outstanding()

		if !a.Settled() && !cycle.DueDate.IsZero() && now.After(cutoff) {
			s.Overdue = append(s.Overdue, OverdueMember{
				AssignmentID: a.ID,
				MemberID:     a.MemberID,
				Outstanding:  a.Outstanding(),
				DaysOverdue:  int(now.Sub(cycle.DueDate).Hours() / 24),
			})
		}
	}

	if s.Expected > 0 {
		s.CollectionRate = s.Collected / s.Expected
	} else {
		s.CollectionRate = 1
	}

	slices.SortStableFunc(s.Overdue, func(a, b OverdueMember) int {
		if c := cmp.Compare(b.DaysOverdue, a.DaysOverdue); c != 0 {
			return c
		}
		return cmp.Compare(b.Outstanding, a.Outstanding)
	})
	return s
}
