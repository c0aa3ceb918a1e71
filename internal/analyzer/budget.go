// Package analyzer aggregates chapter records into the budget, dues, feed and
// membership summaries shown on the officer dashboards.
package analyzer

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// UncategorizedLabel groups events that have no category.
const UncategorizedLabel = "uncategorized"

// vendorLookahead is how far ahead an event without a vendor is flagged.
const vendorLookahead = 30 * 24 * time.Hour

// BudgetSummary rolls a chapter's events up into planned versus actual spend.
type BudgetSummary struct {
	TotalBudget float64 `json:"total_budget"`
	TotalSpent  float64 `json:"total_spent"`
	Remaining   float64 `json:"remaining"`

	// UtilizationPercent is spent as a share of budget (0-100+). Zero when
	// nothing is budgeted.
	UtilizationPercent float64 `json:"utilization_percent"`

	EventCount int `json:"event_count"`

	// ByCategory is sorted by spend, highest first.
	ByCategory []CategoryRollup `json:"by_category"`

	// OverBudget lists events whose spend exceeds their budget, worst first.
	OverBudget []EventVariance `json:"over_budget"`

	// UnbudgetedUpcoming lists future events with no budget set.
	UnbudgetedUpcoming []chapter.Event `json:"unbudgeted_upcoming"`

	// UpcomingWithoutVendor lists events in the next 30 days with no vendor.
	UpcomingWithoutVendor []chapter.Event `json:"upcoming_without_vendor"`

	// MonthlySpend is ordered by month.
	MonthlySpend []MonthSpend `json:"monthly_spend"`
}

// CategoryRollup is the budget and spend of one event category.
type CategoryRollup struct {
	Category string  `json:"category"`
	Events   int     `json:"events"`
	Budget   float64 `json:"budget"`
	Spent    float64 `json:"spent"`
}

// EventVariance describes how far an event is over budget.
type EventVariance struct {
	EventID string  `json:"event_id"`
	Title   string  `json:"title"`
	Budget  float64 `json:"budget"`
	Spent   float64 `json:"spent"`
	Overage float64 `json:"overage"`
}

// MonthSpend is total spend for events starting in one calendar month.
type MonthSpend struct {
	Month string  `json:"month"` // YYYY-MM
	Spent float64 `json:"spent"`
}

// AnalyzeBudget aggregates events. Slices in the result are never nil.
func AnalyzeBudget(events []chapter.Event, now time.Time) BudgetSummary {
	s := BudgetSummary{
		ByCategory:            []CategoryRollup{},
		OverBudget:            []EventVariance{},
		UnbudgetedUpcoming:    []chapter.Event{},
		UpcomingWithoutVendor: []chapter.Event{},
		MonthlySpend:          []MonthSpend{},
	}

	cats := make(map[string]*CategoryRollup)
	months := make(map[string]float64)

	for _, e := range events {
		s.EventCount++
		s.TotalBudget += e.Budget
		s.TotalSpent += e.Spent

		key := strings.ToLower(strings.TrimSpace(e.Category))
		if key == "" {
			key = UncategorizedLabel
		}
		r, ok := cats[key]
		if !ok {
			r = &CategoryRollup{Category: key}
			cats[key] = r
		}
		r.Events++
		r.Budget += e.Budget
		r.Spent += e.Spent

		if !e.StartAt.IsZero() {
			months[e.StartAt.Format("2006-01")] += e.Spent
		}

		if e.OverBudget() {
			s.OverBudget = append(s.OverBudget, EventVariance{
				EventID: e.ID,
				Title:   e.Title,
				Budget:  e.Budget,
				Spent:   e.Spent,
				Overage: e.Spent - e.Budget,
			})
		}

		upcoming := e.StartAt.After(now)
		if upcoming && e.Budget == 0 {
			s.UnbudgetedUpcoming = append(s.UnbudgetedUpcoming, e)
		}
		if upcoming && e.VendorID == "" && e.StartAt.Sub(now) <= vendorLookahead {
			s.UpcomingWithoutVendor = append(s.UpcomingWithoutVendor, e)
		}
	}

	s.Remaining = s.TotalBudget - s.TotalSpent
	if s.TotalBudget > 0 {
		s.UtilizationPercent = s.TotalSpent / s.TotalBudget * 100
	}

	for _, r := range cats {
		s.ByCategory = append(s.ByCategory, *r)
	}
	slices.SortFunc(s.ByCategory, func(a, b CategoryRollup) int {
		if c := cmp.Compare(b.Spent, a.Spent); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})

	slices.SortStableFunc(s.OverBudget, func(a, b EventVariance) int {
		return cmp.Compare(b.Overage, a.Overage)
	})

	byStart := func(a, b chapter.Event) int { return a.StartAt.Compare(b.StartAt) }
	slices.SortStableFunc(s.UnbudgetedUpcoming, byStart)
	slices.SortStableFunc(s.UpcomingWithoutVendor, byStart)

	for m, spent := range months {
		s.MonthlySpend = append(s.MonthlySpend, MonthSpend{Month: m, Spent: spent})
	}
	slices.SortFunc(s.MonthlySpend, func(a, b MonthSpend) int { return strings.Compare(a.Month, b.Month) })

	return s
}
