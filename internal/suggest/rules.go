package suggest

import (
	"fmt"
	"strings"
	"time"
)

// Thresholds used by the built-in rules.
const (
	LowCollectionThreshold   = 0.6
	PendingBacklogThreshold  = 5
	IncompleteShareThreshold = 0.25
	StaleAnnouncementAge     = 30 * 24 * time.Hour
)

// OverdueDues flags each open cycle with members past the grace period.
func OverdueDues(ctx *ChapterContext) []Suggestion {
	var suggestions []Suggestion
	for _, d := range ctx.Dues {
		if len(d.Overdue) == 0 {
			continue
		}
		var owed float64
		for _, o := range d.Overdue {
			owed += o.Outstanding
		}
		priority := PriorityHigh
		if len(d.Overdue) >= 10 {
			priority = PriorityCritical
		}
		suggestions = append(suggestions, Suggestion{
			Category: CategoryDues,
			Priority: priority,
			Title:    fmt.Sprintf("Follow up on %d overdue dues for %s", len(d.Overdue), d.CycleName),
			Description: fmt.Sprintf(
				"%d member(s) owe $%.2f in total for %q, due %s. "+
					"Send reminders or set up payment plans.",
				len(d.Overdue), owed, d.CycleName, d.DueDate.Format("Jan 2"),
			),
			ImpactScore: ComputeImpact(len(d.Overdue), 1.0, 5.0, 5.0),
		})
	}
	return suggestions
}

// LowCollectionRate flags cycles that have passed their due date with less
// than LowCollectionThreshold of the expected amount collected.
func LowCollectionRate(ctx *ChapterContext) []Suggestion {
	var suggestions []Suggestion
	for _, d := range ctx.Dues {
		if d.Expected == 0 || d.CollectionRate >= LowCollectionThreshold || !ctx.Now.After(d.DueDate) {
			continue
		}
		payers := d.Assigned - d.Exempt
		suggestions = append(suggestions, Suggestion{
			Category: CategoryDues,
			Priority: PriorityHigh,
			Title:    fmt.Sprintf("Collection for %s is at %.0f%%", d.CycleName, d.CollectionRate*100),
			Description: fmt.Sprintf(
				"Only $%.2f of $%.2f has been collected. "+
					"Consider an announcement at the next chapter meeting.",
				d.Collected, d.Expected,
			),
			ImpactScore: ComputeImpact(payers, 1-d.CollectionRate, 3.0, 10.0),
		})
	}
	return suggestions
}

// OverBudgetEvents flags events whose spend exceeded their budget.
func OverBudgetEvents(ctx *ChapterContext) []Suggestion {
	over := ctx.Budget.OverBudget
	if len(over) == 0 {
		return nil
	}
	var total float64
	titles := make([]string, 0, len(over))
	for _, v := range over {
		total += v.Overage
		titles = append(titles, v.Title)
	}
	return []Suggestion{{
		Category: CategoryBudget,
		Priority: PriorityHigh,
		Title:    fmt.Sprintf("%d event(s) over budget by $%.2f", len(over), total),
		Description: fmt.Sprintf(
			"Over budget: %s. Review receipts and adjust budgets for the rest of the term.",
			strings.Join(titles, ", "),
		),
		ImpactScore: ComputeImpact(len(over), 1.0, total/100+1, 15.0),
	}}
}

// UnbudgetedEvents flags upcoming events with no budget set.
func UnbudgetedEvents(ctx *ChapterContext) []Suggestion {
	events := ctx.Budget.UnbudgetedUpcoming
	if len(events) == 0 {
		return nil
	}
	return []Suggestion{{
		Category: CategoryBudget,
		Priority: PriorityMedium,
		Title:    fmt.Sprintf("Set budgets for %d upcoming event(s)", len(events)),
		Description: fmt.Sprintf(
			"Next unbudgeted event: %q on %s.",
			events[0].Title, events[0].StartAt.Format("Jan 2"),
		),
		ImpactScore: ComputeImpact(len(events), 0.8, 2.0, 5.0),
	}}
}

// EventsWithoutVendor flags events in the next 30 days with no vendor booked.
func EventsWithoutVendor(ctx *ChapterContext) []Suggestion {
	var suggestions []Suggestion
	for _, e := range ctx.Budget.UpcomingWithoutVendor {
		days := int(e.StartAt.Sub(ctx.Now).Hours() / 24)
		priority := PriorityMedium
		urgency := 0.5
		if days <= 7 {
			priority = PriorityHigh
			urgency = 1.0
		}
		suggestions = append(suggestions, Suggestion{
			Category:    CategoryEvents,
			Priority:    priority,
			Title:       fmt.Sprintf("Book a vendor for %s", e.Title),
			Description: fmt.Sprintf("%q starts in %d day(s) and has no vendor on file.", e.Title, days),
			ImpactScore: ComputeImpact(1, urgency, 4.0, 2.0),
		})
	}
	return suggestions
}

// IncompleteProfiles suggests a profile drive when more than a quarter of
// members have sparse profiles.
func IncompleteProfiles(ctx *ChapterContext) []Suggestion {
	m := ctx.Members
	if m.Total == 0 {
		return nil
	}
	share := float64(len(m.Incomplete)) / float64(m.Total)
	if share <= IncompleteShareThreshold {
		return nil
	}
	return []Suggestion{{
		Category: CategoryMembership,
		Priority: PriorityLow,
		Title:    fmt.Sprintf("%d member profiles are incomplete", len(m.Incomplete)),
		Description: fmt.Sprintf(
			"%.0f%% of members have filled in less than half of their profile. "+
				"Complete profiles rank higher in the networking spotlight.",
			share*100,
		),
		ImpactScore: ComputeImpact(len(m.Incomplete), share, 1.0, 10.0),
	}}
}

// PendingConnections flags a backlog of unanswered connection requests.
func PendingConnections(ctx *ChapterContext) []Suggestion {
	n := ctx.Members.PendingConnections
	if n < PendingBacklogThreshold {
		return nil
	}
	return []Suggestion{{
		Category:    CategoryEngagement,
		Priority:    PriorityLow,
		Title:       fmt.Sprintf("%d connection requests are waiting", n),
		Description: "Remind members to review pending networking requests on their dashboard.",
		ImpactScore: ComputeImpact(n, 0.5, 1.0, 5.0),
	}}
}

// QuietFeed flags a chapter feed with no posts in the last week.
func QuietFeed(ctx *ChapterContext) []Suggestion {
	if ctx.Members.Total == 0 || ctx.Feed.Last7Days > 0 {
		return nil
	}
	desc := "No posts in the last 7 days."
	if !ctx.Feed.LastPostAt.IsZero() {
		desc = fmt.Sprintf("No posts since %s.", ctx.Feed.LastPostAt.Format("Jan 2"))
	}
	return []Suggestion{{
		Category:    CategoryEngagement,
		Priority:    PriorityLow,
		Title:       "The chapter feed has gone quiet",
		Description: desc + " Share an event recap or member spotlight to restart activity.",
		ImpactScore: ComputeImpact(ctx.Members.Total, 0.2, 1.0, 10.0),
	}}
}

// StaleAnnouncements flags a dashboard whose newest active announcement is
// older than 30 days, or that has none.
func StaleAnnouncements(ctx *ChapterContext) []Suggestion {
	if ctx.Members.Total == 0 {
		return nil
	}
	var newest time.Time
	for _, a := range ctx.Announcements {
		if a.CreatedAt.After(newest) {
			newest = a.CreatedAt
		}
	}
	if !newest.IsZero() && ctx.Now.Sub(newest) <= StaleAnnouncementAge {
		return nil
	}
	desc := "There are no active announcements."
	if !newest.IsZero() {
		desc = fmt.Sprintf("The newest announcement was posted %s.", newest.Format("Jan 2"))
	}
	return []Suggestion{{
		Category:    CategoryMembership,
		Priority:    PriorityLow,
		Title:       "Post a chapter announcement",
		Description: desc,
		ImpactScore: ComputeImpact(ctx.Members.Total, 0.1, 1.0, 5.0),
	}}
}
