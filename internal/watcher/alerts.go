package watcher

import (
	"fmt"
	"slices"
	"strings"
)

// BacklogThreshold is the pending connection count that raises a warning.
const BacklogThreshold = 5

// rateEpsilon ignores floating point noise in collection rate comparisons.
const rateEpsilon = 0.005

// Compare detects notable changes between two watch states and returns alerts.
// It checks for critical, warning, and info-level changes.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareCritical(prev, curr)...)
	alerts = append(alerts, compareWarning(prev, curr)...)
	alerts = append(alerts, compareInfo(prev, curr)...)

	return alerts
}

// compareCritical detects critical-level changes.
func compareCritical(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := curr.Timestamp

	// Members who became overdue since the last snapshot.
	for _, id := range sortedKeys(curr.Cycles) {
		c := curr.Cycles[id]
		before := prev.Cycles[id].Overdue
		var fresh []string
		var owed float64
		for member, amount := range c.Overdue {
			if _, was := before[member]; !was {
				fresh = append(fresh, member)
				owed += amount
			}
		}
		if len(fresh) == 0 {
			continue
		}
		slices.Sort(fresh)
		alerts = append(alerts, Alert{
			Level:   LevelCritical,
			Title:   fmt.Sprintf("New overdue dues: %s", c.Name),
			Message: fmt.Sprintf("%d member(s) now overdue, $%.2f outstanding (%s)", len(fresh), owed, strings.Join(fresh, ", ")),
			Time:    now,
		})
	}

	return alerts
}

// compareWarning detects warning-level changes.
func compareWarning(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := curr.Timestamp

	// Events that crossed their budget.
	for _, id := range sortedKeys(curr.OverBudget) {
		if _, was := prev.OverBudget[id]; was {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   LevelWarning,
			Title:   fmt.Sprintf("Over budget: %s", curr.OverBudget[id]),
			Message: "Recorded spend now exceeds the event budget",
			Time:    now,
		})
	}

	// Pending connection backlog reached the threshold.
	if curr.PendingConnections >= BacklogThreshold && prev.PendingConnections < BacklogThreshold {
		alerts = append(alerts, Alert{
			Level:   LevelWarning,
			Title:   "Connection requests piling up",
			Message: fmt.Sprintf("%d requests pending (was %d)", curr.PendingConnections, prev.PendingConnections),
			Time:    now,
		})
	}

	// Collection rate dropped, usually because new members were billed.
	for _, id := range sortedKeys(curr.Cycles) {
		c := curr.Cycles[id]
		p, existed := prev.Cycles[id]
		if !existed || c.CollectionRate >= p.CollectionRate-rateEpsilon {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   LevelWarning,
			Title:   fmt.Sprintf("Collection rate dropped: %s", c.Name),
			Message: fmt.Sprintf("%.0f%% collected (was %.0f%%)", c.CollectionRate*100, p.CollectionRate*100),
			Time:    now,
		})
	}

	return alerts
}

// compareInfo detects informational changes.
func compareInfo(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := curr.Timestamp

	// Payments received.
	for _, id := range sortedKeys(curr.Cycles) {
		c := curr.Cycles[id]
		p, existed := prev.Cycles[id]
		if !existed || c.CollectionRate <= p.CollectionRate+rateEpsilon {
			continue
		}
		alerts = append(alerts, Alert{
			Level:   LevelInfo,
			Title:   fmt.Sprintf("Payments received: %s", c.Name),
			Message: fmt.Sprintf("%.0f%% collected (was %.0f%%)", c.CollectionRate*100, p.CollectionRate*100),
			Time:    now,
		})
	}

	// New dues cycle opened.
	for _, id := range sortedKeys(curr.Cycles) {
		if _, existed := prev.Cycles[id]; !existed {
			alerts = append(alerts, Alert{
				Level:   LevelInfo,
				Title:   fmt.Sprintf("New dues cycle: %s", curr.Cycles[id].Name),
				Message: "Billing cycle opened",
				Time:    now,
			})
		}
	}

	// Backlog cleared.
	if prev.PendingConnections >= BacklogThreshold && curr.PendingConnections < BacklogThreshold {
		alerts = append(alerts, Alert{
			Level:   LevelInfo,
			Title:   "Connection backlog cleared",
			Message: fmt.Sprintf("%d requests pending (was %d)", curr.PendingConnections, prev.PendingConnections),
			Time:    now,
		})
	}

	// New spend recorded.
	if curr.TotalSpent > prev.TotalSpent {
		alerts = append(alerts, Alert{
			Level:   LevelInfo,
			Title:   "Event spend recorded",
			Message: fmt.Sprintf("Total spend $%.2f (was $%.2f)", curr.TotalSpent, prev.TotalSpent),
			Time:    now,
		})
	}

	return alerts
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

