package watcher

import (
	"strings"
	"testing"
	"time"
)

func makeState() *WatchState {
	return &WatchState{
		Timestamp:  time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC),
		Cycles:     make(map[string]CycleState),
		OverBudget: make(map[string]string),
	}
}

func cycle(rate float64, overdue map[string]float64) CycleState {
	if overdue == nil {
		overdue = map[string]float64{}
	}
	return CycleState{Name: "Fall", CollectionRate: rate, Overdue: overdue}
}

func findAlert(alerts []Alert, level, titlePrefix string) *Alert {
	for i := range alerts {
		if alerts[i].Level == level && strings.HasPrefix(alerts[i].Title, titlePrefix) {
			return &alerts[i]
		}
	}
	return nil
}

func TestCompare_IdenticalStates(t *testing.T) {
	prev := makeState()
	prev.Cycles["c1"] = cycle(0.5, map[string]float64{"m1": 100})
	prev.OverBudget["e1"] = "Formal"
	prev.PendingConnections = 7

	curr := makeState()
	curr.Cycles["c1"] = cycle(0.5, map[string]float64{"m1": 100})
	curr.OverBudget["e1"] = "Formal"
	curr.PendingConnections = 7

	if alerts := Compare(prev, curr); len(alerts) != 0 {
		t.Errorf("expected 0 alerts for identical states, got %d", len(alerts))
		for _, a := range alerts {
			t.Logf("  [%s] %s: %s", a.Level, a.Title, a.Message)
		}
	}
}

func TestCompare_NewOverdue(t *testing.T) {
	prev := makeState()
	prev.Cycles["c1"] = cycle(0.5, map[string]float64{"m1": 100})
	curr := makeState()
	curr.Cycles["c1"] = cycle(0.5, map[string]float64{"m1": 100, "m3": 50, "m2": 25})

	a := findAlert(Compare(prev, curr), LevelCritical, "New overdue dues")
	if a == nil {
		t.Fatal("expected critical overdue alert")
	}
	if !strings.Contains(a.Message, "2 member(s)") || !strings.Contains(a.Message, "$75.00") ||
		!strings.Contains(a.Message, "m2, m3") {
		t.Errorf("unexpected message %q", a.Message)
	}
}

func TestCompare_EventCrossesBudget(t *testing.T) {
	prev := makeState()
	curr := makeState()
	curr.OverBudget["e1"] = "Formal"

	if findAlert(Compare(prev, curr), LevelWarning, "Over budget: Formal") == nil {
		t.Error("expected over budget warning")
	}
}

func TestCompare_Backlog(t *testing.T) {
	prev := makeState()
	prev.PendingConnections = BacklogThreshold - 1
	curr := makeState()
	curr.PendingConnections = BacklogThreshold

	if findAlert(Compare(prev, curr), LevelWarning, "Connection requests") == nil {
		t.Error("expected backlog warning at threshold")
	}
	if findAlert(Compare(curr, prev), LevelInfo, "Connection backlog cleared") == nil {
		t.Error("expected backlog cleared info")
	}
}

func TestCompare_CollectionRate(t *testing.T) {
	prev := makeState()
	prev.Cycles["c1"] = cycle(0.8, nil)
	curr := makeState()
	curr.Cycles["c1"] = cycle(0.6, nil)

	if findAlert(Compare(prev, curr), LevelWarning, "Collection rate dropped") == nil {
		t.Error("expected collection drop warning")
	}
	if findAlert(Compare(curr, prev), LevelInfo, "Payments received") == nil {
		t.Error("expected payments info")
	}

	curr.Cycles["c1"] = cycle(0.799, nil)
	if alerts := Compare(prev, curr); len(alerts) != 0 {
		t.Errorf("tiny change should not alert, got %+v", alerts)
	}
}

func TestCompare_NewCycleAndSpend(t *testing.T) {
	prev := makeState()
	prev.TotalSpent = 100
	curr := makeState()
	curr.TotalSpent = 150
	curr.Cycles["c2"] = cycle(0, nil)

	alerts := Compare(prev, curr)
	if findAlert(alerts, LevelInfo, "New dues cycle") == nil {
		t.Error("expected new cycle info")
	}
	if findAlert(alerts, LevelInfo, "Event spend recorded") == nil {
		t.Error("expected spend info")
	}
}

func TestSortedKeys(t *testing.T) {
	got := sortedKeys(map[string]int{"b": 1, "a": 2, "c": 3})
	if strings.Join(got, ",") != "a,b,c" {
		t.Errorf("sortedKeys = %v", got)
	}
}
