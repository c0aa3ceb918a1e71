package suggest

import (
	"math"
	"slices"
	"testing"
	"time"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

// busyContext triggers every built-in rule.
func busyContext() *ChapterContext {
	return &ChapterContext{
		ChapterName: "Alpha Beta",
		Now:         now,
		Members: analyzer.MembershipSummary{
			Total:              8,
			Incomplete:         []string{"a", "b", "c", "d"},
			PendingConnections: 6,
		},
		Budget: analyzer.BudgetSummary{
			OverBudget: []analyzer.EventVariance{{EventID: "e1", Title: "Formal", Budget: 100, Spent: 300, Overage: 200}},
			UnbudgetedUpcoming: []chapter.Event{
				{ID: "e2", Title: "Gala", StartAt: now.AddDate(0, 1, 0)},
			},
			UpcomingWithoutVendor: []chapter.Event{
				{ID: "e3", Title: "Mixer", StartAt: now.AddDate(0, 0, 3)},
			},
		},
		Dues: []analyzer.DuesSummary{{
			CycleID: "c1", CycleName: "Fall", DueDate: now.AddDate(0, 0, -20),
			Assigned: 8, Expected: 800, Collected: 200, CollectionRate: 0.25,
			Overdue: []analyzer.OverdueMember{{MemberID: "m1", Outstanding: 100, DaysOverdue: 20}},
		}},
		Feed: analyzer.FeedDigest{LastPostAt: now.AddDate(0, 0, -15)},
	}
}

// --- Engine.Run ---

func TestEngineRun_EmptyContext(t *testing.T) {
	suggestions := NewEngine().Run(&ChapterContext{Now: now})
	if len(suggestions) != 0 {
		t.Errorf("expected no suggestions for an empty chapter, got %d: %+v", len(suggestions), suggestions)
	}
}

func TestEngineRun_AllRulesFire(t *testing.T) {
	suggestions := NewEngine().Run(busyContext())

	categories := make(map[string]bool)
	for _, s := range suggestions {
		categories[s.Category] = true
		if s.Title == "" || s.Description == "" {
			t.Errorf("suggestion missing text: %+v", s)
		}
		if len(s.Roles) == 0 || s.Roles[0] != President {
			t.Errorf("suggestion %q roles = %v, want president first", s.Title, s.Roles)
		}
	}
	for _, cat := range []string{CategoryDues, CategoryBudget, CategoryEvents, CategoryMembership, CategoryEngagement} {
		if !categories[cat] {
			t.Errorf("expected category %q, got %v", cat, categories)
		}
	}
	if len(suggestions) != 9 {
		t.Errorf("expected one suggestion per rule (9), got %d", len(suggestions))
	}
}

func TestEngineRun_ReturnsSortedByImpactScore(t *testing.T) {
	suggestions := NewEngine().Run(busyContext())
	for i := 1; i < len(suggestions); i++ {
		if suggestions[i].ImpactScore > suggestions[i-1].ImpactScore {
			t.Errorf("suggestions not sorted: index %d (%.2f) > index %d (%.2f)",
				i, suggestions[i].ImpactScore, i-1, suggestions[i-1].ImpactScore)
		}
	}
}

func TestEngineRun_CustomRuleKeepsRoles(t *testing.T) {
	custom := func(*ChapterContext) []Suggestion {
		return []Suggestion{{Category: "custom", Title: "x", ImpactScore: 1, Roles: []Officer{SocialChair}}}
	}
	engine := &Engine{rules: []Rule{custom}}
	got := engine.Run(&ChapterContext{})
	if len(got) != 1 || !slices.Equal(got[0].Roles, []Officer{SocialChair}) {
		t.Errorf("custom roles overwritten: %+v", got)
	}
}

func TestNewEngine_HasAllRules(t *testing.T) {
	if n := len(NewEngine().rules); n != 9 {
		t.Errorf("expected 9 rules, got %d", n)
	}
}

// --- ForRole ---

func TestForRole(t *testing.T) {
	all := NewEngine().Run(busyContext())

	tests := []struct {
		role Officer
		want []string
	}{
		{President, []string{CategoryDues, CategoryBudget, CategoryEvents, CategoryMembership, CategoryEngagement}},
		{Treasurer, []string{CategoryDues, CategoryBudget}},
		{SocialChair, []string{CategoryBudget, CategoryEvents}},
		{VicePresident, []string{CategoryMembership, CategoryEngagement}},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			got := ForRole(all, tt.role)
			seen := make(map[string]bool)
			for _, s := range got {
				seen[s.Category] = true
			}
			if len(seen) != len(tt.want) {
				t.Errorf("categories = %v, want %v", seen, tt.want)
			}
			for _, c := range tt.want {
				if !seen[c] {
					t.Errorf("missing category %q", c)
				}
			}
		})
	}

	if got := ForRole(nil, Treasurer); got == nil {
		t.Error("ForRole should return an empty slice, not nil")
	}
}

func TestParseOfficer(t *testing.T) {
	tests := map[string]Officer{
		"president":      President,
		"VP":             VicePresident,
		"vice-president": VicePresident,
		"Vice President": VicePresident,
		" treasurer ":    Treasurer,
		"social_chair":   SocialChair,
	}
	for in, want := range tests {
		got, err := ParseOfficer(in)
		if err != nil || got != want {
			t.Errorf("ParseOfficer(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseOfficer("janitor"); err == nil {
		t.Error("expected error for unknown role")
	}
}

// --- RankSuggestions ---

func TestRankSuggestions_SortedDescending(t *testing.T) {
	input := []Suggestion{
		{Title: "low", ImpactScore: 1.0},
		{Title: "high", ImpactScore: 10.0},
		{Title: "mid", ImpactScore: 5.0},
	}
	sorted := RankSuggestions(input)
	want := []string{"high", "mid", "low"}
	for i, s := range sorted {
		if s.Title != want[i] {
			t.Errorf("position %d = %q, want %q", i, s.Title, want[i])
		}
	}
	if input[0].Title != "low" {
		t.Error("RankSuggestions mutated its input")
	}
}

func TestRankSuggestions_StableTies(t *testing.T) {
	sorted := RankSuggestions([]Suggestion{{Title: "a", ImpactScore: 2}, {Title: "b", ImpactScore: 2}})
	if sorted[0].Title != "a" {
		t.Errorf("ties should keep input order, got %q first", sorted[0].Title)
	}
}

// --- ComputeImpact ---

func TestComputeImpact(t *testing.T) {
	tests := []struct {
		name                   string
		affected               int
		urgency, value, effort float64
		want                   float64
	}{
		{"basic", 10, 1.0, 5.0, 5.0, 10.0},
		{"zero effort", 10, 1.0, 5.0, 0, 0},
		{"negative effort", 10, 1.0, 5.0, -1, 0},
		{"fractional", 4, 0.5, 3.0, 2.0, 3.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeImpact(tt.affected, tt.urgency, tt.value, tt.effort)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ComputeImpact = %.4f, want %.4f", got, tt.want)
			}
		})
	}
}
