package suggest

import "slices"

// Engine runs all registered rules against a ChapterContext and collects
// the resulting suggestions.
type Engine struct {
	rules []Rule
}

// NewEngine creates a new suggest engine with all built-in rules registered.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			OverdueDues,
			LowCollectionRate,
			OverBudgetEvents,
			UnbudgetedEvents,
			EventsWithoutVendor,
			IncompleteProfiles,
			PendingConnections,
			QuietFeed,
			StaleAnnouncements,
		},
	}
}

// Run executes all registered rules against the given context and returns
// the collected suggestions sorted by impact score (highest first). Each
// suggestion is tagged with the officers who should see it.
func (e *Engine) Run(ctx *ChapterContext) []Suggestion {
	var all []Suggestion
	for _, rule := range e.rules {
		for _, s := range rule(ctx) {
			if len(s.Roles) == 0 {
				s.Roles = rolesFor(s.Category)
			}
			all = append(all, s)
		}
	}
	return RankSuggestions(all)
}

func rolesFor(category string) []Officer {
	return append([]Officer{President}, categoryOwners[category]...)
}

// ForRole keeps the suggestions visible to one officer. The president sees
// everything.
func ForRole(suggestions []Suggestion, role Officer) []Suggestion {
	out := []Suggestion{}
	for _, s := range suggestions {
		if role == President || slices.Contains(s.Roles, role) {
			out = append(out, s)
		}
	}
	return out
}
