package suggest

import "sort"

// RankSuggestions sorts suggestions by ImpactScore in descending order.
// Equal scores keep rule order.
func RankSuggestions(suggestions []Suggestion) []Suggestion {
	sorted := make([]Suggestion, len(suggestions))
	copy(sorted, suggestions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ImpactScore > sorted[j].ImpactScore
	})
	return sorted
}

// ComputeImpact calculates an impact score for a suggestion.
// Formula: (affectedMembers * urgency * value) / effort
//
// Parameters:
//   - affectedMembers: number of members (or events) the item touches
//   - urgency: how pressing the item is (0.0-1.0)
//   - value: relative payoff of resolving it
//   - effort: estimated officer minutes to resolve it
//
// Returns 0 if effort is zero to avoid division by zero.
func ComputeImpact(affectedMembers int, urgency float64, value float64, effort float64) float64 {
	if effort <= 0 {
		return 0
	}
	return (float64(affectedMembers) * urgency * value) / effort
}
