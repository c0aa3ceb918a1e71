package analyzer

import (
	"time"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/spotlight"
)

// IncompleteThreshold is the completeness below which a profile is flagged.
const IncompleteThreshold = 0.5

// inactiveAfter is how long without activity before a member counts as
// inactive.
const inactiveAfter = 90 * 24 * time.Hour

// MembershipSummary counts members by role and profile health.
type MembershipSummary struct {
	Total      int                  `json:"total"`
	ByRole     map[chapter.Role]int `json:"by_role"`
	WithAvatar int                  `json:"with_avatar"`

	// AvgCompleteness is the mean profile completeness in [0, 1].
	AvgCompleteness float64 `json:"avg_completeness"`

	// Incomplete lists IDs of members below IncompleteThreshold.
	Incomplete []string `json:"incomplete"`

	// Inactive counts members with no activity in the last 90 days,
	// including those never active.
	Inactive int `json:"inactive"`

	PendingConnections int `json:"pending_connections"`
}

// AnalyzeMembers summarises profile completeness and activity.
// pendingConnections is passed through from the store.
func AnalyzeMembers(members []chapter.Member, pendingConnections int, now time.Time) MembershipSummary {
	s := MembershipSummary{
		ByRole:             make(map[chapter.Role]int),
		Incomplete:         []string{},
		PendingConnections: pendingConnections,
	}
	var completeness float64
	for _, m := range members {
		s.Total++
		s.ByRole[m.Role]++
		if m.HasAvatar() {
			s.WithAvatar++
		}
		c := spotlight.Completeness(m)
		completeness += c
		if c < IncompleteThreshold {
			s.Incomplete = append(s.Incomplete, m.ID)
		}
		if m.LastActiveAt.IsZero() || now.Sub(m.LastActiveAt) > inactiveAfter {
			s.Inactive++
		}
	}
	if s.Total > 0 {
		s.AvgCompleteness = completeness / float64(s.Total)
	}
	return s
}
