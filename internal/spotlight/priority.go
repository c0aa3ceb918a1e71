// Package spotlight assembles the rotating "people you may know" list shown
// on the networking dashboards.
package spotlight

import (
	"math"
	"strings"
	"time"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// Weights controls how the priority score blends profile completeness with
// activity recency.
type Weights struct {
	Completeness    float64 `json:"completeness"`
	Recency         float64 `json:"recency"`
	RecencyHalfLife float64 `json:"recency_half_life_days"`
}

// DefaultWeights favours complete profiles slightly over recent activity.
var DefaultWeights = Weights{
	Completeness:    0.6,
	Recency:         0.4,
	RecencyHalfLife: 30,
}

// profileFields are the optional fields counted toward completeness.
var profileFields = []func(chapter.Member) bool{
	func(m chapter.Member) bool { return m.HasAvatar() },
	func(m chapter.Member) bool { return strings.TrimSpace(m.Headline) != "" },
	func(m chapter.Member) bool { return strings.TrimSpace(m.Bio) != "" },
	func(m chapter.Member) bool { return strings.TrimSpace(m.Industry) != "" },
	func(m chapter.Member) bool { return strings.TrimSpace(m.Company) != "" },
	func(m chapter.Member) bool { return strings.TrimSpace(m.Location) != "" },
	func(m chapter.Member) bool { return m.GraduationYear > 0 },
}

// Completeness returns the fraction of optional profile fields filled in.
func Completeness(m chapter.Member) float64 {
	filled := 0
	for _, f := range profileFields {
		if f(m) {
			filled++
		}
	}
	return float64(filled) / float64(len(profileFields))
}

// Recency decays exponentially with days since the member was last active.
// Members with no recorded activity score 0.
func Recency(m chapter.Member, now time.Time, halfLifeDays float64) float64 {
	if m.LastActiveAt.IsZero() {
		return 0
	}
	if halfLifeDays <= 0 {
		halfLifeDays = DefaultWeights.RecencyHalfLife
	}
	days := now.Sub(m.LastActiveAt).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days * math.Ln2 / halfLifeDays)
}

// Priority scores a candidate in [0, 1].
func Priority(m chapter.Member, now time.Time, w Weights) float64 {
	total := w.Completeness + w.Recency
	if total <= 0 {
		w = DefaultWeights
		total = w.Completeness + w.Recency
	}
	score := w.Completeness*Completeness(m) + w.Recency*Recency(m, now, w.RecencyHalfLife)
	return score / total
}
