// Package suggest provides the officer action-item engine and its rules.
package suggest

import (
	"fmt"
	"strings"
	"time"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// Priority levels for suggestions.
const (
	PriorityCritical = 1
	PriorityHigh     = 2
	PriorityMedium   = 3
	PriorityLow      = 4
)

// Categories group action items by the officer who usually owns them.
const (
	CategoryDues       = "dues"
	CategoryBudget     = "budget"
	CategoryEvents     = "events"
	CategoryMembership = "membership"
	CategoryEngagement = "engagement"
)

// Officer is a dashboard role. Each officer sees a subset of action items.
type Officer string

const (
	President     Officer = "president"
	VicePresident Officer = "vice_president"
	Treasurer     Officer = "treasurer"
	SocialChair   Officer = "social_chair"
)

// Officers lists every dashboard role in display order.
var Officers = []Officer{President, VicePresident, Treasurer, SocialChair}

// categoryOwners maps a category to the officers who see it besides the
// president.
var categoryOwners = map[string][]Officer{
	CategoryDues:       {Treasurer},
	CategoryBudget:     {Treasurer, SocialChair},
	CategoryEvents:     {SocialChair},
	CategoryMembership: {VicePresident},
	CategoryEngagement: {VicePresident},
}

// ParseOfficer maps a raw role name (e.g. "vice-president", "VP") to an
// Officer.
func ParseOfficer(s string) (Officer, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	switch norm {
	case "president", "pres":
		return President, nil
	case "vice_president", "vp":
		return VicePresident, nil
	case "treasurer":
		return Treasurer, nil
	case "social_chair", "social":
		return SocialChair, nil
	}
	return "", fmt.Errorf("%w: unknown officer role %q", chapter.ErrInvalid, s)
}

// Suggestion represents an actionable item for chapter officers.
type Suggestion struct {
	Category    string    `json:"category"`
	Priority    int       `json:"priority"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ImpactScore float64   `json:"impact_score"`
	Roles       []Officer `json:"roles"`
}

// ChapterContext provides all data needed by suggest rules. It is built from
// the analyzer summaries by the dashboard and actions commands.
type ChapterContext struct {
	ChapterName string    `json:"chapter_name"`
	Now         time.Time `json:"now"`

	Members analyzer.MembershipSummary `json:"members"`
	Budget  analyzer.BudgetSummary     `json:"budget"`

	// Dues holds one summary per open cycle.
	Dues []analyzer.DuesSummary `json:"dues"`

	Feed analyzer.FeedDigest `json:"feed"`

	// Announcements are the currently active ones.
	Announcements []chapter.Announcement `json:"announcements"`
}

// Rule is a function that examines the chapter context and produces
// zero or more suggestions.
type Rule func(ctx *ChapterContext) []Suggestion
