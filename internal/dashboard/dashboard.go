// Package dashboard loads everything the officer dashboards need for one
// chapter and turns it into a suggest.ChapterContext.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/suggest"
)

// FeedWindow is how far back posts are loaded for the feed digest.
const FeedWindow = 90 * 24 * time.Hour

// Store is the subset of the chapter store the dashboard reads.
type Store interface {
	GetChapter(ctx context.Context, id string) (chapter.Chapter, error)
	ListAllMembers(ctx context.Context, chapterID string) ([]chapter.Member, error)
	CountPendingConnections(ctx context.Context, chapterID string) (int, error)
	ListAllEvents(ctx context.Context, chapterID string) ([]chapter.Event, error)
	ListDuesCycles(ctx context.Context, chapterID string) ([]chapter.DuesCycle, error)
	ListChapterAssignments(ctx context.Context, chapterID string) (map[string][]chapter.DuesAssignment, error)
	ListPostsSince(ctx context.Context, chapterID string, since time.Time) ([]chapter.Post, error)
	ListAnnouncements(ctx context.Context, chapterID string, activeAt time.Time) ([]chapter.Announcement, error)
}

// Build loads the chapter's records concurrently and runs every analysis.
// A missing chapter returns chapter.ErrNotFound.
func Build(ctx context.Context, st Store, chapterID string, now time.Time, graceDays int) (*suggest.ChapterContext, error) {
	var (
		ch            chapter.Chapter
		members       []chapter.Member
		pending       int
		events        []chapter.Event
		cycles        []chapter.DuesCycle
		assignments   map[string][]chapter.DuesAssignment
		posts         []chapter.Post
		announcements []chapter.Announcement
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ch, err = st.GetChapter(gctx, chapterID)
		return err
	})
	g.Go(func() (err error) {
		members, err = st.ListAllMembers(gctx, chapterID)
		return err
	})
	g.Go(func() (err error) {
		pending, err = st.CountPendingConnections(gctx, chapterID)
		return err
	})
	g.Go(func() (err error) {
		events, err = st.ListAllEvents(gctx, chapterID)
		return err
	})
	g.Go(func() (err error) {
		cycles, err = st.ListDuesCycles(gctx, chapterID)
		return err
	})
	g.Go(func() (err error) {
		assignments, err = st.ListChapterAssignments(gctx, chapterID)
		return err
	})
	g.Go(func() (err error) {
		posts, err = st.ListPostsSince(gctx, chapterID, now.Add(-FeedWindow))
		return err
	})
	g.Go(func() (err error) {
		announcements, err = st.ListAnnouncements(gctx, chapterID, now)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading chapter %s: %w", chapterID, err)
	}

	if announcements == nil {
		announcements = []chapter.Announcement{}
	}
	cc := &suggest.ChapterContext{
		ChapterName:   ch.Name,
		Now:           now,
		Members:       analyzer.AnalyzeMembers(members, pending, now),
		Budget:        analyzer.AnalyzeBudget(events, now),
		Dues:          []analyzer.DuesSummary{},
		Feed:          analyzer.AnalyzeFeed(posts, now),
		Announcements: announcements,
	}
	for _, c := range cycles {
		if c.Closed {
			continue
		}
		cc.Dues = append(cc.Dues, analyzer.AnalyzeDues(c, assignments[c.ID], now, graceDays))
	}
	return cc, nil
}

// Summary is the headline view printed by the bare CLI command and served
// alongside role action items.
type Summary struct {
	Chapter     string               `json:"chapter"`
	GeneratedAt time.Time            `json:"generated_at"`
	Members     int                  `json:"members"`
	Pending     int                  `json:"pending_connections"`
	Budget      BudgetLine           `json:"budget"`
	Dues        []DuesLine           `json:"dues"`
	PostsWeek   int                  `json:"posts_last_7_days"`
	Actions     []suggest.Suggestion `json:"actions"`
}

// BudgetLine is the budget headline.
type BudgetLine struct {
	Total       float64 `json:"total"`
	Spent       float64 `json:"spent"`
	Utilization float64 `json:"utilization_percent"`
	OverBudget  int     `json:"over_budget_events"`
}

// DuesLine is the headline for one open cycle.
type DuesLine struct {
	Cycle          string  `json:"cycle"`
	CollectionRate float64 `json:"collection_rate"`
	Outstanding    float64 `json:"outstanding"`
	Overdue        int     `json:"overdue_members"`
}

// Summarize condenses a context and its ranked suggestions, keeping at most
// topN actions. topN <= 0 keeps all of them.
func Summarize(cc *suggest.ChapterContext, actions []suggest.Suggestion, topN int) Summary {
	if topN > 0 && len(actions) > topN {
		actions = actions[:topN]
	}
	if actions == nil {
		actions = []suggest.Suggestion{}
	}
	s := Summary{
		Chapter:     cc.ChapterName,
		GeneratedAt: cc.Now,
		Members:     cc.Members.Total,
		Pending:     cc.Members.PendingConnections,
		Budget: BudgetLine{
			Total:       cc.Budget.TotalBudget,
			Spent:       cc.Budget.TotalSpent,
			Utilization: cc.Budget.UtilizationPercent,
			OverBudget:  len(cc.Budget.OverBudget),
		},
		Dues:      make([]DuesLine, 0, len(cc.Dues)),
		PostsWeek: cc.Feed.Last7Days,
		Actions:   actions,
	}
	for _, d := range cc.Dues {
		s.Dues = append(s.Dues, DuesLine{
			Cycle:          d.CycleName,
			CollectionRate: d.CollectionRate,
			Outstanding:    d.Outstanding,
			Overdue:        len(d.Overdue),
		})
	}
	return s
}
