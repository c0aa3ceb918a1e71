package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/dashboard"
	"github.com/blackwell-systems/chapterdesk/internal/store"
	"github.com/blackwell-systems/chapterdesk/internal/suggest"
)

// maxSearchLimit bounds search_members results.
const maxSearchLimit = 50

// DashboardResult is an officer's dashboard headline plus their actions.
type DashboardResult struct {
	Role suggest.Officer `json:"role"`
	dashboard.Summary
}

// DuesResult lists open cycles with overdue members resolved to names.
type DuesResult struct {
	Cycles []CycleDues `json:"cycles"`
}

// CycleDues is the collection state of one open cycle.
type CycleDues struct {
	CycleID        string          `json:"cycle_id"`
	Name           string          `json:"name"`
	CollectionRate float64         `json:"collection_rate"`
	Outstanding    float64         `json:"outstanding"`
	Overdue        []OverdueMember `json:"overdue"`
}

// OverdueMember is a member past the grace period.
type OverdueMember struct {
	MemberID    string  `json:"member_id"`
	Name        string  `json:"name"`
	Outstanding float64 `json:"outstanding"`
	DaysOverdue int     `json:"days_overdue"`
}

var (
	noArgsSchema    = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	dashboardSchema = json.RawMessage(`{"type":"object","properties":{"role":{"type":"string","description":"Officer role: president, vice_president, treasurer or social_chair (default president)"}},"additionalProperties":false}`)
	searchSchema    = json.RawMessage(`{"type":"object","properties":{"query":{"type":"string","description":"Matched against name, company, industry and headline"},"role":{"type":"string","description":"alumni, active_member, admin or other"},"limit":{"type":"integer","description":"Maximum results (default 10, max 50)"}},"additionalProperties":false}`)
)

func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "get_dashboard",
		Description: "Chapter headline numbers and the ranked action items for one officer role.",
		InputSchema: dashboardSchema,
		Handler:     s.handleGetDashboard,
	})
	s.registerTool(toolDef{
		Name:        "get_budget",
		Description: "Event budget versus spend, by category and month, with over-budget events.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetBudget,
	})
	s.registerTool(toolDef{
		Name:        "get_overdue_dues",
		Description: "Collection rate and overdue members for every open dues cycle.",
		InputSchema: noArgsSchema,
		Handler:     s.handleGetOverdueDues,
	})
	s.registerTool(toolDef{
		Name:        "search_members",
		Description: "Search chapter members by name, company, industry or headline.",
		InputSchema: searchSchema,
		Handler:     s.handleSearchMembers,
	})
}

func (s *Server) handleGetDashboard(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	role := suggest.President
	if params.Role != "" {
		r, err := suggest.ParseOfficer(params.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}

	cc, err := dashboard.Build(ctx, s.db, s.chapterID, s.now(), s.GraceDays)
	if err != nil {
		return nil, err
	}
	actions := suggest.ForRole(s.engine.Run(cc), role)
	return DashboardResult{Role: role, Summary: dashboard.Summarize(cc, actions, 0)}, nil
}

func (s *Server) handleGetBudget(ctx context.Context, _ json.RawMessage) (any, error) {
	events, err := s.db.ListAllEvents(ctx, s.chapterID)
	if err != nil {
		return nil, err
	}
	return analyzer.AnalyzeBudget(events, s.now()), nil
}

func (s *Server) handleGetOverdueDues(ctx context.Context, _ json.RawMessage) (any, error) {
	cycles, err := s.db.ListDuesCycles(ctx, s.chapterID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.db.ListChapterAssignments(ctx, s.chapterID)
	if err != nil {
		return nil, err
	}
	members, err := s.db.ListAllMembers(ctx, s.chapterID)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(members))
	for _, m := range members {
		names[m.ID] = m.FullName
	}

	now := s.now()
	result := DuesResult{Cycles: []CycleDues{}}
	for _, c := range cycles {
		if c.Closed {
			continue
		}
		sum := analyzer.AnalyzeDues(c, assignments[c.ID], now, s.GraceDays)
		cd := CycleDues{
			CycleID:        c.ID,
			Name:           c.Name,
			CollectionRate: sum.CollectionRate,
			Outstanding:    sum.Outstanding,
			Overdue:        make([]OverdueMember, 0, len(sum.Overdue)),
		}
		for _, o := range sum.Overdue {
			cd.Overdue = append(cd.Overdue, OverdueMember{
				MemberID:    o.MemberID,
				Name:        names[o.MemberID],
				Outstanding: o.Outstanding,
				DaysOverdue: o.DaysOverdue,
			})
		}
		result.Cycles = append(result.Cycles, cd)
	}
	return result, nil
}

func (s *Server) handleSearchMembers(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Query string `json:"query"`
		Role  string `json:"role"`
		Limit int    `json:"limit"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	f := store.MemberFilter{ChapterID: s.chapterID, Query: params.Query}
	if params.Role != "" {
		role, err := chapter.ParseRole(params.Role)
		if err != nil {
			return nil, err
		}
		f.Role = role
	}
	p := chapter.Page{Number: 1, Limit: params.Limit}.Normalize(10, maxSearchLimit)
	return s.db.ListMembers(ctx, f, p)
}
