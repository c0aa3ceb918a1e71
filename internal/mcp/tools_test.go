package mcp

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/store"
)

var now = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func newDemoServer(t *testing.T) *Server {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f, err := chapter.LoadFixture("../../testdata/demo_chapter.json")
	require.NoError(t, err)
	_, err = db.ImportFixture(context.Background(), f)
	require.NoError(t, err)

	s := NewServer(db, "gamma", "test")
	s.SetClock(func() time.Time { return now })
	s.GraceDays = 7
	return s
}

// call runs a tool through the same path as tools/call and decodes its
// text content into T.
func call[T any](t *testing.T, s *Server, name, args string) T {
	t.Helper()
	res := s.callTool(context.Background(), toolsCallParams{Name: name, Arguments: json.RawMessage(args)})
	require.False(t, res.IsError, res.Content[0].Text)
	var v T
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &v))
	return v
}

func TestGetDashboard_Treasurer(t *testing.T) {
	s := newDemoServer(t)
	got := call[DashboardResult](t, s, "get_dashboard", `{"role":"treasurer"}`)

	assert.Equal(t, "treasurer", string(got.Role))
	assert.Equal(t, "Gamma Chapter", got.Chapter)
	assert.Equal(t, 12, got.Members)
	assert.Equal(t, 6, got.Pending)
	require.NotEmpty(t, got.Actions)
	for _, a := range got.Actions {
		assert.Contains(t, []string{"dues", "budget"}, a.Category)
	}
}

func TestGetDashboard_UnknownRole(t *testing.T) {
	s := newDemoServer(t)
	res := s.callTool(context.Background(), toolsCallParams{Name: "get_dashboard", Arguments: json.RawMessage(`{"role":"janitor"}`)})
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "janitor")
}

func TestGetBudget(t *testing.T) {
	s := newDemoServer(t)
	got := call[analyzer.BudgetSummary](t, s, "get_budget", `{}`)

	assert.Equal(t, 4000.0, got.TotalBudget)
	assert.Equal(t, 3375.0, got.TotalSpent)
	require.Len(t, got.OverBudget, 1)
	assert.Equal(t, "ev01", got.OverBudget[0].EventID)
}

func TestGetOverdueDues(t *testing.T) {
	s := newDemoServer(t)
	got := call[DuesResult](t, s, "get_overdue_dues", `{}`)

	require.Len(t, got.Cycles, 1)
	c := got.Cycles[0]
	assert.Equal(t, "fall-2026", c.CycleID)
	assert.InDelta(t, 0.375, c.CollectionRate, 1e-9)

	var ids []string
	for _, o := range c.Overdue {
		ids = append(ids, o.MemberID)
		assert.NotEmpty(t, o.Name)
		assert.Equal(t, 17, o.DaysOverdue)
	}
	sort.Strings(ids)
	assert.Equal(t, []string{"u05", "u06", "u08", "u09"}, ids)
}

func TestSearchMembers(t *testing.T) {
	s := newDemoServer(t)

	got := call[chapter.Paged[chapter.Member]](t, s, "search_members", `{"query":"globex"}`)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "u02", got.Items[0].ID)

	alumni := call[chapter.Paged[chapter.Member]](t, s, "search_members", `{"role":"alumni","limit":2}`)
	assert.Equal(t, 4, alumni.Total)
	assert.Len(t, alumni.Items, 2)
	assert.True(t, alumni.HasMore)
}

func TestCallTool_Unknown(t *testing.T) {
	s := newEmptyServer(t)
	res := s.callTool(context.Background(), toolsCallParams{Name: "nope"})
	assert.True(t, res.IsError)
	assert.Equal(t, "unknown tool: nope", res.Content[0].Text)
}
