package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

func TestHandler_Events(t *testing.T) {
	h, _ := setupServer(t)

	t.Run("list", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/events?chapter_id=gamma&limit=2", nil)
		require.Equal(t, http.StatusOK, w.Code)
		page := decode[chapter.Paged[chapter.Event]](t, w)
		assert.Equal(t, 5, page.Total)
		assert.Len(t, page.Items, 2)
		assert.True(t, page.HasMore)
	})

	t.Run("create", func(t *testing.T) {
		body := map[string]any{
			"chapter_id": "gamma",
			"title":      "Winter Retreat",
			"category":   "Social",
			"start_at":   time.Date(2027, 1, 15, 9, 0, 0, 0, time.UTC),
			"budget":     1200,
		}
		w := do(t, h, http.MethodPost, "/api/events", body)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		e := decode[chapter.Event](t, w)
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, "Winter Retreat", e.Title)
	})

	t.Run("create errors", func(t *testing.T) {
		tests := []struct {
			name   string
			body   any
			status int
		}{
			{"bad json", `{"title":`, http.StatusBadRequest},
			{"unknown field", `{"title":"x","colour":"red"}`, http.StatusBadRequest},
			{"missing title", map[string]any{"chapter_id": "gamma", "start_at": now}, http.StatusBadRequest},
			{"unknown chapter", map[string]any{"chapter_id": "delta", "title": "x", "start_at": now}, http.StatusNotFound},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := do(t, h, http.MethodPost, "/api/events", tt.body)
				assert.Equal(t, tt.status, w.Code, w.Body.String())
			})
		}
	})

	t.Run("update spent", func(t *testing.T) {
		w := do(t, h, http.MethodPut, "/api/events/ev03/spent", map[string]any{"spent": 900})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		e := decode[chapter.Event](t, w)
		assert.True(t, e.OverBudget())

		w = do(t, h, http.MethodPut, "/api/events/missing/spent", map[string]any{"spent": 1})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = do(t, h, http.MethodPut, "/api/events/ev03/spent", map[string]any{"spent": -1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandler_Budget(t *testing.T) {
	h, _ := setupServer(t)
	w := do(t, h, http.MethodGet, "/api/events/budget?chapter_id=gamma", nil)
	require.Equal(t, http.StatusOK, w.Code)
	b := decode[analyzer.BudgetSummary](t, w)
	assert.InDelta(t, 4000, b.TotalBudget, 1e-9)
	assert.InDelta(t, 625, b.Remaining, 1e-9)
	require.Len(t, b.OverBudget, 1)
	assert.Equal(t, "ev01", b.OverBudget[0].EventID)
}

func TestHandler_VendorsAndAnnouncements(t *testing.T) {
	h, _ := setupServer(t)

	w := do(t, h, http.MethodGet, "/api/events/vendors?chapter_id=gamma&category=music", nil)
	require.Equal(t, http.StatusOK, w.Code)
	vendors := decode[listResponse[chapter.VendorContact]](t, w)
	require.Len(t, vendors.Items, 1)
	assert.Equal(t, "Riverside DJs", vendors.Items[0].Name)

	w = do(t, h, http.MethodGet, "/api/events/vendors?chapter_id=delta", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[]}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/api/announcements?chapter_id=gamma", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ann := decode[listResponse[chapter.Announcement]](t, w)
	require.Len(t, ann.Items, 1)
	assert.Equal(t, "an01", ann.Items[0].ID)
}
