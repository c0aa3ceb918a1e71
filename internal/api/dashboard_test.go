package api

import (
	"net/http"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/chapterdesk/internal/suggest"
)

func TestHandler_Dashboard(t *testing.T) {
	h, _ := setupServer(t)

	t.Run("treasurer sees dues and budget", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/chapter/gamma/dashboard/treasurer", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode[dashboardResponse](t, w)

		assert.Equal(t, suggest.Treasurer, resp.Role)
		assert.Equal(t, "Gamma Chapter", resp.Chapter)
		require.NotEmpty(t, resp.Actions)
		for _, a := range resp.Actions {
			assert.Contains(t, []string{suggest.CategoryDues, suggest.CategoryBudget}, a.Category, a.Title)
		}
		assert.True(t, slices.ContainsFunc(resp.Actions, func(s suggest.Suggestion) bool {
			return s.Category == suggest.CategoryDues
		}))
	})

	t.Run("president sees everything", func(t *testing.T) {
		pres := decode[dashboardResponse](t, do(t, h, http.MethodGet, "/api/chapter/gamma/dashboard/president", nil))
		vp := decode[dashboardResponse](t, do(t, h, http.MethodGet, "/api/chapter/gamma/dashboard/vp", nil))
		assert.Greater(t, len(pres.Actions), len(vp.Actions))
		assert.Equal(t, suggest.VicePresident, vp.Role)
		for i := 1; i < len(pres.Actions); i++ {
			assert.GreaterOrEqual(t, pres.Actions[i-1].ImpactScore, pres.Actions[i].ImpactScore)
		}
	})

	t.Run("unknown role", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/chapter/gamma/dashboard/janitor", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown chapter", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/api/chapter/nope/dashboard/president", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
