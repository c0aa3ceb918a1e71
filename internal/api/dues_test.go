package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

func assignmentFor(t *testing.T, h http.Handler, memberID, cycleID string) chapter.DuesAssignment {
	t.Helper()
	w := do(t, h, http.MethodGet, "/api/dues/members/"+memberID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, a := range decode[listResponse[chapter.DuesAssignment]](t, w).Items {
		if a.CycleID == cycleID {
			return a
		}
	}
	t.Fatalf("no %s assignment for %s", cycleID, memberID)
	return chapter.DuesAssignment{}
}

func TestHandler_DuesCycles(t *testing.T) {
	h, _ := setupServer(t)

	w := do(t, h, http.MethodGet, "/api/dues/cycles?chapter_id=gamma", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cycles := decode[listResponse[chapter.DuesCycle]](t, w)
	require.Len(t, cycles.Items, 2)
	assert.Equal(t, "fall-2026", cycles.Items[0].ID)

	w = do(t, h, http.MethodGet, "/api/dues/cycles/fall-2026/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	sum := decode[analyzer.DuesSummary](t, w)
	assert.InDelta(t, 0.375, sum.CollectionRate, 1e-9)
	assert.Len(t, sum.Overdue, 4)
	assert.Equal(t, 1, sum.Exempt)

	w = do(t, h, http.MethodGet, "/api/dues/cycles/nope/summary", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_RecordPayment(t *testing.T) {
	h, _ := setupServer(t)

	a := assignmentFor(t, h, "u06", "fall-2026")
	w := do(t, h, http.MethodPost, "/api/dues/assignments/"+a.ID+"/payments", map[string]any{"amount": 120})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[chapter.DuesAssignment](t, w)
	assert.Equal(t, chapter.DuesPartial, got.Status)
	assert.Equal(t, now, got.PaidAt)

	w = do(t, h, http.MethodPost, "/api/dues/assignments/"+a.ID+"/payments", map[string]any{"amount": 80})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, chapter.DuesPaid, decode[chapter.DuesAssignment](t, w).Status)

	exempt := assignmentFor(t, h, "u10", "fall-2026")
	tests := []struct {
		name   string
		id     string
		body   any
		status int
		code   string
	}{
		{"exempt", exempt.ID, map[string]any{"amount": 10}, http.StatusConflict, "CONFLICT"},
		{"zero amount", a.ID, map[string]any{"amount": 0}, http.StatusBadRequest, "BAD_REQUEST"},
		{"unknown assignment", "missing", map[string]any{"amount": 10}, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodPost, "/api/dues/assignments/"+tt.id+"/payments", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, decode[APIErrorResponse](t, w).Error.Code)
		})
	}
}

func TestHandler_AssignDues(t *testing.T) {
	h, _ := setupServer(t)

	w := do(t, h, http.MethodPost, "/api/dues/cycles/fall-2026/assignments", map[string]any{"member_id": "u11"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	a := decode[chapter.DuesAssignment](t, w)
	assert.InDelta(t, 200, a.AmountDue, 1e-9)
	assert.Equal(t, chapter.DuesPending, a.Status)

	w = do(t, h, http.MethodPost, "/api/dues/cycles/fall-2026/assignments", map[string]any{"member_id": "u11"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, h, http.MethodPost, "/api/dues/cycles/fall-2026/assignments", map[string]any{"member_id": "u12", "status": "waived"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, h, http.MethodGet, "/api/dues/members/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
