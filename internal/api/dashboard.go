package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blackwell-systems/chapterdesk/internal/dashboard"
	"github.com/blackwell-systems/chapterdesk/internal/suggest"
)

type dashboardResponse struct {
	Role suggest.Officer `json:"role"`
	dashboard.Summary
}

// Dashboard serves the headline figures and the action items one officer
// is responsible for.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	role, err := suggest.ParseOfficer(chi.URLParam(r, "role"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	cc, err := dashboard.Build(r.Context(), s.db, chi.URLParam(r, "chapterID"), s.now(), s.cfg.Dues.OverdueGraceDays)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	actions := suggest.ForRole(s.engine.Run(cc), role)
	writeJSON(w, http.StatusOK, dashboardResponse{
		Role:    role,
		Summary: dashboard.Summarize(cc, actions, 0),
	})
}
