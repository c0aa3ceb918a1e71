package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
	"github.com/blackwell-systems/chapterdesk/internal/store"
)

// ListAlumni serves the paginated alumni directory.
func (s *Server) ListAlumni(w http.ResponseWriter, r *http.Request) {
	chapterID, err := s.chapterID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	p, err := s.page(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	res, err := s.db.ListMembers(r.Context(), store.MemberFilter{
		ChapterID: chapterID,
		Role:      chapter.RoleAlumni,
		Query:     r.URL.Query().Get("q"),
	}, p)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListMembers lists a chapter's members with an optional role filter.
func (s *Server) ListMembers(w http.ResponseWriter, r *http.Request) {
	f := store.MemberFilter{
		ChapterID: chi.URLParam(r, "chapterID"),
		Query:     r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role, err := chapter.ParseRole(raw)
		if err != nil {
			s.handleError(w, r, err)
			return
		}
		f.Role = role
	}
	p, err := s.page(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	res, err := s.db.ListMembers(r.Context(), f, p)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
