package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blackwell-systems/chapterdesk/internal/analyzer"
	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// ListEvents serves one page of a chapter's events by start time.
func (s *Server) ListEvents(w http.ResponseWriter, r *http.Request) {
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
	res, err := s.db.ListEvents(r.Context(), chapterID, p)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateEvent stores a new event for an existing chapter.
func (s *Server) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var e chapter.Event
	if err := decodeJSON(r, &e); err != nil {
		s.handleError(w, r, err)
		return
	}
	if e.ChapterID == "" {
		e.ChapterID = s.cfg.ChapterID
	}
	if err := e.Validate(); err != nil {
		s.handleError(w, r, err)
		return
	}
	if _, err := s.db.GetChapter(r.Context(), e.ChapterID); err != nil {
		s.handleError(w, r, err)
		return
	}
	created, err := s.db.CreateEvent(r.Context(), e)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	s.log.Info("event created", "chapter_id", created.ChapterID, "event_id", created.ID)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateSpent records the actual spend against an event.
func (s *Server) UpdateSpent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Spent float64 `json:"spent"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	id := chi.URLParam(r, "eventID")
	if err := s.db.UpdateSpent(r.Context(), id, req.Spent); err != nil {
		s.handleError(w, r, err)
		return
	}
	e, err := s.db.GetEvent(r.Context(), id)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Budget serves the chapter's budget aggregation.
func (s *Server) Budget(w http.ResponseWriter, r *http.Request) {
	chapterID, err := s.chapterID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	events, err := s.db.ListAllEvents(r.Context(), chapterID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzer.AnalyzeBudget(events, s.now()))
}

// ListVendors serves vendor contacts, optionally narrowed to one category.
func (s *Server) ListVendors(w http.ResponseWriter, r *http.Request) {
	chapterID, err := s.chapterID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	vendors, err := s.db.ListVendors(r.Context(), chapterID, r.URL.Query().Get("category"))
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeList(w, vendors)
}

// ListAnnouncements serves the announcements active right now.
func (s *Server) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	chapterID, err := s.chapterID(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	list, err := s.db.ListAnnouncements(r.Context(), chapterID, s.now())
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeList(w, list)
}
