package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

// ListFeed serves one page of the chapter feed, newest first.
func (s *Server) ListFeed(w http.ResponseWriter, r *http.Request) {
	p, err := s.page(r)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	res, err := s.db.ListPosts(r.Context(), chi.URLParam(r, "chapterID"), p)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreatePost adds a post by a member of the chapter.
func (s *Server) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AuthorID string `json:"author_id"`
		Content  string `json:"content"`
	}
	if err := decodeJSON(r, &req); err != nil {
		s.handleError(w, r, err)
		return
	}
	chapterID := chi.URLParam(r, "chapterID")
	p := chapter.Post{
		ChapterID: chapterID,
		AuthorID:  req.AuthorID,
		Content:   strings.TrimSpace(req.Content),
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	if err := p.Validate(); err != nil {
		s.handleError(w, r, err)
		return
	}
	author, err := s.db.GetMember(r.Context(), req.AuthorID)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	if author.ChapterID != chapterID {
		s.handleError(w, r, chapter.Invalidf("author %s is not in chapter %s", author.ID, chapterID))
		return
	}
	created, err := s.db.CreatePost(r.Context(), p)
	if err != nil {
		s.handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}
