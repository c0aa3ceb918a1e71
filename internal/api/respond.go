package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/blackwell-systems/chapterdesk/internal/chapter"
)

type APIErrorResponse struct {
	Error APIErrorDetail `json:"error"`
}

type APIErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIErrorResponse{Error: APIErrorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// listResponse wraps an unpaged list so clients always get an array.
type listResponse[T any] struct {
	Items []T `json:"items"`
}

func writeList[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse[T]{Items: items})
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, chapter.ErrNotFound):
		writeAPIError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, chapter.ErrConflict):
		writeAPIError(w, http.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, chapter.ErrInvalid):
		writeAPIError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
	default:
		s.log.Error("internal server error", "path", r.URL.Path, "error", err)
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return chapter.Invalidf("invalid json body")
	}
	return nil
}

// chapterID reads ?chapter_id=, falling back to the configured chapter.
func (s *Server) chapterID(r *http.Request) (string, error) {
	if id := r.URL.Query().Get("chapter_id"); id != "" {
		return id, nil
	}
	if s.cfg.ChapterID != "" {
		return s.cfg.ChapterID, nil
	}
	return "", chapter.Invalidf("chapter_id is required")
}

// page reads ?page= and ?limit= and applies the configured bounds.
func (s *Server) page(r *http.Request) (chapter.Page, error) {
	var p chapter.Page
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, chapter.Invalidf("page must be a positive integer")
		}
		p.Number = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, chapter.Invalidf("limit must be a positive integer")
		}
		p.Limit = n
	}
	return p.Normalize(s.cfg.Pagination.DefaultLimit, s.cfg.Pagination.MaxLimit), nil
}

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, chapter.Invalidf("%s must be a non-negative integer", name)
	}
	return n, nil
}
